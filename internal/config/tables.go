package config

import "github.com/wbciowa/sba-converter/internal/mapping"

// TrainingTopics folds free-text topic values into the schema's
// TrainingTopic enumeration. Entries are ordered; the first
// case-insensitive match wins.
var TrainingTopics = mapping.Table{
	{Key: "Technology", Value: "Technology"},
	{Key: "Tech", Value: "Technology"},
	{Key: "IT", Value: "Technology"},
	{Key: "Computer", Value: "Technology"},
	{Key: "Software", Value: "Technology"},
	{Key: "Marketing", Value: "Marketing/Sales"},
	{Key: "Sales", Value: "Marketing/Sales"},
	{Key: "Advertising", Value: "Marketing/Sales"},
	{Key: "Start-up", Value: "Business Start-up/Preplanning"},
	{Key: "Startup", Value: "Business Start-up/Preplanning"},
	{Key: "Starting a Business", Value: "Business Start-up/Preplanning"},
	{Key: "Business Plan", Value: "Business Plan"},
	{Key: "Planning", Value: "Business Plan"},
	{Key: "Financing", Value: "Business Financing/Capital Sources"},
	{Key: "Capital", Value: "Business Financing/Capital Sources"},
	{Key: "Funding", Value: "Business Financing/Capital Sources"},
	{Key: "International", Value: "International Trade"},
	{Key: "Global", Value: "International Trade"},
	{Key: "Export", Value: "International Trade"},
	{Key: "eCommerce", Value: "eCommerce"},
	{Key: "E-Commerce", Value: "eCommerce"},
	{Key: "Online Business", Value: "eCommerce"},
	{Key: "Legal", Value: "Legal Issues"},
	{Key: "Law", Value: "Legal Issues"},
	{Key: "Compliance", Value: "Legal Issues"},
	{Key: "Tax", Value: "Tax Planning"},
	{Key: "Taxes", Value: "Tax Planning"},
	{Key: "Contracting", Value: "Government Contracting"},
	{Key: "Government", Value: "Government Contracting"},
	{Key: "Federal", Value: "Government Contracting"},
	{Key: "Cyber", Value: "Cyber Security/Cyber Awareness"},
	{Key: "Security", Value: "Cyber Security/Cyber Awareness"},
	{Key: "HR", Value: "Human Resources/Managing Employees"},
	{Key: "Human Resources", Value: "Human Resources/Managing Employees"},
	{Key: "Employee", Value: "Human Resources/Managing Employees"},
	{Key: "Accounting", Value: "Business Accounting/Budget"},
	{Key: "Budget", Value: "Business Accounting/Budget"},
	{Key: "Finance", Value: "Business Accounting/Budget"},
	{Key: "Cash Flow", Value: "Business Financial/Cash Flow"},
	{Key: "Financial", Value: "Business Financial/Cash Flow"},
	{Key: "Customer", Value: "Customer Relations"},
	{Key: "Service", Value: "Customer Relations"},
	{Key: "Disaster", Value: "Disaster Planning/Recovery"},
	{Key: "Recovery", Value: "Disaster Planning/Recovery"},
	{Key: "Emergency", Value: "Disaster Planning/Recovery"},
	{Key: "Buy/Sell", Value: "Buy/Sell Business"},
	{Key: "Acquisition", Value: "Buy/Sell Business"},
	{Key: "Merger", Value: "Buy/Sell Business"},
	{Key: "Franchise", Value: "Franchising"},
	{Key: "IP", Value: "Intellectual Property Training"},
	{Key: "Patent", Value: "Intellectual Property Training"},
	{Key: "Trademark", Value: "Intellectual Property Training"},
	{Key: "Credit", Value: "Credit Counseling"},
	{Key: "Loan", Value: "Credit Counseling"},
	{Key: "Operations", Value: "Business Operations/Management"},
	{Key: "Management", Value: "Business Operations/Management"},
}

// ProgramFormats folds free-text delivery formats into the schema's
// ProgramFormatType enumeration.
var ProgramFormats = mapping.Table{
	{Key: "Hybrid", Value: "Hybrid"},
	{Key: "In-person", Value: "In-person"},
	{Key: "On Demand", Value: "On Demand"},
	{Key: "Online", Value: "Online"},
	{Key: "Seminar", Value: "In-person"},
	{Key: "Course", Value: "In-person"},
	{Key: "Teleconference", Value: "Online"},
	{Key: "On-line Course", Value: "Online"},
	{Key: "In person", Value: "In-person"},
	{Key: "Webinar", Value: "Online"},
	{Key: "Virtual", Value: "Online"},
	{Key: "Remote", Value: "Online"},
	{Key: "Zoom", Value: "Online"},
	{Key: "Teams", Value: "Online"},
	{Key: "Face-to-face", Value: "In-person"},
	{Key: "F2F", Value: "In-person"},
	{Key: "Classroom", Value: "In-person"},
	{Key: "Blended", Value: "Hybrid"},
	{Key: "On-Demand", Value: "On Demand"},
	{Key: "Self-paced", Value: "On Demand"},
	{Key: "Recording", Value: "On Demand"},
}
