// =============================================================================
// SBA Report Converter - Counseling (Form 641) Builders
// =============================================================================
//
// Section builders for the counseling report. Each builder appends one
// schema subtree per accepted CSV row, emitting children in the exact order
// the SBA_NEXUS_Counseling schema mandates. Conditional elements
// (BranchOfService, LegalEntity, FIPS_Code) follow the schema's
// conditionally-required rules: a violated condition is flagged through the
// tracker but the record is still emitted, so one data gap never sinks the
// submission.
//
// =============================================================================

package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wbciowa/sba-converter/internal/clean"
	"github.com/wbciowa/sba-converter/internal/issue"
	"github.com/wbciowa/sba-converter/internal/reader"
	"github.com/wbciowa/sba-converter/internal/xmltree"
)

var zip5Re = regexp.MustCompile(`^\d{5}`)

// defaultMaxCounselorNotes backs the CounselorNotes limit when a config
// override drops the key from MaxFieldLengths.
const defaultMaxCounselorNotes = 1000

// CounselingSpec returns the declarative description of the Form 641
// counseling report: one CounselingRecord per CSV row under
// CounselingInformation.
func CounselingSpec() ReportSpec {
	return ReportSpec{
		Name:    "counseling",
		RootTag: "CounselingInformation",
		Collect: collectCounseling,
		Build:   buildCounselingRecord,
	}
}

func collectCounseling(ctx *Context, t *reader.Table) ([]Record, int) {
	var records []Record
	skipped := 0
	for i, row := range t.Rows {
		rowIndex := i + 1
		if !validateCounselingRecord(ctx, row, rowIndex) {
			ctx.Log.Warn().Int("row", rowIndex).Msg("skipping record: failed validation")
			skipped++
			continue
		}
		records = append(records, Record{
			ID:    row.Get(ctx.Cfg.Counseling.RequiredField),
			Index: rowIndex,
			Rows:  []reader.Row{row},
		})
	}
	return records, skipped
}

func buildCounselingRecord(ctx *Context, root *xmltree.Node, rec Record) error {
	row := rec.First()

	record := root.Add("CounselingRecord")
	record.AddText("PartnerClientNumber", rec.ID)

	location := record.Add("Location")
	location.AddText("LocationCode", row.GetOr(ctx.Cfg.General.LocationCode, "LocationCode"))

	buildClientRequest(ctx, record, row, rec.ID)
	if err := buildClientIntake(ctx, record, row, rec.ID); err != nil {
		return err
	}
	buildCounselorRecord(ctx, record, row, rec.ID)
	return nil
}

// -----------------------------------------------------------------------------
// ClientRequest (Part 1)
// -----------------------------------------------------------------------------

func buildClientRequest(ctx *Context, parent *xmltree.Node, row reader.Row, recordID string) {
	cr := parent.Add("ClientRequest")

	name := cr.Add("ClientNamePart1")
	name.AddText("Last", row.Get("Last Name"))
	name.AddText("First", row.Get("First Name"))
	name.AddText("Middle", row.Get("Middle Name"))

	cr.AddText("Email", row.Get("Email"))

	phone := cr.Add("PhonePart1")
	phone.AddText("Primary", clean.Phone(row.Get("Contact: Phone")))
	phone.AddText("Secondary", "")

	addAddress(ctx, cr, "AddressPart1", row, recordID, true)

	cr.AddText("SurveyAgreement", row.GetOr("No", "Agree to Impact Survey"))

	signature := cr.Add("ClientSignature")
	signature.AddText("Date", clean.Date(row.Get("Client Signature - Date"), nil, ""))
	onFile := "No"
	if row.Get("Client Signature(On File)") == "1" {
		onFile = "Yes"
	}
	signature.AddText("OnFile", onFile)
}

// addAddress emits the shared address block used by Part 1 and Part 3.
// ZIP is reduced to its leading 5-digit run; a non-blank value with no such
// run is reported once (from the Part 1 block) and the element is emitted
// empty, never omitted.
func addAddress(ctx *Context, parent *xmltree.Node, tag string, row reader.Row, recordID string, report bool) {
	addr := parent.Add(tag)
	addr.AddText("Street1", row.Get("Mailing Street"))
	addr.AddText("Street2", "")
	addr.AddText("City", row.Get("Mailing City"))
	addr.AddText("State", clean.State(row.Get("Mailing State/Province"), nil, ""))

	zipFull := row.Get("Mailing Zip/Postal Code")
	zip5 := zip5Re.FindString(zipFull)
	if zip5 == "" && zipFull != "" && report {
		ctx.Tracker.Add(recordID, issue.SeverityWarning, issue.InvalidFormat,
			"Mailing Zip/Postal Code",
			fmt.Sprintf("Could not parse 5-digit ZIP from %q.", zipFull))
	}
	addr.AddText("ZipCode", zip5)
	addr.AddText("Zip4Code", "")

	country := addr.Add("Country")
	country.AddText("Code", clean.Country(row.GetOr("US", "Mailing Country")))
}

// -----------------------------------------------------------------------------
// ClientIntake (Part 2)
// -----------------------------------------------------------------------------

func buildClientIntake(ctx *Context, parent *xmltree.Node, row reader.Row, recordID string) error {
	ci := parent.Add("ClientIntake")

	// Race is schema-required with at least one code: an empty multi-value
	// cell defaults to a single "Prefer not to say".
	race := ci.Add("Race")
	raceCodes := clean.SplitMulti(row.Get("Race"), ";")
	if len(raceCodes) > 0 {
		for _, code := range raceCodes {
			race.AddText("Code", code)
		}
	} else {
		race.AddText("Code", "Prefer not to say")
		ctx.Tracker.Add(recordID, issue.SeverityWarning, issue.MissingField,
			"Race", "Race missing, defaulted to 'Prefer not to say'.")
	}

	if v := row.Get("Ethnicity:"); v != "" {
		ci.AddText("Ethnicity", v)
	}
	if sex := clean.GenderToSex(row.Get("Gender")); sex != "" {
		ci.AddText("Sex", sex)
	}
	if v := row.Get("Disability"); v != "" {
		ci.AddText("Disability", v)
	}

	militaryStatus := row.Get("Veteran Status")
	if militaryStatus != "" {
		ci.AddText("MilitaryStatus", militaryStatus)
	}

	// BranchOfService is required whenever MilitaryStatus is anything other
	// than the benign set below.
	benign := func(v string) bool {
		switch strings.ToLower(v) {
		case "", "prefer not to say", "no military service":
			return true
		}
		return false
	}
	if !benign(militaryStatus) {
		branch := row.Get("Branch Of Service")
		if branch != "" && !benign(branch) {
			ci.AddText("BranchOfService", branch)
		} else {
			ctx.Tracker.Add(recordID, issue.SeverityError, issue.MissingRequired,
				"BranchOfService",
				fmt.Sprintf("BranchOfService required for MilitaryStatus %q but is missing/invalid.", militaryStatus))
		}
	}

	mediaCodes := clean.SplitMulti(row.Get("What Prompted you to contact us?"), ";")
	mediaOther := row.Get("Internet (specify)")
	if len(mediaCodes) > 0 || mediaOther != "" {
		media := ci.Add("Media")
		for _, code := range mediaCodes {
			media.AddText("Code", code)
		}
		if mediaOther != "" {
			media.AddText("Other", mediaOther)
		}
	}

	if v := row.Get("InternetUsage"); v != "" {
		ci.AddText("Internet", v)
	}

	inBusiness := row.GetOr(ctx.Cfg.General.BusinessStatus, "Currently In Business?")
	ci.AddText("CurrentlyInBusiness", inBusiness)
	ci.AddText("CurrentlyExporting", row.GetOr(ctx.Cfg.General.BusinessStatus, "Are you currently exporting?(old)"))
	ci.AddText("CompanyName", row.Get("Account Name"))
	ci.AddText("BusinessType", row.Get("Type of Business"))

	ownership := ci.Add("BusinessOwnership")
	female, err := clean.Percentage(row.GetOr("0", "Business Ownership - % Female(old)"))
	if err != nil {
		return fmt.Errorf("business ownership: %w", err)
	}
	ownership.AddText("Female", female)

	ci.AddText("ConductingBusinessOnline", row.GetOr(ctx.Cfg.General.BusinessStatus, "Conduct Business Online?"))
	ci.AddText("ClientIntake_Certified8a", row.GetOr(ctx.Cfg.General.BusinessStatus, "8(a) Certified?(old)"))
	ci.AddText("TotalNumberOfEmployees", clean.Numeric(row.GetOr("0", "Total Number of Employees")))
	ci.AddText("NumberOfEmployeesInExportingBusiness", "0")

	income := ci.Add("ClientAnnualIncomePart2")
	income.AddText("GrossRevenues", clean.Numeric(row.GetOr("0", "Gross Revenues/Sales")))
	income.AddText("ProfitLoss", clean.Numeric(row.GetOr("0", "Profits/Losses")))
	income.AddText("ExportGrossRevenuesOrSales", "0")

	// LegalEntity is required only for clients currently in business. The
	// subtree is still emitted with a defaulted code when the data is
	// missing, keeping structural validity while flagging the gap.
	if strings.EqualFold(inBusiness, "yes") {
		le := ci.Add("LegalEntity")
		leCodes := clean.SplitMulti(row.Get("Legal Entity of Business"), ";")
		leOther := row.Get("Other legal entity (specify)")
		switch {
		case len(leCodes) > 0:
			for _, code := range leCodes {
				le.AddText("Code", code)
			}
		case leOther != "":
			le.AddText("Code", "Other")
		default:
			ctx.Tracker.Add(recordID, issue.SeverityError, issue.MissingRequired,
				"LegalEntity", "Client is in business, but Legal Entity is missing.")
			le.AddText("Code", "Other")
		}
		if leOther != "" {
			le.AddText("Other", leOther)
		}
	}

	ruralUrban := row.GetOr(ctx.Cfg.Counseling.DefaultUrbanRural, "Rural_vs_Urban")
	ci.AddText("Rural_vs_Urban", ruralUrban)

	switch strings.ToLower(ruralUrban) {
	case "rural", "urban":
		if fips := row.Get("FIPS_Code"); fips != "" {
			ci.AddText("FIPS_Code", fips)
		} else {
			ctx.Tracker.Add(recordID, issue.SeverityError, issue.MissingRequired,
				"FIPS_Code",
				fmt.Sprintf("FIPS Code required for Rural/Urban status %q but is missing.", ruralUrban))
		}
	}

	csCodes := clean.SplitMulti(row.Get("Nature of the Counseling Seeking?"), ";")
	csOther := row.Get("Nature of the Counseling Seeking - Other Detail")
	if len(csCodes) > 0 || csOther != "" {
		cs := ci.Add("CounselingSeeking")
		otherPresent := false
		for _, code := range csCodes {
			if strings.EqualFold(code, "other") {
				otherPresent = true
			}
			cs.AddText("Code", code)
		}
		if otherPresent && csOther == "" {
			ctx.Tracker.Add(recordID, issue.SeverityError, issue.MissingRequired,
				"CounselingSeeking/Other", "CounselingSeeking is 'Other' but detail text is missing.")
		}
		cs.AddText("Other", csOther)
	}

	return nil
}

// -----------------------------------------------------------------------------
// CounselorRecord (Part 3)
// -----------------------------------------------------------------------------

func buildCounselorRecord(ctx *Context, parent *xmltree.Node, row reader.Row, recordID string) {
	cfg := ctx.Cfg.Counseling
	rec := parent.Add("CounselorRecord")

	rec.AddText("PartnerSessionNumber", row.Get("Activity ID"))
	rec.AddText("FundingSource", "")

	name := rec.Add("ClientNamePart3")
	name.AddText("Last", row.Get("Last Name"))
	name.AddText("First", row.Get("First Name"))
	name.AddText("Middle", row.Get("Middle Name"))

	rec.AddText("Email", row.Get("Email"))

	phone := rec.Add("PhonePart3")
	phone.AddText("Primary", clean.Phone(row.Get("Contact: Phone")))
	phone.AddText("Secondary", "")

	addAddress(ctx, rec, "AddressPart3", row, recordID, false)

	rec.AddText("VerifiedToBeInBusiness", "Undetermined")
	rec.AddText("ReportableImpact", row.GetOr(ctx.Cfg.General.BusinessStatus, "Reportable Impact"))
	rec.AddText("DateOfReportableImpact", clean.Date(row.Get("Reportable Impact Date"), nil, ""))
	rec.AddText("CurrentlyExporting", ctx.Cfg.General.BusinessStatus)

	startDate := clean.Date(row.Get("Business Start Date"), nil, "")
	if startDate == "" {
		startDate = clean.Date(row.Get("Date Started (Meeting)"), nil, "")
	}
	if startDate != "" {
		rec.AddText("BusinessStartDatePart3", startDate)
	}

	// Meeting-level figures override the intake-level ones when present.
	rec.AddText("TotalNumberOfEmployees",
		clean.Numeric(row.GetOr("0", "Total No. of Employees (Meeting)", "Total Number of Employees")))
	rec.AddText("NumberOfEmployeesInExportingBusiness", "0")

	income := rec.Add("ClientAnnualIncomePart3")
	income.AddText("GrossRevenues",
		clean.Numeric(row.GetOr("0", "Gross Revenues/Sales (Meeting)", "Gross Revenues/Sales")))
	income.AddText("ProfitLoss",
		clean.Numeric(row.GetOr("0", "Profit & Loss (Meeting)", "Profits/Losses")))
	income.AddText("ExportGrossRevenuesOrSales", "0")
	income.AddText("GrowthIndicator", "")

	provided := rec.Add("CounselingProvided")
	for _, code := range clean.SplitMulti(row.GetOr("Business Start-up/Preplanning", "Services Provided"), ";") {
		provided.AddText("Code", code)
	}

	sessionType := resolveSessionType(ctx, row, recordID)
	rec.AddText("SessionType", sessionType)

	lang := rec.Add("Language")
	for _, code := range clean.SplitMulti(row.GetOr(ctx.Cfg.General.Language, "Language(s) Used"), ";") {
		lang.AddText("Code", code)
	}
	lang.AddText("Other", row.Get("Language(s) Used (Other)"))

	rec.AddText("DateCounseled", clean.Date(row.Get("Date"), nil, ""))
	rec.AddText("CounselorName", row.Get("Name of Counselor"))

	hours := rec.Add("CounselingHours")
	hours.AddText("Contact", contactHours(ctx, row, sessionType))
	hours.AddText("Prepare", clean.Numeric(row.GetOr("0", "Prep Hours")))
	hours.AddText("Travel", clean.Numeric(row.GetOr("0", "Travel Hours")))

	// A YAML override can replace the length map without this key; a zero
	// limit would blank every note.
	maxNotes := cfg.MaxFieldLengths["CounselorNotes"]
	if maxNotes <= 0 {
		maxNotes = defaultMaxCounselorNotes
	}
	rawNotes := row.Get("Comments")
	notes := clean.Truncate(rawNotes, maxNotes)
	if cleaned := clean.Whitespace(rawNotes); len(cleaned) > len(notes) {
		ctx.Tracker.Add(recordID, issue.SeverityWarning, issue.TruncatedValue,
			"CounselorNotes",
			fmt.Sprintf("Counselor notes truncated from %d to %d characters.", len(cleaned), len(notes)))
	}
	rec.AddText("CounselorNotes", notes)

	rec.AddText("SBALoanAmount", clean.Numeric(row.GetOr("0", "SBA Loan Amount")))
	rec.AddText("NonSBALoanAmount", clean.Numeric(row.GetOr("0", "Non-SBA Loan Amount")))
	rec.AddText("EquityCapitalReceived", clean.Numeric(row.GetOr("0", "Amount of Equity Capital Received")))
}

// resolveSessionType normalizes the raw session type: "Update" is the
// legacy spelling of "Update Only", and anything outside the schema
// enumeration degrades to the configured default with a warning.
func resolveSessionType(ctx *Context, row reader.Row, recordID string) string {
	cfg := ctx.Cfg.Counseling
	raw := row.GetOr(cfg.DefaultSessionType, "Type of Session")

	sessionType := raw
	if raw == "Update" {
		sessionType = "Update Only"
	}
	for _, valid := range cfg.ValidSessionTypes {
		if sessionType == valid {
			return sessionType
		}
	}
	ctx.Tracker.Add(recordID, issue.SeverityWarning, issue.InvalidValue,
		"SessionType", fmt.Sprintf("Invalid session type %q, defaulted.", raw))
	return cfg.DefaultSessionType
}

// contactHours applies the schema business rule: sessions with client
// contact must report positive contact hours, floored at the configured
// minimum rather than left at zero.
func contactHours(ctx *Context, row reader.Row, sessionType string) string {
	cfg := ctx.Cfg.Counseling
	contact := clean.Numeric(row.GetOr("0", "Duration (hours)"))

	for _, t := range cfg.NoContactHourSessionTypes {
		if sessionType == t {
			return contact
		}
	}
	v, err := strconv.ParseFloat(contact, 64)
	if contact == "" || err != nil || v <= 0 {
		return cfg.MinContactHours
	}
	return contact
}
