package convert

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbciowa/sba-converter/internal/config"
	"github.com/wbciowa/sba-converter/internal/issue"
	"github.com/wbciowa/sba-converter/internal/xmltree"
)

func writeCSVFile(t *testing.T, headers []string, rows ...[]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.Write(headers))
	for _, r := range rows {
		require.NoError(t, w.Write(r))
	}
	w.Flush()
	require.NoError(t, w.Error())
	require.NoError(t, f.Close())
	return path
}

func runReport(t *testing.T, c *Converter, headers []string, rows ...[]string) (*Run, *xmltree.Node) {
	t.Helper()
	in := writeCSVFile(t, headers, rows...)
	out := filepath.Join(t.TempDir(), "out.xml")
	run, err := c.Convert(in, out)
	require.NoError(t, err)
	root, err := xmltree.ParseFile(out)
	require.NoError(t, err)
	return run, root
}

func issuesBy(tr *issue.Tracker, cat issue.Category) []issue.Issue {
	var out []issue.Issue
	for _, is := range tr.Issues() {
		if is.Category == cat {
			out = append(out, is)
		}
	}
	return out
}

// row builds a reader-shaped CSV row from a header list and a value map,
// so tests only spell out the fields they care about.
func row(headers []string, values map[string]string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = values[h]
	}
	return out
}

var counselingHeaders = []string{
	"Contact ID", "Last Name", "First Name", "Email", "Contact: Phone",
	"Mailing Street", "Mailing City", "Mailing State/Province",
	"Mailing Zip/Postal Code", "Race", "Gender", "Currently In Business?",
	"Type of Session", "Duration (hours)", "Date", "Comments",
	"Veteran Status", "Branch Of Service", "Legal Entity of Business",
	"Rural_vs_Urban", "FIPS_Code",
}

func baseCounselingRow(overrides map[string]string) []string {
	values := map[string]string{
		"Contact ID":              "C-001",
		"Last Name":               "Smith",
		"First Name":              "Jane",
		"Email":                   "jane@example.com",
		"Contact: Phone":          "(515) 555-7890",
		"Mailing Street":          "100 Main St",
		"Mailing City":            "Des Moines",
		"Mailing State/Province":  "IA",
		"Mailing Zip/Postal Code": "50312-1234",
		"Race":                    "White",
		"Gender":                  "Female",
		"Type of Session":         "Telephone",
		"Duration (hours)":        "1.5",
		"Date":                    "2024-02-10",
	}
	for k, v := range overrides {
		values[k] = v
	}
	return row(counselingHeaders, values)
}

func counselingRecord(t *testing.T, root *xmltree.Node) *xmltree.Node {
	t.Helper()
	rec := root.Find("CounselingRecord")
	require.NotNil(t, rec)
	return rec
}

func TestConvertCounseling(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	run, root := runReport(t, c, counselingHeaders, baseCounselingRow(nil))

	assert.Equal(t, 1, run.Attempted)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, 0, run.Skipped)
	assert.Equal(t, "CounselingInformation", root.Tag)

	rec := counselingRecord(t, root)
	assert.Equal(t, "C-001", rec.Find("PartnerClientNumber").Text)
	assert.Equal(t, "249003", rec.Find("Location").Find("LocationCode").Text)

	cr := rec.Find("ClientRequest")
	require.NotNil(t, cr)
	assert.Equal(t, "Smith", cr.Find("ClientNamePart1").Find("Last").Text)
	assert.Equal(t, "5155557890", cr.Find("PhonePart1").Find("Primary").Text)
	assert.Equal(t, "No", cr.Find("SurveyAgreement").Text)

	addr := cr.Find("AddressPart1")
	require.NotNil(t, addr)
	assert.Equal(t, "Iowa", addr.Find("State").Text)
	assert.Equal(t, "50312", addr.Find("ZipCode").Text)
	assert.Equal(t, "United States", addr.Find("Country").Find("Code").Text)

	ci := rec.Find("ClientIntake")
	require.NotNil(t, ci)
	assert.Equal(t, "White", ci.Find("Race").Find("Code").Text)
	assert.Equal(t, "Female", ci.Find("Sex").Text)
	assert.Equal(t, "No", ci.Find("CurrentlyInBusiness").Text)

	counselor := rec.Find("CounselorRecord")
	require.NotNil(t, counselor)
	assert.Equal(t, "Telephone", counselor.Find("SessionType").Text)
	assert.Equal(t, "1.5", counselor.Find("CounselingHours").Find("Contact").Text)
	assert.Equal(t, "2024-02-10", counselor.Find("DateCounseled").Text)
}

func TestConvertCounselingMissingContactID(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	run, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(nil),
		baseCounselingRow(map[string]string{"Contact ID": ""}),
	)

	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 1, run.Attempted)
	assert.Len(t, root.FindAll("CounselingRecord"), 1)

	missing := issuesBy(c.Tracker(), issue.MissingRequired)
	require.Len(t, missing, 1)
	assert.Equal(t, "Row_2", missing[0].RecordID)
	assert.Equal(t, issue.SeverityError, missing[0].Severity)
}

func TestContactHoursFloor(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Contact ID": "C-001", "Duration (hours)": "0"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-002", "Duration (hours)": "0", "Type of Session": "Prepare Only"}),
	)

	recs := root.FindAll("CounselingRecord")
	require.Len(t, recs, 2)
	// Telephone sessions involve client contact, so zero hours is floored.
	assert.Equal(t, "0.5", recs[0].Find("CounselorRecord").Find("CounselingHours").Find("Contact").Text)
	// Prepare Only legitimately carries zero contact hours.
	assert.Equal(t, "0", recs[1].Find("CounselorRecord").Find("CounselingHours").Find("Contact").Text)
}

func TestSessionTypeNormalization(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Contact ID": "C-001", "Type of Session": "Update"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-002", "Type of Session": "Carrier Pigeon"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-003", "Type of Session": ""}),
	)

	recs := root.FindAll("CounselingRecord")
	require.Len(t, recs, 3)
	assert.Equal(t, "Update Only", recs[0].Find("CounselorRecord").Find("SessionType").Text)
	assert.Equal(t, "Telephone", recs[1].Find("CounselorRecord").Find("SessionType").Text)
	assert.Equal(t, "Telephone", recs[2].Find("CounselorRecord").Find("SessionType").Text)

	invalid := issuesBy(c.Tracker(), issue.InvalidValue)
	require.Len(t, invalid, 1)
	assert.Equal(t, "C-002", invalid[0].RecordID)
	assert.Equal(t, "SessionType", invalid[0].Field)
}

func TestRaceDefault(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Race": ""}),
	)

	race := counselingRecord(t, root).Find("ClientIntake").Find("Race")
	require.NotNil(t, race)
	assert.Equal(t, "Prefer not to say", race.Find("Code").Text)

	missing := issuesBy(c.Tracker(), issue.MissingField)
	require.Len(t, missing, 1)
	assert.Equal(t, "Race", missing[0].Field)
	assert.Equal(t, issue.SeverityWarning, missing[0].Severity)
}

func TestRaceMultiValue(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Race": "White; Asian"}),
	)

	codes := counselingRecord(t, root).Find("ClientIntake").Find("Race").FindAll("Code")
	require.Len(t, codes, 2)
	assert.Equal(t, "White", codes[0].Text)
	assert.Equal(t, "Asian", codes[1].Text)
}

func TestBranchOfServiceConditional(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Contact ID": "C-001", "Veteran Status": "Veteran"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-002", "Veteran Status": "Veteran", "Branch Of Service": "Army"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-003", "Veteran Status": "No military service"}),
	)

	recs := root.FindAll("CounselingRecord")
	require.Len(t, recs, 3)

	// Missing branch: flagged but the record is still emitted.
	ci := recs[0].Find("ClientIntake")
	assert.Equal(t, "Veteran", ci.Find("MilitaryStatus").Text)
	assert.Nil(t, ci.Find("BranchOfService"))

	assert.Equal(t, "Army", recs[1].Find("ClientIntake").Find("BranchOfService").Text)
	assert.Nil(t, recs[2].Find("ClientIntake").Find("BranchOfService"))

	missing := issuesBy(c.Tracker(), issue.MissingRequired)
	require.Len(t, missing, 1)
	assert.Equal(t, "C-001", missing[0].RecordID)
	assert.Equal(t, "BranchOfService", missing[0].Field)
}

func TestLegalEntityConditional(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Contact ID": "C-001", "Currently In Business?": "Yes"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-002", "Currently In Business?": "Yes", "Legal Entity of Business": "LLC"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-003", "Currently In Business?": "No"}),
	)

	recs := root.FindAll("CounselingRecord")
	require.Len(t, recs, 3)

	// In business with no entity data: defaulted code plus an error flag.
	le := recs[0].Find("ClientIntake").Find("LegalEntity")
	require.NotNil(t, le)
	assert.Equal(t, "Other", le.Find("Code").Text)

	assert.Equal(t, "LLC", recs[1].Find("ClientIntake").Find("LegalEntity").Find("Code").Text)
	assert.Nil(t, recs[2].Find("ClientIntake").Find("LegalEntity"))

	missing := issuesBy(c.Tracker(), issue.MissingRequired)
	require.Len(t, missing, 1)
	assert.Equal(t, "C-001", missing[0].RecordID)
	assert.Equal(t, "LegalEntity", missing[0].Field)
}

func TestFIPSCodeConditional(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Contact ID": "C-001", "Rural_vs_Urban": "Rural"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-002", "Rural_vs_Urban": "Urban", "FIPS_Code": "19153"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-003"}),
	)

	recs := root.FindAll("CounselingRecord")
	require.Len(t, recs, 3)
	assert.Nil(t, recs[0].Find("ClientIntake").Find("FIPS_Code"))
	assert.Equal(t, "19153", recs[1].Find("ClientIntake").Find("FIPS_Code").Text)
	// Undetermined status needs no FIPS code.
	assert.Equal(t, "Undetermined", recs[2].Find("ClientIntake").Find("Rural_vs_Urban").Text)

	missing := issuesBy(c.Tracker(), issue.MissingRequired)
	require.Len(t, missing, 1)
	assert.Equal(t, "C-001", missing[0].RecordID)
	assert.Equal(t, "FIPS_Code", missing[0].Field)
}

func TestZipWarning(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Mailing Zip/Postal Code": "ABC"}),
	)

	addr := counselingRecord(t, root).Find("ClientRequest").Find("AddressPart1")
	require.NotNil(t, addr.Find("ZipCode"))
	assert.Equal(t, "", addr.Find("ZipCode").Text)

	// One warning even though the address block is built for Part 1 and
	// Part 3.
	invalid := issuesBy(c.Tracker(), issue.InvalidFormat)
	require.Len(t, invalid, 1)
	assert.Equal(t, "Mailing Zip/Postal Code", invalid[0].Field)
}

func TestCounselingDateWarnings(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Contact ID": "C-001", "Date": "2023-01-15"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-002", "Date": "13/45/2024"}),
	)

	stale := issuesBy(c.Tracker(), issue.InvalidDate)
	require.Len(t, stale, 1)
	assert.Equal(t, "C-001", stale[0].RecordID)

	malformed := issuesBy(c.Tracker(), issue.InvalidFormat)
	require.Len(t, malformed, 1)
	assert.Equal(t, "C-002", malformed[0].RecordID)
}

func TestMalformedEmailWarning(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Contact ID": "C-001", "Email": "jane.example.com"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-002", "Email": "pat@example.com"}),
		baseCounselingRow(map[string]string{"Contact ID": "C-003", "Email": ""}),
	)

	// Advisory only: the record is still emitted with the raw value.
	recs := root.FindAll("CounselingRecord")
	require.Len(t, recs, 3)
	assert.Equal(t, "jane.example.com", recs[0].Find("ClientRequest").Find("Email").Text)

	invalid := issuesBy(c.Tracker(), issue.InvalidFormat)
	require.Len(t, invalid, 1)
	assert.Equal(t, "C-001", invalid[0].RecordID)
	assert.Equal(t, "Email", invalid[0].Field)
	assert.Equal(t, issue.SeverityWarning, invalid[0].Severity)
}

func TestCounselorNotesTruncation(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	long := strings.Repeat("progress on the marketing plan ", 60)
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Comments": long}),
	)

	notes := counselingRecord(t, root).Find("CounselorRecord").Find("CounselorNotes")
	require.NotNil(t, notes)
	assert.LessOrEqual(t, len(notes.Text), 1000)

	truncated := issuesBy(c.Tracker(), issue.TruncatedValue)
	require.Len(t, truncated, 1)
	assert.Equal(t, "CounselorNotes", truncated[0].Field)
}

func TestCounselorNotesSurviveOverriddenLengths(t *testing.T) {
	// An override that replaces the length map without the notes key must
	// not collapse every note to a zero limit.
	cfg := config.Default()
	cfg.Counseling.MaxFieldLengths = map[string]int{"Last": 40}

	c := NewCounseling(cfg, zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{"Comments": "Client revised the business plan."}),
	)

	notes := counselingRecord(t, root).Find("CounselorRecord").Find("CounselorNotes")
	require.NotNil(t, notes)
	assert.Equal(t, "Client revised the business plan.", notes.Text)
	assert.Empty(t, issuesBy(c.Tracker(), issue.TruncatedValue))
}

func TestCorruptPercentageFailsOnlyThatRecord(t *testing.T) {
	headers := append([]string{}, counselingHeaders...)
	headers = append(headers, "Business Ownership - % Female(old)")

	good := append(baseCounselingRow(map[string]string{"Contact ID": "C-001"}), "50")
	bad := append(baseCounselingRow(map[string]string{"Contact ID": "C-002"}), "abc")

	c := NewCounseling(config.Default(), zerolog.Nop())
	run, root := runReport(t, c, headers, good, bad)

	assert.Equal(t, 2, run.Attempted)
	assert.Equal(t, 1, run.Succeeded)

	// The failed record leaves no partial subtree behind.
	recs := root.FindAll("CounselingRecord")
	require.Len(t, recs, 1)
	assert.Equal(t, "C-001", recs[0].Find("PartnerClientNumber").Text)
	assert.Equal(t, "50", recs[0].Find("ClientIntake").Find("BusinessOwnership").Find("Female").Text)

	procErrs := issuesBy(c.Tracker(), issue.ProcessingError)
	require.Len(t, procErrs, 1)
	assert.Equal(t, "C-002", procErrs[0].RecordID)
}

func TestClientIntakeChildOrder(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, root := runReport(t, c, counselingHeaders,
		baseCounselingRow(map[string]string{
			"Currently In Business?":   "Yes",
			"Legal Entity of Business": "LLC",
			"Veteran Status":           "Veteran",
			"Branch Of Service":        "Navy",
			"Rural_vs_Urban":           "Urban",
			"FIPS_Code":                "19153",
		}),
	)

	ci := counselingRecord(t, root).Find("ClientIntake")
	var tags []string
	for _, child := range ci.Children {
		tags = append(tags, child.Tag)
	}
	assert.Equal(t, []string{
		"Race", "Sex", "MilitaryStatus", "BranchOfService",
		"CurrentlyInBusiness", "CurrentlyExporting", "CompanyName",
		"BusinessType", "BusinessOwnership", "ConductingBusinessOnline",
		"ClientIntake_Certified8a", "TotalNumberOfEmployees",
		"NumberOfEmployeesInExportingBusiness", "ClientAnnualIncomePart2",
		"LegalEntity", "Rural_vs_Urban", "FIPS_Code",
	}, tags)
}

func TestCounselingEmptyInput(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	run, root := runReport(t, c, counselingHeaders)

	assert.Equal(t, 0, run.Attempted)
	assert.Empty(t, root.FindAll("CounselingRecord"))
}

func TestConvertMissingInputFile(t *testing.T) {
	c := NewCounseling(config.Default(), zerolog.Nop())
	_, err := c.Convert(filepath.Join(t.TempDir(), "nope.csv"), filepath.Join(t.TempDir(), "out.xml"))
	require.Error(t, err)

	access := issuesBy(c.Tracker(), issue.FileAccess)
	require.Len(t, access, 1)
}
