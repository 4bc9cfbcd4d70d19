// =============================================================================
// SBA Report Converter - Management Training Report Builders
// =============================================================================
//
// Section builders for the training report. Rows sharing a Class/Event ID
// form one group and produce one ManagementTrainingRecord; attendee
// demographics are counted across the group by case-insensitive keyword
// matching against free-text CRM fields.
//
// Column names have drifted across CRM export revisions, so every field is
// resolved through the ordered synonym chains in config.TrainingColumns.
//
// =============================================================================

package convert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wbciowa/sba-converter/internal/clean"
	"github.com/wbciowa/sba-converter/internal/config"
	"github.com/wbciowa/sba-converter/internal/issue"
	"github.com/wbciowa/sba-converter/internal/mapping"
	"github.com/wbciowa/sba-converter/internal/reader"
	"github.com/wbciowa/sba-converter/internal/xmltree"
)

var zip5AnywhereRe = regexp.MustCompile(`\d{5}`)

// TrainingSpec returns the declarative description of the Management
// Training Report: one record per event group under
// ManagementTrainingReport.
func TrainingSpec() ReportSpec {
	return ReportSpec{
		Name:    "training",
		RootTag: "ManagementTrainingReport",
		RootAttrs: []xmltree.Attr{
			{Name: "xmlns:xsi", Value: "http://www.w3.org/2001/XMLSchema-instance"},
		},
		Collect: collectTraining,
		Build:   buildTrainingRecord,
	}
}

// collectTraining groups valid rows by event ID in first-appearance order.
// Rows without an event ID are excluded from grouping entirely.
func collectTraining(ctx *Context, t *reader.Table) ([]Record, int) {
	var order []string
	groups := make(map[string]*Record)
	skipped := 0

	for i, row := range t.Rows {
		rowIndex := i + 1
		if !validateTrainingRecord(ctx, row, rowIndex) {
			skipped++
			continue
		}
		eventID := row.Get(ctx.Cfg.Training.RequiredField)
		rec, ok := groups[eventID]
		if !ok {
			rec = &Record{ID: eventID, Index: rowIndex}
			groups[eventID] = rec
			order = append(order, eventID)
		}
		rec.Rows = append(rec.Rows, row)
	}

	records := make([]Record, 0, len(order))
	for _, id := range order {
		records = append(records, *groups[id])
	}
	ctx.Log.Info().Int("events", len(records)).Msg("grouped training events")
	return records, skipped
}

// trainingField resolves a logical field against the synonym chain for key.
func trainingField(row reader.Row, key string) string {
	return row.Get(config.TrainingColumns[key]...)
}

func buildTrainingRecord(ctx *Context, root *xmltree.Node, rec Record) error {
	cfg := ctx.Cfg.Training
	first := rec.First()

	record := root.Add("ManagementTrainingRecord")
	record.AddText("PartnerTrainingNumber", rec.ID)

	location := record.Add("Location")
	location.AddText("LocationCode", ctx.Cfg.General.LocationCode)

	record.AddText("DateTrainingStarted",
		clean.Date(trainingField(first, "start_date"), cfg.DateFormats, cfg.DefaultStartDate))
	record.AddText("NumberOfSessions", cfg.DefaultSessions)
	record.AddText("TotalTrainingHours", cfg.DefaultHours)

	title := trainingField(first, "event_name")
	if title == "" {
		title = cfg.DefaultEventTitlePrefix + rec.ID
	}
	record.AddText("TrainingTitle", title)

	buildTrainingLocation(ctx, record, first, rec.ID)

	demo := calculateDemographics(ctx, rec.Rows)
	buildDemographics(record, demo)

	topic := record.Add("TrainingTopic")
	topic.AddText("Code", mapEnum(ctx, rec.ID, "TrainingTopic",
		trainingField(first, "training_topic"), config.TrainingTopics, cfg.DefaultTopic))

	partners := record.Add("TrainingPartners")
	partners.AddText("Code", cfg.DefaultPartnerCode)

	record.AddText("ProgramFormatType", mapEnum(ctx, rec.ID, "ProgramFormatType",
		trainingField(first, "event_type"), config.ProgramFormats, cfg.DefaultProgramFormat))

	record.AddText("DollarAmountOfFees", cfg.DefaultFees)

	lang := record.Add("Language")
	lang.AddText("Code", ctx.Cfg.General.Language)

	if cosponsor := trainingField(first, "cosponsor"); cosponsor != "" && !strings.EqualFold(cosponsor, "n/a") {
		record.AddText("CosponsorsName", cosponsor)
	}

	return nil
}

// mapEnum folds a free-text value into a schema enumeration. An unmatched
// non-blank value degrades to def and leaves an informational note, so the
// report shows which source values were standardized away.
func mapEnum(ctx *Context, recordID, field, raw string, table mapping.Table, def string) string {
	mapped := mapping.Map(raw, table, "")
	if mapped != "" {
		return mapped
	}
	if !clean.IsBlank(raw) {
		ctx.Tracker.Add(recordID, issue.SeverityInfo, issue.StandardizedValue, field,
			fmt.Sprintf("Value %q not in the %s enumeration, defaulted to %q.", raw, field, def))
	}
	return def
}

// buildTrainingLocation resolves city, state and zip through their synonym
// chains. If the triple cannot be fully resolved, the whole location falls
// back to the configured default rather than mixing real and default parts.
func buildTrainingLocation(ctx *Context, parent *xmltree.Node, row reader.Row, recordID string) {
	cfg := ctx.Cfg.Training
	loc := parent.Add("TrainingLocation")

	city := trainingField(row, "city")
	state := trainingField(row, "state")
	zip := zip5AnywhereRe.FindString(trainingField(row, "zip"))

	if city == "" || state == "" || zip == "" {
		ctx.Log.Info().Str("event", recordID).Msg("using default location")
		city = cfg.DefaultLocation.City
		state = cfg.DefaultLocation.State
		zip = cfg.DefaultLocation.Zip
	}

	loc.AddText("City", city)
	loc.AddText("State", clean.State(state, nil, ""))
	loc.AddText("ZipCode", zip)
	country := loc.Add("Country")
	country.AddText("Code", cfg.DefaultLocation.Country)
}

// -----------------------------------------------------------------------------
// Demographics
// -----------------------------------------------------------------------------

// raceBucketOrder fixes the emission order of race sub-elements; Go map
// iteration would otherwise shuffle them between runs.
var raceBucketOrder = []string{
	"asian", "black", "native_american", "pacific_islander",
	"white", "middle_eastern", "north_african",
}

var raceBucketTags = map[string]string{
	"asian":            "Asian",
	"black":            "BlackOrAfricanAmerican",
	"native_american":  "NativeAmericanOrAlaskaNative",
	"pacific_islander": "NativeHawaiianOrPacificIslander",
	"white":            "White",
	"middle_eastern":   "MiddleEastern",
	"north_african":    "NorthAfrican",
}

type demographics struct {
	Total int

	HasBusinessStatus bool
	InBusiness        int
	NotInBusiness     int

	Female                  int
	Male                    int
	Disabilities            int
	ActiveDuty              int
	Veterans                int
	ServiceDisabledVeterans int
	ReserveGuard            int
	MilitarySpouse          int

	Race map[string]int

	Hispanic    int
	NonHispanic int

	// Minorities sums every non-white race bucket plus the Hispanic
	// ethnicity bucket. An attendee matching both is counted twice; the
	// submission portal has accepted such totals so far.
	Minorities int
}

// matchesKeywords reports whether a lowercased cell matches any keyword.
// Single-character keywords ("f", "m", "y") match only the whole cell;
// longer keywords match as substrings.
func matchesKeywords(cell string, keywords []string) bool {
	for _, kw := range keywords {
		if len(kw) == 1 {
			if cell == kw {
				return true
			}
		} else if strings.Contains(cell, kw) {
			return true
		}
	}
	return false
}

func countMatches(rows []reader.Row, columnKey string, keywords []string) int {
	n := 0
	for _, row := range rows {
		cell := strings.ToLower(trainingField(row, columnKey))
		if cell != "" && matchesKeywords(cell, keywords) {
			n++
		}
	}
	return n
}

func rowHasAnyColumn(row reader.Row, columns []string) bool {
	for _, col := range columns {
		if _, ok := row[col]; ok {
			return true
		}
	}
	return false
}

func calculateDemographics(ctx *Context, rows []reader.Row) demographics {
	kw := config.DemographicKeywords
	d := demographics{Race: make(map[string]int)}

	// The schema rejects totals below the configured minimum, so the total
	// is floored regardless of actual group size.
	d.Total = len(rows)
	if d.Total < ctx.Cfg.Training.MinTotalTrained {
		d.Total = ctx.Cfg.Training.MinTotalTrained
	}

	if len(rows) > 0 && rowHasAnyColumn(rows[0], config.TrainingColumns["business_status"]) {
		d.HasBusinessStatus = true
		d.InBusiness = countMatches(rows, "business_status", kw.InYes)
		d.NotInBusiness = len(rows) - d.InBusiness
	}

	d.Female = countMatches(rows, "gender", kw.Gender["female"])
	// A cell matching a female keyword must not also count as male:
	// "female" contains "male" as a substring.
	for _, row := range rows {
		cell := strings.ToLower(trainingField(row, "gender"))
		if cell != "" && matchesKeywords(cell, kw.Gender["male"]) && !matchesKeywords(cell, kw.Gender["female"]) {
			d.Male++
		}
	}

	d.Disabilities = countMatches(rows, "disability", kw.InYes)
	d.ActiveDuty = countMatches(rows, "military_status", kw.Military["active_duty"])
	d.Veterans = countMatches(rows, "military_status", kw.Military["veteran"])
	d.ServiceDisabledVeterans = countMatches(rows, "military_status", kw.Military["service_disabled_veteran"])
	d.ReserveGuard = countMatches(rows, "military_status", kw.Military["reserve_guard"])
	d.MilitarySpouse = countMatches(rows, "military_status", kw.Military["spouse"])

	for _, bucket := range raceBucketOrder {
		d.Race[bucket] = countMatches(rows, "race", kw.Race[bucket])
	}

	d.Hispanic = countMatches(rows, "ethnicity", kw.Ethnicity["hispanic"])
	for _, row := range rows {
		cell := strings.ToLower(trainingField(row, "ethnicity"))
		if cell != "" && !matchesKeywords(cell, kw.Ethnicity["hispanic"]) {
			d.NonHispanic++
		}
	}

	for bucket, n := range d.Race {
		if bucket != "white" {
			d.Minorities += n
		}
	}
	d.Minorities += d.Hispanic

	return d
}

// buildDemographics emits NumberTrained and, when any underserved
// attendees were counted, NumberUnderservedTrained. Every bucket element
// appears only when its count is positive; Total always appears.
func buildDemographics(parent *xmltree.Node, d demographics) {
	nt := parent.Add("NumberTrained")
	nt.AddText("Total", fmt.Sprintf("%d", d.Total))

	addCount := func(tag string, n int) {
		if n > 0 {
			nt.AddText(tag, fmt.Sprintf("%d", n))
		}
	}
	addCount("CurrentlyInBusiness", d.InBusiness)
	addCount("NotYetInBusiness", d.NotInBusiness)
	addCount("PersonWithDisabilities", d.Disabilities)
	addCount("Female", d.Female)
	addCount("Male", d.Male)
	addCount("ActiveDuty", d.ActiveDuty)
	addCount("Veterans", d.Veterans)
	addCount("ServiceDisabledVeterans", d.ServiceDisabledVeterans)
	addCount("MemberOfReserveOrNationalGuard", d.ReserveGuard)
	addCount("SpouseOfMilitaryMember", d.MilitarySpouse)

	anyRace := false
	for _, n := range d.Race {
		if n > 0 {
			anyRace = true
			break
		}
	}
	if anyRace {
		race := nt.Add("Race")
		for _, bucket := range raceBucketOrder {
			if n := d.Race[bucket]; n > 0 {
				race.AddText(raceBucketTags[bucket], fmt.Sprintf("%d", n))
			}
		}
	}

	if d.Hispanic > 0 || d.NonHispanic > 0 {
		eth := nt.Add("Ethnicity")
		if d.Hispanic > 0 {
			eth.AddText("HispanicOrLatinoOrigin", fmt.Sprintf("%d", d.Hispanic))
		}
		if d.NonHispanic > 0 {
			eth.AddText("NonHispanicOrLatinoOrigin", fmt.Sprintf("%d", d.NonHispanic))
		}
	}

	if d.Minorities > 0 {
		underserved := parent.Add("NumberUnderservedTrained")
		underserved.AddText("Total", fmt.Sprintf("%d", d.Minorities))
	}
}
