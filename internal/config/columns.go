package config

// TrainingColumns maps each logical training field to the ordered list of
// CSV headers that may carry it. The CRM has renamed columns across export
// revisions; builders resolve a field by trying each header in order, so
// new variants are added here rather than in builder code.
var TrainingColumns = map[string][]string{
	"event_id":       {"Class/Event ID"},
	"event_name":     {"Class/Event Name"},
	"start_date":     {"Start Date"},
	"funding_source": {"Funding Source"},
	"training_topic": {"Training Topic"},
	"event_type":     {"Class/Event Type"},
	"cosponsor":      {"Cosponsor", "CosponsorsName", "Partner Organization"},

	"city":  {"City", "city", "Address", "Street Line 1"},
	"state": {"State/Province", "State", "state"},
	"zip":   {"Zip/Postal Code", "Zip", "zip", "ZipCode", "Zip code"},

	"business_status": {"Currently in Business?", "Currently in Business", "In Business"},
	"gender":          {"Gender", "gender", "Sex"},
	"disability":      {"Disabilities", "Disability", "Has Disability"},
	"military_status": {"Military Status", "Military", "Veteran Status"},
	"race":            {"Race", "race", "Racial Background"},
	"ethnicity":       {"Ethnicity", "ethnicity", "Ethnic Background"},
}

// DemographicKeywords drives the per-group attendee counts: a row counts
// toward a bucket when the relevant cell contains any of the bucket's
// keywords (case-insensitive substring).
var DemographicKeywords = struct {
	Gender    map[string][]string
	Military  map[string][]string
	Race      map[string][]string
	Ethnicity map[string][]string
	InYes     []string
}{
	Gender: map[string][]string{
		"female": {"female", "f", "woman", "women"},
		"male":   {"male", "m", "man", "men"},
	},
	Military: map[string][]string{
		"active_duty":              {"active duty", "active-duty"},
		"veteran":                  {"veteran"},
		"service_disabled_veteran": {"service disabled", "disabled vet"},
		"reserve_guard":            {"reserve", "guard"},
		"spouse":                   {"spouse"},
	},
	Race: map[string][]string{
		"asian":            {"asian"},
		"black":            {"black", "african american"},
		"native_american":  {"american indian", "alaska native", "native american"},
		"pacific_islander": {"hawaiian", "pacific islander"},
		"white":            {"white", "caucasian"},
		"middle_eastern":   {"middle east"},
		"north_african":    {"north africa"},
	},
	Ethnicity: map[string][]string{
		"hispanic": {"hispanic", "latino"},
	},
	InYes: []string{"yes", "true", "1", "y"},
}
