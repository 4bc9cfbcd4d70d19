package clean

import "strings"

// stateNames maps USPS abbreviations to the full names the schema requires.
var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
	"AS": "American Samoa", "GU": "Guam", "MP": "Northern Mariana Islands",
	"PR": "Puerto Rico", "VI": "U.S. Virgin Islands",
}

// extraStateNames covers schema-legal names that have no USPS abbreviation
// in the table above.
var extraStateNames = []string{
	"Armed Forces Europe", "Armed Forces Pacific", "Armed Forces the Americas",
	"Federated States of Micronesia", "Marshall Islands", "Republic of Palau",
	"United States Minor Outlying Islands",
}

var countryNames = map[string]string{
	"US": "United States", "USA": "United States", "U.S.": "United States",
	"U.S.A.": "United States", "UNITED STATES": "United States",
	"UNITED STATES OF AMERICA": "United States", "AMERICA": "United States",
	"CA": "Canada", "CAN": "Canada",
	"MX": "Mexico", "MEX": "Mexico",
	"UK": "United Kingdom", "GB": "United Kingdom", "GBR": "United Kingdom",
	"GREAT BRITAIN": "United Kingdom", "ENGLAND": "United Kingdom",
}

// State standardizes a state code or name to its canonical full name.
//
// Resolution order: USPS abbreviation, canonical full-name match
// (case-insensitive), then a match against validStates when supplied. With
// no validStates an unknown value passes through unchanged; with
// validStates an unknown or out-of-list value becomes def. Blank input
// always returns def.
func State(raw string, validStates []string, def string) string {
	if IsBlank(raw) {
		return def
	}
	s := strings.TrimSpace(raw)

	name := ""
	if full, ok := stateNames[strings.ToUpper(s)]; ok {
		name = full
	} else {
		for _, full := range stateNames {
			if strings.EqualFold(s, full) {
				name = full
				break
			}
		}
	}
	if name == "" {
		candidates := validStates
		if candidates == nil {
			candidates = extraStateNames
		}
		for _, v := range candidates {
			if strings.EqualFold(s, v) {
				name = v
				break
			}
		}
	}
	if name == "" {
		name = s
	}

	if validStates != nil {
		for _, v := range validStates {
			if strings.EqualFold(name, v) {
				return v
			}
		}
		return def
	}
	return name
}

// Country standardizes a country code or name. Blank input defaults to
// "United States"; unrecognized values pass through unchanged.
func Country(raw string) string {
	if IsBlank(raw) {
		return "United States"
	}
	s := strings.TrimSpace(raw)
	if name, ok := countryNames[strings.ToUpper(s)]; ok {
		return name
	}
	return s
}
