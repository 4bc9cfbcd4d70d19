// =============================================================================
// SBA Report Converter - Configuration
// =============================================================================
//
// This package carries every tunable the converters consult: schema
// defaults, field length limits, column synonym chains, and the values that
// fold free-form CRM text into schema enumerations.
//
// The values here are the shipped defaults. Load applies a YAML overrides
// file on top for the knobs partners actually need to change (location
// code, default location, minimum counseling date); the mapping tables and
// synonym chains stay code so they version with the builders that use them.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration for one conversion run.
type Config struct {
	General    General    `yaml:"general"`
	Counseling Counseling `yaml:"counseling"`
	Training   Training   `yaml:"training"`
}

// General holds constants shared by both report types.
type General struct {
	// LocationCode is the SBA partner location code stamped on every record.
	LocationCode string `yaml:"location_code"`

	// Language is the default language code when the CRM supplies none.
	Language string `yaml:"language"`

	// BusinessStatus is the default yes/no answer for business-status fields.
	BusinessStatus string `yaml:"business_status"`
}

// Counseling holds settings for the Form 641 counseling report.
type Counseling struct {
	// RequiredField is the primary identifier column; a row without it is
	// skipped entirely.
	RequiredField string `yaml:"required_field"`

	// DefaultSessionType substitutes for missing or unrecognized session types.
	DefaultSessionType string `yaml:"default_session_type"`

	// DefaultUrbanRural substitutes for a missing Rural_vs_Urban value.
	DefaultUrbanRural string `yaml:"default_urban_rural"`

	// MinDate is the floor for counseling dates; earlier dates are flagged
	// as stale but still emitted.
	MinDate string `yaml:"min_date"`

	// NoContactHourSessionTypes lists session types that may carry zero
	// contact hours. Every other type is floored at MinContactHours.
	NoContactHourSessionTypes []string `yaml:"no_contact_hour_session_types"`

	// MinContactHours is the schema business-rule floor for contact hours.
	MinContactHours string `yaml:"min_contact_hours"`

	// ValidSessionTypes is the schema enumeration for SessionType.
	ValidSessionTypes []string `yaml:"valid_session_types"`

	// MaxFieldLengths caps text fields before truncation.
	MaxFieldLengths map[string]int `yaml:"max_field_lengths"`
}

// Location is a city/state/zip/country quadruple.
type Location struct {
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	Zip     string `yaml:"zip"`
	Country string `yaml:"country"`
}

// Training holds settings for the Management Training Report.
type Training struct {
	RequiredField string `yaml:"required_field"`

	DefaultSessions         string `yaml:"default_sessions"`
	DefaultHours            string `yaml:"default_hours"`
	DefaultEventTitlePrefix string `yaml:"default_event_title_prefix"`
	DefaultTopic            string `yaml:"default_topic"`
	DefaultProgramFormat    string `yaml:"default_program_format"`
	DefaultPartnerCode      string `yaml:"default_partner_code"`
	DefaultFees             string `yaml:"default_fees"`
	DefaultStartDate        string `yaml:"default_start_date"`

	// DefaultLocation replaces the whole location triple when city, state
	// and zip cannot all be resolved from the group.
	DefaultLocation Location `yaml:"default_location"`

	// DateFormats is the ordered list of layouts tried for start dates.
	DateFormats []string `yaml:"date_formats"`

	// MinTotalTrained is the schema minimum for NumberTrained/Total.
	MinTotalTrained int `yaml:"min_total_trained"`
}

// Default returns the shipped configuration.
func Default() *Config {
	return &Config{
		General: General{
			LocationCode:   "249003",
			Language:       "English",
			BusinessStatus: "No",
		},
		Counseling: Counseling{
			RequiredField:      "Contact ID",
			DefaultSessionType: "Telephone",
			DefaultUrbanRural:  "Undetermined",
			MinDate:            "2023-10-01",
			NoContactHourSessionTypes: []string{
				"Prepare Only",
				"Training",
				"Update Only",
			},
			MinContactHours: "0.5",
			ValidSessionTypes: []string{
				"Face-to-face",
				"Online",
				"Prepare Only",
				"Telephone",
				"Training",
				"Update Only",
			},
			MaxFieldLengths: map[string]int{
				"CounselorNotes":       1000,
				"Last":                 40,
				"First":                40,
				"Middle":               1,
				"Street1":              80,
				"Street2":              80,
				"City":                 80,
				"Phone":                10,
				"PartnerClientNumber":  20,
				"PartnerSessionNumber": 20,
			},
		},
		Training: Training{
			RequiredField:           "Class/Event ID",
			DefaultSessions:         "1",
			DefaultHours:            "1.5",
			DefaultEventTitlePrefix: "Training Event ",
			DefaultTopic:            "Technology",
			DefaultProgramFormat:    "In-person",
			DefaultPartnerCode:      "Women's Business Center",
			DefaultFees:             "0",
			DefaultStartDate:        "2023-12-12",
			DefaultLocation: Location{
				City:    "Des Moines",
				State:   "Iowa",
				Zip:     "50312",
				Country: "United States",
			},
			DateFormats: []string{
				"2006-01-02", "01/02/2006", "02-01-2006", "01-02-2006", "01/02/06",
			},
			MinTotalTrained: 2,
		},
	}
}

// Load returns the defaults with the YAML overrides file at path applied.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
