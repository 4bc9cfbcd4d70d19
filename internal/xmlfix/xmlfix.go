// =============================================================================
// SBA Report Converter - Post-hoc XML Fixer
// =============================================================================
//
// This package repairs already-generated counseling documents, including
// ones produced by earlier tool versions: it reorders ClientIntake children
// into the sequence the schema mandates and can inject a small set of
// required elements with schema defaults when entirely absent.
//
// The fixer is purely structural. It never re-derives values from source
// data, only moves and backfills elements, which makes it idempotent: a
// second pass over fixed output is a no-op.
//
// =============================================================================

package xmlfix

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/wbciowa/sba-converter/internal/xmltree"
	"github.com/wbciowa/sba-converter/pkg/fileutil"
)

// ClientIntakeOrder is the child sequence the counseling schema mandates
// for ClientIntake. Tags not in this list keep their original relative
// order after the recognized ones.
var ClientIntakeOrder = []string{
	"Race", "Ethnicity", "Sex", "Disability", "MilitaryStatus",
	"BranchOfService", "Media", "Internet", "CurrentlyInBusiness",
	"CurrentlyExporting", "CompanyName", "BusinessType",
	"BusinessOwnership", "ConductingBusinessOnline",
	"ClientIntake_Certified8a", "Employee_Owned", "TotalNumberOfEmployees",
	"NumberOfEmployeesInExportingBusiness", "ClientAnnualIncomePart2",
	"LegalEntity", "Rural_vs_Urban", "FIPS_Code", "CounselingSeeking",
	"ExportCountries",
}

// requiredClientIntake lists elements the schema always requires, with the
// default text injected when AddMissing is enabled and the element is
// absent.
var requiredClientIntake = map[string]string{
	"CurrentlyInBusiness": "No",
}

// Options controls a fix pass.
type Options struct {
	// AddMissing injects absent required ClientIntake elements with their
	// schema defaults before reordering.
	AddMissing bool

	// Backup writes a timestamped .bak copy before an in-place fix.
	Backup bool
}

// Reorder rearranges parent's children into the given canonical tag order.
// Repeated tags keep their relative order, and unrecognized tags follow the
// recognized ones in their original relative order.
func Reorder(parent *xmltree.Node, order []string) {
	known := make(map[string]bool, len(order))
	for _, tag := range order {
		known[tag] = true
	}

	var reordered []*xmltree.Node
	for _, tag := range order {
		for _, child := range parent.Children {
			if child.Tag == tag {
				reordered = append(reordered, child)
			}
		}
	}
	for _, child := range parent.Children {
		if !known[child.Tag] {
			reordered = append(reordered, child)
		}
	}
	parent.Children = reordered
}

// Document fixes every CounselingRecord/ClientIntake in a parsed tree.
// It returns the number of records touched.
func Document(root *xmltree.Node, opts Options, log zerolog.Logger) int {
	fixed := 0
	for _, record := range root.FindAll("CounselingRecord") {
		intake := record.Find("ClientIntake")
		if intake == nil {
			continue
		}

		recordID := "UNKNOWN_RECORD"
		if n := record.Find("PartnerClientNumber"); n != nil && n.Text != "" {
			recordID = n.Text
		}

		if opts.AddMissing {
			for tag, def := range requiredClientIntake {
				if intake.Find(tag) == nil {
					log.Info().Str("record", recordID).Str("element", tag).
						Msg("adding missing required element")
					intake.AddText(tag, def)
				}
			}
		}

		Reorder(intake, ClientIntakeOrder)
		fixed++
	}
	return fixed
}

// File fixes one XML document. An empty outPath fixes in place; with
// Options.Backup a .bak copy is written first.
func File(path, outPath string, opts Options, log zerolog.Logger) error {
	if outPath == "" {
		outPath = path
	}

	root, err := xmltree.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if opts.Backup && outPath == path {
		backup, err := fileutil.Backup(path)
		if err != nil {
			log.Warn().Err(err).Msg("could not create backup")
		} else {
			log.Info().Str("backup", backup).Msg("created backup")
		}
	}

	fixed := Document(root, opts, log)
	if err := xmltree.WriteFile(outPath, root); err != nil {
		return err
	}
	log.Info().Str("file", outPath).Int("records", fixed).Msg("fixed XML file")
	return nil
}

// Dir fixes every file under inputDir matching pattern (default *.xml),
// optionally recursing. An empty outputDir fixes files in place; otherwise
// fixed copies land under outputDir mirroring the input layout. Returns the
// number of files processed.
func Dir(inputDir, outputDir, pattern string, recursive bool, opts Options, log zerolog.Logger) (int, error) {
	if pattern == "" {
		pattern = "*.xml"
	}
	if outputDir != "" {
		if err := fileutil.EnsureDir(outputDir); err != nil {
			return 0, err
		}
	}

	count := 0
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}
		matched, err := filepath.Match(pattern, d.Name())
		if err != nil || !matched {
			return err
		}

		outPath := ""
		if outputDir != "" {
			rel, err := filepath.Rel(inputDir, path)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outputDir, rel)
			if err := fileutil.EnsureDir(filepath.Dir(outPath)); err != nil {
				return err
			}
		}

		if err := File(path, outPath, opts, log); err != nil {
			// One bad file should not stop a directory sweep.
			log.Error().Err(err).Str("file", path).Msg("failed to fix file")
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("walking %s: %w", inputDir, err)
	}
	return count, nil
}
