// =============================================================================
// SBA Report Converter - Convert Command
// =============================================================================
//
// `sbaconv convert counseling -i export.csv` runs one conversion: read the
// extract, assemble the report document, write it next to the input (or to
// --output), print the validation summary, and export the issue list as CSV
// for partner follow-up.
//
// `--analyze-only` scans the extract for the problems that would skip
// records, without converting anything.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wbciowa/sba-converter/internal/config"
	"github.com/wbciowa/sba-converter/internal/convert"
	"github.com/wbciowa/sba-converter/internal/reader"
	"github.com/wbciowa/sba-converter/internal/report"
	"github.com/wbciowa/sba-converter/pkg/fileutil"
)

var convertCmd = &cobra.Command{
	Use:       "convert (counseling|training)",
	Short:     "Convert a CRM extract to SBA reporting XML",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"counseling", "training"},
	RunE:      runConvert,
}

func init() {
	convertCmd.Flags().StringP("input", "i", "", "path to the input CSV or XLSX file")
	convertCmd.Flags().StringP("output", "o", "", "path for the output XML file (default: next to the input)")
	convertCmd.Flags().String("report-dir", "reports", "directory for validation issue exports")
	convertCmd.Flags().Bool("analyze-only", false, "scan the input for problems without converting")
	convertCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	reportType := args[0]
	inputPath := viper.GetString("input")

	log, cleanup, err := newLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return err
	}

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	if viper.GetBool("analyze-only") {
		return runAnalyze(cmd, reportType, inputPath, cfg)
	}

	outputPath := viper.GetString("output")
	if outputPath == "" {
		outputPath = fileutil.DefaultOutputPath(inputPath)
	}
	if err := fileutil.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return err
	}

	var converter *convert.Converter
	switch reportType {
	case "counseling":
		converter = convert.NewCounseling(cfg, log)
	case "training":
		converter = convert.NewTraining(cfg, log)
	default:
		return fmt.Errorf("unknown report type %q", reportType)
	}

	run, err := converter.Convert(inputPath, outputPath)
	if err != nil {
		return err
	}

	report.WriteSummary(cmd.OutOrStdout(), run.Summary)
	if path, err := report.SaveIssuesCSV(viper.GetString("report-dir"), run.Issues); err != nil {
		log.Warn().Err(err).Msg("could not save issue report")
	} else if path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Issue report saved to %s\n", path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Output written to %s\n", run.OutputPath)
	return nil
}

func runAnalyze(cmd *cobra.Command, reportType, inputPath string, cfg *config.Config) error {
	table, err := reader.Read(inputPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch reportType {
	case "counseling":
		a := convert.AnalyzeCounseling(table, cfg.Counseling.RequiredField)
		fmt.Fprintf(out, "Rows: %d\n", a.RowCount)
		fmt.Fprintf(out, "Missing Contact ID: %d\n", a.MissingContactID)
		fmt.Fprintf(out, "Missing names: %d\n", a.MissingNames)
		fmt.Fprintf(out, "Invalid dates: %d\n", a.InvalidDates)
	case "training":
		a := convert.AnalyzeTraining(table, cfg.Training.RequiredField)
		fmt.Fprintf(out, "Rows: %d\n", a.RowCount)
		fmt.Fprintf(out, "Missing Class/Event ID: %d\n", a.MissingEventID)
	}
	return nil
}
