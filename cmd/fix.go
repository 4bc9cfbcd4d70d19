// =============================================================================
// SBA Report Converter - Fix Command
// =============================================================================
//
// `sbaconv fix` repairs counseling XML documents after the fact: it
// reorders ClientIntake children into the schema-mandated sequence and can
// backfill missing required elements. Useful for documents produced by
// earlier tool versions or edited by hand.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wbciowa/sba-converter/internal/xmlfix"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair element order in existing counseling XML files",
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().StringP("file", "f", "", "path to a single XML file to fix")
	fixCmd.Flags().StringP("directory", "d", "", "path to a directory of XML files to fix")
	fixCmd.Flags().StringP("fix-output", "o", "", "path for the fixed file or directory (default: fix in place)")
	fixCmd.Flags().BoolP("recursive", "r", false, "recurse into subdirectories")
	fixCmd.Flags().String("pattern", "*.xml", "file pattern for directory mode")
	fixCmd.Flags().Bool("add-missing", false, "inject missing required elements with schema defaults")
	fixCmd.Flags().Bool("no-backup", false, "skip the .bak copy before in-place fixes")
	fixCmd.MarkFlagsOneRequired("file", "directory")
	fixCmd.MarkFlagsMutuallyExclusive("file", "directory")
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	log, cleanup, err := newLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	opts := xmlfix.Options{
		AddMissing: viper.GetBool("add-missing"),
		Backup:     !viper.GetBool("no-backup"),
	}

	if file := viper.GetString("file"); file != "" {
		return xmlfix.File(file, viper.GetString("fix-output"), opts, log)
	}

	count, err := xmlfix.Dir(
		viper.GetString("directory"),
		viper.GetString("fix-output"),
		viper.GetString("pattern"),
		viper.GetBool("recursive"),
		opts,
		log,
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d XML files\n", count)
	return nil
}
