// =============================================================================
// SBA Report Converter - Root Command
// =============================================================================
//
// Command tree:
//
//   sbaconv
//   ├── convert (counseling|training)  - run one CSV/XLSX → XML conversion
//   ├── fix                            - repair element order in existing XML
//   └── version                        - print version information
//
// The root command owns the global flags, the viper environment binding
// (SBACONV_* variables mirror every flag), and logger construction. The
// logger is built here once and handed to the packages that need it;
// nothing below cmd/ reaches for a global.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "sbaconv",
	Short: "Convert CRM exports into SBA reporting XML",
	Long: `sbaconv transforms CSV (or XLSX) extracts from the partner CRM into XML
documents conforming to the SBA reporting schemas: the Form 641 counseling
report and the Management Training Report.

Data problems in individual records never abort a run: records are emitted
with documented defaults where possible, skipped only when their primary
identifier is missing, and every finding is collected into a validation
report alongside the output document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		return viper.BindPFlags(cmd.InheritedFlags())
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config overrides file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")

	viper.SetEnvPrefix("SBACONV")
	viper.AutomaticEnv()
}

// newLogger builds the run logger from the global flags: console output,
// debug level under --verbose, and an optional log file alongside.
func newLogger() (zerolog.Logger, func(), error) {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr}
	writers := []io.Writer{console}
	cleanup := func() {}

	if path := viper.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("opening log file: %w", err)
		}
		writers = append(writers, f)
		cleanup = func() { f.Close() }
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return log, cleanup, nil
}
