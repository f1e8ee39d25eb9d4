// =============================================================================
// Sample Sheet Loader - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// shares the configuration and logging set up here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (samplesheet)
//   ├── loadCmd    (samplesheet load <sheet>)
//   ├── checkCmd   (samplesheet check <sheet>...)
//   ├── schemaCmd  (samplesheet schema)
//   └── versionCmd (samplesheet version)
//
// EXIT BEHAVIOR:
//   Commands return errors; Execute is the only place the process exits.
//   Validation failures are printed in full to stderr.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/samplesheet/internal/config"
	"github.com/ginjaninja78/samplesheet/internal/logging"
	"github.com/ginjaninja78/samplesheet/internal/validation"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// logFormat overrides logging.format from the configuration file.
var logFormat string

// envFile is loaded into the environment before anything else, so sheet
// paths and path columns can refer to its variables.
var envFile string

// defaultEnvFile is loaded when present and no --env-file is given.
const defaultEnvFile = ".env"

// cfg is the configuration loaded before any subcommand runs.
var cfg *config.Config

// logger carries the run_id of this invocation.
var logger *slog.Logger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "samplesheet",
	Short: "Load and validate CSV/TSV sample sheets",
	Long: `samplesheet reads a CSV or TSV sample sheet, checks that every required
column is present and filled in, and resolves each file or directory column to
an absolute, readable path relative to the sheet's own directory.

Example Usage:
  samplesheet load runs/sheet.csv                  # Print the resolved sheet as JSON
  samplesheet load sheet.tsv --format yaml         # ...or as YAML
  samplesheet check a.csv b.tsv                    # Validate several sheets
  samplesheet schema --config samplesheet.yaml     # Show the effective schema`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd.ErrOrStderr())
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// initialize loads the environment file and configuration, then sets up
// logging.
func initialize(stderr io.Writer) error {
	envLoaded, err := loadEnvFile(envFile)
	if err != nil {
		return err
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}

	logging.Setup(level, format, stderr)
	logger = logging.WithRun(uuid.NewString())

	if envLoaded != "" {
		logger.Debug("loaded environment file", "path", envLoaded)
	}
	if cfg.Path != "" {
		logger.Debug("using config file", "path", cfg.Path)
	}
	return nil
}

// loadEnvFile loads path, or defaultEnvFile when path is empty and the file
// exists. Variables already set in the environment are not overridden.
// It returns the file that was loaded, if any.
func loadEnvFile(path string) (string, error) {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("failed to load environment file %s: %w", path, err)
	}
	return path, nil
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI and exits with status 1 on any error.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints every validation problem at once, or the single error.
func reportError(w io.Writer, err error) {
	if errs, ok := validation.AsErrors(err); ok {
		fmt.Fprintln(w, validation.FormatErrors(errs))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is "+config.DefaultConfigFile+" if present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		"",
		"Environment file to load before expanding paths (default is "+defaultEnvFile+" if present)",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"",
		"Log format: text or json (overrides the configuration file)",
	)
}
