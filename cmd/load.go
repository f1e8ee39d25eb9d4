// =============================================================================
// Sample Sheet Loader - Load Command
// =============================================================================
//
// COMMAND USAGE:
//   samplesheet load <sheet> [flags]
//
// FLAGS:
//   --format         : json, yaml or xml (default from config, else json)
//   --output         : Write to a file instead of stdout
//   --template       : XLSX schema template replacing the configured fields
//   --duplicates     : merge, keep_first or reject
//   --error-log-dir  : Write an error log file here when the sheet is invalid
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/samplesheet/internal/output"
	"github.com/ginjaninja78/samplesheet/internal/samplesheet"
	"github.com/ginjaninja78/samplesheet/internal/tableindex"
	"github.com/ginjaninja78/samplesheet/internal/types"
	"github.com/ginjaninja78/samplesheet/internal/validation"
	"github.com/ginjaninja78/samplesheet/internal/xlsxparser"
	"github.com/ginjaninja78/samplesheet/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	outputFormat string
	outputFile   string
	templateFile string
	duplicates   string
	errorLogDir  string
)

var loadCmd = &cobra.Command{
	Use:   "load <sheet>",
	Short: "Load a sample sheet and print the resolved samples",
	Long: `The load command reads a .csv, .tsv or .txt sample sheet and prints every
sample with its fields. File and directory columns are printed as absolute
paths, resolved against the directory that holds the sheet.

If any required field is missing or any path cannot be read, every problem
is reported together and nothing is printed to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoad(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: json, yaml or xml")
	loadCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the result to this file instead of stdout")
	addSchemaFlags(loadCmd)
}

// addSchemaFlags registers the flags shared by every command that loads sheets.
func addSchemaFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&templateFile, "template", "", "XLSX schema template (overrides schema fields from the config)")
	cmd.Flags().StringVar(&duplicates, "duplicates", "", "Duplicate sample policy: merge, keep_first or reject")
	cmd.Flags().StringVar(&errorLogDir, "error-log-dir", "", "Directory for error log files of failed loads")
}

// =============================================================================
// LOAD PIPELINE
// =============================================================================

func runLoad(stdout io.Writer, sheet string) error {
	format := cfg.Output.Format
	if outputFormat != "" {
		format = outputFormat
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	schema, err := effectiveSchema()
	if err != nil {
		return err
	}

	idx, err := loadSheet(sheet, schema)
	if err != nil {
		return err
	}

	if outputFile == "" {
		return output.Write(stdout, idx, f)
	}
	return writeFile(outputFile, idx, f)
}

// effectiveSchema applies --template and --duplicates on top of the config.
func effectiveSchema() (samplesheet.Schema, error) {
	schema, err := cfg.BuildSchema()
	if err != nil {
		return samplesheet.Schema{}, err
	}

	if templateFile != "" {
		path, err := utils.NormalizePath(templateFile, "", true)
		if err != nil {
			return samplesheet.Schema{}, fmt.Errorf("schema template: %w", err)
		}
		tmpl, err := xlsxparser.Parse(path)
		if err != nil {
			return samplesheet.Schema{}, fmt.Errorf("schema template %s: %w", path, err)
		}
		schema = samplesheet.SchemaFromTemplate(tmpl, schema)
		logger.Debug("using schema template", "path", path, "fields", len(tmpl.Fields))
	}

	if duplicates != "" {
		policy, err := tableindex.ParseDuplicatePolicy(duplicates)
		if err != nil {
			return samplesheet.Schema{}, err
		}
		schema.Duplicates = policy
	}

	return schema, nil
}

// loadSheet loads one sheet and, on validation failure, writes an error log
// when an error log directory is configured.
func loadSheet(sheet string, schema samplesheet.Schema) (types.Index, error) {
	log := logger.With("sheet", sheet)
	log.Info("loading sample sheet")

	idx, err := samplesheet.LoadWithSchema(sheet, schema)
	if err == nil {
		log.Info("sample sheet loaded", "samples", len(idx))
		return idx, nil
	}

	errs, ok := validation.AsErrors(err)
	if !ok {
		return nil, err
	}
	log.Warn("sample sheet failed validation", "errors", len(errs))

	dir := cfg.Output.ErrorLogDir
	if errorLogDir != "" {
		dir = errorLogDir
	}
	if dir != "" {
		path, logErr := validation.WriteErrorLog(errs, sheet, dir)
		if logErr != nil {
			log.Error("failed to write error log", "error", logErr)
		} else {
			log.Info("error log written", "path", path)
		}
	}

	return nil, err
}

func writeFile(path string, idx types.Index, format output.Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}()

	if err := output.Write(file, idx, format); err != nil {
		return err
	}
	logger.Info("output written", "path", path, "format", string(format))
	return nil
}
