// =============================================================================
// Sample Sheet Loader - Check Command
// =============================================================================
//
// COMMAND USAGE:
//   samplesheet check <sheet>... [flags]
//
// Every sheet is loaded concurrently with the same schema. A summary line is
// printed per sheet in argument order, and the diagnostics of failed sheets
// go to stderr. The command fails if any sheet fails.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/samplesheet/internal/samplesheet"
	"github.com/ginjaninja78/samplesheet/internal/validation"
)

var checkCmd = &cobra.Command{
	Use:   "check <sheet>...",
	Short: "Validate one or more sample sheets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addSchemaFlags(checkCmd)
}

// checkResult holds the outcome of loading a single sheet.
type checkResult struct {
	Sheet   string
	Samples int
	Err     error
}

func runCheck(stdout, stderr io.Writer, sheets []string) error {
	schema, err := effectiveSchema()
	if err != nil {
		return err
	}

	results := checkSheets(sheets, schema)

	var failed int
	for _, result := range results {
		if result.Err == nil {
			fmt.Fprintf(stdout, "  ✓ %s: %d sample(s)\n", result.Sheet, result.Samples)
			continue
		}

		failed++
		fmt.Fprintf(stdout, "  ✗ %s: %d error(s)\n", result.Sheet, errorCount(result.Err))
		fmt.Fprintf(stderr, "%s:\n", result.Sheet)
		reportError(stderr, result.Err)
	}

	fmt.Fprintf(stdout, "\nChecked %d sheet(s): %d valid, %d invalid\n", len(results), len(results)-failed, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d sample sheet(s) failed validation", failed, len(results))
	}
	return nil
}

// checkSheets loads each sheet in its own goroutine and returns the results
// in the order the sheets were given.
func checkSheets(sheets []string, schema samplesheet.Schema) []checkResult {
	results := make([]checkResult, len(sheets))

	var wg sync.WaitGroup
	for i, sheet := range sheets {
		i, sheet := i, sheet
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own copy of the field lists.
			idx, err := loadSheet(sheet, schema.Clone())
			results[i] = checkResult{Sheet: sheet, Samples: len(idx), Err: err}
		}()
	}
	wg.Wait()

	return results
}

// errorCount is the number of individual problems carried by err.
func errorCount(err error) int {
	if errs, ok := validation.AsErrors(err); ok {
		return len(errs)
	}
	return 1
}
