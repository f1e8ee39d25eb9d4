// =============================================================================
// Sample Sheet Loader - Main Entry Point
// =============================================================================
//
// USAGE:
//   samplesheet load <sheet>       - Load a sheet and print the resolved index
//   samplesheet check <sheet>...   - Validate one or more sheets
//   samplesheet schema             - Print the effective schema
//   samplesheet version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Sheet parsing, indexing, validation and output
//   - pkg/utils      : Path normalization shared with other tools
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/samplesheet/cmd"
)

func main() {
	cmd.Execute()
}
