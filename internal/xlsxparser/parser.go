// =============================================================================
// Sample Sheet Loader - XLSX Schema Template Parser
// =============================================================================
//
// This module parses XLSX workbooks that define a sample sheet schema. Lab
// teams keep their column definitions in a spreadsheet; the loader can use it
// instead of the built-in schema.
//
// TEMPLATE STRUCTURE (first sheet, header on row 1):
//
//   | Column A | Column B    | Column C  | Column D |
//   |----------|-------------|-----------|----------|
//   | Column   | Requirement | File-like | Fallback |
//   | sample   | required    | no        |          |
//   | fastqs   | required    | yes       |          |
//   | id       | optional    | no        | sample   |
//   | image    | optional    | yes       |          |
//
// Column positions are configurable via TemplateColumns.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TEMPLATE STRUCTURE
// =============================================================================

// Template is the parsed schema template.
type Template struct {
	// TemplateFile is the path to the source workbook.
	TemplateFile string

	// SheetName is the worksheet the fields were read from.
	SheetName string

	// Fields in workbook order.
	Fields []FieldSpec
}

// FieldSpec describes one sample sheet column.
type FieldSpec struct {
	// Column is the header name in the sample sheet.
	Column string

	// Required marks columns that must be present and non-empty.
	Required bool

	// FileLike marks columns whose values are paths.
	FileLike bool

	// Fallback names the column used when this one is missing or empty.
	Fallback string

	// Row is the 1-based workbook row, for error messages.
	Row int
}

// =============================================================================
// TEMPLATE COLUMN CONFIGURATION
// =============================================================================

// TemplateColumns defines which workbook columns hold which data.
// Column indices are 0-based (A=0, B=1, ...).
type TemplateColumns struct {
	ColumnNameColumn  int
	RequirementColumn int
	FileLikeColumn    int
	FallbackColumn    int

	// DataStartRow is the 0-based row where field definitions begin.
	DataStartRow int
}

// DefaultTemplateColumns returns the layout shown in the package comment.
func DefaultTemplateColumns() TemplateColumns {
	return TemplateColumns{
		ColumnNameColumn:  0, // Column A
		RequirementColumn: 1, // Column B
		FileLikeColumn:    2, // Column C
		FallbackColumn:    3, // Column D
		DataStartRow:      1, // Row 2
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a schema template using the default column layout.
func Parse(templatePath string) (*Template, error) {
	return ParseWithConfig(templatePath, DefaultTemplateColumns())
}

// ParseWithConfig reads a schema template using a custom column layout.
//
// PARAMETERS:
//   - templatePath: The path to the XLSX workbook.
//   - columns: The column layout.
//
// RETURNS:
//   - The parsed template.
//   - An error if the workbook cannot be read, a row is malformed, or no
//     fields are defined.
func ParseWithConfig(templatePath string, columns TemplateColumns) (*Template, error) {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("template file has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	tmpl := &Template{
		TemplateFile: templatePath,
		SheetName:    sheetName,
	}
	seen := make(map[string]int)

	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		spec, err := parseRow(row, columns, i+1)
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: %w", i+1, err)
		}
		if spec.Column == "" {
			continue
		}

		if prev, dup := seen[spec.Column]; dup {
			return nil, fmt.Errorf("column %q defined on rows %d and %d", spec.Column, prev, spec.Row)
		}
		seen[spec.Column] = spec.Row

		tmpl.Fields = append(tmpl.Fields, spec)
	}

	if len(tmpl.Fields) == 0 {
		return nil, fmt.Errorf("template %s defines no fields", templatePath)
	}

	return tmpl, nil
}

// parseRow extracts a FieldSpec from a single workbook row.
func parseRow(row []string, columns TemplateColumns, rowNumber int) (FieldSpec, error) {
	getCell := func(index int) string {
		if index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	spec := FieldSpec{
		Column:   getCell(columns.ColumnNameColumn),
		Fallback: getCell(columns.FallbackColumn),
		Row:      rowNumber,
	}

	// Rows without a column name carry notes, not fields.
	if spec.Column == "" {
		return spec, nil
	}

	required, err := parseRequirement(getCell(columns.RequirementColumn))
	if err != nil {
		return spec, err
	}
	spec.Required = required

	fileLike, err := parseFlag(getCell(columns.FileLikeColumn))
	if err != nil {
		return spec, fmt.Errorf("file-like: %w", err)
	}
	spec.FileLike = fileLike

	return spec, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRequirement maps the template's wording onto required/optional.
// An empty cell means optional.
func parseRequirement(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "required", "req", "r", "yes", "y", "true", "1", "mandatory":
		return true, nil
	case "", "optional", "opt", "o", "no", "n", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("unknown requirement %q", value)
	}
}

func parseFlag(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "yes", "y", "true", "1", "x":
		return true, nil
	case "", "no", "n", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("unknown flag %q", value)
	}
}
