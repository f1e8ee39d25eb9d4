// =============================================================================
// Sample Sheet Loader - Loader
// =============================================================================
//
// This module loads a sample sheet into a types.Index keyed by sample name.
//
// LOADING PIPELINE:
//   1. Resolve the sheet path (environment variables, ~, absolute)
//   2. Pick the delimiter from the extension (.csv, .tsv, .txt)
//   3. Index the sheet by its "sample" column (tableindex)
//   4. Remap missing or empty fields to their fallback field
//   5. Resolve file-like fields against the sheet's directory and check that
//      each one is readable
//
// Every failure is returned to the caller; nothing here exits the process.
//
// =============================================================================

package samplesheet

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/samplesheet/internal/tableindex"
	"github.com/ginjaninja78/samplesheet/internal/types"
	"github.com/ginjaninja78/samplesheet/internal/validation"
	"github.com/ginjaninja78/samplesheet/pkg/utils"
)

// ErrUnsupportedFileType is returned for sheets that are not .csv, .tsv or .txt.
var ErrUnsupportedFileType = errors.New("unsupported file type for sample sheet")

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Load reads a sample sheet with the default schema.
func Load(filePath string) (types.Index, error) {
	return LoadWithSchema(filePath, DefaultSchema())
}

// LoadWithSchema reads a sample sheet with a custom schema.
//
// PARAMETERS:
//   - filePath: The sheet to load. Relative paths resolve against the
//     working directory after variable and ~ expansion.
//   - schema: Column definitions, remap rules and file-like fields.
//
// RETURNS:
//   - The index, with every file-like field absolute and readable.
//   - An error wrapping ErrUnsupportedFileType for unknown extensions,
//     validation.Errors for missing fields or unreadable paths, or a plain
//     error when the sheet itself cannot be read.
func LoadWithSchema(filePath string, schema Schema) (types.Index, error) {
	sheet, err := utils.NormalizePath(filePath, "", false)
	if err != nil {
		return nil, err
	}

	delimiter, err := DelimiterFor(sheet)
	if err != nil {
		return nil, err
	}

	key := schema.KeyField
	if key == "" {
		key = KeyField
	}

	logger := slog.With("sheet", sheet)
	logger.Debug("indexing sample sheet", "delimiter", string(delimiter))

	idx, err := tableindex.IndexWithOptions(sheet, tableindex.Options{
		KeyField:       key,
		RequiredFields: schema.RequiredFields,
		OptionalFields: schema.OptionalFields,
		Delimiter:      delimiter,
		CommentPrefix:  schema.CommentPrefix,
		Duplicates:     schema.Duplicates,
	})
	if err != nil {
		return nil, err
	}

	ApplyRemap(idx, schema.Remap)

	if errs := ResolveFileLike(idx, schema.FileLikeFields, sheet); len(errs) > 0 {
		return nil, errs
	}

	logger.Debug("loaded sample sheet", "samples", len(idx))
	return idx, nil
}

// DelimiterFor picks the field separator from a sheet's extension:
// tab for .tsv and .txt, comma for .csv. Matching ignores case.
func DelimiterFor(path string) (rune, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		return '\t', nil
	case ".csv":
		return ',', nil
	default:
		return 0, fmt.Errorf("%w '%s': provide a .tsv (tab-separated) or .csv (comma-separated) file",
			ErrUnsupportedFileType, path)
	}
}

// =============================================================================
// POST-PROCESSING
// =============================================================================

// ApplyRemap fills each rule's field from its fallback when the field is
// missing or empty. Rules apply in order, so a later rule sees the result of
// an earlier one.
func ApplyRemap(idx types.Index, rules []RemapRule) {
	for _, record := range idx {
		for _, rule := range rules {
			if record[rule.Field] == "" {
				record[rule.Field] = record[rule.Fallback]
			}
		}
	}
}

// ResolveFileLike replaces every non-empty file-like field with its absolute
// path, resolved against the directory holding sheet. Paths that cannot be
// read are collected; empty or absent fields are left alone.
func ResolveFileLike(idx types.Index, fields []string, sheet string) validation.Errors {
	baseDir := filepath.Dir(sheet)
	var errs validation.Errors

	// Sorted so repeated runs report problems in the same order.
	for _, sample := range idx.Keys() {
		record := idx[sample]
		for _, field := range fields {
			value := record[field]
			if value == "" {
				continue
			}

			resolved, err := utils.NormalizePath(value, baseDir, true)
			if err != nil {
				errs = append(errs, validation.UnreadablePath(sample, field, value, sheet, err))
				continue
			}
			record[field] = resolved
		}
	}

	return errs
}
