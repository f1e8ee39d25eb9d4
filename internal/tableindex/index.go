// =============================================================================
// Sample Sheet Loader - Table Indexer
// =============================================================================
//
// This module turns a header-driven delimited file into an Index: a map from
// a key column's value to a record holding the required and optional fields.
//
// INDEXING RULES:
//   - Comment lines and blank lines are invisible to the parser
//   - Every value is stripped of surrounding quotes and whitespace
//   - A required field that is absent from the header or empty in a row is
//     recorded as an error; scanning continues with the next field and row
//   - An optional field that is absent or empty is stored as ""
//   - Columns outside the schema are ignored
//
// When any error was recorded the index is discarded and the whole batch is
// returned as validation.Errors.
//
// =============================================================================

package tableindex

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ginjaninja78/samplesheet/internal/csvparser"
	"github.com/ginjaninja78/samplesheet/internal/types"
	"github.com/ginjaninja78/samplesheet/internal/validation"
)

// =============================================================================
// DUPLICATE KEYS
// =============================================================================

// DuplicatePolicy decides what happens when a key value repeats.
type DuplicatePolicy string

const (
	// DuplicateMerge writes later rows into the existing record, field by
	// field. The last row wins for every field it sets.
	DuplicateMerge DuplicatePolicy = "merge"

	// DuplicateKeepFirst ignores rows whose key was already seen.
	DuplicateKeepFirst DuplicatePolicy = "keep_first"

	// DuplicateReject records a duplicate_key error for each repeat.
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy converts a configuration value to a DuplicatePolicy.
// An empty value selects DuplicateMerge.
func ParseDuplicatePolicy(value string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "merge":
		return DuplicateMerge, nil
	case "keep_first", "first":
		return DuplicateKeepFirst, nil
	case "reject", "error":
		return DuplicateReject, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want merge, keep_first or reject)", value)
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options contains everything IndexWithOptions needs.
type Options struct {
	// KeyField is the column whose value keys the index.
	KeyField string

	// RequiredFields must be present and non-empty in every row.
	RequiredFields []string

	// OptionalFields are stored as "" when absent or empty.
	OptionalFields []string

	// Delimiter separates fields. Default: ','
	Delimiter rune

	// CommentPrefix marks comment lines. Default: "#"
	CommentPrefix string

	// Duplicates decides how repeated keys are handled. Default: merge.
	Duplicates DuplicatePolicy
}

// DefaultOptions returns comma-delimited options with "#" comments and the
// merge duplicate policy. Field lists are left empty.
func DefaultOptions() Options {
	return Options{
		Delimiter:     ',',
		CommentPrefix: csvparser.DefaultCommentPrefix,
		Duplicates:    DuplicateMerge,
	}
}

// =============================================================================
// INDEXING
// =============================================================================

// Index parses inputPath and indexes it by keyField.
//
// PARAMETERS:
//   - inputPath: The delimited file to read.
//   - keyField: The column whose value keys each record.
//   - requiredFields: Columns that must be present and non-empty.
//   - optionalFields: Columns stored as "" when absent or empty.
//   - delimiter: The field separator.
//
// RETURNS:
//   - The populated index.
//   - validation.Errors when any required field was missing, or a plain
//     error when the file cannot be read.
func Index(inputPath, keyField string, requiredFields, optionalFields []string, delimiter rune) (types.Index, error) {
	opts := DefaultOptions()
	opts.KeyField = keyField
	opts.RequiredFields = requiredFields
	opts.OptionalFields = optionalFields
	opts.Delimiter = delimiter

	return IndexWithOptions(inputPath, opts)
}

// IndexWithOptions parses inputPath using the given options. See Index.
func IndexWithOptions(inputPath string, opts Options) (types.Index, error) {
	if opts.KeyField == "" {
		return nil, fmt.Errorf("key field must not be empty")
	}
	if opts.Duplicates == "" {
		opts.Duplicates = DuplicateMerge
	}

	parser, err := csvparser.NewStreamingParser(inputPath, csvparser.Settings{
		Delimiter:     opts.Delimiter,
		CommentPrefix: opts.CommentPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	defer parser.Close()

	slog.Debug("indexing table", "file", inputPath, "key_field", opts.KeyField, "columns", parser.Headers())

	idx := make(types.Index)
	firstSeen := make(map[string]int)
	keyRequired := slices.Contains(opts.RequiredFields, opts.KeyField)
	var errs validation.Errors

	for parser.Next() {
		row := parser.RowNumber()

		key, _ := parser.Value(opts.KeyField)
		if key == "" {
			// The row cannot be indexed. Report it unless the key's own
			// required-field check below already will.
			if !keyRequired {
				errs = append(errs, validation.MissingRequired(opts.KeyField, row, inputPath))
			}
		}

		record, skip := lookupRecord(idx, firstSeen, key, row, inputPath, opts, &errs)

		for _, field := range opts.RequiredFields {
			value, ok := parser.Value(field)
			if !ok || value == "" {
				errs = append(errs, validation.MissingRequired(field, row, inputPath))
				continue
			}
			if !skip {
				record[field] = value
			}
		}

		if skip {
			continue
		}

		for _, field := range opts.OptionalFields {
			// Absent columns and empty cells both come back as "".
			value, _ := parser.Value(field)
			record[field] = value
		}
	}

	if err := parser.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return idx, nil
}

// lookupRecord returns the record a row writes into. skip is true when the
// row's values must not be stored: an empty key, a rejected duplicate, or a
// duplicate under the keep-first policy.
func lookupRecord(idx types.Index, firstSeen map[string]int, key string, row int, file string, opts Options, errs *validation.Errors) (types.Record, bool) {
	if key == "" {
		return nil, true
	}

	record, exists := idx[key]
	if !exists {
		record = make(types.Record)
		idx[key] = record
		firstSeen[key] = row
		return record, false
	}

	switch opts.Duplicates {
	case DuplicateKeepFirst:
		slog.Warn("duplicate key; keeping first row",
			"field", opts.KeyField, "key", key, "row", row, "first_row", firstSeen[key], "file", file)
		return nil, true
	case DuplicateReject:
		*errs = append(*errs, validation.DuplicateKey(opts.KeyField, key, firstSeen[key], row, file))
		return nil, true
	default:
		slog.Warn("duplicate key; merging rows",
			"field", opts.KeyField, "key", key, "row", row, "first_row", firstSeen[key], "file", file)
		return record, false
	}
}
