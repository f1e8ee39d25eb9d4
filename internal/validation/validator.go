// =============================================================================
// Sample Sheet Loader - Validation Errors
// =============================================================================
//
// This module defines the structured errors produced while loading a sample
// sheet. Problems are collected, not thrown: the indexer and the loader keep
// scanning after a failure so one run surfaces every problem in the file.
//
// ERROR KINDS:
//   - missing_required_field : a required column is absent or empty in a row
//   - unreadable_path        : a file-like field points at an unreadable path
//   - duplicate_key          : a key repeats and the duplicate policy rejects it
//
// Callers decide what to do with a batch; only the command line turns one
// into a non-zero exit.
//
// =============================================================================

package validation

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Kind classifies a ValidationError.
type Kind string

const (
	KindMissingRequired Kind = "missing_required_field"
	KindUnreadablePath  Kind = "unreadable_path"
	KindDuplicateKey    Kind = "duplicate_key"
)

// SeverityError marks problems that fail the load.
const SeverityError = "error"

// ValidationError represents a single problem found in a sample sheet.
type ValidationError struct {
	// Severity prefixes the message, e.g. "[ERROR]".
	Severity string

	// Kind classifies the problem.
	Kind Kind

	// Field is the column the problem refers to.
	Field string

	// Value is the offending value, when there is one.
	Value string

	// Sample is the key of the affected record, when known.
	Sample string

	// RowNumber is the 1-based data row number. Zero when the problem is
	// not tied to a single row.
	RowNumber int

	// File is the sheet the problem was found in.
	File string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(e.Severity), e.Message)
	if e.RowNumber > 0 {
		fmt.Fprintf(&b, " (line %d", e.RowNumber)
		if e.File != "" {
			fmt.Fprintf(&b, " of file '%s'", e.File)
		}
		b.WriteString(")")
	} else if e.File != "" {
		fmt.Fprintf(&b, " (file '%s')", e.File)
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// MissingRequired builds the error recorded when a required field is absent
// from the header or empty in a row.
func MissingRequired(field string, row int, file string) *ValidationError {
	return &ValidationError{
		Severity:  SeverityError,
		Kind:      KindMissingRequired,
		Field:     field,
		RowNumber: row,
		File:      file,
		Message:   fmt.Sprintf("Missing required field '%s'", field),
	}
}

// UnreadablePath builds the error recorded when a file-like field cannot be
// resolved to a readable path.
func UnreadablePath(sample, field, value, file string, cause error) *ValidationError {
	return &ValidationError{
		Severity: SeverityError,
		Kind:     KindUnreadablePath,
		Field:    field,
		Value:    value,
		Sample:   sample,
		File:     file,
		Message:  fmt.Sprintf("Sample '%s', field '%s': %v", sample, field, cause),
		Err:      cause,
	}
}

// DuplicateKey builds the error recorded when a key repeats.
func DuplicateKey(field, key string, firstRow, row int, file string) *ValidationError {
	return &ValidationError{
		Severity:  SeverityError,
		Kind:      KindDuplicateKey,
		Field:     field,
		Value:     key,
		Sample:    key,
		RowNumber: row,
		File:      file,
		Message:   fmt.Sprintf("Duplicate %s '%s' (first seen on line %d)", field, key, firstRow),
	}
}

// =============================================================================
// ERROR COLLECTION
// =============================================================================

// Errors is a batch of validation errors returned as a single error value.
type Errors []*ValidationError

// Error implements the error interface.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "no validation errors"
	case 1:
		return errs[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more error(s))", errs[0].Error(), len(errs)-1)
	}
}

// Unwrap exposes every error to errors.Is and errors.As.
func (errs Errors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// OfKind returns the errors of the given kind.
func (errs Errors) OfKind(kind Kind) Errors {
	var out Errors
	for _, e := range errs {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// AsErrors extracts a batch from err. ok is false when err carries none.
func AsErrors(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errs Errors) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation failed with %d error(s):\n\n", len(errs)))

	for i, err := range errs {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes a batch of validation errors to a new log file in
// outputDir. The file name carries a timestamp and a random UUID so runs
// never overwrite each other.
//
// PARAMETERS:
//   - errs: The validation errors to write.
//   - sheet: The sample sheet the errors belong to.
//   - outputDir: The directory to write the log file to. It is created if needed.
//
// RETURNS:
//   - The path to the error log file ("" when errs is empty).
//   - An error if writing fails.
func WriteErrorLog(errs Errors, sheet, outputDir string) (string, error) {
	if len(errs) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create error log directory: %w", err)
	}

	now := time.Now()
	logFileName := fmt.Sprintf("error_log_%s_%s.txt", now.Format("20060102_150405"), uuid.New().String())
	logPath := filepath.Join(outputDir, logFileName)

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Sample Sheet Loader - Error Log\n"+
		"Generated:    %s\n"+
		"Sample sheet: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		sheet,
		len(errs))

	for i, e := range errs {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Type:       %s\n"+
			"  Message:    %s\n",
			i+1, e.Kind, e.Message)

		if e.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number: %d\n", e.RowNumber)
		}
		if e.Sample != "" {
			fmt.Fprintf(writer, "  Sample:     %s\n", e.Sample)
		}
		if e.Field != "" {
			fmt.Fprintf(writer, "  Field:      %s\n", e.Field)
		}
		if e.Value != "" {
			fmt.Fprintf(writer, "  Value:      %s\n", e.Value)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}
