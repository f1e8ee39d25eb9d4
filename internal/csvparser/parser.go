// =============================================================================
// Sample Sheet Loader - Delimited Text Parser
// =============================================================================
//
// This module reads header-driven delimited text (CSV, TSV). It handles:
//   - Comma or tab delimiters (any single rune is accepted)
//   - Comment lines (first non-space characters match a prefix) and blank lines
//   - Quoted values, including single quotes that encoding/csv leaves alone
//   - Ragged rows (fewer or more cells than header columns)
//
// Comment and blank lines are removed before the CSV reader sees the stream,
// so they never count as rows and never shift row numbers.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultCommentPrefix marks a line as a comment.
const DefaultCommentPrefix = "#"

// =============================================================================
// LINE FILTER
// =============================================================================

// NewCommentFilter returns a reader that yields r without blank lines and
// without lines whose trimmed content starts with prefix. An empty prefix
// only drops blank lines. Line terminators of kept lines are preserved.
func NewCommentFilter(r io.Reader, prefix string) io.Reader {
	return &commentFilter{
		br:     bufio.NewReader(r),
		prefix: prefix,
	}
}

type commentFilter struct {
	br      *bufio.Reader
	prefix  string
	pending []byte
	err     error
}

func (f *commentFilter) Read(p []byte) (int, error) {
	for len(f.pending) == 0 {
		if f.err != nil {
			return 0, f.err
		}
		line, err := f.br.ReadString('\n')
		if keepLine(line, f.prefix) {
			f.pending = []byte(line)
		}
		f.err = err
	}

	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

// keepLine reports whether a raw line survives the comment/blank filter.
func keepLine(line, prefix string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if prefix != "" && strings.HasPrefix(trimmed, prefix) {
		return false
	}
	return true
}

// =============================================================================
// VALUE CLEANING
// =============================================================================

// Stripped removes surrounding whitespace and surrounding double or single
// quotes from a value.
//
// EXAMPLES:
//
//	"foo"    -> foo
//	'foo'    -> foo
//	  foo    -> foo
func Stripped(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, `'`)
	return strings.TrimSpace(s)
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// Settings controls how a delimited file is read.
type Settings struct {
	// Delimiter separates fields. Default: ','
	Delimiter rune

	// CommentPrefix marks comment lines. Default: "#"
	CommentPrefix string
}

// DefaultSettings returns comma-delimited settings with "#" comments.
func DefaultSettings() Settings {
	return Settings{
		Delimiter:     ',',
		CommentPrefix: DefaultCommentPrefix,
	}
}

// StreamingParser reads a delimited file one row at a time.
//
// USAGE:
//
//	parser, err := NewStreamingParser(filePath, settings)
//	if err != nil {
//	    return err
//	}
//	defer parser.Close()
//
//	for parser.Next() {
//	    value, ok := parser.Value("sample")
//	    // ...
//	}
//
//	if err := parser.Err(); err != nil {
//	    return err
//	}
type StreamingParser struct {
	file      io.Closer
	reader    *csv.Reader
	headers   []string
	columns   map[string]int
	current   []string
	rowNumber int
	err       error
}

// NewStreamingParser opens filePath and reads its header line.
//
// PARAMETERS:
//   - filePath: The path to the delimited file.
//   - settings: Delimiter and comment prefix.
//
// RETURNS:
//   - A parser positioned before the first data row.
//   - An error if the file cannot be opened or its header cannot be read.
func NewStreamingParser(filePath string, settings Settings) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	parser, err := NewReaderParser(file, settings)
	if err != nil {
		file.Close()
		return nil, err
	}
	parser.file = file

	return parser, nil
}

// NewReaderParser builds a parser over an already open stream. The caller
// keeps ownership of r.
func NewReaderParser(r io.Reader, settings Settings) (*StreamingParser, error) {
	if settings.Delimiter == 0 {
		settings.Delimiter = ','
	}

	reader := csv.NewReader(NewCommentFilter(r, settings.CommentPrefix))
	configureReader(reader, settings)

	parser := &StreamingParser{reader: reader}
	if err := parser.readHeaders(); err != nil {
		return nil, err
	}

	return parser, nil
}

// configureReader applies the settings to the CSV reader.
func configureReader(reader *csv.Reader, settings Settings) {
	reader.Comma = settings.Delimiter

	// Sheets are hand edited; tolerate ragged rows and stray quotes.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// readHeaders reads the header row and builds the column lookup. Input with
// no header at all (empty, or only comments and blank lines) yields a parser
// with no columns and no rows.
func (p *StreamingParser) readHeaders() error {
	row, err := p.reader.Read()
	if err == io.EOF {
		p.columns = map[string]int{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading header row: %w", err)
	}

	p.headers = cleanHeaders(row)
	p.columns = make(map[string]int, len(p.headers))
	for i, header := range p.headers {
		// A repeated column name resolves to its last occurrence.
		p.columns[header] = i
	}

	return nil
}

// cleanHeaders strips header names and names empty ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if i == 0 {
			// Spreadsheet exports often lead with a UTF-8 byte order mark.
			header = strings.TrimPrefix(header, "\ufeff")
		}
		header = Stripped(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// Next advances to the next data row. It returns false at end of input or
// on a read error, which is then available from Err.
func (p *StreamingParser) Next() bool {
	if p.err != nil {
		return false
	}

	row, err := p.reader.Read()
	if err == io.EOF {
		return false
	}
	if err != nil {
		p.err = fmt.Errorf("error reading row %d: %w", p.rowNumber+1, err)
		return false
	}

	p.rowNumber++
	p.current = row

	return true
}

// Value returns the stripped value of column for the current row. ok is
// false when the header has no such column. A row that is shorter than the
// header yields "" with ok set.
func (p *StreamingParser) Value(column string) (value string, ok bool) {
	i, ok := p.columns[column]
	if !ok {
		return "", false
	}
	if i >= len(p.current) {
		return "", true
	}
	return Stripped(p.current[i]), true
}

// HasColumn reports whether the header names column.
func (p *StreamingParser) HasColumn(column string) bool {
	_, ok := p.columns[column]
	return ok
}

// Headers returns the cleaned header names.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// RowNumber returns the 1-based number of the current data row. The header,
// comments and blank lines are not counted.
func (p *StreamingParser) RowNumber() int {
	return p.rowNumber
}

// Err returns the first read error, if any.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file when the parser opened it.
func (p *StreamingParser) Close() error {
	if p.file == nil {
		return nil
	}
	return p.file.Close()
}
