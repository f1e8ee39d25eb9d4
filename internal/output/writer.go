// =============================================================================
// Sample Sheet Loader - Output Writer
// =============================================================================
//
// This module renders a loaded sample sheet index as JSON, YAML or XML.
// Samples and fields are always written in sorted order so output is stable
// between runs.
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <samples>
//     <sample name="A">
//       <field name="area">A1</field>
//       <field name="darkimage"/>
//       ...
//     </sample>
//   </samples>
//
// Field names are carried in attributes because sheet headers are not
// guaranteed to be valid XML element names.
//
// =============================================================================

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/samplesheet/internal/types"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXML  Format = "xml"
)

// ParseFormat accepts json, yaml (or yml) and xml, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use json, yaml or xml)", s)
	}
}

// =============================================================================
// WRITER
// =============================================================================

// Options controls XML rendering. JSON and YAML use Indent only.
type Options struct {
	// Indent is the string used for each nesting level.
	Indent string

	// IncludeXMLDeclaration adds <?xml ...?> at the top of XML output.
	IncludeXMLDeclaration bool

	RootElement   string
	SampleElement string
	FieldElement  string

	// NameAttribute holds the sample or field name on each element.
	NameAttribute string
}

// DefaultOptions returns the layout shown in the package comment.
func DefaultOptions() Options {
	return Options{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "samples",
		SampleElement:         "sample",
		FieldElement:          "field",
		NameAttribute:         "name",
	}
}

// Write renders idx to w in the given format with default options.
func Write(w io.Writer, idx types.Index, format Format) error {
	return WriteWithOptions(w, idx, format, DefaultOptions())
}

// WriteWithOptions renders idx to w.
//
// PARAMETERS:
//   - w: The destination.
//   - idx: The loaded sample sheet.
//   - format: json, yaml or xml.
//   - options: Indentation and XML element names.
//
// RETURNS:
//   - An error if encoding or writing fails.
func WriteWithOptions(w io.Writer, idx types.Index, format Format, options Options) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = renderJSON(idx, options.Indent)
	case FormatYAML:
		data, err = renderYAML(idx, options.Indent)
	case FormatXML:
		data = renderXML(idx, options)
	default:
		err = fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// =============================================================================
// ENCODERS
// =============================================================================

// renderJSON relies on encoding/json sorting map keys.
func renderJSON(idx types.Index, indent string) ([]byte, error) {
	if idx == nil {
		idx = types.Index{}
	}
	data, err := json.MarshalIndent(idx, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// renderYAML relies on yaml.v3 sorting map keys.
func renderYAML(idx types.Index, indent string) ([]byte, error) {
	if idx == nil {
		idx = types.Index{}
	}

	var buffer bytes.Buffer
	enc := yaml.NewEncoder(&buffer)
	enc.SetIndent(max(len(indent), 2))
	if err := enc.Encode(idx); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderXML(idx types.Index, options Options) []byte {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	}

	if len(idx) == 0 {
		buffer.WriteString("<" + options.RootElement + "/>\n")
		return buffer.Bytes()
	}

	buffer.WriteString("<" + options.RootElement + ">\n")

	for _, sample := range idx.Keys() {
		record := idx[sample]

		writeIndent(&buffer, options.Indent, 1)
		writeOpenTag(&buffer, options.SampleElement, options.NameAttribute, sample)
		buffer.WriteString(">\n")

		for _, field := range record.Fields() {
			writeField(&buffer, options, field, record[field])
		}

		writeIndent(&buffer, options.Indent, 1)
		buffer.WriteString("</" + options.SampleElement + ">\n")
	}

	buffer.WriteString("</" + options.RootElement + ">\n")
	return buffer.Bytes()
}

// writeField writes one field element; empty values become self-closing tags.
func writeField(buffer *bytes.Buffer, options Options, name, value string) {
	writeIndent(buffer, options.Indent, 2)
	writeOpenTag(buffer, options.FieldElement, options.NameAttribute, name)

	if value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")
	buffer.WriteString(escapeXML(value))
	buffer.WriteString("</" + options.FieldElement + ">\n")
}

func writeOpenTag(buffer *bytes.Buffer, element, attr, value string) {
	buffer.WriteString("<")
	buffer.WriteString(element)
	fmt.Fprintf(buffer, " %s=\"%s\"", attr, escapeXML(value))
}

func writeIndent(buffer *bytes.Buffer, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}
}

// escapeXML escapes special characters in XML text and attribute values.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
