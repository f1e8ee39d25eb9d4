package output

import (
	"bytes"
	"encoding/xml"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/samplesheet/internal/types"
)

func sampleIndex() types.Index {
	return types.Index{
		"B": {"sample": "B", "fastqs": "/data/b", "image": ""},
		"A": {"sample": "A", "fastqs": "/data/a&b", "image": "<img>"},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"json": FormatJSON, "JSON": FormatJSON,
		"yaml": FormatYAML, "yml": FormatYAML,
		"xml": FormatXML, " xml ": FormatXML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleIndex(), FormatJSON))

	assert.JSONEq(t, `{
		"A": {"sample": "A", "fastqs": "/data/a&b", "image": "<img>"},
		"B": {"sample": "B", "fastqs": "/data/b", "image": ""}
	}`, buf.String())

	// Samples come out sorted.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"A"`)), bytes.Index(buf.Bytes(), []byte(`"B"`)))
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, FormatJSON))
	assert.Equal(t, "{}\n", buf.String())
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleIndex(), FormatYAML))

	var got map[string]map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "/data/a&b", got["A"]["fastqs"])
	assert.Equal(t, "", got["B"]["image"])
}

func TestWriteXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleIndex(), FormatXML))

	want := `<?xml version="1.0" encoding="UTF-8"?>
<samples>
  <sample name="A">
    <field name="fastqs">/data/a&amp;b</field>
    <field name="image">&lt;img&gt;</field>
    <field name="sample">A</field>
  </sample>
  <sample name="B">
    <field name="fastqs">/data/b</field>
    <field name="image"/>
    <field name="sample">B</field>
  </sample>
</samples>
`
	assert.Equal(t, want, buf.String())

	// The result is well-formed.
	var doc struct {
		Samples []struct {
			Name   string `xml:"name,attr"`
			Fields []struct {
				Name  string `xml:"name,attr"`
				Value string `xml:",chardata"`
			} `xml:"field"`
		} `xml:"sample"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Samples, 2)
	assert.Equal(t, "<img>", doc.Samples[0].Fields[1].Value)
}

func TestWriteXMLEmpty(t *testing.T) {
	var buf bytes.Buffer
	options := DefaultOptions()
	options.IncludeXMLDeclaration = false
	require.NoError(t, WriteWithOptions(&buf, types.Index{}, FormatXML, options))
	assert.Equal(t, "<samples/>\n", buf.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleIndex(), Format("toml")))
	assert.Zero(t, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritePropagatesWriterError(t *testing.T) {
	err := Write(failingWriter{}, sampleIndex(), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
