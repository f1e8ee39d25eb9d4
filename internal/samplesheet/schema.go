package samplesheet

import (
	"slices"

	"github.com/ginjaninja78/samplesheet/internal/csvparser"
	"github.com/ginjaninja78/samplesheet/internal/tableindex"
	"github.com/ginjaninja78/samplesheet/internal/xlsxparser"
)

// KeyField is the column sample sheets are indexed by.
const KeyField = "sample"

// DefaultRequiredFields returns the columns every sample sheet must provide.
func DefaultRequiredFields() []string {
	return []string{"sample", "fastqs", "cytaimage", "slide", "area"}
}

// DefaultOptionalFields returns the recognized optional columns.
func DefaultOptionalFields() []string {
	return []string{"id", "image", "darkimage", "colorizedimage", "loupe_alignment", "barcode_csv"}
}

// DefaultFileLikeFields returns the columns holding file or directory paths.
func DefaultFileLikeFields() []string {
	return []string{"fastqs", "cytaimage", "image", "darkimage", "colorizedimage", "loupe_alignment", "barcode_csv"}
}

// DefaultRemap returns the fallback rules applied after indexing: a missing
// or empty id takes the sample name.
func DefaultRemap() []RemapRule {
	return []RemapRule{{Field: "id", Fallback: "sample"}}
}

// RemapRule fills Field from Fallback when Field is missing or empty.
type RemapRule struct {
	Field    string `yaml:"field"`
	Fallback string `yaml:"fallback"`
}

// Schema describes the columns of a sample sheet. The zero value is not
// useful; start from DefaultSchema.
type Schema struct {
	KeyField       string
	RequiredFields []string
	OptionalFields []string

	// Remap rules are applied in order.
	Remap []RemapRule

	// FileLikeFields are resolved against the sheet's directory and must
	// point at readable paths when set.
	FileLikeFields []string

	CommentPrefix string
	Duplicates    tableindex.DuplicatePolicy
}

// DefaultSchema returns a fresh copy of the standard sample sheet schema.
func DefaultSchema() Schema {
	return Schema{
		KeyField:       KeyField,
		RequiredFields: DefaultRequiredFields(),
		OptionalFields: DefaultOptionalFields(),
		Remap:          DefaultRemap(),
		FileLikeFields: DefaultFileLikeFields(),
		CommentPrefix:  csvparser.DefaultCommentPrefix,
		Duplicates:     tableindex.DuplicateMerge,
	}
}

// Clone returns a deep copy so callers can adjust a schema without touching
// the one it came from.
func (s Schema) Clone() Schema {
	s.RequiredFields = slices.Clone(s.RequiredFields)
	s.OptionalFields = slices.Clone(s.OptionalFields)
	s.Remap = slices.Clone(s.Remap)
	s.FileLikeFields = slices.Clone(s.FileLikeFields)
	return s
}

// SchemaFromTemplate builds a schema from a parsed XLSX template. Settings
// a template cannot express (key field, comment prefix, duplicate policy)
// are taken from base.
func SchemaFromTemplate(tmpl *xlsxparser.Template, base Schema) Schema {
	s := base.Clone()
	s.RequiredFields = nil
	s.OptionalFields = nil
	s.FileLikeFields = nil
	s.Remap = nil

	for _, f := range tmpl.Fields {
		if f.Required {
			s.RequiredFields = append(s.RequiredFields, f.Column)
		} else {
			s.OptionalFields = append(s.OptionalFields, f.Column)
		}
		if f.FileLike {
			s.FileLikeFields = append(s.FileLikeFields, f.Column)
		}
		if f.Fallback != "" {
			s.Remap = append(s.Remap, RemapRule{Field: f.Column, Fallback: f.Fallback})
		}
	}

	return s
}
