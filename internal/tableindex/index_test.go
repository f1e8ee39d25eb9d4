package tableindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/samplesheet/internal/types"
	"github.com/ginjaninja78/samplesheet/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSheet(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIndexRequiredAndOptional(t *testing.T) {
	path := writeSheet(t, "sheet.csv", ""+
		"sample,fastqs,image,extra\n"+
		"A,\"/x/fq\",,ignored\n"+
		"B,'/y/fq', img.tif ,ignored\n")

	idx, err := Index(path, "sample", []string{"sample", "fastqs"}, []string{"image", "id"}, ',')
	require.NoError(t, err)

	assert.Equal(t, types.Index{
		"A": {"sample": "A", "fastqs": "/x/fq", "image": "", "id": ""},
		"B": {"sample": "B", "fastqs": "/y/fq", "image": "img.tif", "id": ""},
	}, idx)
}

func TestIndexTabDelimitedWithComments(t *testing.T) {
	path := writeSheet(t, "sheet.tsv", ""+
		"# header comment\n"+
		"sample\tarea\n"+
		"\n"+
		"A\tA1\n"+
		"   # indented comment\n"+
		"B\tB1\n")

	idx, err := Index(path, "sample", []string{"sample", "area"}, nil, '\t')
	require.NoError(t, err)

	assert.Len(t, idx, 2)
	assert.Equal(t, "B1", idx["B"]["area"])
}

func TestIndexAccumulatesRequiredFieldErrors(t *testing.T) {
	path := writeSheet(t, "sheet.csv", ""+
		"sample,fastqs\n"+
		"A,\n"+
		"# not a row\n"+
		"\n"+
		"B,/fq\n"+
		"C,\n")

	idx, err := Index(path, "sample", []string{"sample", "fastqs", "area"}, nil, ',')
	require.Error(t, err)
	assert.Nil(t, idx)

	errs, ok := validation.AsErrors(err)
	require.True(t, ok)

	type found struct {
		field string
		row   int
	}
	var got []found
	for _, e := range errs {
		assert.Equal(t, validation.KindMissingRequired, e.Kind)
		assert.Equal(t, path, e.File)
		got = append(got, found{e.Field, e.RowNumber})
	}

	// Rows are counted over parsed data rows; the comment and blank line
	// between A and B do not shift B and C.
	assert.Equal(t, []found{
		{"fastqs", 1}, {"area", 1},
		{"area", 2},
		{"fastqs", 3}, {"area", 3},
	}, got)
}

func TestIndexMissingKeyColumnNotRequired(t *testing.T) {
	path := writeSheet(t, "sheet.csv", "name,area\nA,A1\n")

	_, err := Index(path, "sample", []string{"area"}, nil, ',')
	require.Error(t, err)

	errs, ok := validation.AsErrors(err)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "sample", errs[0].Field)
}

func TestIndexDuplicateMerge(t *testing.T) {
	path := writeSheet(t, "sheet.csv", ""+
		"sample,slide,image\n"+
		"A,S1,first.tif\n"+
		"A,S2,\n")

	idx, err := Index(path, "sample", []string{"sample", "slide"}, []string{"image"}, ',')
	require.NoError(t, err)

	assert.Equal(t, types.Record{"sample": "A", "slide": "S2", "image": ""}, idx["A"])
}

func TestIndexDuplicateKeepFirst(t *testing.T) {
	path := writeSheet(t, "sheet.csv", "sample,slide\nA,S1\nA,S2\n")

	opts := DefaultOptions()
	opts.KeyField = "sample"
	opts.RequiredFields = []string{"sample", "slide"}
	opts.Duplicates = DuplicateKeepFirst

	idx, err := IndexWithOptions(path, opts)
	require.NoError(t, err)
	assert.Equal(t, "S1", idx["A"]["slide"])
}

func TestIndexDuplicateReject(t *testing.T) {
	path := writeSheet(t, "sheet.csv", "sample,slide\nA,S1\nB,S1\nA,S2\n")

	opts := DefaultOptions()
	opts.KeyField = "sample"
	opts.RequiredFields = []string{"sample", "slide"}
	opts.Duplicates = DuplicateReject

	_, err := IndexWithOptions(path, opts)
	require.Error(t, err)

	errs, ok := validation.AsErrors(err)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, validation.KindDuplicateKey, errs[0].Kind)
	assert.Equal(t, 3, errs[0].RowNumber)
	assert.Contains(t, errs[0].Message, "first seen on line 1")
}

func TestIndexUnreadableFile(t *testing.T) {
	_, err := Index(filepath.Join(t.TempDir(), "absent.csv"), "sample", nil, nil, ',')
	require.Error(t, err)

	_, ok := validation.AsErrors(err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIndexEmptyKeyField(t *testing.T) {
	_, err := IndexWithOptions("whatever.csv", DefaultOptions())
	require.Error(t, err)
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := map[string]DuplicatePolicy{
		"":           DuplicateMerge,
		"merge":      DuplicateMerge,
		"Keep_First": DuplicateKeepFirst,
		"first":      DuplicateKeepFirst,
		" reject ":   DuplicateReject,
	}
	for in, want := range tests {
		got, err := ParseDuplicatePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDuplicatePolicy("sometimes")
	assert.Error(t, err)
}

func TestIndexWithoutHeaderIsEmpty(t *testing.T) {
	for name, content := range map[string]string{
		"empty":         "",
		"comments only": "# sample,area\n\n   # nothing here\n",
		"header only":   "sample,area\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeSheet(t, "sheet.csv", content)

			idx, err := Index(path, "sample", []string{"sample", "area"}, nil, ',')
			require.NoError(t, err)
			assert.Empty(t, idx)
		})
	}
}

func TestIndexWithoutCommentPrefixKeepsHashRows(t *testing.T) {
	path := writeSheet(t, "sheet.csv", ""+
		"sample,area\n"+
		"\n"+
		"#1,A1\n")

	opts := DefaultOptions()
	opts.KeyField = "sample"
	opts.RequiredFields = []string{"sample", "area"}
	opts.CommentPrefix = ""

	idx, err := IndexWithOptions(path, opts)
	require.NoError(t, err)
	assert.Equal(t, types.Index{"#1": {"sample": "#1", "area": "A1"}}, idx)
}
