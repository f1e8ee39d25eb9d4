package utils

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/samplesheet/internal/logging"
)

func TestNormalizePathRelativeToBase(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "reads")
	require.NoError(t, os.Mkdir(target, 0o755))

	got, err := NormalizePath("reads", dir, true)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestNormalizePathAbsoluteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "img.tif")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	first, err := NormalizePath(target, "", true)
	require.NoError(t, err)
	assert.Equal(t, target, first)

	second, err := NormalizePath(first, "/somewhere/else", true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizePathWithoutBaseUsesWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := NormalizePath("some/file.txt", "", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "some/file.txt"), got)
}

func TestNormalizePathRelativeBaseStillJoins(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var logs bytes.Buffer
	logging.Setup("warn", "text", &logs)

	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := NormalizePath("x.fq", "rel/dir", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "rel/dir/x.fq"), got)

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "base directory should be an absolute path")
	assert.Contains(t, logs.String(), "base_dir=rel/dir")
}

func TestNormalizePathAbsoluteBaseDoesNotWarn(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var logs bytes.Buffer
	logging.Setup("warn", "text", &logs)

	_, err := NormalizePath("x.fq", t.TempDir(), false)
	require.NoError(t, err)
	assert.Empty(t, logs.String())
}

func TestNormalizePathExpandsVariables(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SAMPLESHEET_TEST_DATA", dir)

	got, err := NormalizePath("$SAMPLESHEET_TEST_DATA/a.csv", "", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.csv"), got)

	got, err = NormalizePath("${SAMPLESHEET_TEST_DATA}/b.csv", "", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.csv"), got)
}

func TestExpandVars(t *testing.T) {
	t.Setenv("SAMPLESHEET_RUN", "/runs/7")
	t.Setenv("SAMPLESHEET_EMPTY", "")

	tests := []struct {
		in   string
		want string
	}{
		{"$SAMPLESHEET_RUN/a.fq", "/runs/7/a.fq"},
		{"${SAMPLESHEET_RUN}_b.fq", "/runs/7_b.fq"},
		{"x/$SAMPLESHEET_EMPTY/y", "x//y"},
		{"/data/$SAMPLESHEET_SURELY_UNSET/x", "/data/$SAMPLESHEET_SURELY_UNSET/x"},
		{"/data/${SAMPLESHEET_SURELY_UNSET}/x", "/data/${SAMPLESHEET_SURELY_UNSET}/x"},
		{"a$$b.fq", "a$$b.fq"},
		{"cost$5.fq", "cost$5.fq"},
		{"run_${x.fq", "run_${x.fq"},
		{"${}", "${}"},
		{"trailing$", "trailing$"},
		{"$-dash", "$-dash"},
		{"plain/path.fq", "plain/path.fq"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandVars(tt.in), tt.in)
	}
}

func TestNormalizePathKeepsLiteralDollars(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a$$b.fq", "cost$5.fq", "run_${x.fq"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))

		got, err := NormalizePath(name, dir, true)
		require.NoError(t, err, name)
		assert.Equal(t, filepath.Join(dir, name), got)
	}
}

func TestExpandUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, home, ExpandUser("~"))
	assert.Equal(t, filepath.Join(home, "fastqs"), ExpandUser("~/fastqs"))
	assert.Equal(t, "/abs/~/x", ExpandUser("/abs/~/x"))
	assert.Equal(t, "~no-such-user-here/x", ExpandUser("~no-such-user-here/x"))
}

func TestNormalizePathMissing(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope.fq")

	_, err := NormalizePath("nope.fq", dir, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreadable))

	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, missing, pathErr.Path)
	assert.Contains(t, err.Error(), missing)
}

func TestNormalizePathMissingWithoutCheck(t *testing.T) {
	dir := t.TempDir()

	got, err := NormalizePath("nope.fq", dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nope.fq"), got)
}

func TestReadablePermissions(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	dir := t.TempDir()

	file := filepath.Join(dir, "locked.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o000))
	err := Readable(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not readable")

	noExec := filepath.Join(dir, "noexec")
	require.NoError(t, os.Mkdir(noExec, 0o755))
	require.NoError(t, os.Chmod(noExec, 0o644))
	t.Cleanup(func() { os.Chmod(noExec, 0o755) })

	err = Readable(noExec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute permissions")
}
