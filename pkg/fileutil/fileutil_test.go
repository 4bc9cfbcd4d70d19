package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)

	// Existing directory and empty path are both fine.
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(""))
}

func TestDefaultOutputPath(t *testing.T) {
	got := DefaultOutputPath(filepath.Join("data", "counseling_export.csv"))
	assert.Equal(t, "data", filepath.Dir(got))
	base := filepath.Base(got)
	assert.True(t, strings.HasPrefix(base, "counseling_export_"))
	assert.True(t, strings.HasSuffix(base, ".xml"))
}

func TestIssueReportPath(t *testing.T) {
	a := IssueReportPath("reports")
	b := IssueReportPath("reports")
	assert.Equal(t, "reports", filepath.Dir(a))
	assert.True(t, strings.HasPrefix(filepath.Base(a), "validation_issues_"))
	assert.True(t, strings.HasSuffix(a, ".csv"))
	// Unique even within the same timestamp second.
	assert.NotEqual(t, a, b)
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xml")
	require.NoError(t, os.WriteFile(path, []byte("<Root/>"), 0o644))

	backup, err := Backup(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(backup, ".bak"))

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "<Root/>", string(data))
}

func TestBackupMissingFile(t *testing.T) {
	_, err := Backup(filepath.Join(t.TempDir(), "nope.xml"))
	assert.Error(t, err)
}
