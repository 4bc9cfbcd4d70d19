// Package fileutil provides the file naming and housekeeping helpers shared
// by the CLI: default output paths, timestamped backups, and directory
// management. Conversion logic never lives here.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const timestampLayout = "20060102_150405"

// EnsureDir creates dir (and parents) if missing.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// DefaultOutputPath derives the XML output path for an input file:
// same directory, same base name, a timestamp suffix, .xml extension.
func DefaultOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.xml", base, time.Now().Format(timestampLayout)))
}

// IssueReportPath names a unique issue export inside dir.
func IssueReportPath(dir string) string {
	short := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return filepath.Join(dir, fmt.Sprintf("validation_issues_%s_%s.csv",
		time.Now().Format(timestampLayout), short))
}

// Backup copies path to a sibling timestamped .bak file and returns the
// backup path. Used before in-place XML fixes.
func Backup(path string) (string, error) {
	backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format(timestampLayout))

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("creating backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copying to backup file %s: %w", backupPath, err)
	}
	return backupPath, nil
}
