// Package reportfile persists downloaded report bodies and lists what has
// been saved. Filenames carry the report number, download date, and an
// extension chosen from the detected format.
package reportfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flexquery-dev/flexquery/internal/format"
)

// RawReport is a downloaded report body together with its detected format.
type RawReport struct {
	ReportNumber string
	Data         []byte
	Format       format.Format
	Downloaded   time.Time
}

// FileInfo describes one saved statement file.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Filename returns the persisted name, e.g. "123456_20250923_statement.xml".
func (r RawReport) Filename() string {
	return fmt.Sprintf("%s_%s_statement.%s",
		r.ReportNumber, r.Downloaded.Format("20060102"), r.Format.Ext())
}

// Save writes the report into dir, creating the directory if needed, and
// returns the full path of the written file.
func Save(dir string, report RawReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(dir, report.Filename())
	if err := os.WriteFile(path, report.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Scan returns the statement files saved under dir. A missing directory is
// not an error; it just means nothing has been downloaded yet.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading output dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.Contains(e.Name(), "_statement.") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}
