// Package history keeps a per-output-directory CSV log of downloads, one row
// per completed fetch.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Entry is one row in history.csv.
type Entry struct {
	Timestamp    time.Time
	RunID        string
	ReportNumber string
	Format       string
	File         string
}

// Header is the CSV header for history.csv.
const Header = "timestamp,run_id,report_number,format,file"

const (
	numFields       = 5
	historyFile     = "history.csv"
	colTimestamp    = 0
	colRunID        = 1
	colReportNumber = 2
	colFormat       = 3
	colFile         = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colReportNumber] = e.ReportNumber
	row[colFormat] = e.Format
	row[colFile] = e.File
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp:    ts,
		RunID:        record[colRunID],
		ReportNumber: record[colReportNumber],
		Format:       record[colFormat],
		File:         record[colFile],
	}, nil
}

// Append writes entries to <dir>/history.csv, creating the file and header
// if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	path := filepath.Join(dir, historyFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	if needsHeader {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	defer cw.Flush()
	for _, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing history row: %w", err)
		}
	}
	return cw.Error()
}

// Read returns all entries from <dir>/history.csv. A missing file yields an
// empty log.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, historyFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading history CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
