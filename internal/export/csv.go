// Package export writes a LeadSet out as CSV, JSON or a terminal table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"leadgen-engine/internal/domain"
)

// WriteCSV writes the header row followed by one row per record, in
// insertion order.
func WriteCSV(w io.Writer, set *domain.LeadSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range set.Records() {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename is the default output name for a run finished at t.
func Filename(t time.Time) string {
	return "leads_" + t.UTC().Format("20060102_150405") + ".csv"
}

// SaveCSV writes the set to path via a temp file and rename.
func SaveCSV(path string, set *domain.LeadSet) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, set); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Rows maps each record to a column-name keyed object with the same string
// values as the CSV.
func Rows(set *domain.LeadSet) []map[string]string {
	out := make([]map[string]string, 0, set.Len())
	for _, r := range set.Records() {
		row := r.Row()
		m := make(map[string]string, len(row))
		for i, col := range domain.Columns {
			m[col] = row[i]
		}
		out = append(out, m)
	}
	return out
}

func WriteJSON(w io.Writer, set *domain.LeadSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Rows(set))
}
