// Package flatfile persists entity sets as comma-delimited tables: a header
// line naming the fields, then one record per line. Values must not contain
// the delimiter; the format has no escaping and a value with an embedded
// comma corrupts its record. This is a documented limitation of the tables
// this system shares with other tools, not something to fix here.
package flatfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Record is one row keyed by field name. Fields absent from a record are
// written as empty strings.
type Record map[string]string

// Table reads and writes a single delimited table file. Every write replaces
// the whole file: records are staged to a temp file in the same directory and
// moved into place with a rename.
type Table struct {
	path   string
	fields []string
}

func NewTable(path string, fields []string) *Table {
	return &Table{path: path, fields: fields}
}

// Path returns the location of the table file.
func (t *Table) Path() string { return t.path }

// Fields returns the field names in their fixed write order.
func (t *Table) Fields() []string { return t.fields }

// ReadAll loads every record from the table. A missing file is an empty
// table, not an error, so a first run starts from nothing.
func (t *Table) ReadAll() ([]Record, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read table %s: %w", t.path, err)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, nil
	}
	// Field names come from the file itself so that records written by an
	// older field order still map correctly.
	headers := strings.Split(strings.TrimRight(lines[0], "\r"), ",")

	var records []Record
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		values := strings.Split(line, ",")
		rec := Record{}
		for i, h := range headers {
			if i < len(values) {
				rec[h] = values[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteAll replaces the table contents with the given records. The new file
// is staged next to the target and renamed over it, so readers see either the
// prior version or the full new one.
func (t *Table) WriteAll(records []Record) error {
	var b strings.Builder
	b.WriteString(strings.Join(t.fields, ","))
	b.WriteByte('\n')
	for _, rec := range records {
		values := make([]string, len(t.fields))
		for i, f := range t.fields {
			values[i] = rec[f]
		}
		b.WriteString(strings.Join(values, ","))
		b.WriteByte('\n')
	}

	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(t.path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to stage table %s: %w", t.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write table %s: %w", t.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write table %s: %w", t.path, err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace table %s: %w", t.path, err)
	}
	return nil
}
