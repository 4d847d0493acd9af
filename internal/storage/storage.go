package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/classroom-emails/internal/config"
	"github.com/pfrederiksen/classroom-emails/internal/roster"
)

const (
	ColumnName  = "Name"
	ColumnEmail = "Email"
)

// defaultMode is the permission of a newly created CSV file.
const defaultMode os.FileMode = 0644

// ErrMissingColumn is returned when the CSV header lacks Name or Email.
var ErrMissingColumn = errors.New("missing column")

// Storage reads and writes the roster CSV file.
type Storage struct {
	path string
}

// New creates a Storage for the CSV file at path. A leading "~/" is expanded
// to the user's home directory. Nothing is created until Save.
func New(path string) (*Storage, error) {
	path, err := config.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return &Storage{path: path}, nil
}

// Path returns the resolved CSV path.
func (s *Storage) Path() string {
	return s.path
}

// Load reads every record from the CSV file. found is false when the file
// does not exist, in which case there are no records and no error.
func (s *Storage) Load() (records []roster.Record, found bool, err error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	records, err = ReadRecords(f)
	if err != nil {
		return nil, true, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return records, true, nil
}

// Save replaces the CSV file with records. The data is written to a
// temporary file next to the target and renamed into place, so the file on
// disk is either the previous version or the complete new one. The file
// keeps the permissions of the version it replaces; a new file gets
// defaultMode.
func (s *Storage) Save(records []roster.Record) error {
	mode := defaultMode
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := WriteRecords(tmp, records); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing records: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}

// ReadRecords decodes a Name,Email CSV stream. Columns are located by header
// name, case-insensitively, so extra columns are ignored. An empty stream
// yields no records.
func ReadRecords(r io.Reader) ([]roster.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	nameCol, emailCol := -1, -1
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		switch {
		case strings.EqualFold(col, ColumnName):
			nameCol = i
		case strings.EqualFold(col, ColumnEmail):
			emailCol = i
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnName)
	}
	if emailCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnEmail)
	}

	records := make([]roster.Record, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		records = append(records, roster.Record{
			Name:  field(row, nameCol),
			Email: field(row, emailCol),
		})
	}

	return records, nil
}

// WriteRecords encodes records as a Name,Email CSV stream.
func WriteRecords(w io.Writer, records []roster.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{ColumnName, ColumnEmail}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write([]string{rec.Name, rec.Email}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
