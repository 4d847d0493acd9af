package storage

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/classroom-emails/internal/roster"
)

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "roster.xlsx")
	records := []roster.Record{
		{Name: "Asha Rao 20BCE10001", Email: "asha.20bce10001@example.org"},
		{Name: "Bala 20BCE10002", Email: "bala.20bce10002@example.org"},
	}

	if err := ExportXLSX(records, path); err != nil {
		t.Fatalf("ExportXLSX() error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != ColumnName || rows[0][1] != ColumnEmail {
		t.Errorf("header = %v, want [Name Email]", rows[0])
	}
	if rows[2][0] != records[1].Name || rows[2][1] != records[1].Email {
		t.Errorf("row 3 = %v, want %v", rows[2], records[1])
	}
}
