package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/classroom-emails/internal/config"
	"github.com/pfrederiksen/classroom-emails/internal/roster"
)

// SheetName is the worksheet that ExportXLSX writes to.
const SheetName = "Roster"

// ExportXLSX writes records to an Excel workbook with a Name/Email header.
// Any existing file at path is replaced.
func ExportXLSX(records []roster.Record, path string) error {
	path, err := config.ExpandHome(path)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := []interface{}{ColumnName, ColumnEmail}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{rec.Name, rec.Email}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
