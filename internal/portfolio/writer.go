package portfolio

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/esgreport/internal/contracts"
)

// SheetName is the sheet name used when saving an input portfolio
const SheetName = "Holdings"

// Save writes p as an input-format spreadsheet (header row + one row per holding).
// Counterpart of Loader.Load, used for sample portfolios.
func Save(path string, p *contracts.Portfolio) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	columns := p.Columns
	if len(columns) == 0 {
		columns = contracts.RequiredColumns
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = contracts.ColumnHeader(col)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, h := range p.Holdings {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			row[i] = h.Value(col)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
