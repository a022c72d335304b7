package datagen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/esgreport/internal/contracts"
)

// FixtureSheet is the sheet name of an ESG fixture file
const FixtureSheet = "ESG"

var fixtureColumns = append([]string{contracts.ColInstrument}, contracts.ESGColumns...)

// StaticFetcher serves ESG records from memory instead of the data platform
type StaticFetcher struct {
	records map[string]contracts.ESGRecord
}

// NewStaticFetcher indexes records by instrument. The first record per instrument wins.
func NewStaticFetcher(records []contracts.ESGRecord) *StaticFetcher {
	m := make(map[string]contracts.ESGRecord, len(records))
	for _, r := range records {
		if _, ok := m[r.Instrument]; !ok {
			m[r.Instrument] = r
		}
	}
	return &StaticFetcher{records: m}
}

// FetchESG returns the known records in request order. Unknown instruments are skipped.
func (s *StaticFetcher) FetchESG(ctx context.Context, instruments []string) ([]contracts.ESGRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]contracts.ESGRecord, 0, len(instruments))
	for _, id := range instruments {
		if r, ok := s.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// SaveFixture writes records to an xlsx file, one row per record
func SaveFixture(path string, records []contracts.ESGRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", FixtureSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(fixtureColumns))
	for i, c := range fixtureColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(FixtureSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		var score interface{}
		if r.Score != nil {
			score = *r.Score
		}
		row := []interface{}{r.Instrument, score, r.Sector, r.Country, r.Region}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(FixtureSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// LoadFixture reads a file written by SaveFixture
func LoadFixture(path string) ([]contracts.ESGRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int)
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range fixtureColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("fixture %s: missing column %q", path, col)
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]contracts.ESGRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec := contracts.ESGRecord{
			Instrument: cell(row, contracts.ColInstrument),
			Sector:     cell(row, contracts.ColSector),
			Country:    cell(row, contracts.ColCountry),
			Region:     cell(row, contracts.ColRegion),
		}
		if rec.Instrument == "" {
			continue
		}
		if s := cell(row, contracts.ColESGScore); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("fixture %s row %d: score %q: %w", path, n+2, s, err)
			}
			rec.Score = &v
		}
		records = append(records, rec)
	}
	return records, nil
}
