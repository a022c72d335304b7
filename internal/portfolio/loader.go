package portfolio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/esgreport/internal/contracts"
	"github.com/wonny/esgreport/pkg/logger"
)

// ErrLoad is returned (wrapped) for any missing or malformed input file
var ErrLoad = errors.New("load portfolio")

// Loader reads the input holdings spreadsheet
// ⭐ SSOT: 입력 포트폴리오 파싱은 여기서만
type Loader struct {
	logger *logger.Logger
}

// NewLoader creates a new portfolio loader
func NewLoader(log *logger.Logger) *Loader {
	return &Loader{logger: log}
}

// Load reads the active sheet of the xlsx file at path.
// The first row is the header; every following row becomes one Holding.
// Rows with an empty cell in any column, named or not, are dropped.
func (l *Loader) Load(path string) (*contracts.Portfolio, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrLoad, path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read rows of %q: %v", ErrLoad, sheet, err)
	}

	// 숫자 셀은 리포트에서도 숫자로 남도록 셀 타입을 확인
	isNumber := func(row, col int) bool {
		cell, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return false
		}
		typ, err := f.GetCellType(sheet, cell)
		if err != nil {
			return false
		}
		return typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset
	}

	p, dropped, err := parseRows(rows, isNumber)
	if err != nil {
		return nil, err
	}

	if dropped > 0 {
		l.logger.Warnf("Dropped %d incomplete rows from %s", dropped, path)
	}
	l.logger.WithFields(map[string]interface{}{
		"path":     path,
		"sheet":    sheet,
		"holdings": p.Count(),
		"dropped":  dropped,
	}).Info("Input portfolio loaded")

	return p, nil
}

// parseRows turns raw sheet rows into a Portfolio.
// Returns the number of incomplete rows that were dropped.
// isNumber reports whether the cell at 0-based (row, col) holds a number;
// nil treats every extra column as text.
func parseRows(rows [][]string, isNumber func(row, col int) bool) (*contracts.Portfolio, int, error) {
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("%w: sheet is empty", ErrLoad)
	}

	// GetRows trims trailing empty cells, so the widest row sets the column count
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	// header: column key -> index. Header-less columns are kept under UnnamedColumn(i)
	p := &contracts.Portfolio{}
	index := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(rows[0]) {
			name = strings.TrimSpace(rows[0][i])
		}
		if name == "" {
			name = contracts.UnnamedColumn(i)
		}
		if _, dup := index[name]; dup {
			return nil, 0, fmt.Errorf("%w: duplicate column %q", ErrLoad, name)
		}
		index[name] = i
		p.Columns = append(p.Columns, name)
	}

	for _, col := range contracts.RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("%w: missing required column %q", ErrLoad, col)
		}
	}

	dropped := 0
	for r, row := range rows[1:] {
		values, complete, empty := rowValues(row, p.Columns, index)
		if empty {
			continue
		}
		if !complete {
			dropped++
			continue
		}

		raw := values[contracts.ColWeight]
		weight, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			// r+2: 1-based, header excluded
			return nil, 0, fmt.Errorf("%w: row %d: invalid %s %q", ErrLoad, r+2, contracts.ColWeight, raw)
		}

		h := contracts.Holding{
			Instrument: values[contracts.ColInstrument],
			IssuerName: values[contracts.ColIssuerName],
			Weight:     weight,
		}
		for _, col := range p.Columns {
			if isRequired(col) {
				continue
			}
			if h.Extra == nil {
				h.Extra = make(map[string]interface{})
			}
			h.Extra[col] = extraValue(values[col], isNumber != nil && isNumber(r+1, index[col]))
		}
		p.Holdings = append(p.Holdings, h)
	}

	return p, dropped, nil
}

// rowValues extracts the cells of row by column key.
// complete is false when any cell is empty; empty is true when all are.
// Whitespace-only text is a value, not an empty cell.
func rowValues(row []string, columns []string, index map[string]int) (values map[string]string, complete bool, empty bool) {
	values = make(map[string]string, len(columns))
	complete, empty = true, true
	for _, col := range columns {
		i := index[col]
		v := ""
		if i < len(row) {
			v = row[i]
		}
		if v == "" {
			complete = false
		} else {
			empty = false
		}
		values[col] = v
	}
	return values, complete, empty
}

// extraValue keeps numeric cells as float64 and everything else as text
func extraValue(v string, number bool) interface{} {
	if number {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}

func isRequired(col string) bool {
	for _, req := range contracts.RequiredColumns {
		if col == req {
			return true
		}
	}
	return false
}
