package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Table is one titled block of a sheet
type Table struct {
	Title   string
	Columns []string
	Rows    [][]interface{}
}

// styles are created once per workbook
type styles struct {
	bold   int
	title  int
	header int
}

func newStyles(f *excelize.File) (*styles, error) {
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("bold style: %w", err)
	}

	title, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("title style: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	return &styles{bold: bold, title: title, header: header}, nil
}

// sheetWriter appends rows to one sheet and tracks column widths
type sheetWriter struct {
	f      *excelize.File
	name   string
	styles *styles
	row    int         // last used row, 0 = none
	widths map[int]int // 1-based column -> longest value
}

func newSheetWriter(f *excelize.File, name string, st *styles) *sheetWriter {
	return &sheetWriter{f: f, name: name, styles: st, widths: make(map[int]int)}
}

// setCell writes a single cell at (col, row) with an optional style
func (s *sheetWriter) setCell(col, row int, value interface{}, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := s.f.SetCellValue(s.name, cell, value); err != nil {
		return fmt.Errorf("%s!%s: %w", s.name, cell, err)
	}
	if style != 0 {
		if err := s.f.SetCellStyle(s.name, cell, cell, style); err != nil {
			return fmt.Errorf("%s!%s style: %w", s.name, cell, err)
		}
	}
	if row > s.row {
		s.row = row
	}
	s.track(col, value)
	return nil
}

// appendRow writes values on the next row
func (s *sheetWriter) appendRow(values []interface{}) error {
	row := s.row + 1
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(s.name, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", s.name, row, err)
	}
	for i, v := range values {
		s.track(i+1, v)
	}
	s.row = row
	return nil
}

// blank skips n rows
func (s *sheetWriter) blank(n int) {
	s.row += n
}

// addTable writes a title row, a styled header row and the data rows
func (s *sheetWriter) addTable(t Table) error {
	titleRow := s.row + 1
	if err := s.setCell(1, titleRow, t.Title, s.styles.title); err != nil {
		return err
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := s.appendRow(header); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, s.row)
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), s.row)
		if err := s.f.SetCellStyle(s.name, first, last, s.styles.header); err != nil {
			return fmt.Errorf("%s header style: %w", s.name, err)
		}
	}

	for _, r := range t.Rows {
		if err := s.appendRow(r); err != nil {
			return err
		}
	}
	return nil
}

// resizeColumns sets every used column to the width of its longest value
func (s *sheetWriter) resizeColumns() error {
	for col, width := range s.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := s.f.SetColWidth(s.name, name, name, float64(width)); err != nil {
			return fmt.Errorf("%s column %s width: %w", s.name, name, err)
		}
	}
	return nil
}

func (s *sheetWriter) track(col int, v interface{}) {
	text := cellText(v)
	if text == "" {
		return
	}
	if n := len([]rune(text)); n > s.widths[col] {
		s.widths[col] = n
	}
}

// cellText is the string form used for column sizing.
// Empty and zero values do not count.
func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == 0 || math.IsNaN(t) {
			return ""
		}
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if t == math.Trunc(t) {
			s += ".0"
		}
		return s
	case int:
		if t == 0 {
			return ""
		}
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
