package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/esgreport/internal/esg"
	"github.com/wonny/esgreport/pkg/logger"
)

// Sheet names, in workbook order
const (
	SheetPortfolio  = "Portfolio"
	SheetNoCoverage = "No ESG Coverage"
	SheetByWeight   = "By Weight"
	SheetByScore    = "By ESG Score"
	SheetGeography  = "Geography"
)

// Sheets lists the report sheets in order
var Sheets = []string{SheetPortfolio, SheetNoCoverage, SheetByWeight, SheetByScore, SheetGeography}

// Writer renders an aggregation result into a multi-sheet xlsx file
// ⭐ SSOT: 엑셀 리포트 생성은 여기서만
type Writer struct {
	logger *logger.Logger
}

// NewWriter creates a new report writer
func NewWriter(log *logger.Logger) *Writer {
	return &Writer{logger: log}
}

// Write builds the workbook and saves it to path, replacing any existing file.
// The file is written next to path first and renamed into place, so a failed
// write never leaves a truncated report behind.
func (w *Writer) Write(path string, res *esg.Result) error {
	f, err := Build(res)
	if err != nil {
		return err
	}
	defer f.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".esgreport-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move report into place: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"path":   path,
		"sheets": len(Sheets),
	}).Info("Report written")

	return nil
}

// Build renders the five report sheets into a new workbook
func Build(res *esg.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", SheetPortfolio); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename first sheet: %w", err)
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	builders := []func(*sheetWriter, *esg.Result) error{
		writePortfolioSheet,
		writeNoCoverageSheet,
		writeByWeightSheet,
		writeByScoreSheet,
		writeGeographySheet,
	}
	for i, build := range builders {
		sw := newSheetWriter(f, Sheets[i], st)
		if err := build(sw, res); err != nil {
			f.Close()
			return nil, err
		}
		if err := sw.resizeColumns(); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writePortfolioSheet(sw *sheetWriter, res *esg.Result) error {
	return sw.addTable(PortfolioTable(res))
}

func writeNoCoverageSheet(sw *sheetWriter, res *esg.Result) error {
	summary := fmt.Sprintf("Number of holdings without ESG coverage: %s", esg.FormatPercent(res.Complement(), 2))
	if err := sw.setCell(1, 1, summary, sw.styles.bold); err != nil {
		return err
	}
	sw.blank(2)
	return sw.addTable(UncoveredTable(res))
}

func writeByWeightSheet(sw *sheetWriter, res *esg.Result) error {
	if err := sw.addTable(RankedTable(fmt.Sprintf("Top %d holdings by weight", res.TopN), res.TopByWeight, true)); err != nil {
		return err
	}
	sw.blank(2)
	return sw.addTable(RankedTable(fmt.Sprintf("Bottom %d holdings by weight", res.TopN), res.BottomByWeight, true))
}

func writeByScoreSheet(sw *sheetWriter, res *esg.Result) error {
	if err := sw.addTable(RankedTable(fmt.Sprintf("Top %d holdings by ESG Score", res.TopN), res.TopByScore, false)); err != nil {
		return err
	}
	sw.blank(2)
	return sw.addTable(RankedTable(fmt.Sprintf("Bottom %d holdings by ESG Score", res.TopN), res.BottomByScore, false))
}

func writeGeographySheet(sw *sheetWriter, res *esg.Result) error {
	tables := GeographyTables(res)
	for i, t := range tables {
		if i > 0 {
			sw.blank(2)
		}
		if err := sw.addTable(t); err != nil {
			return err
		}
	}
	return nil
}
