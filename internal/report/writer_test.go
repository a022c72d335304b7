package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/esgreport/internal/contracts"
	"github.com/wonny/esgreport/internal/esg"
	"github.com/wonny/esgreport/pkg/logger"
)

func samplePortfolio() *contracts.Portfolio {
	return &contracts.Portfolio{
		Columns: []string{contracts.ColInstrument, contracts.ColIssuerName, contracts.ColWeight},
		Holdings: []contracts.Holding{
			{Instrument: "VOD.L", IssuerName: "Vodafone Group PLC", Weight: 0.15},
			{Instrument: "AAPL.O", IssuerName: "Apple Inc", Weight: 0.2},
			{Instrument: "7203.T", IssuerName: "Toyota Motor Corp", Weight: 0.1},
			{Instrument: "BP.L", IssuerName: "BP PLC", Weight: 0.05},
			{Instrument: "MSFT.O", IssuerName: "Microsoft Corp", Weight: 0.25},
			{Instrument: "SAP.DE", IssuerName: "SAP SE", Weight: 0.1},
			{Instrument: "NESN.S", IssuerName: "Nestle SA", Weight: 0.15},
		},
	}
}

func sampleRecords() []contracts.ESGRecord {
	score := contracts.Float64Ptr
	return []contracts.ESGRecord{
		{Instrument: "VOD.L", Score: score(71.2), Sector: "Technology", Country: "United Kingdom", Region: "Europe"},
		{Instrument: "AAPL.O", Score: score(65.5), Sector: "Technology", Country: "United States of America", Region: "Americas"},
		{Instrument: "7203.T", Score: nil, Sector: "Consumer Cyclicals", Country: "Japan", Region: "Asia"},
		{Instrument: "BP.L", Score: score(80.1), Sector: "Energy", Country: "United Kingdom", Region: "Europe"},
		{Instrument: "MSFT.O", Score: score(90), Sector: "Technology", Country: "United States of America", Region: "Americas"},
		{Instrument: "SAP.DE", Score: score(77.7), Sector: "Technology", Country: "Germany", Region: "Europe"},
		{Instrument: "NESN.S", Score: score(60), Sector: "Consumer Non-Cyclicals", Country: "Switzerland", Region: "Europe"},
	}
}

func sampleResult() *esg.Result {
	p := samplePortfolio()
	merged, _ := esg.Merge(p, sampleRecords(), contracts.JoinInner)
	return esg.NewAggregator(esg.DefaultTopN, logger.Nop()).Aggregate(esg.MergedColumns(p), merged)
}

func writeReport(t *testing.T, res *esg.Result) *excelize.File {
	t.Helper()

	path := filepath.Join(t.TempDir(), "output.xlsx")
	require.NoError(t, NewWriter(logger.Nop()).Write(path, res))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestWrite_SheetNames(t *testing.T) {
	f := writeReport(t, sampleResult())
	assert.Equal(t, Sheets, f.GetSheetList())
}

func TestWrite_PortfolioRoundTrip(t *testing.T) {
	res := sampleResult()
	f := writeReport(t, res)

	rows, err := f.GetRows(SheetPortfolio, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)

	assert.Equal(t, "Complete Portfolio", rows[0][0])
	assert.Equal(t, res.Columns, rows[1])

	got := map[string]float64{}
	for _, row := range rows[2:] {
		w, err := strconv.ParseFloat(row[2], 64)
		require.NoError(t, err)
		got[row[0]] = w
	}

	require.Len(t, got, len(res.Holdings))
	for _, h := range res.Holdings {
		assert.InDelta(t, h.Weight, got[h.Instrument], 1e-12, h.Instrument)
	}
}

func TestWrite_NoCoverageSheet(t *testing.T) {
	res := sampleResult()
	f := writeReport(t, res)

	assert.Equal(t, "Number of holdings without ESG coverage: 10.00%", cellValue(t, f, SheetNoCoverage, "A1"))
	assert.Equal(t, "Holdings without any ESG coverage", cellValue(t, f, SheetNoCoverage, "A4"))
	assert.Equal(t, contracts.ColInstrument, cellValue(t, f, SheetNoCoverage, "A5"))
	assert.Equal(t, "7203.T", cellValue(t, f, SheetNoCoverage, "A6"))
	assert.Equal(t, "10.000%", cellValue(t, f, SheetNoCoverage, "C6"))
	// missing score stays empty
	assert.Equal(t, "", cellValue(t, f, SheetNoCoverage, "D6"))
}

func TestWrite_ByWeightLayout(t *testing.T) {
	f := writeReport(t, sampleResult())

	assert.Equal(t, "Top 5 holdings by weight", cellValue(t, f, SheetByWeight, "A1"))
	assert.Equal(t, "MSFT.O", cellValue(t, f, SheetByWeight, "A3"))
	assert.Equal(t, "25.000%", cellValue(t, f, SheetByWeight, "C3"))

	// title + header + 5 rows, then two blank rows
	assert.Equal(t, "", cellValue(t, f, SheetByWeight, "A8"))
	assert.Equal(t, "", cellValue(t, f, SheetByWeight, "A9"))
	assert.Equal(t, "Bottom 5 holdings by weight", cellValue(t, f, SheetByWeight, "A10"))
	assert.Equal(t, "BP.L", cellValue(t, f, SheetByWeight, "A12"))
}

func TestWrite_ByScoreSheet(t *testing.T) {
	f := writeReport(t, sampleResult())

	assert.Equal(t, "Top 5 holdings by ESG Score", cellValue(t, f, SheetByScore, "A1"))
	assert.Equal(t, "MSFT.O", cellValue(t, f, SheetByScore, "A3"))
	assert.Equal(t, "90", cellValue(t, f, SheetByScore, "D3"))
	assert.Equal(t, "Bottom 5 holdings by ESG Score", cellValue(t, f, SheetByScore, "A10"))
	assert.Equal(t, "NESN.S", cellValue(t, f, SheetByScore, "A12"))
}

func TestWrite_GeographySheet(t *testing.T) {
	res := sampleResult()
	f := writeReport(t, res)

	rows, err := f.GetRows(SheetGeography)
	require.NoError(t, err)

	titles := []string{}
	for _, row := range rows {
		if len(row) == 1 && row[0] != "" {
			titles = append(titles, row[0])
		}
	}
	assert.Equal(t, []string{
		"Portfolio Allocation by Region",
		"Portfolio Allocation by Country",
		"ESG Score by Region",
		"ESG Score by Country",
	}, titles)

	assert.Equal(t, contracts.ColRegion, cellValue(t, f, SheetGeography, "A2"))
	assert.Equal(t, contracts.ColWeight, cellValue(t, f, SheetGeography, "B2"))
	assert.Equal(t, "Americas", cellValue(t, f, SheetGeography, "A3"))
	assert.Equal(t, res.Regions[0].AllocationPct, cellValue(t, f, SheetGeography, "B3"))
}

func TestWrite_ColumnWidths(t *testing.T) {
	f := writeReport(t, sampleResult())

	// column A holds the title, the longest value on the sheet
	width, err := f.GetColWidth(SheetByWeight, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Bottom 5 holdings by weight")), width)

	width, err = f.GetColWidth(SheetByWeight, "B")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Vodafone Group PLC")), width)
}

func TestWrite_HeaderStyle(t *testing.T) {
	f := writeReport(t, sampleResult())

	styleID, err := f.GetCellStyle(SheetByWeight, "B2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)

	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	require.NotNil(t, style.Alignment)
	assert.Equal(t, "center", style.Alignment.Horizontal)
	require.NotEmpty(t, style.Border)
	assert.Equal(t, "bottom", style.Border[0].Type)
}

func TestWrite_OverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	require.NoError(t, NewWriter(logger.Nop()).Write(path, sampleResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, Sheets, f.GetSheetList())

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWrite_EmptyResult(t *testing.T) {
	res := esg.NewAggregator(esg.DefaultTopN, logger.Nop()).Aggregate(esg.MergedColumns(&contracts.Portfolio{}), nil)
	f := writeReport(t, res)

	assert.Equal(t, "Number of holdings without ESG coverage: 100.00%", cellValue(t, f, SheetNoCoverage, "A1"))
	assert.Equal(t, "Top 5 holdings by weight", cellValue(t, f, SheetByWeight, "A1"))
	assert.Equal(t, "Bottom 5 holdings by ESG Score", cellValue(t, f, SheetByScore, "A5"))
}

func TestWrite_TitlesUseConfiguredTopN(t *testing.T) {
	p := samplePortfolio()
	p.Holdings = p.Holdings[:3]
	merged, _ := esg.Merge(p, sampleRecords(), contracts.JoinInner)
	res := esg.NewAggregator(esg.DefaultTopN, logger.Nop()).Aggregate(esg.MergedColumns(p), merged)
	f := writeReport(t, res)

	// 3 holdings, titles still name the configured size
	assert.Equal(t, "Top 5 holdings by weight", cellValue(t, f, SheetByWeight, "A1"))
	assert.Equal(t, "Bottom 5 holdings by weight", cellValue(t, f, SheetByWeight, "A8"))
	assert.Equal(t, "Top 5 holdings by ESG Score", cellValue(t, f, SheetByScore, "A1"))
}

func TestWrite_UnnamedAndNumericExtraColumns(t *testing.T) {
	unnamed := contracts.UnnamedColumn(3)
	p := &contracts.Portfolio{
		Columns: []string{contracts.ColInstrument, contracts.ColIssuerName, contracts.ColWeight, unnamed, "Shares"},
		Holdings: []contracts.Holding{
			{Instrument: "VOD.L", IssuerName: "Vodafone Group PLC", Weight: 0.6,
				Extra: map[string]interface{}{unnamed: "x", "Shares": 1200.0}},
			{Instrument: "7203.T", IssuerName: "Toyota Motor Corp", Weight: 0.4,
				Extra: map[string]interface{}{unnamed: "y", "Shares": 80.0}},
		},
	}
	merged, _ := esg.Merge(p, sampleRecords(), contracts.JoinInner)
	res := esg.NewAggregator(esg.DefaultTopN, logger.Nop()).Aggregate(esg.MergedColumns(p), merged)
	f := writeReport(t, res)

	// Portfolio sheet keeps the unnamed column with an empty header
	assert.Equal(t, "", cellValue(t, f, SheetPortfolio, "D2"))
	assert.Equal(t, "x", cellValue(t, f, SheetPortfolio, "D3"))
	assert.Equal(t, "Shares", cellValue(t, f, SheetPortfolio, "E2"))
	assert.Equal(t, "1200", cellValue(t, f, SheetPortfolio, "E3"))
	typ, err := f.GetCellType(SheetPortfolio, "E3")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	assert.NotEqual(t, excelize.CellTypeInlineString, typ)

	// No ESG Coverage leaves it out: Instrument, Issuer Name, Portfolio Weight, Shares, ...
	assert.Equal(t, "Shares", cellValue(t, f, SheetNoCoverage, "D5"))
	assert.Equal(t, "7203.T", cellValue(t, f, SheetNoCoverage, "A6"))
	assert.Equal(t, "80", cellValue(t, f, SheetNoCoverage, "D6"))
}

func TestCellText(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"", ""},
		{"Europe", "Europe"},
		{0.0, ""},
		{0.6, "0.6"},
		{72.0, "72.0"},
		{3, "3"},
		{0, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, cellText(tt.in))
		})
	}
}
