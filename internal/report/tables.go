package report

import (
	"github.com/wonny/esgreport/internal/contracts"
	"github.com/wonny/esgreport/internal/esg"
)

// PortfolioTable is the complete merged portfolio with numeric weights.
// Header-less input columns are kept with an empty header.
func PortfolioTable(res *esg.Result) Table {
	t := Table{Title: "Complete Portfolio", Columns: headers(res.Columns)}
	for i := range res.Holdings {
		t.Rows = append(t.Rows, holdingRow(&res.Holdings[i], res.Columns, false))
	}
	return t
}

// UncoveredTable lists holdings without an ESG score, weights as percentages.
// Header-less input columns are left out.
func UncoveredTable(res *esg.Result) Table {
	var columns []string
	for _, col := range res.Columns {
		if !contracts.IsUnnamed(col) {
			columns = append(columns, col)
		}
	}

	t := Table{Title: "Holdings without any ESG coverage", Columns: columns}
	for i := range res.Uncovered {
		t.Rows = append(t.Rows, holdingRow(&res.Uncovered[i], columns, true))
	}
	return t
}

// RankedTable renders a top/bottom list. pct selects the percentage weight string.
func RankedTable(title string, rows []esg.RankedRow, pct bool) Table {
	t := Table{Title: title, Columns: esg.RankedColumns}
	for _, r := range rows {
		var weight interface{} = r.Weight
		if pct {
			weight = r.WeightPct
		}
		t.Rows = append(t.Rows, []interface{}{r.Instrument, r.IssuerName, weight, scoreCell(r.Score), r.Sector})
	}
	return t
}

// GeographyTables returns allocation by region and country, then ESG score by
// region and country
func GeographyTables(res *esg.Result) []Table {
	return []Table{
		allocationTable("Portfolio Allocation by Region", contracts.ColRegion, res.Regions),
		allocationTable("Portfolio Allocation by Country", contracts.ColCountry, res.Countries),
		scoreTable("ESG Score by Region", contracts.ColRegion, res.Regions),
		scoreTable("ESG Score by Country", contracts.ColCountry, res.Countries),
	}
}

func allocationTable(title, keyCol string, groups []esg.GroupStat) Table {
	t := Table{Title: title, Columns: []string{keyCol, contracts.ColWeight}}
	for _, g := range groups {
		t.Rows = append(t.Rows, []interface{}{g.Key, g.AllocationPct})
	}
	return t
}

func scoreTable(title, keyCol string, groups []esg.GroupStat) Table {
	t := Table{Title: title, Columns: []string{keyCol, contracts.ColESGScore}}
	for _, g := range groups {
		t.Rows = append(t.Rows, []interface{}{g.Key, g.Score})
	}
	return t
}

func headers(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = contracts.ColumnHeader(col)
	}
	return out
}

func holdingRow(h *contracts.EnrichedHolding, columns []string, pct bool) []interface{} {
	row := make([]interface{}, len(columns))
	for i, col := range columns {
		v := h.Value(col)
		if pct && col == contracts.ColWeight {
			v = esg.FormatPercent(h.Weight, 3)
		}
		row[i] = v
	}
	return row
}

func scoreCell(score *float64) interface{} {
	if score == nil {
		return nil
	}
	return *score
}
