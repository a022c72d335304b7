package esg

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/esgreport/internal/contracts"
	"github.com/wonny/esgreport/pkg/logger"
)

// DefaultTopN is the size of the top/bottom ranking tables
const DefaultTopN = 5

// RankedColumns are the columns of the top/bottom tables
var RankedColumns = []string{
	contracts.ColInstrument,
	contracts.ColIssuerName,
	contracts.ColWeight,
	contracts.ColESGScore,
	contracts.ColSector,
}

// RankedRow is one row of a top/bottom table
type RankedRow struct {
	Instrument string
	IssuerName string
	Weight     float64
	WeightPct  string // presentation only, "12.345%"
	Score      *float64
	Sector     string
}

// CoveredHolding is a holding with an ESG score, re-weighted within the covered subset
type CoveredHolding struct {
	contracts.EnrichedHolding
	ESGWeight float64 // weight / Σ weights of covered holdings
}

// GroupStat is the allocation and average ESG score of one region or country
type GroupStat struct {
	Key           string
	Allocation    float64 // Σ ESG portfolio weight
	AllocationPct string
	Score         float64 // weighted average, rounded to 3 places
	Holdings      int
}

// Result holds every table derived from the merged portfolio
type Result struct {
	TopN     int // configured size of the top/bottom tables
	Columns  []string
	Holdings []contracts.EnrichedHolding

	Coverage  float64 // Σ weight of holdings with an ESG score
	Uncovered []contracts.EnrichedHolding

	TopByWeight    []RankedRow
	BottomByWeight []RankedRow

	Covered       []CoveredHolding
	TopByScore    []RankedRow
	BottomByScore []RankedRow

	Regions   []GroupStat
	Countries []GroupStat
}

// Complement returns the portfolio weight without ESG coverage
func (r *Result) Complement() float64 {
	return 1 - r.Coverage
}

// Aggregator computes coverage, rankings and geographic breakdowns
// ⭐ SSOT: ESG 집계 로직은 여기서만
type Aggregator struct {
	topN   int
	logger *logger.Logger
}

// NewAggregator creates a new aggregator. topN < 1 falls back to DefaultTopN.
func NewAggregator(topN int, log *logger.Logger) *Aggregator {
	if topN < 1 {
		topN = DefaultTopN
	}
	return &Aggregator{topN: topN, logger: log}
}

// Aggregate derives all report tables from the merged holdings
func (a *Aggregator) Aggregate(columns []string, merged []contracts.EnrichedHolding) *Result {
	res := &Result{
		TopN:     a.topN,
		Columns:  columns,
		Holdings: merged,
	}

	// 1. Coverage
	for _, h := range merged {
		if h.Covered() {
			res.Coverage += h.Weight
		} else {
			res.Uncovered = append(res.Uncovered, h)
		}
	}

	// 2. Top/bottom by weight (all merged holdings)
	weights := make([]float64, len(merged))
	for i, h := range merged {
		weights[i] = h.Weight
	}
	res.TopByWeight = a.rank(merged, weights, true)
	res.BottomByWeight = a.rank(merged, weights, false)

	// 3. Re-weight the covered subset
	res.Covered = Reweight(merged)

	// 4. Top/bottom by ESG score (covered subset only)
	coveredHoldings := make([]contracts.EnrichedHolding, len(res.Covered))
	scores := make([]float64, len(res.Covered))
	for i, c := range res.Covered {
		coveredHoldings[i] = c.EnrichedHolding
		scores[i] = *c.ESG.Score
	}
	res.TopByScore = a.rank(coveredHoldings, scores, true)
	res.BottomByScore = a.rank(coveredHoldings, scores, false)

	// 5. Geography
	res.Regions = GroupBy(res.Covered, func(c *CoveredHolding) string { return c.ESG.Region })
	res.Countries = GroupBy(res.Covered, func(c *CoveredHolding) string { return c.ESG.Country })

	a.logger.WithFields(map[string]interface{}{
		"holdings":  len(merged),
		"covered":   len(res.Covered),
		"coverage":  FormatPercent(res.Coverage, 2),
		"regions":   len(res.Regions),
		"countries": len(res.Countries),
	}).Info("ESG aggregates computed")

	return res
}

// rank returns the first topN holdings ordered by key.
// Ties keep input order in both directions.
func (a *Aggregator) rank(holdings []contracts.EnrichedHolding, key []float64, descending bool) []RankedRow {
	idx := make([]int, len(holdings))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if descending {
			return key[idx[i]] > key[idx[j]]
		}
		return key[idx[i]] < key[idx[j]]
	})

	n := a.topN
	if n > len(idx) {
		n = len(idx)
	}

	rows := make([]RankedRow, 0, n)
	for _, i := range idx[:n] {
		h := holdings[i]
		rows = append(rows, RankedRow{
			Instrument: h.Instrument,
			IssuerName: h.IssuerName,
			Weight:     h.Weight,
			WeightPct:  FormatPercent(h.Weight, 3),
			Score:      h.ESG.Score,
			Sector:     h.ESG.Sector,
		})
	}
	return rows
}

// Reweight keeps the holdings with an ESG score and gives each an ESG portfolio
// weight so the subset sums to 1. A zero-weight subset gets zero ESG weights.
func Reweight(merged []contracts.EnrichedHolding) []CoveredHolding {
	var covered []CoveredHolding
	var weights []float64
	for _, h := range merged {
		if !h.Covered() {
			continue
		}
		covered = append(covered, CoveredHolding{EnrichedHolding: h})
		weights = append(weights, h.Weight)
	}

	total := floats.Sum(weights)
	if total == 0 {
		return covered
	}
	for i := range covered {
		covered[i].ESGWeight = covered[i].Weight / total
	}
	return covered
}

// GroupBy computes allocation and weighted-average ESG score per key.
// Holdings with an empty key are left out. Groups are sorted by key.
func GroupBy(covered []CoveredHolding, key func(*CoveredHolding) string) []GroupStat {
	type acc struct {
		scores  []float64
		weights []float64
	}
	groups := make(map[string]*acc)
	for i := range covered {
		k := key(&covered[i])
		if k == "" {
			continue
		}
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
		}
		g.scores = append(g.scores, *covered[i].ESG.Score)
		g.weights = append(g.weights, covered[i].ESGWeight)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stats := make([]GroupStat, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		alloc := floats.Sum(g.weights)
		stats = append(stats, GroupStat{
			Key:           k,
			Allocation:    alloc,
			AllocationPct: FormatPercent(alloc, 3),
			Score:         Round3(WeightedMean(g.scores, g.weights)),
			Holdings:      len(g.scores),
		})
	}
	return stats
}
