package contracts

import (
	"strconv"
	"strings"
)

// Column headers shared by the loader, the aggregator and the report writer
const (
	ColInstrument = "Instrument"
	ColIssuerName = "Issuer Name"
	ColWeight     = "Portfolio Weight"
	ColESGScore   = "ESG Score"
	ColSector     = "TRBC Economic Sector"
	ColCountry    = "Exchange Country"
	ColRegion     = "Exchange Region"
	ColESGWeight  = "ESG Portfolio Weight"
)

// RequiredColumns must be present in the input header row
var RequiredColumns = []string{ColInstrument, ColIssuerName, ColWeight}

// ESGColumns are appended to the input columns after the merge, in this order
var ESGColumns = []string{ColESGScore, ColSector, ColCountry, ColRegion}

// unnamedPrefix marks the key of a column without a header
const unnamedPrefix = "Unnamed: "

// UnnamedColumn returns the key of the header-less column at 0-based index i
func UnnamedColumn(i int) string {
	return unnamedPrefix + strconv.Itoa(i)
}

// IsUnnamed reports whether col is the key of a header-less column
func IsUnnamed(col string) bool {
	return strings.HasPrefix(col, unnamedPrefix)
}

// ColumnHeader returns the header text written for col. Unnamed columns get an empty header.
func ColumnHeader(col string) string {
	if IsUnnamed(col) {
		return ""
	}
	return col
}

// Holding is one row of the input portfolio
// ⭐ SSOT: 입력 포트폴리오의 한 종목
type Holding struct {
	Instrument string                 `json:"instrument"`
	IssuerName string                 `json:"issuer_name"`
	Weight     float64                `json:"weight"`          // 0.0 ~ 1.0
	Extra      map[string]interface{} `json:"extra,omitempty"` // 입력 파일의 나머지 컬럼 (string 또는 float64)
}

// Portfolio is the loaded input table
type Portfolio struct {
	Columns  []string  `json:"columns"` // header order, unnamed columns as UnnamedColumn(i)
	Holdings []Holding `json:"holdings"`
}

// Count returns the number of holdings
func (p *Portfolio) Count() int {
	return len(p.Holdings)
}

// TotalWeight returns the sum of all holding weights
func (p *Portfolio) TotalWeight() float64 {
	total := 0.0
	for _, h := range p.Holdings {
		total += h.Weight
	}
	return total
}

// Instruments returns instrument ids in input order. Duplicates are kept.
func (p *Portfolio) Instruments() []string {
	ids := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		ids = append(ids, h.Instrument)
	}
	return ids
}

// Value returns the cell value of column col for this holding
func (h *Holding) Value(col string) interface{} {
	switch col {
	case ColInstrument:
		return h.Instrument
	case ColIssuerName:
		return h.IssuerName
	case ColWeight:
		return h.Weight
	default:
		return h.Extra[col]
	}
}
