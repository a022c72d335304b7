package contracts

// ESGRecord is one instrument row returned by the data platform
type ESGRecord struct {
	Instrument string   `json:"instrument"`
	Score      *float64 `json:"esg_score"` // nil = no coverage
	Sector     string   `json:"trbc_economic_sector"`
	Country    string   `json:"exchange_country"`
	Region     string   `json:"exchange_region"`
}

// HasScore reports whether the record carries an ESG score
func (r *ESGRecord) HasScore() bool {
	return r.Score != nil
}

// EnrichedHolding is a Holding joined with its ESG record
type EnrichedHolding struct {
	Holding
	ESG     ESGRecord `json:"esg"`
	Matched bool      `json:"matched"` // false only in left-join mode
}

// Covered reports whether the holding counts towards ESG coverage
func (e *EnrichedHolding) Covered() bool {
	return e.ESG.HasScore()
}

// Value returns the merged-table cell value of column col.
// A missing ESG score returns nil.
func (e *EnrichedHolding) Value(col string) interface{} {
	switch col {
	case ColESGScore:
		if e.ESG.Score == nil {
			return nil
		}
		return *e.ESG.Score
	case ColSector:
		return e.ESG.Sector
	case ColCountry:
		return e.ESG.Country
	case ColRegion:
		return e.ESG.Region
	default:
		return e.Holding.Value(col)
	}
}

// JoinMode selects how holdings without an ESG record are treated
type JoinMode string

const (
	JoinInner JoinMode = "inner" // unmatched holdings are dropped
	JoinLeft  JoinMode = "left"  // unmatched holdings are kept without ESG data
)

// Float64Ptr is a small helper for building optional scores
func Float64Ptr(v float64) *float64 {
	return &v
}
