package esg

import (
	"github.com/wonny/esgreport/internal/contracts"
)

// Merge joins holdings with ESG records on Instrument.
// Every holding appears at most once; if the service repeats an instrument the
// first record wins. In JoinInner mode holdings without a record are dropped,
// in JoinLeft mode they are kept with empty ESG fields.
// The instruments without a record are returned in input order.
func Merge(p *contracts.Portfolio, records []contracts.ESGRecord, mode contracts.JoinMode) ([]contracts.EnrichedHolding, []string) {
	byInstrument := make(map[string]contracts.ESGRecord, len(records))
	for _, rec := range records {
		if _, seen := byInstrument[rec.Instrument]; seen {
			continue
		}
		byInstrument[rec.Instrument] = rec
	}

	merged := make([]contracts.EnrichedHolding, 0, len(p.Holdings))
	var unmatched []string
	for _, h := range p.Holdings {
		rec, ok := byInstrument[h.Instrument]
		if !ok {
			unmatched = append(unmatched, h.Instrument)
			if mode != contracts.JoinLeft {
				continue
			}
			rec = contracts.ESGRecord{Instrument: h.Instrument}
		}
		merged = append(merged, contracts.EnrichedHolding{
			Holding: h,
			ESG:     rec,
			Matched: ok,
		})
	}

	return merged, unmatched
}

// MergedColumns returns the column order of the merged table:
// input columns first, then the ESG columns.
func MergedColumns(p *contracts.Portfolio) []string {
	esgCols := make(map[string]bool, len(contracts.ESGColumns))
	for _, c := range contracts.ESGColumns {
		esgCols[c] = true
	}

	cols := make([]string, 0, len(p.Columns)+len(contracts.ESGColumns))
	for _, c := range p.Columns {
		if esgCols[c] {
			continue
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		cols = append(cols, contracts.RequiredColumns...)
	}
	return append(cols, contracts.ESGColumns...)
}
