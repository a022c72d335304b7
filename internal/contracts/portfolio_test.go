package contracts

import (
	"testing"
)

func TestPortfolio_TotalWeight(t *testing.T) {
	p := &Portfolio{
		Holdings: []Holding{
			{Instrument: "VOD.L", Weight: 0.30},
			{Instrument: "AAPL.O", Weight: 0.25},
			{Instrument: "7203.T", Weight: 0.20},
		},
	}

	expected := 0.30 + 0.25 + 0.20
	if total := p.TotalWeight(); total != expected {
		t.Errorf("TotalWeight() = %v, want %v", total, expected)
	}

	if count := p.Count(); count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestPortfolio_InstrumentsKeepsDuplicates(t *testing.T) {
	p := &Portfolio{
		Holdings: []Holding{
			{Instrument: "VOD.L"},
			{Instrument: "AAPL.O"},
			{Instrument: "VOD.L"},
		},
	}

	got := p.Instruments()
	want := []string{"VOD.L", "AAPL.O", "VOD.L"}
	if len(got) != len(want) {
		t.Fatalf("Instruments() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Instruments()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestHolding_Value(t *testing.T) {
	h := &Holding{
		Instrument: "VOD.L",
		IssuerName: "Vodafone Group PLC",
		Weight:     0.1,
		Extra:      map[string]interface{}{"ISIN": "GB00BH4HKS39", "Shares": 1200.0},
	}

	if h.Value(ColInstrument) != "VOD.L" {
		t.Errorf("Value(Instrument) = %v", h.Value(ColInstrument))
	}
	if h.Value(ColWeight) != 0.1 {
		t.Errorf("Value(Weight) = %v", h.Value(ColWeight))
	}
	if h.Value("ISIN") != "GB00BH4HKS39" {
		t.Errorf("Value(ISIN) = %v", h.Value("ISIN"))
	}
	if h.Value("Shares") != 1200.0 {
		t.Errorf("Value(Shares) = %v, want numeric 1200", h.Value("Shares"))
	}
}

func TestUnnamedColumn(t *testing.T) {
	col := UnnamedColumn(3)
	if !IsUnnamed(col) {
		t.Errorf("IsUnnamed(%q) = false", col)
	}
	if IsUnnamed(ColInstrument) {
		t.Errorf("IsUnnamed(%q) = true", ColInstrument)
	}
	if ColumnHeader(col) != "" {
		t.Errorf("ColumnHeader(%q) = %q, want empty", col, ColumnHeader(col))
	}
	if ColumnHeader(ColWeight) != ColWeight {
		t.Errorf("ColumnHeader(%q) = %q", ColWeight, ColumnHeader(ColWeight))
	}
}

func TestEnrichedHolding_Value(t *testing.T) {
	e := &EnrichedHolding{
		Holding: Holding{Instrument: "VOD.L", Weight: 0.1},
		ESG: ESGRecord{
			Instrument: "VOD.L",
			Score:      Float64Ptr(71.5),
			Sector:     "Technology",
			Country:    "United Kingdom",
			Region:     "Europe",
		},
		Matched: true,
	}

	if !e.Covered() {
		t.Error("Expected holding with score to be covered")
	}
	if e.Value(ColESGScore) != 71.5 {
		t.Errorf("Value(ESG Score) = %v, want 71.5", e.Value(ColESGScore))
	}
	if e.Value(ColRegion) != "Europe" {
		t.Errorf("Value(Region) = %v, want Europe", e.Value(ColRegion))
	}
	if e.Value(ColWeight) != 0.1 {
		t.Errorf("Value(Weight) = %v, want 0.1", e.Value(ColWeight))
	}

	e.ESG.Score = nil
	if e.Covered() {
		t.Error("Expected holding without score to be uncovered")
	}
	if e.Value(ColESGScore) != nil {
		t.Errorf("Value(ESG Score) = %v, want nil", e.Value(ColESGScore))
	}
}
