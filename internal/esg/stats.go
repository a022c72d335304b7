package esg

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var hundred = decimal.NewFromInt(100)

// WeightedMean returns Σ(x·w)/Σw.
// When the weights sum to zero it falls back to the unweighted mean.
func WeightedMean(x, w []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	if floats.Sum(w) == 0 {
		return stat.Mean(x, nil)
	}
	return stat.Mean(x, w)
}

// Round3 rounds v to 3 decimal places
func Round3(v float64) float64 {
	return decimal.NewFromFloat(v).Round(3).InexactFloat64()
}

// FormatPercent renders a fraction as a percentage string, e.g. 0.12345 -> "12.345%"
func FormatPercent(v float64, places int32) string {
	return decimal.NewFromFloat(v).Mul(hundred).StringFixed(places) + "%"
}
