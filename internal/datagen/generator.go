// Package datagen generates synthetic portfolios and matching ESG data
// for demos and tests.
package datagen

import (
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/wonny/esgreport/internal/contracts"
)

// ColCurrency is the extra input column written by the generator
const ColCurrency = "Currency"

// exchange is a listing venue and its classification
type exchange struct {
	Suffix  string
	Country string
	Region  string
}

var exchanges = []exchange{
	{".O", "United States of America", "Americas"},
	{".N", "United States of America", "Americas"},
	{".TO", "Canada", "Americas"},
	{".L", "United Kingdom", "Europe"},
	{".DE", "Germany", "Europe"},
	{".PA", "France", "Europe"},
	{".S", "Switzerland", "Europe"},
	{".T", "Japan", "Asia"},
	{".HK", "Hong Kong", "Asia"},
	{".AX", "Australia", "Asia"},
}

var sectors = []string{
	"Basic Materials",
	"Consumer Cyclicals",
	"Consumer Non-Cyclicals",
	"Energy",
	"Financials",
	"Healthcare",
	"Industrials",
	"Real Estate",
	"Technology",
	"Utilities",
}

// Generator produces synthetic holdings and ESG records
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a random seed
func NewGenerator() *Generator {
	return NewGeneratorWithSeed(uint64(time.Now().UnixNano()))
}

// NewGeneratorWithSeed creates a generator with a fixed seed for reproducible output
func NewGeneratorWithSeed(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Portfolio returns n holdings with unique instruments and weights summing to 1
func (g *Generator) Portfolio(n int) *contracts.Portfolio {
	p := &contracts.Portfolio{
		Columns: append(append([]string{}, contracts.RequiredColumns...), ColCurrency),
	}
	if n <= 0 {
		return p
	}

	used := make(map[string]bool, n)
	raw := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		instrument := g.instrument()
		for used[instrument] {
			instrument = g.instrument()
		}
		used[instrument] = true

		raw[i] = g.faker.Float64Range(1, 100)
		total += raw[i]

		p.Holdings = append(p.Holdings, contracts.Holding{
			Instrument: instrument,
			IssuerName: g.faker.Company(),
			Extra:      map[string]interface{}{ColCurrency: g.faker.CurrencyShort()},
		})
	}

	// 6자리 반올림 후 마지막 종목이 나머지를 가져간다
	assigned := 0.0
	for i := range p.Holdings {
		if i == n-1 {
			p.Holdings[i].Weight = roundTo(1-assigned, 6)
			break
		}
		w := roundTo(raw[i]/total, 6)
		p.Holdings[i].Weight = w
		assigned += w
	}
	return p
}

// ESGRecords returns one record per holding. Each holding has a score with
// probability coverage; country and region follow the instrument suffix.
func (g *Generator) ESGRecords(p *contracts.Portfolio, coverage float64) []contracts.ESGRecord {
	records := make([]contracts.ESGRecord, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		ex := g.exchangeOf(h.Instrument)
		rec := contracts.ESGRecord{
			Instrument: h.Instrument,
			Sector:     g.faker.RandomString(sectors),
			Country:    ex.Country,
			Region:     ex.Region,
		}
		if g.faker.Float64Range(0, 1) < coverage {
			rec.Score = contracts.Float64Ptr(roundTo(g.faker.Float64Range(10, 95), 2))
		}
		records = append(records, rec)
	}
	return records
}

// instrument returns a RIC-like code, e.g. "ABCD.L"
func (g *Generator) instrument() string {
	ex := exchanges[g.faker.IntRange(0, len(exchanges)-1)]
	return strings.ToUpper(g.faker.LetterN(uint(g.faker.IntRange(2, 4)))) + ex.Suffix
}

func (g *Generator) exchangeOf(instrument string) exchange {
	for _, ex := range exchanges {
		if strings.HasSuffix(instrument, ex.Suffix) {
			return ex
		}
	}
	return exchanges[g.faker.IntRange(0, len(exchanges)-1)]
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
