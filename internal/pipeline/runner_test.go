package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/esgreport/internal/contracts"
	"github.com/wonny/esgreport/internal/datagen"
	"github.com/wonny/esgreport/internal/esg"
	"github.com/wonny/esgreport/internal/external/rdp"
	"github.com/wonny/esgreport/internal/portfolio"
	"github.com/wonny/esgreport/internal/report"
	"github.com/wonny/esgreport/pkg/logger"
)

type failingFetcher struct {
	err   error
	calls int
}

func (f *failingFetcher) FetchESG(ctx context.Context, instruments []string) ([]contracts.ESGRecord, error) {
	f.calls++
	return nil, f.err
}

func newRunner(fetcher contracts.ESGFetcher) *Runner {
	log := logger.Nop()
	return NewRunner(
		portfolio.NewLoader(log),
		fetcher,
		esg.NewAggregator(esg.DefaultTopN, log),
		report.NewWriter(log),
		log,
	)
}

func writeInput(t *testing.T, holdings ...contracts.Holding) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "InputPortfolio.xlsx")
	require.NoError(t, portfolio.Save(path, &contracts.Portfolio{
		Columns:  contracts.RequiredColumns,
		Holdings: holdings,
	}))
	return path
}

func TestRun_ABC(t *testing.T) {
	input := writeInput(t,
		contracts.Holding{Instrument: "A", IssuerName: "Alpha", Weight: 6.0 / 11},
		contracts.Holding{Instrument: "B", IssuerName: "Beta", Weight: 4.0 / 11},
		contracts.Holding{Instrument: "C", IssuerName: "Gamma", Weight: 1.0 / 11},
	)
	fetcher := datagen.NewStaticFetcher([]contracts.ESGRecord{
		{Instrument: "A", Score: contracts.Float64Ptr(80), Country: "France", Region: "Europe"},
		{Instrument: "B", Score: contracts.Float64Ptr(60), Country: "France", Region: "Europe"},
		{Instrument: "C", Country: "Japan", Region: "Asia"},
	})
	output := filepath.Join(filepath.Dir(input), "output.xlsx")

	res, err := newRunner(fetcher).Run(context.Background(), RunConfig{
		RunID:      "test",
		InputPath:  input,
		OutputPath: output,
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, contracts.AllStages(), res.CompletedStages)
	assert.Equal(t, 3, res.Records)
	assert.Empty(t, res.Unmatched)

	r := res.Report
	assert.InDelta(t, 10.0/11, r.Coverage, 1e-9)
	require.Len(t, r.Covered, 2)
	assert.InDelta(t, 0.6, r.Covered[0].ESGWeight, 1e-9)
	assert.InDelta(t, 0.4, r.Covered[1].ESGWeight, 1e-9)
	require.Len(t, r.Regions, 1)
	assert.Equal(t, 72.0, r.Regions[0].Score)

	_, err = os.Stat(output)
	assert.NoError(t, err)
}

func TestRun_InnerJoinDropsUnknown(t *testing.T) {
	input := writeInput(t,
		contracts.Holding{Instrument: "A", IssuerName: "Alpha", Weight: 0.5},
		contracts.Holding{Instrument: "X", IssuerName: "Unknown", Weight: 0.5},
	)
	fetcher := datagen.NewStaticFetcher([]contracts.ESGRecord{
		{Instrument: "A", Score: contracts.Float64Ptr(50), Region: "Europe"},
	})

	res, err := newRunner(fetcher).Run(context.Background(), RunConfig{
		InputPath:  input,
		OutputPath: filepath.Join(t.TempDir(), "output.xlsx"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"X"}, res.Unmatched)
	assert.Len(t, res.Report.Holdings, 1)
	assert.InDelta(t, 0.5, res.Report.Coverage, 1e-9)
}

func TestRun_LeftJoinKeepsUnknown(t *testing.T) {
	input := writeInput(t,
		contracts.Holding{Instrument: "A", IssuerName: "Alpha", Weight: 0.5},
		contracts.Holding{Instrument: "X", IssuerName: "Unknown", Weight: 0.5},
	)
	fetcher := datagen.NewStaticFetcher([]contracts.ESGRecord{
		{Instrument: "A", Score: contracts.Float64Ptr(50), Region: "Europe"},
	})

	res, err := newRunner(fetcher).Run(context.Background(), RunConfig{
		InputPath:  input,
		OutputPath: filepath.Join(t.TempDir(), "output.xlsx"),
		JoinMode:   contracts.JoinLeft,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"X"}, res.Unmatched)
	require.Len(t, res.Report.Holdings, 2)
	require.Len(t, res.Report.Uncovered, 1)
	assert.Equal(t, "X", res.Report.Uncovered[0].Instrument)
	assert.InDelta(t, 0.5, res.Report.Complement(), 1e-9)
}

func TestRun_FetchErrorWritesNothing(t *testing.T) {
	input := writeInput(t, contracts.Holding{Instrument: "A", IssuerName: "Alpha", Weight: 1})
	output := filepath.Join(t.TempDir(), "output.xlsx")
	fetcher := &failingFetcher{err: &rdp.FetchError{Status: 400, Message: "Invalid universe"}}

	res, err := newRunner(fetcher).Run(context.Background(), RunConfig{
		InputPath:  input,
		OutputPath: output,
	})
	require.Error(t, err)

	var fe *rdp.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Invalid universe", fe.Message)

	assert.False(t, res.Success)
	assert.Equal(t, []contracts.Stage{contracts.StageLoad}, res.CompletedStages)
	assert.Equal(t, 1, fetcher.calls)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_LoadErrorSkipsFetch(t *testing.T) {
	fetcher := &failingFetcher{}

	res, err := newRunner(fetcher).Run(context.Background(), RunConfig{
		InputPath:  filepath.Join(t.TempDir(), "missing.xlsx"),
		OutputPath: filepath.Join(t.TempDir(), "output.xlsx"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, portfolio.ErrLoad)
	assert.Empty(t, res.CompletedStages)
	assert.Zero(t, fetcher.calls)
}

func TestRun_CanceledBeforeWrite(t *testing.T) {
	input := writeInput(t, contracts.Holding{Instrument: "A", IssuerName: "Alpha", Weight: 1})
	output := filepath.Join(t.TempDir(), "output.xlsx")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(datagen.NewStaticFetcher(nil)).Run(ctx, RunConfig{
		InputPath:  input,
		OutputPath: output,
	})
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_PortfolioRoundTrip(t *testing.T) {
	g := datagen.NewGeneratorWithSeed(2024)
	p := g.Portfolio(25)
	input := filepath.Join(t.TempDir(), "InputPortfolio.xlsx")
	require.NoError(t, portfolio.Save(input, p))
	output := filepath.Join(filepath.Dir(input), "output.xlsx")

	res, err := newRunner(datagen.NewStaticFetcher(g.ESGRecords(p, 0.8))).Run(context.Background(), RunConfig{
		InputPath:  input,
		OutputPath: output,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Report.Coverage+res.Report.Complement(), 1e-9)

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetPortfolio, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 2+p.Count())

	header := rows[1]
	instCol, weightCol := -1, -1
	for i, name := range header {
		switch name {
		case contracts.ColInstrument:
			instCol = i
		case contracts.ColWeight:
			weightCol = i
		}
	}
	require.GreaterOrEqual(t, instCol, 0)
	require.GreaterOrEqual(t, weightCol, 0)
	assert.Contains(t, header, datagen.ColCurrency)

	for i, h := range p.Holdings {
		row := rows[i+2]
		assert.Equal(t, h.Instrument, row[instCol])
		w, err := strconv.ParseFloat(row[weightCol], 64)
		require.NoError(t, err)
		assert.InDelta(t, h.Weight, w, 1e-12)
	}
}
