package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/esgreport/internal/contracts"
	"github.com/wonny/esgreport/internal/esg"
	"github.com/wonny/esgreport/internal/report"
	"github.com/wonny/esgreport/pkg/logger"
)

// Runner coordinates the report pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Runner struct {
	loader     contracts.PortfolioLoader
	fetcher    contracts.ESGFetcher
	aggregator *esg.Aggregator
	writer     *report.Writer
	logger     *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID      string
	InputPath  string
	OutputPath string
	JoinMode   contracts.JoinMode
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Success         bool
	Error           error
	CompletedStages []contracts.Stage
	Portfolio       *contracts.Portfolio
	Records         int      // ESG records returned by the fetcher
	Unmatched       []string // instruments without an ESG record
	Report          *esg.Result
	OutputPath      string
	Duration        time.Duration
}

// NewRunner creates a new pipeline runner
func NewRunner(
	loader contracts.PortfolioLoader,
	fetcher contracts.ESGFetcher,
	aggregator *esg.Aggregator,
	writer *report.Writer,
	logger *logger.Logger,
) *Runner {
	return &Runner{
		loader:     loader,
		fetcher:    fetcher,
		aggregator: aggregator,
		writer:     writer,
		logger:     logger,
	}
}

// Run executes Load → Fetch → Merge → Aggregate → Write.
// The output file is only touched once every earlier stage has succeeded.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	start := time.Now()
	if cfg.JoinMode == "" {
		cfg.JoinMode = contracts.JoinInner
	}

	result := &RunResult{
		RunID:           cfg.RunID,
		CompletedStages: make([]contracts.Stage, 0, len(contracts.AllStages())),
		OutputPath:      cfg.OutputPath,
	}
	fail := func(stage contracts.Stage, err error) (*RunResult, error) {
		result.Error = fmt.Errorf("%s failed: %w", stage, err)
		result.Duration = time.Since(start)
		return result, result.Error
	}

	r.logger.WithFields(map[string]interface{}{
		"input":     cfg.InputPath,
		"output":    cfg.OutputPath,
		"join_mode": cfg.JoinMode,
	}).Info("Starting report run")

	// Load
	p, err := r.loader.Load(cfg.InputPath)
	if err != nil {
		return fail(contracts.StageLoad, err)
	}
	result.Portfolio = p
	result.CompletedStages = append(result.CompletedStages, contracts.StageLoad)

	// Fetch
	r.logger.WithField("instruments", p.Count()).Info("Requesting ESG data")
	records, err := r.fetcher.FetchESG(ctx, p.Instruments())
	if err != nil {
		return fail(contracts.StageFetch, err)
	}
	result.Records = len(records)
	result.CompletedStages = append(result.CompletedStages, contracts.StageFetch)

	// Merge
	merged, unmatched := esg.Merge(p, records, cfg.JoinMode)
	result.Unmatched = unmatched
	if len(unmatched) > 0 {
		msg := "Holdings without ESG data dropped"
		if cfg.JoinMode == contracts.JoinLeft {
			msg = "Holdings without ESG data kept as uncovered"
		}
		r.logger.WithFields(map[string]interface{}{
			"count":       len(unmatched),
			"instruments": unmatched,
		}).Warn(msg)
	}
	result.CompletedStages = append(result.CompletedStages, contracts.StageMerge)

	// Aggregate
	result.Report = r.aggregator.Aggregate(esg.MergedColumns(p), merged)
	result.CompletedStages = append(result.CompletedStages, contracts.StageAggregate)

	// Write
	if err := ctx.Err(); err != nil {
		return fail(contracts.StageWrite, err)
	}
	if err := r.writer.Write(cfg.OutputPath, result.Report); err != nil {
		return fail(contracts.StageWrite, err)
	}
	result.CompletedStages = append(result.CompletedStages, contracts.StageWrite)

	result.Success = true
	result.Duration = time.Since(start)

	r.logger.WithFields(map[string]interface{}{
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
		"coverage": esg.FormatPercent(result.Report.Coverage, 2),
	}).Info("Report run completed")

	return result, nil
}
