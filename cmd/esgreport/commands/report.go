package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/esgreport/internal/contracts"
	"github.com/wonny/esgreport/internal/datagen"
	"github.com/wonny/esgreport/internal/esg"
	"github.com/wonny/esgreport/internal/external/rdp"
	"github.com/wonny/esgreport/internal/pipeline"
	"github.com/wonny/esgreport/internal/portfolio"
	"github.com/wonny/esgreport/internal/report"
	"github.com/wonny/esgreport/pkg/config"
	"github.com/wonny/esgreport/pkg/httputil"
	"github.com/wonny/esgreport/pkg/logger"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "ESG 포트폴리오 리포트 생성",
	Long: `입력 포트폴리오에 ESG 데이터를 붙여 5개 시트 리포트를 만듭니다.

단계:
- Load: 입력 xlsx 로딩 (불완전한 행 제외)
- Fetch: Refinitiv Data Platform datagrid 요청 1회
- Merge: Instrument 기준 조인 (기본 inner, --keep-unmatched 시 left)
- Aggregate: 커버리지, 상/하위 종목, 지역/국가 통계
- Write: Portfolio / No ESG Coverage / By Weight / By ESG Score / Geography

Example:
  go run ./cmd/esgreport report
  go run ./cmd/esgreport report --input InputPortfolio.xlsx --output output.xlsx --top 10
  go run ./cmd/esgreport report --fixture esg.xlsx`,
	RunE: runReport,
}

var (
	// Report flags
	reportInput         string
	reportOutput        string
	reportTop           int
	reportKeepUnmatched bool
	reportFixture       string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	// Flags (비어 있으면 config 값 사용)
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "", "input portfolio xlsx (default REPORT_INPUT)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output report xlsx (default REPORT_OUTPUT)")
	reportCmd.Flags().IntVar(&reportTop, "top", 0, "size of the top/bottom tables (default REPORT_TOP_N)")
	reportCmd.Flags().BoolVar(&reportKeepUnmatched, "keep-unmatched", false, "keep holdings unknown to the data platform as uncovered")
	reportCmd.Flags().StringVar(&reportFixture, "fixture", "", "read ESG data from an xlsx fixture instead of the data platform")
}

func runReport(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}

	runID := logger.NewRunID()
	log := logger.New(cfg).WithRunID(runID)

	// 2. ESG source
	fetcher, closeFetcher, err := newFetcher(cfg, log)
	if err != nil {
		return err
	}
	defer closeFetcher()

	// 3. Run pipeline
	runner := pipeline.NewRunner(
		portfolio.NewLoader(log),
		fetcher,
		esg.NewAggregator(cfg.Report.TopN, log),
		report.NewWriter(log),
		log,
	)

	joinMode := contracts.JoinInner
	if cfg.Report.KeepUnmatched {
		joinMode = contracts.JoinLeft
	}

	result, err := runner.Run(cmd.Context(), pipeline.RunConfig{
		RunID:      runID,
		InputPath:  cfg.Report.InputPath,
		OutputPath: cfg.Report.OutputPath,
		JoinMode:   joinMode,
	})
	if err != nil {
		var fetchErr *rdp.FetchError
		if errors.As(err, &fetchErr) {
			PrintError("Error: Unable to get the data for the portfolio")
			fmt.Fprintln(stdout, fetchErr.Message)
		}
		log.WithError(err).Error("Report run failed")
		return err
	}

	printReportSummary(result, joinMode)
	return nil
}

// applyReportFlags overrides config values with the flags that were set
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Report.InputPath = reportInput
	}
	if flags.Changed("output") {
		cfg.Report.OutputPath = reportOutput
	}
	if flags.Changed("top") {
		if reportTop < 1 {
			return fmt.Errorf("--top must be at least 1, got %d", reportTop)
		}
		cfg.Report.TopN = reportTop
	}
	if flags.Changed("keep-unmatched") {
		cfg.Report.KeepUnmatched = reportKeepUnmatched
	}
	return nil
}

// newFetcher returns the ESG source for this run and its cleanup func
func newFetcher(cfg *config.Config, log *logger.Logger) (contracts.ESGFetcher, func(), error) {
	if reportFixture != "" {
		records, err := datagen.LoadFixture(reportFixture)
		if err != nil {
			return nil, nil, err
		}
		log.WithFields(map[string]interface{}{
			"fixture": reportFixture,
			"records": len(records),
		}).Info("Using ESG fixture")
		return datagen.NewStaticFetcher(records), func() {}, nil
	}

	if err := cfg.RequireCredentials(); err != nil {
		return nil, nil, err
	}

	client := rdp.NewClient(cfg.RDP, httputil.New(cfg, log), log)
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Close(ctx); err != nil {
			log.WithError(err).Warn("Failed to close data platform session")
		}
	}
	return client, closeFn, nil
}

func printReportSummary(res *pipeline.RunResult, joinMode contracts.JoinMode) {
	r := res.Report

	PrintHeader("ESG Portfolio Report")
	PrintKeyValue("Run ID", res.RunID, 11)
	PrintKeyValue("Holdings", fmt.Sprintf("%d loaded, %d in report", res.Portfolio.Count(), len(r.Holdings)), 11)
	PrintKeyValue("ESG records", strconv.Itoa(res.Records), 11)
	PrintKeyValue("Join mode", string(joinMode), 11)
	PrintKeyValue("Coverage", esg.FormatPercent(r.Coverage, 2), 11)
	PrintKeyValue("No coverage", esg.FormatPercent(r.Complement(), 2), 11)
	PrintSeparator()

	if len(r.Regions) > 0 {
		widths := []int{24, 12, 10}
		PrintTableHeader([]string{contracts.ColRegion, "Allocation", "ESG Score"}, widths)
		for _, g := range r.Regions {
			PrintTableRow([]string{g.Key, g.AllocationPct, strconv.FormatFloat(g.Score, 'f', 3, 64)}, widths)
		}
		PrintSeparator()
	} else {
		PrintInfo("No holdings with ESG coverage")
	}

	if len(res.Unmatched) > 0 {
		verb := "dropped"
		if joinMode == contracts.JoinLeft {
			verb = "kept as uncovered"
		}
		PrintWarning(fmt.Sprintf("%d holdings without ESG data were %s:", len(res.Unmatched), verb))
		PrintList(res.Unmatched)
	}

	fmt.Fprintln(stdout)
	PrintSuccess(fmt.Sprintf("Report written to %s in %.2fs", res.OutputPath, res.Duration.Seconds()))
	PrintDoubleSeparator()
}
