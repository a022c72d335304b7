package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/esgreport/internal/datagen"
	"github.com/wonny/esgreport/internal/portfolio"
	"github.com/wonny/esgreport/pkg/logger"
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "샘플 입력 포트폴리오 생성",
	Long: `데모/테스트용 합성 포트폴리오(xlsx)를 생성합니다.

--fixture를 지정하면 같은 종목의 ESG 데이터도 함께 생성하며,
report --fixture 로 데이터 플랫폼 없이 리포트를 만들 수 있습니다.

Example:
  go run ./cmd/esgreport sample
  go run ./cmd/esgreport sample --holdings 50 --seed 42 --output InputPortfolio.xlsx
  go run ./cmd/esgreport sample --fixture esg.xlsx --coverage 0.8`,
	RunE: runSample,
}

var (
	// Sample flags
	sampleHoldings int
	sampleSeed     uint64
	sampleOutput   string
	sampleFixture  string
	sampleCoverage float64
)

func init() {
	rootCmd.AddCommand(sampleCmd)

	// Flags
	sampleCmd.Flags().IntVar(&sampleHoldings, "holdings", 20, "number of holdings")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0, "random seed (0 = random)")
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "", "portfolio xlsx to write (default REPORT_INPUT)")
	sampleCmd.Flags().StringVar(&sampleFixture, "fixture", "", "also write a matching ESG fixture xlsx")
	sampleCmd.Flags().Float64Var(&sampleCoverage, "coverage", 0.9, "share of holdings with an ESG score in the fixture")
}

func runSample(cmd *cobra.Command, args []string) error {
	if sampleHoldings < 1 {
		return fmt.Errorf("--holdings must be at least 1")
	}
	if sampleCoverage < 0 || sampleCoverage > 1 {
		return fmt.Errorf("--coverage must be between 0 and 1")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	output := sampleOutput
	if output == "" {
		output = cfg.Report.InputPath
	}

	gen := datagen.NewGenerator()
	if sampleSeed != 0 {
		gen = datagen.NewGeneratorWithSeed(sampleSeed)
	}

	p := gen.Portfolio(sampleHoldings)
	if err := portfolio.Save(output, p); err != nil {
		return fmt.Errorf("save sample portfolio: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"path":     output,
		"holdings": p.Count(),
	}).Info("Sample portfolio written")

	PrintHeader("Sample Portfolio")
	PrintKeyValue("Holdings", fmt.Sprintf("%d", p.Count()), 9)
	PrintKeyValue("Portfolio", output, 9)

	if sampleFixture != "" {
		records := gen.ESGRecords(p, sampleCoverage)
		if err := datagen.SaveFixture(sampleFixture, records); err != nil {
			return fmt.Errorf("save ESG fixture: %w", err)
		}
		log.WithFields(map[string]interface{}{
			"path":    sampleFixture,
			"records": len(records),
		}).Info("ESG fixture written")
		PrintKeyValue("Fixture", sampleFixture, 9)
	}

	PrintSeparator()
	PrintSuccess("Sample written")
	return nil
}
