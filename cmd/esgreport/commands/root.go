package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/esgreport/pkg/config"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "esgreport",
	Short: "ESG portfolio report generator",
	Long: `ESG Portfolio Report CLI

입력 포트폴리오(xlsx)에 Refinitiv Data Platform ESG 데이터를 붙여
커버리지, 상/하위 종목, 지역/국가별 통계 리포트(xlsx)를 만듭니다.

Usage:
  go run ./cmd/esgreport [command]

Examples:
  go run ./cmd/esgreport report --input InputPortfolio.xlsx --output output.xlsx
  go run ./cmd/esgreport sample --holdings 50 --output InputPortfolio.xlsx
  go run ./cmd/esgreport test-logger`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the config with the global flags taking precedence.
// Flags are exported as environment variables first: godotenv never
// overrides a variable that is already set, and validation still applies.
func loadConfig() (*config.Config, error) {
	if env != "" {
		if err := os.Setenv("ENV", env); err != nil {
			return nil, err
		}
	}
	if verbose {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
