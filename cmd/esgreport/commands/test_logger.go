package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/esgreport/pkg/config"
	"github.com/wonny/esgreport/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Logger 기능 테스트",
	Long: `구조화된 로깅 기능을 테스트합니다.

이 명령어는:
- JSON/Console 포맷 테스트
- 로그 레벨 테스트
- 구조화된 필드 로깅
- 에러 컨텍스트 로깅

Example:
  go run ./cmd/esgreport test-logger
  go run ./cmd/esgreport test-logger --env production`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(stdout, "=== ESG Report Logger Test ===")

	steps := []struct {
		title string
		run   func()
	}{
		{"1. JSON Format (Production)", testJSONFormat},
		{"2. Console Format (Development)", testConsoleFormat},
		{"3. Structured Logging with Fields", testStructuredLogging},
		{"4. Error Logging", testErrorLogging},
	}
	for _, step := range steps {
		fmt.Fprintln(stdout, step.title)
		fmt.Fprintln(stdout, "--------------------------------")
		step.run()
		fmt.Fprintln(stdout)
	}

	PrintSuccess("All logger tests completed!")
	return nil
}

func testJSONFormat() {
	log := logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})
	log.Info("Report run started")
	log.Warn("Holdings without ESG data dropped")
	log.Error("Failed to reach the data platform")
}

func testConsoleFormat() {
	log := logger.New(&config.Config{Env: "development", LogLevel: "debug", LogFormat: "console"})
	log.Debug("Parsing datagrid headers")
	log.Infof("Input portfolio loaded: %d holdings", 120)
	log.Warnf("Dropped %d incomplete rows", 2)
	log.Warn("Access token expired, requesting a new one")
}

func testStructuredLogging() {
	log := logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"}).
		WithRunID(logger.NewRunID())

	// Single field
	log.WithField("instruments", 120).Info("Requesting ESG data")

	// Multiple fields
	log.WithFields(map[string]interface{}{
		"holdings":  120,
		"covered":   104,
		"coverage":  "91.25%",
		"regions":   3,
		"countries": 14,
	}).Info("ESG aggregates computed")

	// Chained fields
	log.WithField("module", "report").
		WithField("sheet", "Geography").
		Info("Sheet written")
}

func testErrorLogging() {
	log := logger.New(&config.Config{Env: "production", LogLevel: "error", LogFormat: "json"})

	// Simple error
	err := errors.New("invalid universe")
	log.WithError(err).Error("ESG fetch failed")

	// Error with context
	log.WithError(err).
		WithFields(map[string]interface{}{
			"status":   400,
			"endpoint": "/data/datagrid/beta1/",
		}).
		Error("Datagrid request rejected")
}
