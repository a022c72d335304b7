package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Refinitiv Data Platform
	RDP RDPConfig

	// Outbound HTTP
	HTTP HTTPConfig

	// Report pipeline
	Report ReportConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RDPConfig holds Refinitiv Data Platform credentials and endpoints
type RDPConfig struct {
	Username string
	Password string
	AppKey   string
	AuthURL  string
	BaseURL  string
	Scope    string
}

// HTTPConfig holds outbound HTTP client settings
type HTTPConfig struct {
	Timeout    time.Duration
	MaxRetries int     // 0 = 재시도 없음
	RateLimit  float64 // requests per second, 0 = unlimited
}

// ReportConfig holds report pipeline defaults
type ReportConfig struct {
	InputPath     string
	OutputPath    string
	TopN          int
	KeepUnmatched bool // true: left join, false: inner join
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile("")
	return build()
}

// LoadFile loads the given .env file before reading the environment.
// An empty path falls back to the default search locations.
func LoadFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else {
		loadEnvFile("")
	}
	return build()
}

func build() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ENV", "development"),

		RDP: RDPConfig{
			Username: getEnv("RDP_USERNAME", ""),
			Password: getEnv("RDP_PASSWORD", ""),
			AppKey:   getEnv("RDP_APP_KEY", ""),
			AuthURL:  getEnv("RDP_AUTH_URL", "https://api.refinitiv.com/auth/oauth2/v1"),
			BaseURL:  getEnv("RDP_BASE_URL", "https://api.refinitiv.com"),
			Scope:    getEnv("RDP_SCOPE", "trapi"),
		},

		HTTP: HTTPConfig{
			Timeout:    getEnvAsDuration("HTTP_TIMEOUT", "60s"),
			MaxRetries: getEnvAsInt("HTTP_MAX_RETRIES", 0),
			RateLimit:  getEnvAsFloat("HTTP_RATE_LIMIT", 5),
		},

		Report: ReportConfig{
			InputPath:     getEnv("REPORT_INPUT", "InputPortfolio.xlsx"),
			OutputPath:    getEnv("REPORT_OUTPUT", "output.xlsx"),
			TopN:          getEnvAsInt("REPORT_TOP_N", 5),
			KeepUnmatched: getEnvAsBool("REPORT_KEEP_UNMATCHED", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Report.TopN < 1 {
		return fmt.Errorf("REPORT_TOP_N must be at least 1, got %d", c.Report.TopN)
	}

	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES must not be negative")
	}

	return nil
}

// RequireCredentials reports an error when any data platform credential is missing.
// Only commands that call the API need this.
func (c *Config) RequireCredentials() error {
	missing := []string{}
	if c.RDP.Username == "" {
		missing = append(missing, "RDP_USERNAME")
	}
	if c.RDP.Password == "" {
		missing = append(missing, "RDP_PASSWORD")
	}
	if c.RDP.AppKey == "" {
		missing = append(missing, "RDP_APP_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %v", missing)
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile(dir string) {
	paths := []string{
		filepath.Join(dir, ".env"),
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
