package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string         `yaml:"addr" env:"MATCHD_ADDR"`
	JWTSecret      string         `yaml:"jwt_secret" env:"MATCHD_JWT_SECRET"`
	APITimeout     time.Duration  `yaml:"timeout" env:"MATCHD_TIMEOUT"`
	DatabasePath   string         `yaml:"database_path" env:"MATCHD_DATABASE_PATH"`
	TokenDuration  time.Duration  `yaml:"token_duration" env:"MATCHD_TOKEN_DURATION"`
	WorkerCount    int            `yaml:"worker_count" env:"MATCHD_WORKER_COUNT"`
	MatchingConfig MatchingConfig `yaml:"matching" envPrefix:"MATCHD_MATCHING_"`
	MailerConfig   MailerConfig   `yaml:"mailer" envPrefix:"MATCHD_MAILER_"`
}

// MatchingConfig carries the tunable parameters of the ranking path. Weights
// and synonym tables are admin settings stored in the database, not here.
type MatchingConfig struct {
	MinScore       float64       `yaml:"min_score" env:"MIN_SCORE"`
	MaxResults     int           `yaml:"max_results" env:"MAX_RESULTS"`
	ResponseWindow time.Duration `yaml:"response_window" env:"RESPONSE_WINDOW"`
	ScoreWorkers   int           `yaml:"score_workers" env:"SCORE_WORKERS"`
}

type MailerConfig struct {
	BaseURL                 string        `yaml:"base_url" env:"BASE_URL"`
	APIKey                  string        `yaml:"api_key" env:"API_KEY"`
	From                    string        `yaml:"from" env:"FROM"`
	Timeout                 time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Retries                 int           `yaml:"retries" env:"RETRIES"`
	Backoff                 time.Duration `yaml:"backoff" env:"BACKOFF"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold" env:"CIRCUIT_FAILURE_THRESHOLD"`
	CircuitReset            time.Duration `yaml:"circuit_reset" env:"CIRCUIT_RESET"`
}

// LoadConfig builds the configuration from defaults, then the optional YAML
// file, then environment variable overrides, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          ":8080",
		JWTSecret:     "supersecretkey",
		APITimeout:    15 * time.Second,
		DatabasePath:  "matchd.db",
		TokenDuration: 1 * time.Hour,
		WorkerCount:   4,
		MatchingConfig: MatchingConfig{
			MinScore:       0.65,
			MaxResults:     5,
			ResponseWindow: 72 * time.Hour,
			ScoreWorkers:   8,
		},
		MailerConfig: MailerConfig{
			BaseURL:                 "http://localhost:8025",
			From:                    "no-reply@expertlane.example",
			Timeout:                 10 * time.Second,
			Retries:                 1,
			Backoff:                 500 * time.Millisecond,
			CircuitFailureThreshold: 5,
			CircuitReset:            30 * time.Second,
		},
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations that are unsafe outside development.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.MatchingConfig.MaxResults <= 0 {
		return fmt.Errorf("matching.max_results must be positive")
	}
	if c.MatchingConfig.ResponseWindow <= 0 {
		return fmt.Errorf("matching.response_window must be positive")
	}
	if c.JWTSecret == "supersecretkey" && os.Getenv("MATCHD_ENV") != "development" {
		return fmt.Errorf("jwt_secret is the insecure default; set MATCHD_JWT_SECRET")
	}
	return nil
}
