package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "SPORTSREF"

// Config holds everything a run needs
type Config struct {
	PollsURL       string        `yaml:"polls_url" envconfig:"POLLS_URL" validate:"required,url"`
	StandingsURL   string        `yaml:"standings_url" envconfig:"STANDINGS_URL" validate:"required,url"`
	OutputDir      string        `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	UserAgent      string        `yaml:"user_agent" envconfig:"USER_AGENT" validate:"required"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	LogLevel       string        `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	GroupStandings bool          `yaml:"group_standings" envconfig:"GROUP_STANDINGS"`
	Workbook       bool          `yaml:"workbook" envconfig:"WORKBOOK"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		PollsURL:       "https://www.sports-reference.com/cbb/seasons/women/2026-polls.html",
		StandingsURL:   "https://www.sports-reference.com/cbb/seasons/women/2026-standings.html",
		OutputDir:      "data",
		UserAgent:      "Mozilla/5.0",
		Timeout:        30 * time.Second,
		LogLevel:       "info",
		GroupStandings: true,
	}
}

// Load builds the configuration in layers, later layers winning:
// defaults, the YAML file at path (skipped when path is ""), then
// SPORTSREF_* environment variables. A .env file in the working directory
// is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// envconfig only overwrites fields whose variable is set
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays the YAML file at path onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
