// Package config loads the pipeline configuration from an optional YAML
// file overridden by BONDLAB_* environment variables, and validates it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete pipeline configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Sample    SampleConfig    `yaml:"sample" envconfig:"SAMPLE"`
	Liquidity LiquidityConfig `yaml:"liquidity" envconfig:"LIQUIDITY"`
	Rating    RatingConfig    `yaml:"rating" envconfig:"RATING"`
	Merge     MergeConfig     `yaml:"merge" envconfig:"MERGE"`
	Winsorize WinsorizeConfig `yaml:"winsorize" envconfig:"WINSORIZE"`
	// Windows overrides the default subsample windows. Only settable via
	// the YAML file; the structure does not map onto environment
	// variables.
	Windows []WindowConfig `yaml:"windows" ignored:"true" validate:"dive"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig locates the provider inputs and the output directory.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`

	RatingFile string `yaml:"rating_file" envconfig:"RATING_FILE"`
	QuoteFile  string `yaml:"quote_file" envconfig:"QUOTE_FILE"`
	PriceFile  string `yaml:"price_file" envconfig:"PRICE_FILE"`
}

// SampleConfig bounds the sample period; the business-day calendar is
// built over this range.
type SampleConfig struct {
	Start string `yaml:"start" envconfig:"START" validate:"required"`
	End   string `yaml:"end" envconfig:"END" validate:"required"`
}

// LiquidityConfig holds the two liquidity screens. The gap threshold
// deliberately differs between the quote and price feeds, per the source
// methodology; both are configuration, not constants.
type LiquidityConfig struct {
	MinMonthlyTrades int     `yaml:"min_monthly_trades" envconfig:"MIN_MONTHLY_TRADES" validate:"min=1"`
	MaxGapQuoteDays  int     `yaml:"max_gap_quote_days" envconfig:"MAX_GAP_QUOTE_DAYS" validate:"min=1"`
	MaxGapPriceDays  int     `yaml:"max_gap_price_days" envconfig:"MAX_GAP_PRICE_DAYS" validate:"min=1"`
	MaxAbsReturn     float64 `yaml:"max_abs_return" envconfig:"MAX_ABS_RETURN" validate:"gt=0"`
}

// RatingConfig selects the agency mode of the rating normalizer.
type RatingConfig struct {
	Mode string `yaml:"mode" envconfig:"MODE" validate:"oneof=sp sp_moodys"`
}

// MergeConfig selects when ratings join the quote pipeline: "trades"
// filters trades on their own history and attaches ratings at the derive
// stage; "union" merges ratings before the liquidity screens and drops
// unrated trades first. Both variants exist in the source methodology
// without a clear canonical choice, so both are supported.
type MergeConfig struct {
	Strategy string `yaml:"strategy" envconfig:"STRATEGY" validate:"oneof=trades union"`
}

// WinsorizeConfig holds the tail-clamp bounds and scope. Scope "run"
// clamps once over the whole sample; "window" recomputes the clamp inside
// each subsample window.
type WinsorizeConfig struct {
	Lower float64 `yaml:"lower" envconfig:"LOWER" validate:"gte=0,lt=0.5"`
	Upper float64 `yaml:"upper" envconfig:"UPPER" validate:"gte=0,lt=0.5"`
	Scope string  `yaml:"scope" envconfig:"SCOPE" validate:"oneof=run window"`
}

// WindowConfig is one subsample window override.
type WindowConfig struct {
	Name       string `yaml:"name" validate:"required"`
	Start      string `yaml:"start" validate:"required"`
	End        string `yaml:"end"`
	UpToLatest bool   `yaml:"up_to_latest"`
}

// Default returns the configuration the reference run uses. Load starts
// from this value, so a missing config file or environment is fine.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/bondlab.log",
		},
		Paths: PathsConfig{
			DataDir:    "data/pulled",
			OutputDir:  "output",
			RatingFile: "fisd_ratings.csv",
			QuoteFile:  "Illiq.csv.gzip",
			PriceFile:  "BondDailyPublic.csv.gzip",
		},
		Sample: SampleConfig{
			Start: "2002-07-01",
			End:   "2022-09-30",
		},
		Liquidity: LiquidityConfig{
			MinMonthlyTrades: 5,
			MaxGapQuoteDays:  7,
			MaxGapPriceDays:  5,
			MaxAbsReturn:     0.2,
		},
		Rating:    RatingConfig{Mode: "sp_moodys"},
		Merge:     MergeConfig{Strategy: "trades"},
		Winsorize: WinsorizeConfig{Lower: 0.005, Upper: 0.005, Scope: "run"},
	}
}

// Load reads configuration. Defaults provide the base, the YAML file (if
// present) overrides them, and BONDLAB_* environment variables override
// both.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = os.Getenv("BONDLAB_CONFIG")
	}
	if configFile == "" {
		if _, err := os.Stat("bondlab.yaml"); err == nil {
			configFile = "bondlab.yaml"
		}
	}
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("BONDLAB", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints and the date fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	start, err := c.Sample.StartDate()
	if err != nil {
		return err
	}
	end, err := c.Sample.EndDate()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("sample end %s before start %s", c.Sample.End, c.Sample.Start)
	}
	for _, w := range c.Windows {
		if _, _, err := w.Dates(); err != nil {
			return fmt.Errorf("window %q: %w", w.Name, err)
		}
	}
	return nil
}

// StartDate parses the sample start.
func (s SampleConfig) StartDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("sample start: %w", err)
	}
	return t.UTC(), nil
}

// EndDate parses the sample end.
func (s SampleConfig) EndDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s.End)
	if err != nil {
		return time.Time{}, fmt.Errorf("sample end: %w", err)
	}
	return t.UTC(), nil
}

// Dates parses the window bounds. An open-ended window needs UpToLatest
// set instead of an end date.
func (w WindowConfig) Dates() (start, end time.Time, err error) {
	start, err = time.Parse(time.DateOnly, w.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	if w.UpToLatest {
		if w.End != "" {
			return time.Time{}, time.Time{}, fmt.Errorf("both end and up_to_latest set")
		}
		return start.UTC(), time.Time{}, nil
	}
	end, err = time.Parse(time.DateOnly, w.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	return start.UTC(), end.UTC(), nil
}
