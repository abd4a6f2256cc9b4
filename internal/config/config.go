package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/oturner/hindsight/internal/core"
	"github.com/oturner/hindsight/internal/dates"
)

type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Strategy   StrategyConfig   `mapstructure:"strategy"`
	Output     OutputConfig     `mapstructure:"output"`
}

// DataConfig locates the price history on disk.
type DataConfig struct {
	Listings   string `mapstructure:"listings"`
	HistoryDir string `mapstructure:"history_dir"`
}

// SimulationConfig holds the parameters of one run.
type SimulationConfig struct {
	Balance         float64 `mapstructure:"balance"`
	BuyAmount       float64 `mapstructure:"buy_amount"`
	SellLossPercent float64 `mapstructure:"sell_loss_percent"`
	SellGainPercent float64 `mapstructure:"sell_gain_percent"`
	DaysToGoBack    int     `mapstructure:"days_to_go_back"`
	CooldownDays    int     `mapstructure:"cooldown_days"`
	StartDate       string  `mapstructure:"start_date"`
	EndDate         string  `mapstructure:"end_date"`
	Unwind          string  `mapstructure:"unwind"` // "boundary" or "today"
}

// StrategyConfig selects and tunes the decision strategy.
type StrategyConfig struct {
	Name           string  `mapstructure:"name"`  // "trend" or "meanrev"
	Sizer          string  `mapstructure:"sizer"` // "risk" or "noop"
	StepSize       int     `mapstructure:"step_size"`
	DeviationScale float64 `mapstructure:"deviation_scale"`
	MinGainPercent float64 `mapstructure:"min_gain_percent"`
}

// OutputConfig controls where run artifacts go.
type OutputConfig struct {
	TradesPath string        `mapstructure:"trades_path"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	Archive    ArchiveConfig `mapstructure:"archive"`
}

// ArchiveConfig selects the artifact archive backend.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // for localfs
	S3   S3Config `mapstructure:"s3"`   // for s3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// Load reads configuration from file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Data: DataConfig{
			Listings:   "assets/stocks.json",
			HistoryDir: "assets/history",
		},
		Simulation: SimulationConfig{
			Balance:         1000,
			BuyAmount:       200,
			SellLossPercent: 1.5,
			SellGainPercent: 999,
			DaysToGoBack:    30,
			CooldownDays:    35,
			Unwind:          "boundary",
		},
		Strategy: StrategyConfig{
			Name:           "trend",
			Sizer:          "risk",
			StepSize:       5,
			DeviationScale: 0.608,
			MinGainPercent: 0.5,
		},
		Output: OutputConfig{
			TradesPath: "assets/trades.json",
			Archive: ArchiveConfig{
				Type: "localfs",
				Path: "archive",
			},
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Simulation.Balance <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("balance must be positive, got %f", c.Simulation.Balance))
	}
	if c.Simulation.BuyAmount <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("buy_amount must be positive, got %f", c.Simulation.BuyAmount))
	}
	if c.Simulation.DaysToGoBack < 2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("days_to_go_back must be at least 2, got %d", c.Simulation.DaysToGoBack))
	}
	if c.Simulation.CooldownDays < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cooldown_days cannot be negative, got %d", c.Simulation.CooldownDays))
	}

	start, err := dates.Parse(c.Simulation.StartDate)
	if err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("start_date: %w", err))
	}
	end, err := dates.Parse(c.Simulation.EndDate)
	if err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("end_date: %w", err))
	}
	if end.Before(start) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("end_date %s is before start_date %s", c.Simulation.EndDate, c.Simulation.StartDate))
	}

	switch c.Simulation.Unwind {
	case "boundary", "today":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unwind must be boundary or today, got %q", c.Simulation.Unwind))
	}

	switch c.Strategy.Name {
	case "trend", "meanrev":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown strategy %q", c.Strategy.Name))
	}

	switch c.Strategy.Sizer {
	case "risk", "noop":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown sizer %q", c.Strategy.Sizer))
	}

	if c.Strategy.Name == "meanrev" && c.Strategy.StepSize < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("step_size must be at least 1, got %d", c.Strategy.StepSize))
	}

	if c.Output.Archive.Type == "s3" && c.Output.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("s3 bucket required when archive type is s3"))
	}

	return nil
}
