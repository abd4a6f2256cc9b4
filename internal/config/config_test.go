package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oturner/hindsight/internal/core"
)

const testYAML = `
data:
  listings: testdata/stocks.json
  history_dir: testdata/history
simulation:
  balance: 5000
  buy_amount: 500
  start_date: "2015-01-01"
  end_date: "2020-08-01"
  unwind: today
strategy:
  name: meanrev
  sizer: noop
  step_size: 7
output:
  sqlite_path: runs.db
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "testdata/stocks.json", cfg.Data.Listings)
	assert.Equal(t, 5000.0, cfg.Simulation.Balance)
	assert.Equal(t, "today", cfg.Simulation.Unwind)
	assert.Equal(t, "meanrev", cfg.Strategy.Name)
	assert.Equal(t, 7, cfg.Strategy.StepSize)
	assert.Equal(t, "runs.db", cfg.Output.SQLitePath)

	// Unset fields keep their defaults.
	assert.Equal(t, 30, cfg.Simulation.DaysToGoBack)
	assert.Equal(t, 0.608, cfg.Strategy.DeviationScale)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("HINDSIGHT_TEST_DB", "expanded.db")

	yaml := testYAML + "\n"
	cfg, err := Load(writeConfig(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, "runs.db", cfg.Output.SQLitePath)

	withEnv := `
simulation:
  start_date: "2015-01-01"
  end_date: "2020-08-01"
output:
  sqlite_path: ${HINDSIGHT_TEST_DB}
`
	cfg, err = Load(writeConfig(t, withEnv))
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Output.SQLitePath)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Defaults()
		cfg.Simulation.StartDate = "2015-01-01"
		cfg.Simulation.EndDate = "2020-08-01"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-positive balance", func(c *Config) { c.Simulation.Balance = 0 }},
		{"non-positive buy amount", func(c *Config) { c.Simulation.BuyAmount = -1 }},
		{"tiny lookback", func(c *Config) { c.Simulation.DaysToGoBack = 1 }},
		{"negative cooldown", func(c *Config) { c.Simulation.CooldownDays = -1 }},
		{"bad start date", func(c *Config) { c.Simulation.StartDate = "01/01/2015" }},
		{"end before start", func(c *Config) { c.Simulation.EndDate = "2014-01-01" }},
		{"bad unwind", func(c *Config) { c.Simulation.Unwind = "never" }},
		{"bad strategy", func(c *Config) { c.Strategy.Name = "hodl" }},
		{"bad sizer", func(c *Config) { c.Strategy.Sizer = "yolo" }},
		{"meanrev without step size", func(c *Config) {
			c.Strategy.Name = "meanrev"
			c.Strategy.StepSize = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfigInvalid))
		})
	}
}

func TestValidate_S3RequiresBucket(t *testing.T) {
	cfg := Defaults()
	cfg.Simulation.StartDate = "2015-01-01"
	cfg.Simulation.EndDate = "2020-08-01"
	cfg.Output.Archive.Type = "s3"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfigMissing))
}
