package config

import (
	"os"
	"path/filepath"
	"testing"

	"quantlab/internal/engine"
	"quantlab/internal/optimize"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "D", cfg.Data.Interval)
	assert.Equal(t, 365, cfg.Data.Days)
	assert.Equal(t, 0.001, cfg.Backtest.FeeRate)
	assert.Equal(t, "close", cfg.Backtest.PriceReference)
	assert.True(t, cfg.Backtest.CloseOnFinish)
	assert.Equal(t, "sharpe_ratio", cfg.Optimize.RankBy)
	assert.Equal(t, 4, cfg.Optimize.Workers)
	assert.Equal(t, 0.5, cfg.WalkForward.TrainRatio)
	assert.Equal(t, "non_overlapping", cfg.WalkForward.Mode)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "quantlab.yaml", `
data:
  ticker: KRW-ETH
  interval: "60"
backtest:
  initial_cash: 5000
  fee_rate: 0.0005
  close_on_finish: false
optimize:
  rank_by: total_return
  workers: 2
walk_forward:
  folds: 3
  mode: rolling
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "KRW-ETH", cfg.Data.Ticker)
	assert.Equal(t, "60", cfg.Data.Interval)
	assert.Equal(t, 5000.0, cfg.Backtest.InitialCash)
	assert.Equal(t, 0.0005, cfg.Backtest.FeeRate)
	assert.False(t, cfg.Backtest.CloseOnFinish)
	assert.Equal(t, 0.001, cfg.Backtest.Slippage, "untouched keys keep their defaults")
	assert.Equal(t, 2, cfg.Optimize.Workers)
	assert.Equal(t, 3, cfg.WalkForward.Folds)
	assert.Equal(t, "rolling", cfg.WalkForward.Mode)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "quantlab.yaml", "backtest:\n  fee_rate: 0.002\n")
	t.Setenv("QUANTLAB_BACKTEST_FEE_RATE", "0.003")
	t.Setenv("QUANTLAB_DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.003, cfg.Backtest.FeeRate)
	assert.Equal(t, "postgres://localhost/test", cfg.Database.URL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "fee rate", body: "backtest:\n  fee_rate: 1.5\n"},
		{name: "price reference", body: "backtest:\n  price_reference: vwap\n"},
		{name: "rank metric", body: "optimize:\n  rank_by: luck\n"},
		{name: "window mode", body: "walk_forward:\n  mode: expanding\n"},
		{name: "train ratio", body: "walk_forward:\n  train_ratio: 1\n"},
		{name: "position fraction", body: "backtest:\n  position_fraction: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", tt.body))
			assert.ErrorIs(t, err, engine.ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_EngineConfigs(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Backtest.InitialCash = 1000

	exec, portfolio, _ := cfg.EngineConfigs()
	assert.True(t, exec.FeeRate().Equal(decimal.RequireFromString("0.001")))
	assert.True(t, portfolio.InitialCash().Equal(decimal.NewFromInt(1000)))

	e, err := cfg.NewEngine()
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestConfig_OptimizeConversions(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	oc := cfg.OptimizerConfig()
	assert.Equal(t, optimize.RankSharpe, oc.RankBy)
	assert.Equal(t, 4, oc.Workers)

	wf := cfg.WalkForwardConfig()
	assert.Equal(t, optimize.WindowNonOverlapping, wf.Mode)
	assert.Equal(t, 1, wf.Folds)
	assert.Equal(t, 2, wf.MinBars)
}

func TestParseParamGrid(t *testing.T) {
	grid, err := ParseParamGrid([]byte("short_period: [5, 8]\nlong_period: [20]\nuse_rsi_filter: [true, false]\n"))
	require.NoError(t, err)
	assert.Equal(t, []any{5, 8}, grid["short_period"])
	assert.Equal(t, []any{true, false}, grid["use_rsi_filter"])
	assert.Equal(t, 4, grid.Size())

	_, err = ParseParamGrid([]byte("{}"))
	assert.ErrorIs(t, err, engine.ErrEmptyParamGrid)

	_, err = ParseParamGrid([]byte("short_period: []\n"))
	assert.ErrorIs(t, err, engine.ErrEmptyParamGrid)

	_, err = ParseParamGrid([]byte("short_period: 5\n"))
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestLoadParamGrid(t *testing.T) {
	path := writeFile(t, "grid.yaml", "period: [10, 20]\n")
	grid, err := LoadParamGrid(path)
	require.NoError(t, err)
	assert.Equal(t, []any{10, 20}, grid["period"])
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams([]string{"short_period=8", "atr_multiplier=2.5", "use_trend_filter=false", "name=fast"})
	require.NoError(t, err)
	assert.Equal(t, 8, p["short_period"])
	assert.Equal(t, 2.5, p["atr_multiplier"])
	assert.Equal(t, false, p["use_trend_filter"])
	assert.Equal(t, "fast", p["name"])

	_, err = ParseParams([]string{"oops"})
	assert.ErrorIs(t, err, engine.ErrInvalidParams)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "quantlab.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "rolling", cfg.WalkForward.Mode)
	assert.Equal(t, 4, cfg.WalkForward.Folds)

	grid, err := LoadParamGrid(filepath.Join("..", "..", cfg.Optimize.GridFile))
	require.NoError(t, err)
	assert.Equal(t, 72, grid.Size())
}
