package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"quantlab/internal/engine"
	"quantlab/internal/logger"
	"quantlab/internal/optimize"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const EnvPrefix = "QUANTLAB"

type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Data        DataConfig        `mapstructure:"data"`
	Backtest    BacktestConfig    `mapstructure:"backtest"`
	Optimize    OptimizeConfig    `mapstructure:"optimize"`
	WalkForward WalkForwardConfig `mapstructure:"walk_forward"`
	Report      ReportConfig      `mapstructure:"report"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" default:"console" validate:"oneof=console json"`
	Output string `mapstructure:"output" default:"stderr"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// DataConfig selects the candle series. CSVPath takes precedence over the database.
type DataConfig struct {
	Ticker   string `mapstructure:"ticker" default:"KRW-BTC" validate:"required"`
	Interval string `mapstructure:"interval" default:"D" validate:"required"`
	Days     int    `mapstructure:"days" default:"365" validate:"gte=1"`
	CSVPath  string `mapstructure:"csv_path"`
}

type BacktestConfig struct {
	InitialCash       float64 `mapstructure:"initial_cash" default:"10000000" validate:"gte=0"`
	FeeRate           float64 `mapstructure:"fee_rate" default:"0.001" validate:"gte=0,lt=1"`
	Slippage          float64 `mapstructure:"slippage" default:"0.001" validate:"gte=0,lt=1"`
	PriceReference    string  `mapstructure:"price_reference" default:"close" validate:"oneof=close open typical"`
	PositionFraction  float64 `mapstructure:"position_fraction" default:"1" validate:"gt=0,lte=1"`
	CloseOnFinish     bool    `mapstructure:"close_on_finish" default:"true"`
	QuantityPrecision int32   `mapstructure:"quantity_precision" default:"8" validate:"gte=0,lte=18"`
	RiskFreeRate      float64 `mapstructure:"risk_free_rate" default:"0" validate:"gte=0,lt=1"`
}

type OptimizeConfig struct {
	Strategy string `mapstructure:"strategy" default:"ema_cross" validate:"required"`
	RankBy   string `mapstructure:"rank_by" default:"sharpe_ratio" validate:"oneof=sharpe_ratio total_return annualized_return max_drawdown win_rate profit_factor avg_trade_return"`
	Workers  int    `mapstructure:"workers" default:"4" validate:"gte=1"`
	GridFile string `mapstructure:"grid_file"`
}

type WalkForwardConfig struct {
	TrainRatio float64 `mapstructure:"train_ratio" default:"0.5" validate:"gt=0,lt=1"`
	Folds      int     `mapstructure:"folds" default:"1" validate:"gte=1"`
	Mode       string  `mapstructure:"mode" default:"non_overlapping" validate:"oneof=non_overlapping rolling"`
	MinBars    int     `mapstructure:"min_bars" default:"2" validate:"gte=1"`
}

type ReportConfig struct {
	OutDir string `mapstructure:"out_dir" default:"results"`
	Chart  bool   `mapstructure:"chart" default:"true"`
	TopN   int    `mapstructure:"top_n" default:"10" validate:"gte=1"`
}

var validate = validator.New()

// Load reads an optional YAML file and QUANTLAB_* environment variables, in
// that order of precedence from lowest to highest, on top of the defaults.
// A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, reflect.TypeOf(Config{}), "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}

	// Defaults go in first so explicit false and zero values survive decoding.
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("applying defaults failed: %w", err)
	}
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", engine.ErrInvalidConfig, err)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s file: %w", path, err)
	}
	return nil
}

// bindEnvs registers every nested key so viper resolves it from the
// environment even when the config file does not mention it.
func bindEnvs(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := field.Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		if field.Type.Kind() == reflect.Struct {
			bindEnvs(v, field.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: c.Log.Output,
	}
}

// EngineConfigs converts the backtest section to the engine's decimal configs.
func (c *Config) EngineConfigs() (*engine.ExecutionConfig, *engine.PortfolioConfig, *engine.ReportingConfig) {
	b := c.Backtest
	exec := engine.NewExecutionConfig(
		decimal.NewFromFloat(b.FeeRate),
		decimal.NewFromFloat(b.Slippage),
		engine.PriceReference(b.PriceReference),
	)
	portfolio := engine.NewPortfolioConfig(
		decimal.NewFromFloat(b.InitialCash),
		decimal.NewFromFloat(b.PositionFraction),
		b.CloseOnFinish,
	).WithQuantityPrecision(b.QuantityPrecision)
	reporting := engine.NewReportingConfig(b.RiskFreeRate)
	return exec, portfolio, reporting
}

func (c *Config) NewEngine() (*engine.Engine, error) {
	return engine.NewEngine(c.EngineConfigs())
}

func (c *Config) OptimizerConfig() optimize.Config {
	return optimize.Config{
		RankBy:  optimize.RankMetric(c.Optimize.RankBy),
		Workers: c.Optimize.Workers,
	}
}

func (c *Config) WalkForwardConfig() optimize.WalkForwardConfig {
	return optimize.WalkForwardConfig{
		TrainRatio: c.WalkForward.TrainRatio,
		Folds:      c.WalkForward.Folds,
		Mode:       optimize.WindowMode(c.WalkForward.Mode),
		MinBars:    c.WalkForward.MinBars,
	}
}
