package engine

import (
	"github.com/shopspring/decimal"
)

type PriceReference string

const (
	PriceClose   PriceReference = "close"
	PriceOpen    PriceReference = "open"
	PriceTypical PriceReference = "typical"
)

const defaultQuantityPrecision int32 = 8

var (
	DefaultFeeRate     = decimal.RequireFromString("0.001")
	DefaultSlippage    = decimal.RequireFromString("0.001")
	DefaultInitialCash = decimal.NewFromInt(10_000_000)
)

type ExecutionConfig struct {
	feeRate   decimal.Decimal
	slippage  decimal.Decimal
	reference PriceReference
}

func NewExecutionConfig(feeRate, slippage decimal.Decimal, reference PriceReference) *ExecutionConfig {
	if reference == "" {
		reference = PriceClose
	}
	return &ExecutionConfig{
		feeRate:   feeRate,
		slippage:  slippage,
		reference: reference,
	}
}

func DefaultExecutionConfig() *ExecutionConfig {
	return NewExecutionConfig(DefaultFeeRate, DefaultSlippage, PriceClose)
}

func (c *ExecutionConfig) FeeRate() decimal.Decimal {
	return c.feeRate
}

func (c *ExecutionConfig) Slippage() decimal.Decimal {
	return c.slippage
}

func (c *ExecutionConfig) validate() error {
	one := decimal.NewFromInt(1)
	if c.feeRate.IsNegative() || c.feeRate.GreaterThanOrEqual(one) {
		return ErrInvalidFeeRate
	}
	if c.slippage.IsNegative() || c.slippage.GreaterThanOrEqual(one) {
		return ErrInvalidSlippage
	}
	switch c.reference {
	case PriceClose, PriceOpen, PriceTypical:
	default:
		return ErrUnknownPriceReference
	}
	return nil
}

type PortfolioConfig struct {
	initialCash       decimal.Decimal
	positionFraction  decimal.Decimal
	closeOnFinish     bool
	quantityPrecision int32
}

// NewPortfolioConfig sizes every entry as positionFraction of the cash available
// at that bar. closeOnFinish liquidates an open position on the last candle.
func NewPortfolioConfig(initialCash, positionFraction decimal.Decimal, closeOnFinish bool) *PortfolioConfig {
	return &PortfolioConfig{
		initialCash:       initialCash,
		positionFraction:  positionFraction,
		closeOnFinish:     closeOnFinish,
		quantityPrecision: defaultQuantityPrecision,
	}
}

func DefaultPortfolioConfig() *PortfolioConfig {
	return NewPortfolioConfig(DefaultInitialCash, decimal.NewFromInt(1), true)
}

// WithQuantityPrecision sets the number of decimals an order quantity is rounded down to.
func (c *PortfolioConfig) WithQuantityPrecision(places int32) *PortfolioConfig {
	c.quantityPrecision = places
	return c
}

func (c *PortfolioConfig) InitialCash() decimal.Decimal {
	return c.initialCash
}

func (c *PortfolioConfig) validate() error {
	if c.initialCash.IsNegative() {
		return ErrInvalidInitialCash
	}
	if !c.positionFraction.IsPositive() || c.positionFraction.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidPositionFraction
	}
	return nil
}

type ReportingConfig struct {
	sharpeRiskFreeRate float64
}

// NewReportingConfig takes the annual risk-free rate subtracted from bar returns in the Sharpe ratio.
func NewReportingConfig(sharpeRiskFreeRate float64) *ReportingConfig {
	return &ReportingConfig{
		sharpeRiskFreeRate: sharpeRiskFreeRate,
	}
}

func DefaultReportingConfig() *ReportingConfig {
	return NewReportingConfig(0)
}
