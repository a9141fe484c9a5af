package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

type TradeType uint8

const (
	// TradeTypeExactInput fixes the input amount; output is computed.
	TradeTypeExactInput TradeType = iota
)

// SwapQuote holds the derived numbers for one trade size against one pool.
// OutputAmount is always computed first; ExecutionPrice and PriceImpact are
// derived from it. Never mutated after construction.
type SwapQuote struct {
	// InputAmount and OutputAmount are raw integers in each token's
	// smallest unit.
	InputAmount  *big.Int
	OutputAmount *big.Int

	// ExecutionPrice is output per one input unit, decimals-adjusted.
	ExecutionPrice decimal.Decimal

	// MidPrice is the size-independent reserve-ratio price. Only
	// constant-product venues expose it; HasMidPrice guards the field.
	MidPrice    decimal.Decimal
	HasMidPrice bool

	// PriceImpact is the percentage deviation of ExecutionPrice from the
	// pre-trade mid price.
	PriceImpact decimal.Decimal
}

// TradeDescriptor is an immutable exact-input trade: the route (single-hop),
// the raw input amount and the quote computed for it. Owned by the caller
// that built it; a failed build never returns a partial descriptor.
type TradeDescriptor struct {
	InputToken  Token
	OutputToken Token
	InputAmount *big.Int
	Pool        PoolState
	Quote       SwapQuote
	TradeType   TradeType
}

// TradeInfo is the outbound quote contract consumed by the HTTP layer.
// Prices are decimal strings: execution/mid price at a significant-digit
// count (default 6), impact at a fixed decimal-place count (default 2).
type TradeInfo struct {
	InputAmount    string `json:"inputAmount"`
	OutputAmount   string `json:"outputAmount"`
	PriceImpact    string `json:"priceImpact"`
	ExecutionPrice string `json:"executionPrice"`
	MidPrice       string `json:"midPrice,omitempty"`
}

// SimulationResult is the mapped outcome of a dry-run submission.
type SimulationResult struct {
	Success              bool     `json:"success"`
	Logs                 []string `json:"logs,omitempty"`
	ComputeUnitsConsumed uint64   `json:"computeUnitsConsumed,omitempty"`
	ReturnData           string   `json:"returnData,omitempty"`
	Error                string   `json:"error,omitempty"`
}
