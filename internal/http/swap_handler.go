package http

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/config"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/engine"
	"github.com/quotient-labs/swap-engine/internal/http/httputil"
)

type SwapHandler struct {
	engine  *engine.Engine
	swapCfg *config.SwapConfig
}

func NewSwapHandler(eng *engine.Engine, swapCfg *config.SwapConfig) *SwapHandler {
	return &SwapHandler{engine: eng, swapCfg: swapCfg}
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup) {
	pub.POST("", h.postSwap)
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

// SwapRequest executes (or by default simulates) an exact-input swap.
type SwapRequest struct {
	QuoteRequest

	// SlippagePercent is a human-readable percentage, e.g. "0.5". Falls
	// back to the configured default when omitted.
	SlippagePercent string `form:"slippagePercent" json:"slippagePercent"`

	// TxFormat applies only to raydium: "legacy" (default) or "versioned".
	TxFormat string `form:"txFormat" json:"txFormat"`
}

func (h *SwapHandler) postSwap(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	parsed, ok := parseQuoteFields(c, req.QuoteRequest)
	if !ok {
		return
	}

	slippage := decimal.New(int64(h.swapCfg.DefaultSlippageBps), -2)
	if req.SlippagePercent != "" {
		var err error
		slippage, err = decimal.NewFromString(req.SlippagePercent)
		if err != nil {
			httputil.BadRequest(c, "invalid slippagePercent: must be a decimal percentage")
			return
		}
	}

	format := domain.TxFormatLegacy
	switch req.TxFormat {
	case "", "legacy":
	case "versioned":
		format = domain.TxFormatVersioned
	default:
		httputil.BadRequest(c, "invalid txFormat: must be legacy or versioned")
		return
	}

	result, err := h.swap(c, parsed, slippage, format)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	httputil.Success(c, result)
}

func (h *SwapHandler) swap(c *gin.Context, parsed *parsedQuoteRequest, slippage decimal.Decimal, format domain.SolanaTxFormat) (*engine.SwapResult, error) {
	ctx := c.Request.Context()
	switch parsed.venue {
	case domain.PoolKindV3Pool:
		return h.engine.SwapV3(ctx, parsed.inputToken, parsed.outputToken, parsed.feeTier, parsed.amount, slippage)
	case domain.PoolKindRaydium:
		return h.engine.SwapRaydium(ctx, parsed.inputToken, parsed.outputToken, parsed.amount, slippage, format)
	default:
		return h.engine.SwapV2(ctx, parsed.inputToken, parsed.outputToken, parsed.amount, slippage)
	}
}
