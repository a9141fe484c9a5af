package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/engine"
	"github.com/quotient-labs/swap-engine/internal/evm/uniswapv3"
	"github.com/quotient-labs/swap-engine/internal/http/httputil"
)

type QuoteHandler struct {
	engine *engine.Engine
}

func NewQuoteHandler(eng *engine.Engine) *QuoteHandler {
	return &QuoteHandler{engine: eng}
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

// QuoteRequest asks for an exact-input quote on one venue. Amount is
// human-readable; decimals are optional and resolved on chain (or from the
// pool catalog) when omitted.
type QuoteRequest struct {
	// Venue is one of uniswap-v2, uniswap-v3, raydium.
	Venue string `form:"venue" json:"venue" binding:"required"`

	// Chain selects the EVM network; ignored for raydium.
	Chain string `form:"chain" json:"chain"`

	// InputToken and OutputToken are a hex contract address on EVM venues
	// and a base58 mint on raydium.
	InputToken  string `form:"inputToken" json:"inputToken" binding:"required"`
	OutputToken string `form:"outputToken" json:"outputToken" binding:"required"`

	// Amount is a human-readable decimal, e.g. "1.5".
	Amount string `form:"amount" json:"amount" binding:"required"`

	// FeeTier applies only to uniswap-v3, in hundredths of a bip.
	// Defaults to the 0.3% tier.
	FeeTier uint32 `form:"feeTier" json:"feeTier"`

	InputDecimals  uint8 `form:"inputDecimals" json:"inputDecimals"`
	OutputDecimals uint8 `form:"outputDecimals" json:"outputDecimals"`
}

// QuoteResponse is the priced trade plus enough context to act on it.
type QuoteResponse struct {
	Venue       string `json:"venue"`
	Chain       string `json:"chain"`
	InputToken  string `json:"inputToken"`
	OutputToken string `json:"outputToken"`
	PoolAddress string `json:"poolAddress"`
	FeeTier     uint32 `json:"feeTier,omitempty"`

	domain.TradeInfo
}

type parsedQuoteRequest struct {
	venue       domain.PoolKind
	inputToken  domain.Token
	outputToken domain.Token
	amount      decimal.Decimal
	feeTier     uint32
}

func parseQuoteRequest(c *gin.Context) (*parsedQuoteRequest, bool) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return nil, false
	}
	return parseQuoteFields(c, req)
}

func parseQuoteFields(c *gin.Context, req QuoteRequest) (*parsedQuoteRequest, bool) {
	var venue domain.PoolKind
	switch req.Venue {
	case domain.PoolKindV2Pair.String():
		venue = domain.PoolKindV2Pair
	case domain.PoolKindV3Pool.String():
		venue = domain.PoolKindV3Pool
	case domain.PoolKindRaydium.String():
		venue = domain.PoolKindRaydium
	default:
		httputil.BadRequest(c, "invalid venue: must be uniswap-v2, uniswap-v3 or raydium")
		return nil, false
	}

	chain := domain.SolanaMainnet
	if venue != domain.PoolKindRaydium {
		switch req.Chain {
		case "", domain.EthereumMainnet.String():
			chain = domain.EthereumMainnet
		case domain.Sepolia.String():
			chain = domain.Sepolia
		case domain.ArbitrumOne.String():
			chain = domain.ArbitrumOne
		default:
			httputil.BadRequest(c, "invalid chain: "+req.Chain)
			return nil, false
		}
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		httputil.BadRequest(c, "invalid amount: must be a positive decimal")
		return nil, false
	}

	feeTier := req.FeeTier
	if venue == domain.PoolKindV3Pool && feeTier == 0 {
		feeTier = uniswapv3.FeeMedium
	}

	return &parsedQuoteRequest{
		venue:       venue,
		inputToken:  domain.Token{Chain: chain, Address: req.InputToken, Decimals: req.InputDecimals},
		outputToken: domain.Token{Chain: chain, Address: req.OutputToken, Decimals: req.OutputDecimals},
		amount:      amount,
		feeTier:     feeTier,
	}, true
}

func (h *QuoteHandler) getQuote(c *gin.Context) {
	parsed, ok := parseQuoteRequest(c)
	if !ok {
		return
	}

	trade, err := h.quote(c, parsed)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	httputil.Success(c, buildQuoteResponse(parsed, trade))
}

func (h *QuoteHandler) quote(c *gin.Context, parsed *parsedQuoteRequest) (*domain.TradeDescriptor, error) {
	ctx := c.Request.Context()
	switch parsed.venue {
	case domain.PoolKindV3Pool:
		return h.engine.QuoteV3(ctx, parsed.inputToken, parsed.outputToken, parsed.feeTier, parsed.amount)
	case domain.PoolKindRaydium:
		return h.engine.QuoteRaydium(ctx, parsed.inputToken, parsed.outputToken, parsed.amount)
	default:
		return h.engine.QuoteV2(ctx, parsed.inputToken, parsed.outputToken, parsed.amount)
	}
}

func buildQuoteResponse(parsed *parsedQuoteRequest, trade *domain.TradeDescriptor) QuoteResponse {
	resp := QuoteResponse{
		Venue:       parsed.venue.String(),
		Chain:       parsed.inputToken.Chain.String(),
		InputToken:  parsed.inputToken.Address,
		OutputToken: parsed.outputToken.Address,
		TradeInfo:   engine.TradeInfo(trade),
	}
	switch trade.Pool.Kind {
	case domain.PoolKindV2Pair:
		resp.PoolAddress = trade.Pool.V2.PairAddress.Hex()
	case domain.PoolKindV3Pool:
		resp.PoolAddress = trade.Pool.V3.PoolAddress.Hex()
		resp.FeeTier = trade.Pool.V3.Fee
	case domain.PoolKindRaydium:
		resp.PoolAddress = trade.Pool.Raydium.Keys.ID.String()
	}
	return resp
}

// handleEngineError maps the error kind to an HTTP status: missing pools and
// routes are 404, caller mistakes are 400, the rest is 500.
func handleEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrPoolNotFound), errors.Is(err, common.ErrNoRoute):
		httputil.NotFound(c, err.Error())
	case errors.Is(err, common.ErrInvalidSlippage):
		httputil.BadRequest(c, err.Error())
	default:
		httputil.InternalError(c, err.Error())
	}
}
