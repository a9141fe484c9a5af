// Package engine wires the venue adapters into quote and swap operations.
// It is the only layer that touches configuration, connections and all three
// venues together; HTTP handlers call in here and nowhere deeper.
package engine

import (
	"context"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/chains"
	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/config"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/evm"
	"github.com/quotient-labs/swap-engine/internal/evm/uniswapv2"
	"github.com/quotient-labs/swap-engine/internal/evm/uniswapv3"
	"github.com/quotient-labs/swap-engine/internal/metrics"
	"github.com/quotient-labs/swap-engine/internal/pricing"
	"github.com/quotient-labs/swap-engine/internal/raydium"
)

// SwapResult reports one swap attempt. Simulation is set on dry runs,
// TxHash/Signature on live sends. Confirmed is meaningful only when Executed.
type SwapResult struct {
	Trade      domain.TradeInfo         `json:"trade"`
	Executed   bool                     `json:"executed"`
	Simulation *domain.SimulationResult `json:"simulation,omitempty"`
	TxHash     string                   `json:"txHash,omitempty"`
	Confirmed  bool                     `json:"confirmed,omitempty"`
}

// Engine owns the connection cache and the Raydium pool registry for the
// process lifetime and exposes one quote and one swap entry point per venue.
// Amounts cross the boundary human-readable; everything below works in raw
// integer units.
type Engine struct {
	chainCfg *config.ChainConfig
	swapCfg  *config.SwapConfig
	conns    *chains.ConnectionCache
	registry *raydium.Registry
	log      *common.ServiceLogger
}

func New(chainCfg *config.ChainConfig, swapCfg *config.SwapConfig) *Engine {
	return &Engine{
		chainCfg: chainCfg,
		swapCfg:  swapCfg,
		conns:    chains.NewConnectionCache(chainCfg),
		registry: raydium.NewRegistry(chainCfg.RaydiumCatalogURL),
		log:      common.NewServiceLogger("engine"),
	}
}

// QuoteV2 prices an exact-input swap on a constant-product pair.
func (e *Engine) QuoteV2(ctx context.Context, inputToken, outputToken domain.Token, amount decimal.Decimal) (*domain.TradeDescriptor, error) {
	stop := observeQuote(domain.PoolKindV2Pair)
	trade, err := e.buildV2Trade(ctx, inputToken, outputToken, amount)
	stop(err)
	return trade, err
}

// QuoteV3 prices an exact-input swap on a concentrated-liquidity pool at the
// given fee tier.
func (e *Engine) QuoteV3(ctx context.Context, inputToken, outputToken domain.Token, fee uint32, amount decimal.Decimal) (*domain.TradeDescriptor, error) {
	stop := observeQuote(domain.PoolKindV3Pool)
	trade, err := e.buildV3Trade(ctx, inputToken, outputToken, fee, amount)
	stop(err)
	return trade, err
}

// QuoteRaydium prices an exact-input swap on a Raydium AMM pool.
func (e *Engine) QuoteRaydium(ctx context.Context, inputToken, outputToken domain.Token, amount decimal.Decimal) (*domain.TradeDescriptor, error) {
	stop := observeQuote(domain.PoolKindRaydium)
	trade, err := e.buildRaydiumTrade(ctx, inputToken, outputToken, amount)
	stop(err)
	return trade, err
}

// SwapV2 quotes, assembles and submits a constant-product swap. With Execute
// off, the assembled call is simulated instead of sent.
func (e *Engine) SwapV2(ctx context.Context, inputToken, outputToken domain.Token, amount, slippagePercent decimal.Decimal) (*SwapResult, error) {
	trade, err := e.QuoteV2(ctx, inputToken, outputToken, amount)
	if err != nil {
		return nil, err
	}
	signer, err := e.conns.EVMSigner(inputToken.Chain)
	if err != nil {
		return nil, err
	}
	env, err := uniswapv2.NewAssembler(inputToken.Chain, signer.Address).Assemble(trade, slippagePercent)
	if err != nil {
		return nil, err
	}
	return e.submitEVM(ctx, trade, env)
}

// SwapV3 quotes, assembles and submits a concentrated-liquidity swap.
func (e *Engine) SwapV3(ctx context.Context, inputToken, outputToken domain.Token, fee uint32, amount, slippagePercent decimal.Decimal) (*SwapResult, error) {
	trade, err := e.QuoteV3(ctx, inputToken, outputToken, fee, amount)
	if err != nil {
		return nil, err
	}
	signer, err := e.conns.EVMSigner(inputToken.Chain)
	if err != nil {
		return nil, err
	}
	env, err := uniswapv3.NewAssembler(inputToken.Chain, signer.Address).Assemble(trade, slippagePercent)
	if err != nil {
		return nil, err
	}
	return e.submitEVM(ctx, trade, env)
}

// SwapRaydium quotes, assembles and submits a Raydium swap in the requested
// transaction format.
func (e *Engine) SwapRaydium(ctx context.Context, inputToken, outputToken domain.Token, amount, slippagePercent decimal.Decimal, format domain.SolanaTxFormat) (*SwapResult, error) {
	trade, err := e.QuoteRaydium(ctx, inputToken, outputToken, amount)
	if err != nil {
		return nil, err
	}
	client, err := e.conns.Solana()
	if err != nil {
		return nil, err
	}
	wallet, err := e.conns.SolanaWallet()
	if err != nil {
		return nil, err
	}

	assembler := raydium.NewAssembler(client, wallet, e.swapCfg.MaxPriorityFeeMicroLamports)
	env, err := assembler.Assemble(ctx, trade, slippagePercent, format)
	if err != nil {
		return nil, err
	}

	submitter := raydium.NewSubmitter(client, wallet, e.swapCfg.ConfirmTimeout, e.swapCfg.ConfirmPollInterval)
	result := &SwapResult{Trade: TradeInfo(trade)}
	if !e.swapCfg.Execute {
		result.Simulation, err = submitter.Simulate(ctx, env)
		return result, err
	}

	sig, err := submitter.Send(ctx, env, e.swapCfg.MaxRetries)
	if err != nil {
		return nil, err
	}
	result.Executed = true
	result.TxHash = sig.String()
	if err := submitter.Confirm(ctx, sig); err != nil {
		// The transaction may still land after the poll bound; hand the
		// signature back either way.
		e.log.Warn().Err(err).Str("signature", sig.String()).Msg("confirmation not observed")
		return result, nil
	}
	result.Confirmed = true
	return result, nil
}

func (e *Engine) submitEVM(ctx context.Context, trade *domain.TradeDescriptor, env *domain.EVMCallEnvelope) (*SwapResult, error) {
	client, err := e.conns.EVM(env.Chain)
	if err != nil {
		return nil, err
	}
	signer, err := e.conns.EVMSigner(env.Chain)
	if err != nil {
		return nil, err
	}
	submitter := evm.NewSubmitter(client, signer, env.Chain, e.swapCfg.ConfirmTimeout, e.swapCfg.ConfirmPollInterval)

	result := &SwapResult{Trade: TradeInfo(trade)}
	if !e.swapCfg.Execute {
		result.Simulation, err = submitter.Simulate(ctx, env)
		return result, err
	}

	hash, err := submitter.Send(ctx, env, e.swapCfg.MaxRetries)
	if err != nil {
		return nil, err
	}
	result.Executed = true
	result.TxHash = hash.Hex()
	if _, err := submitter.WaitForReceipt(ctx, hash); err != nil {
		e.log.Warn().Err(err).Str("tx", hash.Hex()).Msg("confirmation not observed")
		return result, nil
	}
	result.Confirmed = true
	return result, nil
}

func (e *Engine) buildV2Trade(ctx context.Context, inputToken, outputToken domain.Token, amount decimal.Decimal) (*domain.TradeDescriptor, error) {
	client, err := e.conns.EVM(inputToken.Chain)
	if err != nil {
		return nil, err
	}
	inputToken, outputToken, err = e.ensureDecimals(ctx, client, inputToken, outputToken)
	if err != nil {
		return nil, err
	}
	amountIn := pricing.FromReadable(amount, inputToken.Decimals)
	return uniswapv2.NewResolver(client, inputToken.Chain).BuildTrade(ctx, inputToken, outputToken, amountIn)
}

func (e *Engine) buildV3Trade(ctx context.Context, inputToken, outputToken domain.Token, fee uint32, amount decimal.Decimal) (*domain.TradeDescriptor, error) {
	client, err := e.conns.EVM(inputToken.Chain)
	if err != nil {
		return nil, err
	}
	inputToken, outputToken, err = e.ensureDecimals(ctx, client, inputToken, outputToken)
	if err != nil {
		return nil, err
	}
	amountIn := pricing.FromReadable(amount, inputToken.Decimals)
	return uniswapv3.NewResolver(client, inputToken.Chain).BuildTrade(ctx, inputToken, outputToken, fee, amountIn)
}

func (e *Engine) buildRaydiumTrade(ctx context.Context, inputToken, outputToken domain.Token, amount decimal.Decimal) (*domain.TradeDescriptor, error) {
	client, err := e.conns.Solana()
	if err != nil {
		return nil, err
	}
	inputToken, outputToken, err = e.ensureSolanaDecimals(ctx, inputToken, outputToken)
	if err != nil {
		return nil, err
	}
	amountIn := pricing.FromReadable(amount, inputToken.Decimals)
	return raydium.NewQuoter(client, e.registry).BuildTrade(ctx, inputToken, outputToken, amountIn)
}

// ensureDecimals resolves zero-valued token decimals from the chain once, so
// callers may pass bare addresses.
func (e *Engine) ensureDecimals(ctx context.Context, caller evm.ContractCaller, inputToken, outputToken domain.Token) (domain.Token, domain.Token, error) {
	for _, t := range []*domain.Token{&inputToken, &outputToken} {
		if t.Decimals != 0 {
			continue
		}
		dec, err := evm.TokenDecimals(ctx, caller, ethcommon.HexToAddress(t.Address))
		if err != nil {
			return inputToken, outputToken, err
		}
		t.Decimals = dec
	}
	return inputToken, outputToken, nil
}

// ensureSolanaDecimals fills zero-valued mint decimals from the pool catalog,
// which records them for both sides of every listed pool.
func (e *Engine) ensureSolanaDecimals(ctx context.Context, inputToken, outputToken domain.Token) (domain.Token, domain.Token, error) {
	if inputToken.Decimals != 0 && outputToken.Decimals != 0 {
		return inputToken, outputToken, nil
	}
	inMint, err := solana.PublicKeyFromBase58(inputToken.Address)
	if err != nil {
		return inputToken, outputToken, common.WrapOp("ensureSolanaDecimals", common.ErrNoRoute, err)
	}
	outMint, err := solana.PublicKeyFromBase58(outputToken.Address)
	if err != nil {
		return inputToken, outputToken, common.WrapOp("ensureSolanaDecimals", common.ErrNoRoute, err)
	}
	keys, err := e.registry.Find(ctx, inMint, outMint)
	if err != nil {
		return inputToken, outputToken, err
	}
	for _, t := range []*domain.Token{&inputToken, &outputToken} {
		if t.Decimals != 0 {
			continue
		}
		if t.Address == keys.BaseMint.String() {
			t.Decimals = keys.BaseDecimals
		} else {
			t.Decimals = keys.QuoteDecimals
		}
	}
	return inputToken, outputToken, nil
}

// TradeInfo formats a descriptor for the outbound contract: raw integer
// amounts, prices at six significant digits, impact at two decimal places.
func TradeInfo(trade *domain.TradeDescriptor) domain.TradeInfo {
	info := domain.TradeInfo{
		InputAmount:    bigString(trade.Quote.InputAmount),
		OutputAmount:   bigString(trade.Quote.OutputAmount),
		PriceImpact:    pricing.ToFixed(trade.Quote.PriceImpact, pricing.DefaultImpactDecimalPlaces),
		ExecutionPrice: pricing.ToSignificant(trade.Quote.ExecutionPrice, pricing.DefaultSignificantDigits),
	}
	if trade.Quote.HasMidPrice {
		info.MidPrice = pricing.ToSignificant(trade.Quote.MidPrice, pricing.DefaultSignificantDigits)
	}
	return info
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func observeQuote(venue domain.PoolKind) func(error) {
	start := time.Now()
	return func(err error) {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.QuoteRequests.WithLabelValues(venue.String(), status).Inc()
		metrics.QuoteDuration.WithLabelValues(venue.String()).Observe(time.Since(start).Seconds())
	}
}
