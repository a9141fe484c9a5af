package uniswapv2

import (
	"context"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/pricing"
)

// AmountOut applies the constant-product formula with the venue's 30 bps fee:
// out = in*997*reserveOut / (reserveIn*1000 + in*997). All operands fit the
// 256-bit space (reserves are uint112), so the math runs on uint256.
func AmountOut(amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	if amountIn == nil || amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return new(big.Int)
	}
	in, _ := uint256.FromBig(amountIn)
	rIn, _ := uint256.FromBig(reserveIn)
	rOut, _ := uint256.FromBig(reserveOut)

	inWithFee := new(uint256.Int).Mul(in, uint256.NewInt(997))
	numerator := new(uint256.Int).Mul(inWithFee, rOut)
	denominator := new(uint256.Int).Mul(rIn, uint256.NewInt(1000))
	denominator.Add(denominator, inWithFee)
	return numerator.Div(numerator, denominator).ToBig()
}

// BuildTrade resolves the pair, computes the deterministic output for the raw
// input amount and derives the full quote. Output first, prices after.
func (r *Resolver) BuildTrade(ctx context.Context, inputToken, outputToken domain.Token, amountIn *big.Int) (*domain.TradeDescriptor, error) {
	pair, err := r.Resolve(ctx, inputToken, outputToken)
	if err != nil {
		return nil, common.WrapOp("BuildTrade", common.ErrNoRoute, err)
	}

	amountOut := AmountOut(amountIn, pair.ReserveA, pair.ReserveB)

	mid := pricing.MidPriceFromReserves(pair.ReserveA, pair.ReserveB, inputToken.Decimals, outputToken.Decimals)
	exec := pricing.ExecutionPrice(amountIn, amountOut, inputToken.Decimals, outputToken.Decimals)
	impact := pricing.PriceImpact(mid, exec)

	return &domain.TradeDescriptor{
		InputToken:  inputToken,
		OutputToken: outputToken,
		InputAmount: amountIn,
		Pool:        domain.PoolState{Kind: domain.PoolKindV2Pair, V2: pair},
		Quote: domain.SwapQuote{
			InputAmount:    amountIn,
			OutputAmount:   amountOut,
			ExecutionPrice: exec,
			MidPrice:       mid,
			HasMidPrice:    true,
			PriceImpact:    impact,
		},
		TradeType: domain.TradeTypeExactInput,
	}, nil
}
