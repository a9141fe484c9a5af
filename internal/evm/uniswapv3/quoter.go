package uniswapv3

import (
	"context"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/evm"
	"github.com/quotient-labs/swap-engine/internal/pricing"
)

// QuoteExactInputSingle asks the on-chain quoter for the output of a
// single-pool exact-input swap. The quoter is nonpayable but side-effect free
// when invoked through eth_call, so the read costs nothing.
func (r *Resolver) QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut ethcommon.Address, fee uint32, amountIn *big.Int) (*big.Int, error) {
	quoter, err := evm.V3Quoter(r.chain)
	if err != nil {
		return nil, err
	}
	out, err := evm.Call(ctx, r.caller, quoter, evm.V3QuoterABI, "quoteExactInputSingle",
		tokenIn, tokenOut, new(big.Int).SetUint64(uint64(fee)), amountIn, new(big.Int))
	if err != nil {
		return nil, common.WrapOp("QuoteExactInputSingle", common.ErrQuoteUnavailable, err)
	}
	amountOut, ok := out[0].(*big.Int)
	if !ok {
		return nil, common.WrapOp("QuoteExactInputSingle", common.ErrQuoteUnavailable, nil)
	}
	return amountOut, nil
}

// BuildTrade resolves the pool, quotes the exact-input output on-chain and
// derives the quote. The spot price from slot0 only feeds the impact figure;
// concentrated liquidity makes a reserve-style mid price meaningless, so the
// quote carries none.
func (r *Resolver) BuildTrade(ctx context.Context, inputToken, outputToken domain.Token, fee uint32, amountIn *big.Int) (*domain.TradeDescriptor, error) {
	pool, err := r.Resolve(ctx, inputToken, outputToken, fee)
	if err != nil {
		return nil, err
	}

	inputAddr := ethcommon.HexToAddress(inputToken.Address)
	outputAddr := ethcommon.HexToAddress(outputToken.Address)
	amountOut, err := r.QuoteExactInputSingle(ctx, inputAddr, outputAddr, fee, amountIn)
	if err != nil {
		return nil, err
	}

	// MidPriceFromSqrtPriceX96 wants token0's and token1's decimals in pool
	// order, not trade order.
	zeroForOne := inputAddr == pool.Token0
	dec0, dec1 := inputToken.Decimals, outputToken.Decimals
	if !zeroForOne {
		dec0, dec1 = outputToken.Decimals, inputToken.Decimals
	}
	spot := pricing.MidPriceFromSqrtPriceX96(pool.SqrtPriceX96, dec0, dec1, zeroForOne)
	exec := pricing.ExecutionPrice(amountIn, amountOut, inputToken.Decimals, outputToken.Decimals)
	impact := pricing.PriceImpact(spot, exec)

	return &domain.TradeDescriptor{
		InputToken:  inputToken,
		OutputToken: outputToken,
		InputAmount: amountIn,
		Pool:        domain.PoolState{Kind: domain.PoolKindV3Pool, V3: pool},
		Quote: domain.SwapQuote{
			InputAmount:    amountIn,
			OutputAmount:   amountOut,
			ExecutionPrice: exec,
			PriceImpact:    impact,
		},
		TradeType: domain.TradeTypeExactInput,
	}, nil
}
