package pricing

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/common"
)

// sqrtPriceDivPrecision keeps enough digits when dividing by 2^192.
const sqrtPriceDivPrecision = 40

// MidPriceFromReserves returns the size-independent price of the output token
// per one input token, adjusted for decimals: (reserveOut/10^decOut) /
// (reserveIn/10^decIn).
func MidPriceFromReserves(reserveIn, reserveOut *big.Int, decIn, decOut uint8) decimal.Decimal {
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 {
		return decimal.Zero
	}
	out := decimal.NewFromBigInt(reserveOut, -int32(decOut))
	in := decimal.NewFromBigInt(reserveIn, -int32(decIn))
	return out.DivRound(in, sqrtPriceDivPrecision)
}

// ExecutionPrice returns the price realized by a specific trade:
// decimals-adjusted output per one input token.
func ExecutionPrice(amountIn, amountOut *big.Int, decIn, decOut uint8) decimal.Decimal {
	if amountIn == nil || amountOut == nil || amountIn.Sign() == 0 {
		return decimal.Zero
	}
	out := decimal.NewFromBigInt(amountOut, -int32(decOut))
	in := decimal.NewFromBigInt(amountIn, -int32(decIn))
	return out.DivRound(in, sqrtPriceDivPrecision)
}

// PriceImpact returns the percentage deviation of the execution price from
// the mid price: (mid - exec) / mid * 100. Positive slippage clamps to zero.
func PriceImpact(mid, exec decimal.Decimal) decimal.Decimal {
	if mid.Sign() <= 0 {
		return decimal.Zero
	}
	if exec.GreaterThanOrEqual(mid) {
		return decimal.Zero
	}
	return mid.Sub(exec).DivRound(mid, sqrtPriceDivPrecision).Mul(decimal.New(100, 0))
}

// MinimumOutAfterSlippage applies a slippage tolerance expressed in percent
// (basis-point precision internally: 100 bps = 1.00%) to a raw output amount,
// flooring to the token's integer unit. Slippage at or above 100% is
// rejected.
func MinimumOutAfterSlippage(outputAmount *big.Int, slippagePercent decimal.Decimal) (*big.Int, error) {
	if slippagePercent.Sign() < 0 {
		return nil, common.WrapOp("MinimumOutAfterSlippage", common.ErrInvalidSlippage, nil)
	}
	bps := slippagePercent.Mul(decimal.New(100, 0)).Round(0).BigInt()
	if bps.Cmp(big.NewInt(10_000)) >= 0 {
		return nil, common.WrapOp("MinimumOutAfterSlippage", common.ErrInvalidSlippage, nil)
	}
	keep := new(big.Int).Sub(big.NewInt(10_000), bps)
	min := new(big.Int).Mul(outputAmount, keep)
	return min.Div(min, big.NewInt(10_000)), nil
}

// MidPriceFromSqrtPriceX96 derives the concentrated-liquidity pool's current
// price of the output token per input token from slot0's sqrtPriceX96:
// token1/token0 = (sqrtPriceX96 / 2^96)^2, decimals-adjusted, inverted when
// the input is token1. Used internally for price impact; concentrated pools
// expose no mid price outward.
func MidPriceFromSqrtPriceX96(sqrtPriceX96 *big.Int, dec0, dec1 uint8, zeroForOne bool) decimal.Decimal {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() == 0 {
		return decimal.Zero
	}
	num := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	denom := new(big.Int).Lsh(big.NewInt(1), 192)

	// price of token1 in token0 units, decimals-adjusted
	price := decimal.NewFromBigInt(num, 0).
		DivRound(decimal.NewFromBigInt(denom, 0), sqrtPriceDivPrecision).
		Shift(int32(dec0) - int32(dec1))
	if price.Sign() == 0 {
		return decimal.Zero
	}
	if zeroForOne {
		return price
	}
	return decimal.New(1, 0).DivRound(price, sqrtPriceDivPrecision)
}
