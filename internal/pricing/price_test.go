package pricing

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/common"
)

// Pool with 1,000,000 USDC (6 decimals) and 400 WETH (18 decimals): the mid
// price of WETH per USDC is exactly 0.0004.
func TestMidPriceFromReserves(t *testing.T) {
	reserveUSDC, _ := new(big.Int).SetString("1000000000000", 10)
	reserveWETH, _ := new(big.Int).SetString("400000000000000000000", 10)

	mid := MidPriceFromReserves(reserveUSDC, reserveWETH, 6, 18)
	want := decimal.RequireFromString("0.0004")
	if !mid.Equal(want) {
		t.Errorf("mid price = %s, want %s", mid, want)
	}

	// Inverse direction: USDC per WETH = 2500.
	inv := MidPriceFromReserves(reserveWETH, reserveUSDC, 18, 6)
	if !inv.Equal(decimal.RequireFromString("2500")) {
		t.Errorf("inverse mid price = %s, want 2500", inv)
	}
}

func TestMidPriceFromReservesZeroReserve(t *testing.T) {
	if p := MidPriceFromReserves(new(big.Int), big.NewInt(1), 6, 6); !p.IsZero() {
		t.Errorf("zero input reserve should price at zero, got %s", p)
	}
	if p := MidPriceFromReserves(nil, big.NewInt(1), 6, 6); !p.IsZero() {
		t.Errorf("nil reserve should price at zero, got %s", p)
	}
}

func TestExecutionPriceWorseThanMid(t *testing.T) {
	reserveUSDC, _ := new(big.Int).SetString("1000000000000", 10)
	reserveWETH, _ := new(big.Int).SetString("400000000000000000000", 10)

	// 1000 USDC in; with a 30 bps fee and finite depth the realized price
	// must land strictly below the mid price.
	amountIn := big.NewInt(1_000_000_000)
	in := new(big.Int).Mul(amountIn, big.NewInt(997))
	num := new(big.Int).Mul(in, reserveWETH)
	den := new(big.Int).Add(new(big.Int).Mul(reserveUSDC, big.NewInt(1000)), in)
	amountOut := num.Div(num, den)

	mid := MidPriceFromReserves(reserveUSDC, reserveWETH, 6, 18)
	exec := ExecutionPrice(amountIn, amountOut, 6, 18)

	if !exec.LessThan(mid) {
		t.Fatalf("execution price %s should be below mid %s", exec, mid)
	}

	impact := PriceImpact(mid, exec)
	if impact.Sign() <= 0 {
		t.Errorf("price impact should be positive, got %s", impact)
	}
	// Fee alone is 0.3%; a 1000 USDC trade against 1M depth moves price by
	// about 0.1% more.
	if impact.GreaterThan(decimal.RequireFromString("1")) {
		t.Errorf("price impact %s unexpectedly large for a shallow trade", impact)
	}
}

func TestPriceImpactClampsToZero(t *testing.T) {
	mid := decimal.RequireFromString("0.0004")
	better := decimal.RequireFromString("0.00041")
	if p := PriceImpact(mid, better); !p.IsZero() {
		t.Errorf("favorable execution should clamp impact to zero, got %s", p)
	}
	if p := PriceImpact(decimal.Zero, better); !p.IsZero() {
		t.Errorf("zero mid should yield zero impact, got %s", p)
	}
}

func TestMinimumOutAfterSlippage(t *testing.T) {
	out := big.NewInt(1_000_000)

	tests := []struct {
		name     string
		slippage string
		want     int64
	}{
		{"zero keeps everything", "0", 1_000_000},
		{"half percent", "0.5", 995_000},
		{"one percent", "1", 990_000},
		{"five percent", "5", 950_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MinimumOutAfterSlippage(out, decimal.RequireFromString(tt.slippage))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Int64() != tt.want {
				t.Errorf("min out = %s, want %d", got, tt.want)
			}
		})
	}
}

func TestMinimumOutAfterSlippageMonotone(t *testing.T) {
	out := big.NewInt(123_456_789)
	prev, err := MinimumOutAfterSlippage(out, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"0.1", "0.5", "1", "2", "10", "50"} {
		min, err := MinimumOutAfterSlippage(out, decimal.RequireFromString(s))
		if err != nil {
			t.Fatalf("slippage %s: %v", s, err)
		}
		if min.Cmp(prev) > 0 {
			t.Errorf("min out must not increase with slippage: %s at %s%%", min, s)
		}
		prev = min
	}
}

func TestMinimumOutAfterSlippageRejectsInvalid(t *testing.T) {
	out := big.NewInt(1000)
	for _, s := range []string{"100", "150", "-1"} {
		_, err := MinimumOutAfterSlippage(out, decimal.RequireFromString(s))
		if !errors.Is(err, common.ErrInvalidSlippage) {
			t.Errorf("slippage %s%%: want ErrInvalidSlippage, got %v", s, err)
		}
	}
}

func TestMidPriceFromSqrtPriceX96(t *testing.T) {
	// sqrtPriceX96 = 2^96 encodes a raw price of exactly 1 token1 per
	// token0. With equal decimals both directions read 1.
	sqrt := new(big.Int).Lsh(big.NewInt(1), 96)

	p := MidPriceFromSqrtPriceX96(sqrt, 18, 18, true)
	if !p.Equal(decimal.New(1, 0)) {
		t.Errorf("price = %s, want 1", p)
	}
	inv := MidPriceFromSqrtPriceX96(sqrt, 18, 18, false)
	if !inv.Equal(decimal.New(1, 0)) {
		t.Errorf("inverted price = %s, want 1", inv)
	}

	// Decimals adjustment: token0 has 6, token1 has 18; one whole token0
	// buys 10^-12 raw ratio worth of token1 at raw price 1.
	adj := MidPriceFromSqrtPriceX96(sqrt, 6, 18, true)
	if !adj.Equal(decimal.New(1, -12)) {
		t.Errorf("adjusted price = %s, want 1e-12", adj)
	}

	if p := MidPriceFromSqrtPriceX96(nil, 6, 18, true); !p.IsZero() {
		t.Errorf("nil sqrt price should yield zero, got %s", p)
	}
}

// Unequal decimals with the inverted direction: a USDC (token0, 6) / WETH
// (token1, 18) pool at sqrtPriceX96 = 20000*2^96 prices WETH at exactly 2500
// USDC. The decimals shift must follow pool order in both directions.
func TestMidPriceFromSqrtPriceX96UnequalDecimals(t *testing.T) {
	sqrt := new(big.Int).Lsh(big.NewInt(20000), 96)

	buy := MidPriceFromSqrtPriceX96(sqrt, 6, 18, true)
	if !buy.Equal(decimal.RequireFromString("0.0004")) {
		t.Errorf("token0-in price = %s, want 0.0004", buy)
	}
	sell := MidPriceFromSqrtPriceX96(sqrt, 6, 18, false)
	if !sell.Equal(decimal.RequireFromString("2500")) {
		t.Errorf("token1-in price = %s, want 2500", sell)
	}
}
