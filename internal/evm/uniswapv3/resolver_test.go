package uniswapv3

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/evm"
)

var (
	usdcAddr = ethcommon.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	wethAddr = ethcommon.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

// The mainnet USDC/WETH 0.3% pool is a fixed point of the derivation.
func TestPoolAddressKnownPool(t *testing.T) {
	factory := ethcommon.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	want := ethcommon.HexToAddress("0x8ad599c3A0ff1De082011EFDDc58f1908eb6e6D8")

	if got := PoolAddress(factory, usdcAddr, wethAddr, FeeMedium); got != want {
		t.Errorf("PoolAddress = %s, want %s", got.Hex(), want.Hex())
	}
	if got := PoolAddress(factory, wethAddr, usdcAddr, FeeMedium); got != want {
		t.Errorf("PoolAddress with flipped args = %s, want %s", got.Hex(), want.Hex())
	}
}

func TestPoolAddressVariesByFee(t *testing.T) {
	factory := ethcommon.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	medium := PoolAddress(factory, usdcAddr, wethAddr, FeeMedium)
	low := PoolAddress(factory, usdcAddr, wethAddr, FeeLow)
	if medium == low {
		t.Error("different fee tiers must derive different pool addresses")
	}
}

// fakeCaller answers eth_call by method selector, regardless of target.
type fakeCaller struct {
	responses map[string][]byte
	err       error
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.responses[string(msg.Data[:4])], nil
}

func packOutputs(t *testing.T, parsed, method string, vals ...interface{}) []byte {
	t.Helper()
	var m = evm.V3PoolABI.Methods[method]
	if parsed == "quoter" {
		m = evm.V3QuoterABI.Methods[method]
	}
	out, err := m.Outputs.Pack(vals...)
	if err != nil {
		t.Fatalf("pack %s: %v", method, err)
	}
	return out
}

func selector(parsed, method string) string {
	if parsed == "quoter" {
		return string(evm.V3QuoterABI.Methods[method].ID)
	}
	return string(evm.V3PoolABI.Methods[method].ID)
}

func TestResolveReadsFullState(t *testing.T) {
	sqrtPrice, _ := new(big.Int).SetString("1916603520871169229868782156", 10)
	liquidity, _ := new(big.Int).SetString("20316210563128540000", 10)

	caller := &fakeCaller{responses: map[string][]byte{
		selector("pool", "token0"):      packOutputs(t, "pool", "token0", usdcAddr),
		selector("pool", "token1"):      packOutputs(t, "pool", "token1", wethAddr),
		selector("pool", "fee"):         packOutputs(t, "pool", "fee", big.NewInt(3000)),
		selector("pool", "tickSpacing"): packOutputs(t, "pool", "tickSpacing", big.NewInt(60)),
		selector("pool", "liquidity"):   packOutputs(t, "pool", "liquidity", liquidity),
		selector("pool", "slot0"): packOutputs(t, "pool", "slot0",
			sqrtPrice, big.NewInt(-200706), uint16(0), uint16(0), uint16(0), uint8(0), false),
	}}
	resolver := NewResolver(caller, domain.EthereumMainnet)

	usdc := domain.Token{Chain: domain.EthereumMainnet, Address: usdcAddr.Hex(), Decimals: 6}
	weth := domain.Token{Chain: domain.EthereumMainnet, Address: wethAddr.Hex(), Decimals: 18}

	state, err := resolver.Resolve(context.Background(), usdc, weth, FeeMedium)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if state.Token0 != usdcAddr || state.Token1 != wethAddr {
		t.Errorf("token ordering = (%s, %s)", state.Token0.Hex(), state.Token1.Hex())
	}
	if state.Fee != 3000 || state.TickSpacing != 60 {
		t.Errorf("fee/spacing = %d/%d, want 3000/60", state.Fee, state.TickSpacing)
	}
	if state.SqrtPriceX96.Cmp(sqrtPrice) != 0 {
		t.Errorf("sqrtPriceX96 = %s, want %s", state.SqrtPriceX96, sqrtPrice)
	}
	if state.Tick != -200706 {
		t.Errorf("tick = %d, want -200706", state.Tick)
	}
	if !state.ZeroForOne(usdcAddr) || state.ZeroForOne(wethAddr) {
		t.Error("ZeroForOne should hold for token0 only")
	}
}

func TestResolveMissingPool(t *testing.T) {
	// An undeployed pool answers every read with empty data.
	caller := &fakeCaller{responses: map[string][]byte{}}
	resolver := NewResolver(caller, domain.EthereumMainnet)

	usdc := domain.Token{Chain: domain.EthereumMainnet, Address: usdcAddr.Hex(), Decimals: 6}
	weth := domain.Token{Chain: domain.EthereumMainnet, Address: wethAddr.Hex(), Decimals: 18}

	_, err := resolver.Resolve(context.Background(), usdc, weth, FeeMedium)
	if !errors.Is(err, common.ErrPoolNotFound) {
		t.Errorf("want ErrPoolNotFound, got %v", err)
	}
}

func TestQuoteExactInputSingle(t *testing.T) {
	want, _ := new(big.Int).SetString("398500000000000000", 10)
	caller := &fakeCaller{responses: map[string][]byte{
		selector("quoter", "quoteExactInputSingle"): packOutputs(t, "quoter", "quoteExactInputSingle", want),
	}}
	resolver := NewResolver(caller, domain.EthereumMainnet)

	got, err := resolver.QuoteExactInputSingle(context.Background(), usdcAddr, wethAddr, FeeMedium, big.NewInt(1_000_000_000))
	if err != nil {
		t.Fatalf("QuoteExactInputSingle: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Errorf("amountOut = %s, want %s", got, want)
	}
}

// Selling token1 for token0 with unequal decimals: the spot feeding the
// impact figure must read 2500 USDC per WETH, not its decimals-skewed mirror,
// so a 2490 execution shows 0.4% impact instead of clamping to zero.
func TestBuildTradeSellDirectionImpact(t *testing.T) {
	sqrtPrice := new(big.Int).Lsh(big.NewInt(20000), 96)
	quoted := big.NewInt(2_490_000_000)

	caller := &fakeCaller{responses: map[string][]byte{
		selector("pool", "token0"):      packOutputs(t, "pool", "token0", usdcAddr),
		selector("pool", "token1"):      packOutputs(t, "pool", "token1", wethAddr),
		selector("pool", "fee"):         packOutputs(t, "pool", "fee", big.NewInt(3000)),
		selector("pool", "tickSpacing"): packOutputs(t, "pool", "tickSpacing", big.NewInt(60)),
		selector("pool", "liquidity"):   packOutputs(t, "pool", "liquidity", big.NewInt(1)),
		selector("pool", "slot0"): packOutputs(t, "pool", "slot0",
			sqrtPrice, big.NewInt(0), uint16(0), uint16(0), uint16(0), uint8(0), false),
		selector("quoter", "quoteExactInputSingle"): packOutputs(t, "quoter", "quoteExactInputSingle", quoted),
	}}
	resolver := NewResolver(caller, domain.EthereumMainnet)

	weth := domain.Token{Chain: domain.EthereumMainnet, Address: wethAddr.Hex(), Decimals: 18}
	usdc := domain.Token{Chain: domain.EthereumMainnet, Address: usdcAddr.Hex(), Decimals: 6}

	amountIn, _ := new(big.Int).SetString("1000000000000000000", 10)
	trade, err := resolver.BuildTrade(context.Background(), weth, usdc, FeeMedium, amountIn)
	if err != nil {
		t.Fatalf("BuildTrade: %v", err)
	}
	if !trade.Quote.ExecutionPrice.Equal(decimal.RequireFromString("2490")) {
		t.Errorf("execution price = %s, want 2490", trade.Quote.ExecutionPrice)
	}
	if !trade.Quote.PriceImpact.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("price impact = %s, want 0.4", trade.Quote.PriceImpact)
	}
	if trade.Quote.HasMidPrice {
		t.Error("concentrated pools expose no outward mid price")
	}
}

func TestQuoteExactInputSingleUnavailable(t *testing.T) {
	// The quoter reverts (empty data) when the pool cannot fill the trade.
	caller := &fakeCaller{responses: map[string][]byte{}}
	resolver := NewResolver(caller, domain.EthereumMainnet)

	_, err := resolver.QuoteExactInputSingle(context.Background(), usdcAddr, wethAddr, FeeMedium, big.NewInt(1))
	if !errors.Is(err, common.ErrQuoteUnavailable) {
		t.Errorf("want ErrQuoteUnavailable, got %v", err)
	}
}
