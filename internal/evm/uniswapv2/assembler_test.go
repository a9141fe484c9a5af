package uniswapv2

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/evm"
)

func v2Trade(input, output domain.Token, amountIn, amountOut *big.Int) *domain.TradeDescriptor {
	return &domain.TradeDescriptor{
		InputToken:  input,
		OutputToken: output,
		InputAmount: amountIn,
		Pool:        domain.PoolState{Kind: domain.PoolKindV2Pair, V2: &domain.V2PairState{}},
		Quote: domain.SwapQuote{
			InputAmount:  amountIn,
			OutputAmount: amountOut,
		},
		TradeType: domain.TradeTypeExactInput,
	}
}

func TestAssembleTokensForNative(t *testing.T) {
	usdc := domain.Token{Chain: domain.EthereumMainnet, Address: usdcAddr.Hex(), Decimals: 6}
	weth := domain.Token{Chain: domain.EthereumMainnet, Address: wethAddr.Hex(), Decimals: 18}
	recipient := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")

	amountIn := big.NewInt(1_000_000_000)
	amountOut, _ := new(big.Int).SetString("398402792415961286", 10)

	env, err := NewAssembler(domain.EthereumMainnet, recipient).
		Assemble(v2Trade(usdc, weth, amountIn, amountOut), decimal.RequireFromString("0.5"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if env.Value.Sign() != 0 {
		t.Errorf("token-in swap must carry no call value, got %s", env.Value)
	}
	if env.To != ethcommon.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D") {
		t.Errorf("unexpected router target %s", env.To.Hex())
	}

	method := evm.V2RouterABI.Methods["swapExactTokensForETHSupportingFeeOnTransferTokens"]
	if !bytes.Equal(env.Data[:4], method.ID) {
		t.Fatalf("unexpected method selector %x", env.Data[:4])
	}
	args, err := method.Inputs.Unpack(env.Data[4:])
	if err != nil {
		t.Fatalf("unpack calldata: %v", err)
	}

	if got := args[0].(*big.Int); got.Cmp(amountIn) != 0 {
		t.Errorf("amountIn = %s, want %s", got, amountIn)
	}
	// 0.5% slippage keeps 9950/10000 of the quoted output.
	wantMin := new(big.Int).Div(new(big.Int).Mul(amountOut, big.NewInt(9950)), big.NewInt(10000))
	if got := args[1].(*big.Int); got.Cmp(wantMin) != 0 {
		t.Errorf("amountOutMin = %s, want %s", got, wantMin)
	}
	path := args[2].([]ethcommon.Address)
	if len(path) != 2 || path[0] != usdcAddr || path[1] != wethAddr {
		t.Errorf("unexpected path %v", path)
	}
	if got := args[3].(ethcommon.Address); got != recipient {
		t.Errorf("recipient = %s, want %s", got.Hex(), recipient.Hex())
	}
}

func TestAssembleNativeForTokens(t *testing.T) {
	usdc := domain.Token{Chain: domain.EthereumMainnet, Address: usdcAddr.Hex(), Decimals: 6}
	weth := domain.Token{Chain: domain.EthereumMainnet, Address: wethAddr.Hex(), Decimals: 18}
	recipient := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")

	amountIn, _ := new(big.Int).SetString("1000000000000000000", 10)
	amountOut := big.NewInt(2_500_000_000)

	env, err := NewAssembler(domain.EthereumMainnet, recipient).
		Assemble(v2Trade(weth, usdc, amountIn, amountOut), decimal.Zero)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if env.Value.Cmp(amountIn) != 0 {
		t.Errorf("native-in swap must carry the input as call value, got %s", env.Value)
	}
	method := evm.V2RouterABI.Methods["swapExactETHForTokensSupportingFeeOnTransferTokens"]
	if !bytes.Equal(env.Data[:4], method.ID) {
		t.Fatalf("unexpected method selector %x", env.Data[:4])
	}
	args, err := method.Inputs.Unpack(env.Data[4:])
	if err != nil {
		t.Fatalf("unpack calldata: %v", err)
	}
	// Zero slippage passes the quoted output through as the minimum.
	if got := args[0].(*big.Int); got.Cmp(amountOut) != 0 {
		t.Errorf("amountOutMin = %s, want %s", got, amountOut)
	}
}

func TestAssembleRejectsTokenForToken(t *testing.T) {
	usdc := domain.Token{Chain: domain.EthereumMainnet, Address: usdcAddr.Hex(), Decimals: 6}
	dai := domain.Token{Chain: domain.EthereumMainnet, Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Decimals: 18}

	trade := v2Trade(usdc, dai, big.NewInt(1_000_000), big.NewInt(1))
	_, err := NewAssembler(domain.EthereumMainnet, ethcommon.Address{}).
		Assemble(trade, decimal.Zero)
	if !errors.Is(err, common.ErrNoRoute) {
		t.Errorf("want ErrNoRoute for a swap without a wrapped-native side, got %v", err)
	}
}

func TestAssembleRejectsWrongPoolKind(t *testing.T) {
	usdc := domain.Token{Chain: domain.EthereumMainnet, Address: usdcAddr.Hex(), Decimals: 6}
	weth := domain.Token{Chain: domain.EthereumMainnet, Address: wethAddr.Hex(), Decimals: 18}

	trade := v2Trade(usdc, weth, big.NewInt(1), big.NewInt(1))
	trade.Pool.Kind = domain.PoolKindV3Pool

	_, err := NewAssembler(domain.EthereumMainnet, ethcommon.Address{}).
		Assemble(trade, decimal.Zero)
	if err == nil {
		t.Fatal("expected an error for a mismatched pool kind")
	}
}
