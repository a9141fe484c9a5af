package uniswapv3

import (
	"bytes"
	"math/big"
	"reflect"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/evm"
)

func v3Trade(input, output domain.Token, fee uint32, amountIn, amountOut *big.Int) *domain.TradeDescriptor {
	return &domain.TradeDescriptor{
		InputToken:  input,
		OutputToken: output,
		InputAmount: amountIn,
		Pool: domain.PoolState{
			Kind: domain.PoolKindV3Pool,
			V3:   &domain.V3PoolState{Fee: fee},
		},
		Quote: domain.SwapQuote{
			InputAmount:  amountIn,
			OutputAmount: amountOut,
		},
		TradeType: domain.TradeTypeExactInput,
	}
}

func TestAssembleExactInputSingle(t *testing.T) {
	usdc := domain.Token{Chain: domain.EthereumMainnet, Address: usdcAddr.Hex(), Decimals: 6}
	weth := domain.Token{Chain: domain.EthereumMainnet, Address: wethAddr.Hex(), Decimals: 18}
	recipient := ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")

	amountIn := big.NewInt(1_000_000_000)
	amountOut, _ := new(big.Int).SetString("398500000000000000", 10)

	env, err := NewAssembler(domain.EthereumMainnet, recipient).
		Assemble(v3Trade(usdc, weth, FeeMedium, amountIn, amountOut), decimal.RequireFromString("1"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if env.To != ethcommon.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564") {
		t.Errorf("unexpected router target %s", env.To.Hex())
	}
	if env.Value.Sign() != 0 {
		t.Errorf("token-in swap must carry no call value, got %s", env.Value)
	}

	method := evm.V3RouterABI.Methods["exactInputSingle"]
	if !bytes.Equal(env.Data[:4], method.ID) {
		t.Fatalf("unexpected method selector %x", env.Data[:4])
	}
	args, err := method.Inputs.Unpack(env.Data[4:])
	if err != nil {
		t.Fatalf("unpack calldata: %v", err)
	}

	params := reflect.ValueOf(args[0])
	if got := params.FieldByName("TokenIn").Interface().(ethcommon.Address); got != usdcAddr {
		t.Errorf("tokenIn = %s, want %s", got.Hex(), usdcAddr.Hex())
	}
	if got := params.FieldByName("Fee").Interface().(*big.Int); got.Int64() != int64(FeeMedium) {
		t.Errorf("fee = %s, want %d", got, FeeMedium)
	}
	if got := params.FieldByName("AmountIn").Interface().(*big.Int); got.Cmp(amountIn) != 0 {
		t.Errorf("amountIn = %s, want %s", got, amountIn)
	}
	// 1% slippage keeps 9900/10000 of the quoted output.
	wantMin := new(big.Int).Div(new(big.Int).Mul(amountOut, big.NewInt(9900)), big.NewInt(10000))
	if got := params.FieldByName("AmountOutMinimum").Interface().(*big.Int); got.Cmp(wantMin) != 0 {
		t.Errorf("amountOutMinimum = %s, want %s", got, wantMin)
	}
	if got := params.FieldByName("Recipient").Interface().(ethcommon.Address); got != recipient {
		t.Errorf("recipient = %s, want %s", got.Hex(), recipient.Hex())
	}
	if got := params.FieldByName("SqrtPriceLimitX96").Interface().(*big.Int); got.Sign() != 0 {
		t.Errorf("sqrtPriceLimitX96 = %s, want 0", got)
	}
}

func TestAssembleNativeInputCarriesValue(t *testing.T) {
	usdc := domain.Token{Chain: domain.EthereumMainnet, Address: usdcAddr.Hex(), Decimals: 6}
	weth := domain.Token{Chain: domain.EthereumMainnet, Address: wethAddr.Hex(), Decimals: 18}

	amountIn, _ := new(big.Int).SetString("1000000000000000000", 10)
	env, err := NewAssembler(domain.EthereumMainnet, ethcommon.Address{}).
		Assemble(v3Trade(weth, usdc, FeeMedium, amountIn, big.NewInt(2_500_000_000)), decimal.Zero)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if env.Value.Cmp(amountIn) != 0 {
		t.Errorf("wrapped-native input must ride as call value, got %s", env.Value)
	}
}
