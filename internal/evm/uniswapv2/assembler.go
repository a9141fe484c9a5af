package uniswapv2

import (
	"fmt"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/evm"
	"github.com/quotient-labs/swap-engine/internal/pricing"
)

const deadlineWindow = 20 * time.Minute

// Assembler turns a trade descriptor into a single router call envelope.
// One side of the trade must be the wrapped native asset: a wrapped-native
// input uses the native-in variant (value-carrying), a wrapped-native output
// sells into the native asset. Both tolerate fee-on-transfer tokens.
type Assembler struct {
	chain     domain.ChainID
	recipient ethcommon.Address
}

func NewAssembler(chain domain.ChainID, recipient ethcommon.Address) *Assembler {
	return &Assembler{chain: chain, recipient: recipient}
}

func (a *Assembler) Assemble(trade *domain.TradeDescriptor, slippagePercent decimal.Decimal) (*domain.EVMCallEnvelope, error) {
	if trade.Pool.Kind != domain.PoolKindV2Pair {
		return nil, common.WrapOp("Assemble", common.ErrNoRoute,
			fmt.Errorf("expected a %s pool, got %s", domain.PoolKindV2Pair, trade.Pool.Kind))
	}

	router, err := evm.V2Router(a.chain)
	if err != nil {
		return nil, err
	}
	weth, err := evm.WrappedNative(a.chain)
	if err != nil {
		return nil, err
	}

	minOut, err := pricing.MinimumOutAfterSlippage(trade.Quote.OutputAmount, slippagePercent)
	if err != nil {
		return nil, err
	}

	inputAddr := ethcommon.HexToAddress(trade.InputToken.Address)
	outputAddr := ethcommon.HexToAddress(trade.OutputToken.Address)
	// The ETH-out entry point requires a path ending in the wrapped native
	// asset; a token-to-token path would revert on chain.
	if inputAddr != weth && outputAddr != weth {
		return nil, common.WrapOp("Assemble", common.ErrNoRoute,
			fmt.Errorf("one side of the swap must be the wrapped native asset %s", weth.Hex()))
	}
	path := []ethcommon.Address{inputAddr, outputAddr}
	deadline := big.NewInt(time.Now().Add(deadlineWindow).Unix())

	var data []byte
	value := new(big.Int)
	if inputAddr == weth {
		// Buying: native asset in, tokens out.
		data, err = evm.V2RouterABI.Pack(
			"swapExactETHForTokensSupportingFeeOnTransferTokens",
			minOut, path, a.recipient, deadline,
		)
		value = new(big.Int).Set(trade.InputAmount)
	} else {
		// Selling: tokens in, native asset out.
		data, err = evm.V2RouterABI.Pack(
			"swapExactTokensForETHSupportingFeeOnTransferTokens",
			trade.InputAmount, minOut, path, a.recipient, deadline,
		)
	}
	if err != nil {
		return nil, common.WrapOp("Assemble", common.ErrSubmission, err)
	}

	return &domain.EVMCallEnvelope{
		Chain: a.chain,
		To:    router,
		Data:  data,
		Value: value,
	}, nil
}
