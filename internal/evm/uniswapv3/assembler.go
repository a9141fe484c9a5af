package uniswapv3

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

// exactInputSingleParams mirrors the router's ABI tuple; field order and
// types must line up with the component list.
type exactInputSingleParams struct {
	TokenIn           ethcommon.Address
	TokenOut          ethcommon.Address
	Fee               *big.Int
	Recipient         ethcommon.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

// Assembler turns a trade descriptor into a single router call envelope.
// Wrapped-native input rides along as call value; the router wraps it itself.
type Assembler struct {
	chain     domain.ChainID
	recipient ethcommon.Address
}

func NewAssembler(chain domain.ChainID, recipient ethcommon.Address) *Assembler {
	return &Assembler{chain: chain, recipient: recipient}
}

func (a *Assembler) Assemble(trade *domain.TradeDescriptor, slippagePercent decimal.Decimal) (*domain.EVMCallEnvelope, error) {
	if trade.Pool.Kind != domain.PoolKindV3Pool {
		return nil, common.WrapOp("Assemble", common.ErrNoRoute,
			fmt.Errorf("expected a %s pool, got %s", domain.PoolKindV3Pool, trade.Pool.Kind))
	}

	router, err := evm.V3SwapRouter(a.chain)
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
	params := exactInputSingleParams{
		TokenIn:           inputAddr,
		TokenOut:          ethcommon.HexToAddress(trade.OutputToken.Address),
		Fee:               new(big.Int).SetUint64(uint64(trade.Pool.V3.Fee)),
		Recipient:         a.recipient,
		Deadline:          big.NewInt(time.Now().Add(deadlineWindow).Unix()),
		AmountIn:          trade.InputAmount,
		AmountOutMinimum:  minOut,
		SqrtPriceLimitX96: new(big.Int),
	}

	data, err := evm.V3RouterABI.Pack("exactInputSingle", params)
	if err != nil {
		return nil, common.WrapOp("Assemble", common.ErrSubmission, err)
	}

	value := new(big.Int)
	if inputAddr == weth {
		value.Set(trade.InputAmount)
	}
	return &domain.EVMCallEnvelope{
		Chain: a.chain,
		To:    router,
		Data:  data,
		Value: value,
	}, nil
}
