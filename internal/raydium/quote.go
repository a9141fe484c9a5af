package raydium

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/holiman/uint256"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/pricing"
)

// BalanceReader is the slice of rpc.Client the quoter uses.
type BalanceReader interface {
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
}

// AmountOut applies the constant-product formula with the venue's 25 bps fee:
// out = in*9975*reserveOut / (reserveIn*10000 + in*9975).
func AmountOut(amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	if amountIn == nil || amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return new(big.Int)
	}
	in, _ := uint256.FromBig(amountIn)
	rIn, _ := uint256.FromBig(reserveIn)
	rOut, _ := uint256.FromBig(reserveOut)

	inWithFee := new(uint256.Int).Mul(in, uint256.NewInt(9975))
	numerator := new(uint256.Int).Mul(inWithFee, rOut)
	denominator := new(uint256.Int).Mul(rIn, uint256.NewInt(10000))
	denominator.Add(denominator, inWithFee)
	return numerator.Div(numerator, denominator).ToBig()
}

// Quoter snapshots pool reserves and prices exact-input swaps.
type Quoter struct {
	reader   BalanceReader
	registry *Registry
	log      *common.ServiceLogger
}

func NewQuoter(reader BalanceReader, registry *Registry) *Quoter {
	return &Quoter{
		reader:   reader,
		registry: registry,
		log:      common.NewServiceLogger("raydium-quoter"),
	}
}

// Snapshot reads both vault balances at confirmed commitment and orients the
// pool for a swap selling inputMint.
func (q *Quoter) Snapshot(ctx context.Context, keys *domain.RaydiumPoolKeys, inputMint solana.PublicKey) (*domain.RaydiumPoolState, error) {
	base, err := q.vaultBalance(ctx, keys.BaseVault)
	if err != nil {
		return nil, common.WrapOp("Snapshot", common.ErrQuoteUnavailable, err)
	}
	quote, err := q.vaultBalance(ctx, keys.QuoteVault)
	if err != nil {
		return nil, common.WrapOp("Snapshot", common.ErrQuoteUnavailable, err)
	}

	switch inputMint {
	case keys.BaseMint, keys.QuoteMint:
	default:
		return nil, common.WrapOp("Snapshot", common.ErrNoRoute,
			fmt.Errorf("mint %s is not in pool %s", inputMint, keys.ID))
	}

	return &domain.RaydiumPoolState{
		Keys:         keys,
		BaseReserve:  base,
		QuoteReserve: quote,
		BaseIn:       inputMint == keys.BaseMint,
	}, nil
}

func (q *Quoter) vaultBalance(ctx context.Context, vault solana.PublicKey) (*big.Int, error) {
	res, err := q.reader.GetTokenAccountBalance(ctx, vault, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, err
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("vault %s: empty balance response", vault)
	}
	amount, ok := new(big.Int).SetString(res.Value.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("vault %s: bad amount %q", vault, res.Value.Amount)
	}
	return amount, nil
}

// BuildTrade finds the pool for the mint pair, snapshots reserves and derives
// the full quote.
func (q *Quoter) BuildTrade(ctx context.Context, inputToken, outputToken domain.Token, amountIn *big.Int) (*domain.TradeDescriptor, error) {
	inputMint, err := solana.PublicKeyFromBase58(inputToken.Address)
	if err != nil {
		return nil, common.WrapOp("BuildTrade", common.ErrNoRoute, err)
	}
	outputMint, err := solana.PublicKeyFromBase58(outputToken.Address)
	if err != nil {
		return nil, common.WrapOp("BuildTrade", common.ErrNoRoute, err)
	}

	keys, err := q.registry.Find(ctx, inputMint, outputMint)
	if err != nil {
		return nil, err
	}
	pool, err := q.Snapshot(ctx, keys, inputMint)
	if err != nil {
		return nil, err
	}

	reserveIn, reserveOut := pool.BaseReserve, pool.QuoteReserve
	if !pool.BaseIn {
		reserveIn, reserveOut = pool.QuoteReserve, pool.BaseReserve
	}
	amountOut := AmountOut(amountIn, reserveIn, reserveOut)

	mid := pricing.MidPriceFromReserves(reserveIn, reserveOut, inputToken.Decimals, outputToken.Decimals)
	exec := pricing.ExecutionPrice(amountIn, amountOut, inputToken.Decimals, outputToken.Decimals)
	impact := pricing.PriceImpact(mid, exec)

	return &domain.TradeDescriptor{
		InputToken:  inputToken,
		OutputToken: outputToken,
		InputAmount: amountIn,
		Pool:        domain.PoolState{Kind: domain.PoolKindRaydium, Raydium: pool},
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
