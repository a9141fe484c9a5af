// Package uniswapv2 quotes and assembles swaps against constant-product
// pairs.
package uniswapv2

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/evm"
)

// SortsBefore reports whether a is the canonical token0 of the (a, b) pair.
// The venue orders tokens by raw address bytes.
func SortsBefore(a, b ethcommon.Address) bool {
	return bytes.Compare(a.Bytes(), b.Bytes()) < 0
}

// PairAddress derives the deterministic pair address from the ordered token
// pair: CREATE2 over keccak(token0 ‖ token1) with the pair init code hash.
func PairAddress(factory, tokenA, tokenB ethcommon.Address) ethcommon.Address {
	token0, token1 := tokenA, tokenB
	if !SortsBefore(token0, token1) {
		token0, token1 = token1, token0
	}
	salt := crypto.Keccak256(append(token0.Bytes(), token1.Bytes()...))
	payload := make([]byte, 0, 1+20+32+32)
	payload = append(payload, 0xff)
	payload = append(payload, factory.Bytes()...)
	payload = append(payload, salt...)
	payload = append(payload, evm.V2PairInitCodeHash.Bytes()...)
	return ethcommon.BytesToAddress(crypto.Keccak256(payload)[12:])
}

// Resolver locates a pair and reads its current reserves.
type Resolver struct {
	caller evm.ContractCaller
	chain  domain.ChainID
	log    *common.ServiceLogger
}

func NewResolver(caller evm.ContractCaller, chain domain.ChainID) *Resolver {
	return &Resolver{
		caller: caller,
		chain:  chain,
		log:    common.NewServiceLogger("uniswapv2-resolver"),
	}
}

// Resolve derives the pair address for (tokenA, tokenB), reads its reserves
// and re-associates them to the caller's requested order. A pair address
// without a deployed contract answers eth_call with empty data, which is the
// no-pool signal.
func (r *Resolver) Resolve(ctx context.Context, tokenA, tokenB domain.Token) (*domain.V2PairState, error) {
	factory, err := evm.V2Factory(r.chain)
	if err != nil {
		return nil, err
	}

	addrA := ethcommon.HexToAddress(tokenA.Address)
	addrB := ethcommon.HexToAddress(tokenB.Address)
	pair := PairAddress(factory, addrA, addrB)

	out, err := evm.Call(ctx, r.caller, pair, evm.V2PairABI, "getReserves")
	if err != nil {
		return nil, common.WrapOp("Resolve", common.ErrPoolNotFound, err)
	}
	reserve0, ok0 := out[0].(*big.Int)
	reserve1, ok1 := out[1].(*big.Int)
	if !ok0 || !ok1 {
		return nil, common.WrapOp("Resolve", common.ErrPoolNotFound,
			fmt.Errorf("unexpected reserve types %T, %T", out[0], out[1]))
	}

	// Reserves come back in canonical token0/token1 order; price math is
	// direction-sensitive, so flip them to the caller's order when needed.
	reserveA, reserveB := reserve0, reserve1
	if !SortsBefore(addrA, addrB) {
		reserveA, reserveB = reserve1, reserve0
	}

	return &domain.V2PairState{
		PairAddress: pair,
		TokenA:      tokenA,
		TokenB:      tokenB,
		ReserveA:    reserveA,
		ReserveB:    reserveB,
	}, nil
}
