// Package uniswapv3 quotes and assembles swaps against concentrated-liquidity
// pools.
package uniswapv3

import (
	"context"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/evm"
	"github.com/quotient-labs/swap-engine/internal/evm/uniswapv2"
)

// Fee tiers in hundredths of a bip.
const (
	FeeLow    uint32 = 500
	FeeMedium uint32 = 3000
	FeeHigh   uint32 = 10000
)

// PoolAddress derives the deterministic pool address from the ordered token
// pair and fee tier: CREATE2 over keccak(abi.encode(token0, token1, fee)).
func PoolAddress(factory, tokenA, tokenB ethcommon.Address, fee uint32) ethcommon.Address {
	token0, token1 := tokenA, tokenB
	if !uniswapv2.SortsBefore(token0, token1) {
		token0, token1 = token1, token0
	}
	encoded := make([]byte, 0, 96)
	encoded = append(encoded, ethcommon.LeftPadBytes(token0.Bytes(), 32)...)
	encoded = append(encoded, ethcommon.LeftPadBytes(token1.Bytes(), 32)...)
	encoded = append(encoded, ethcommon.LeftPadBytes(new(big.Int).SetUint64(uint64(fee)).Bytes(), 32)...)
	salt := crypto.Keccak256(encoded)

	payload := make([]byte, 0, 1+20+32+32)
	payload = append(payload, 0xff)
	payload = append(payload, factory.Bytes()...)
	payload = append(payload, salt...)
	payload = append(payload, evm.V3PoolInitCodeHash.Bytes()...)
	return ethcommon.BytesToAddress(crypto.Keccak256(payload)[12:])
}

// Resolver locates a pool and reads its batched state.
type Resolver struct {
	caller evm.ContractCaller
	chain  domain.ChainID
	log    *common.ServiceLogger
}

func NewResolver(caller evm.ContractCaller, chain domain.ChainID) *Resolver {
	return &Resolver{
		caller: caller,
		chain:  chain,
		log:    common.NewServiceLogger("uniswapv3-resolver"),
	}
}

// Resolve derives the pool address for (tokenA, tokenB, fee) and reads
// token0/token1/fee/tickSpacing/liquidity/slot0 concurrently, joining all
// reads before returning. Ordering between the reads is irrelevant; price
// math needs all of them.
func (r *Resolver) Resolve(ctx context.Context, tokenA, tokenB domain.Token, fee uint32) (*domain.V3PoolState, error) {
	factory, err := evm.V3Factory(r.chain)
	if err != nil {
		return nil, err
	}
	pool := PoolAddress(factory, ethcommon.HexToAddress(tokenA.Address), ethcommon.HexToAddress(tokenB.Address), fee)

	state := &domain.V3PoolState{PoolAddress: pool}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := evm.Call(gctx, r.caller, pool, evm.V3PoolABI, "token0")
		if err != nil {
			return err
		}
		state.Token0 = out[0].(ethcommon.Address)
		return nil
	})
	g.Go(func() error {
		out, err := evm.Call(gctx, r.caller, pool, evm.V3PoolABI, "token1")
		if err != nil {
			return err
		}
		state.Token1 = out[0].(ethcommon.Address)
		return nil
	})
	g.Go(func() error {
		out, err := evm.Call(gctx, r.caller, pool, evm.V3PoolABI, "fee")
		if err != nil {
			return err
		}
		state.Fee = uint32(out[0].(*big.Int).Uint64())
		return nil
	})
	g.Go(func() error {
		out, err := evm.Call(gctx, r.caller, pool, evm.V3PoolABI, "tickSpacing")
		if err != nil {
			return err
		}
		state.TickSpacing = int32(out[0].(*big.Int).Int64())
		return nil
	})
	g.Go(func() error {
		out, err := evm.Call(gctx, r.caller, pool, evm.V3PoolABI, "liquidity")
		if err != nil {
			return err
		}
		state.Liquidity = out[0].(*big.Int)
		return nil
	})
	g.Go(func() error {
		out, err := evm.Call(gctx, r.caller, pool, evm.V3PoolABI, "slot0")
		if err != nil {
			return err
		}
		state.SqrtPriceX96 = out[0].(*big.Int)
		state.Tick = int32(out[1].(*big.Int).Int64())
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, common.WrapOp("Resolve", common.ErrPoolNotFound,
			fmt.Errorf("pool %s: %v", pool.Hex(), err))
	}
	return state, nil
}
