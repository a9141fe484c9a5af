package domain

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// PoolKind tags the venue-specific pool state variant.
type PoolKind uint8

const (
	PoolKindV2Pair PoolKind = iota
	PoolKindV3Pool
	PoolKindRaydium
)

func (k PoolKind) String() string {
	switch k {
	case PoolKindV2Pair:
		return "uniswap-v2"
	case PoolKindV3Pool:
		return "uniswap-v3"
	case PoolKindRaydium:
		return "raydium"
	default:
		return "unknown"
	}
}

// V2PairState is a constant-product pair snapshot. Reserves are re-associated
// to the caller's (TokenA, TokenB) order, not the canonical token0/token1
// order, because downstream price math is direction-sensitive.
type V2PairState struct {
	PairAddress ethcommon.Address
	TokenA      Token
	TokenB      Token
	ReserveA    *big.Int
	ReserveB    *big.Int
}

// V3PoolState is a concentrated-liquidity pool snapshot, read in one batch.
type V3PoolState struct {
	PoolAddress  ethcommon.Address
	Token0       ethcommon.Address
	Token1       ethcommon.Address
	Fee          uint32
	TickSpacing  int32
	Liquidity    *big.Int
	SqrtPriceX96 *big.Int
	Tick         int32
}

// ZeroForOne reports whether a swap selling tokenIn trades token0 for token1.
func (p *V3PoolState) ZeroForOne(tokenIn ethcommon.Address) bool {
	return p.Token0 == tokenIn
}

// RaydiumPoolKeys is the catalog entry for one Raydium AMM pool: every
// account the swap instruction needs, plus the token decimals the quote math
// needs.
type RaydiumPoolKeys struct {
	ID            solana.PublicKey
	BaseMint      solana.PublicKey
	QuoteMint     solana.PublicKey
	LpMint        solana.PublicKey
	BaseDecimals  uint8
	QuoteDecimals uint8
	Version       int
	ProgramID     solana.PublicKey
	Authority     solana.PublicKey
	OpenOrders    solana.PublicKey
	TargetOrders  solana.PublicKey
	BaseVault     solana.PublicKey
	QuoteVault    solana.PublicKey

	MarketVersion    int
	MarketProgramID  solana.PublicKey
	MarketID         solana.PublicKey
	MarketAuthority  solana.PublicKey
	MarketBaseVault  solana.PublicKey
	MarketQuoteVault solana.PublicKey
	MarketBids       solana.PublicKey
	MarketAsks       solana.PublicKey
	MarketEventQueue solana.PublicKey
}

// RaydiumPoolState couples pool keys with a fresh reserve snapshot and the
// swap direction implied by the caller's input mint.
type RaydiumPoolState struct {
	Keys         *RaydiumPoolKeys
	BaseReserve  *big.Int
	QuoteReserve *big.Int
	// BaseIn is true when the input token is the pool's base mint.
	BaseIn bool
}

// PoolState is the tagged union the pair resolvers return. Exactly one
// variant is set, matching Kind; price math and the assemblers dispatch on it.
type PoolState struct {
	Kind    PoolKind
	V2      *V2PairState
	V3      *V3PoolState
	Raydium *RaydiumPoolState
}
