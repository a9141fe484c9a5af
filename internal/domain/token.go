package domain

import (
	"math/big"
	"strings"
)

// ChainID selects the network a token or pool lives on. It drives RPC
// endpoint selection and the contract address book.
type ChainID uint8

const (
	EthereumMainnet ChainID = iota + 1
	Sepolia
	ArbitrumOne
	SolanaMainnet
)

func (c ChainID) String() string {
	switch c {
	case EthereumMainnet:
		return "ethereum-mainnet"
	case Sepolia:
		return "sepolia"
	case ArbitrumOne:
		return "arbitrum-one"
	case SolanaMainnet:
		return "solana-mainnet"
	default:
		return "unknown"
	}
}

func (c ChainID) IsEVM() bool {
	return c == EthereumMainnet || c == Sepolia || c == ArbitrumOne
}

// EVMChainID returns the numeric chain id used in transaction signing.
// Nil for non-EVM chains.
func (c ChainID) EVMChainID() *big.Int {
	switch c {
	case EthereumMainnet:
		return big.NewInt(1)
	case Sepolia:
		return big.NewInt(11155111)
	case ArbitrumOne:
		return big.NewInt(42161)
	default:
		return nil
	}
}

// Token describes an asset on a specific chain. Address is a hex contract
// address on EVM chains and a base58 mint on Solana. Decimals may start at
// zero and be resolved from the network once; after that the descriptor
// carries them for its lifetime.
type Token struct {
	Chain    ChainID
	Address  string
	Decimals uint8
	Symbol   string
	Name     string
}

// Equal reports whether two descriptors refer to the same token: same chain
// and same address, case-insensitive on EVM chains where mixed-case
// checksummed addresses are common.
func (t Token) Equal(o Token) bool {
	if t.Chain != o.Chain {
		return false
	}
	if t.Chain.IsEVM() {
		return strings.EqualFold(t.Address, o.Address)
	}
	return t.Address == o.Address
}
