package domain

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// EVMCallEnvelope is a single unsigned router call, built fresh per
// submission attempt.
type EVMCallEnvelope struct {
	Chain    ChainID
	To       ethcommon.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64
}

// SolanaTxFormat selects the wire format of an assembled Solana transaction.
type SolanaTxFormat uint8

const (
	// TxFormatLegacy appends instructions to a classic transaction with an
	// explicit fee payer; signing is deferred to submission.
	TxFormatLegacy SolanaTxFormat = iota
	// TxFormatVersioned compiles instructions into a single v0 message,
	// signed at assembly time.
	TxFormatVersioned
)

func (f SolanaTxFormat) String() string {
	if f == TxFormatVersioned {
		return "versioned"
	}
	return "legacy"
}

// SolanaEnvelope wraps an assembled transaction. Signed is true only for the
// versioned format, which signs during assembly. Built fresh per submission
// attempt; never reused.
type SolanaEnvelope struct {
	Format               SolanaTxFormat
	Tx                   *solana.Transaction
	Signed               bool
	LastValidBlockHeight uint64
}
