package raydium

import (
	"context"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/quotient-labs/swap-engine/internal/chains"
	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/pricing"
)

const swapBaseInTag = 9

// AccountReader is the slice of rpc.Client the assembler uses.
type AccountReader interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
}

// SwapBaseInInstruction is the AMM v4 exact-input swap. Data is a one-byte
// tag followed by two little-endian u64s.
type SwapBaseInInstruction struct {
	AmountIn     uint64
	MinAmountOut uint64

	programID solana.PublicKey
	accounts  []*solana.AccountMeta
}

func (ix *SwapBaseInInstruction) ProgramID() solana.PublicKey {
	return ix.programID
}

func (ix *SwapBaseInInstruction) Accounts() []*solana.AccountMeta {
	return ix.accounts
}

func (ix *SwapBaseInInstruction) Data() ([]byte, error) {
	data := make([]byte, 17)
	data[0] = swapBaseInTag
	binary.LittleEndian.PutUint64(data[1:9], ix.AmountIn)
	binary.LittleEndian.PutUint64(data[9:17], ix.MinAmountOut)
	return data, nil
}

// NewSwapBaseInInstruction lays out the pool, market and user accounts in the
// order the program expects.
func NewSwapBaseInInstruction(keys *domain.RaydiumPoolKeys, userSource, userDest, owner solana.PublicKey, amountIn, minAmountOut uint64) *SwapBaseInInstruction {
	return &SwapBaseInInstruction{
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
		programID:    keys.ProgramID,
		accounts: []*solana.AccountMeta{
			solana.Meta(solana.TokenProgramID),
			solana.Meta(keys.ID).WRITE(),
			solana.Meta(keys.Authority),
			solana.Meta(keys.OpenOrders).WRITE(),
			solana.Meta(keys.TargetOrders).WRITE(),
			solana.Meta(keys.BaseVault).WRITE(),
			solana.Meta(keys.QuoteVault).WRITE(),
			solana.Meta(keys.MarketProgramID),
			solana.Meta(keys.MarketID).WRITE(),
			solana.Meta(keys.MarketBids).WRITE(),
			solana.Meta(keys.MarketAsks).WRITE(),
			solana.Meta(keys.MarketEventQueue).WRITE(),
			solana.Meta(keys.MarketBaseVault).WRITE(),
			solana.Meta(keys.MarketQuoteVault).WRITE(),
			solana.Meta(keys.MarketAuthority),
			solana.Meta(userSource).WRITE(),
			solana.Meta(userDest).WRITE(),
			solana.Meta(owner).SIGNER(),
		},
	}
}

// Assembler turns a trade descriptor into a ready-to-send transaction:
// priority fee, destination account creation when missing, then the swap.
type Assembler struct {
	reader AccountReader
	wallet *chains.SolanaWallet
	log    *common.ServiceLogger

	priorityFeeMicroLamports uint64
}

func NewAssembler(reader AccountReader, wallet *chains.SolanaWallet, priorityFeeMicroLamports uint64) *Assembler {
	return &Assembler{
		reader:                   reader,
		wallet:                   wallet,
		log:                      common.NewServiceLogger("raydium-assembler"),
		priorityFeeMicroLamports: priorityFeeMicroLamports,
	}
}

// Assemble builds the swap transaction in the requested format. Legacy
// transactions come back unsigned; versioned ones are signed immediately
// because the v0 message layout is fixed at build time.
func (a *Assembler) Assemble(ctx context.Context, trade *domain.TradeDescriptor, slippagePercent decimal.Decimal, format domain.SolanaTxFormat) (*domain.SolanaEnvelope, error) {
	if trade.Pool.Kind != domain.PoolKindRaydium {
		return nil, common.WrapOp("Assemble", common.ErrNoRoute,
			fmt.Errorf("expected a %s pool, got %s", domain.PoolKindRaydium, trade.Pool.Kind))
	}
	keys := trade.Pool.Raydium.Keys

	minOut, err := pricing.MinimumOutAfterSlippage(trade.Quote.OutputAmount, slippagePercent)
	if err != nil {
		return nil, err
	}
	if !trade.InputAmount.IsUint64() || !minOut.IsUint64() {
		return nil, common.WrapOp("Assemble", common.ErrSubmission,
			fmt.Errorf("amounts exceed the program's u64 range"))
	}

	inputMint := solana.MustPublicKeyFromBase58(trade.InputToken.Address)
	outputMint := solana.MustPublicKeyFromBase58(trade.OutputToken.Address)

	owned, err := a.ownerTokenAccounts(ctx)
	if err != nil {
		return nil, common.WrapOp("Assemble", common.ErrSubmission, err)
	}

	source, ok := owned[inputMint]
	if !ok {
		return nil, common.WrapOp("Assemble", common.ErrSubmission,
			fmt.Errorf("no token account holds input mint %s", inputMint))
	}

	instructions := make([]solana.Instruction, 0, 3)
	if a.priorityFeeMicroLamports > 0 {
		instructions = append(instructions, NewSetComputeUnitPriceInstruction(a.priorityFeeMicroLamports))
	}

	dest, ok := owned[outputMint]
	if !ok {
		dest, _, err = solana.FindAssociatedTokenAddress(a.wallet.PublicKey, outputMint)
		if err != nil {
			return nil, common.WrapOp("Assemble", common.ErrSubmission, err)
		}
		create, err := associatedtokenaccount.NewCreateInstruction(
			a.wallet.PublicKey, a.wallet.PublicKey, outputMint,
		).ValidateAndBuild()
		if err != nil {
			return nil, common.WrapOp("Assemble", common.ErrSubmission, err)
		}
		instructions = append(instructions, create)
	}

	instructions = append(instructions, NewSwapBaseInInstruction(
		keys, source, dest, a.wallet.PublicKey,
		trade.InputAmount.Uint64(), minOut.Uint64(),
	))

	recent, err := a.reader.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, common.WrapOp("Assemble", common.ErrSubmission, err)
	}

	opts := []solana.TransactionOption{solana.TransactionPayer(a.wallet.PublicKey)}
	if format == domain.TxFormatVersioned {
		// Even when lookup tables are empty, this produces a valid v0
		// transaction.
		opts = append(opts, solana.TransactionAddressTables(map[solana.PublicKey]solana.PublicKeySlice{}))
	}
	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, opts...)
	if err != nil {
		return nil, common.WrapOp("Assemble", common.ErrSubmission, err)
	}

	env := &domain.SolanaEnvelope{
		Format:               format,
		Tx:                   tx,
		LastValidBlockHeight: recent.Value.LastValidBlockHeight,
	}
	if format == domain.TxFormatVersioned {
		if err := a.signTx(tx); err != nil {
			return nil, common.WrapOp("Assemble", common.ErrSubmission, err)
		}
		env.Signed = true
	}
	return env, nil
}

func (a *Assembler) signTx(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(a.wallet.PublicKey) {
			return &a.wallet.Key
		}
		return nil
	})
	return err
}

// ownerTokenAccounts maps each mint the wallet holds to its token account,
// decoded from the raw account data.
func (a *Assembler) ownerTokenAccounts(ctx context.Context) (map[solana.PublicKey]solana.PublicKey, error) {
	res, err := a.reader.GetTokenAccountsByOwner(
		ctx,
		a.wallet.PublicKey,
		&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return nil, err
	}

	accounts := make(map[solana.PublicKey]solana.PublicKey, len(res.Value))
	for _, item := range res.Value {
		var acc token.Account
		if err := bin.NewBinDecoder(item.Account.Data.GetBinary()).Decode(&acc); err != nil {
			a.log.Debug().Err(err).Str("account", item.Pubkey.String()).Msg("skipping undecodable token account")
			continue
		}
		accounts[acc.Mint] = item.Pubkey
	}
	return accounts, nil
}
