package raydium

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestSwapBaseInInstructionData(t *testing.T) {
	keys := testPoolKeys()
	ix := NewSwapBaseInInstruction(keys, fillerKey, fillerKey, fillerKey, 1_000_000_000, 148_500_000)

	data, err := ix.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if len(data) != 17 {
		t.Fatalf("data length = %d, want 17", len(data))
	}
	if data[0] != swapBaseInTag {
		t.Errorf("tag = %d, want %d", data[0], swapBaseInTag)
	}
	if got := binary.LittleEndian.Uint64(data[1:9]); got != 1_000_000_000 {
		t.Errorf("amountIn = %d", got)
	}
	if got := binary.LittleEndian.Uint64(data[9:17]); got != 148_500_000 {
		t.Errorf("minAmountOut = %d", got)
	}
}

func TestSwapBaseInInstructionAccounts(t *testing.T) {
	keys := testPoolKeys()
	owner := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	ix := NewSwapBaseInInstruction(keys, baseVaultKey, quoteVaultKey, owner, 1, 1)

	accounts := ix.Accounts()
	if len(accounts) != 18 {
		t.Fatalf("account count = %d, want 18", len(accounts))
	}
	if accounts[0].PublicKey != solana.TokenProgramID {
		t.Errorf("first account = %s, want token program", accounts[0].PublicKey)
	}
	if accounts[1].PublicKey != keys.ID || !accounts[1].IsWritable {
		t.Error("second account should be the writable pool id")
	}

	last := accounts[len(accounts)-1]
	if last.PublicKey != owner || !last.IsSigner {
		t.Error("last account should be the signing owner")
	}
	if accounts[15].PublicKey != baseVaultKey || accounts[16].PublicKey != quoteVaultKey {
		t.Error("user source and destination accounts out of position")
	}

	if ix.ProgramID() != keys.ProgramID {
		t.Errorf("program = %s, want %s", ix.ProgramID(), keys.ProgramID)
	}
}

func TestSetComputeUnitPriceInstruction(t *testing.T) {
	ix := NewSetComputeUnitPriceInstruction(1_500_000)
	if ix.ProgramID() != ComputeBudgetProgramID {
		t.Errorf("program = %s", ix.ProgramID())
	}
	if len(ix.Accounts()) != 0 {
		t.Error("compute budget instructions carry no accounts")
	}

	data, err := ix.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if len(data) != 9 || data[0] != 3 {
		t.Fatalf("unexpected layout % x", data)
	}
	if got := binary.LittleEndian.Uint64(data[1:]); got != 1_500_000 {
		t.Errorf("microLamports = %d, want 1500000", got)
	}
}
