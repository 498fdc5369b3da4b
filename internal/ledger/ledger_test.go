package ledger

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/holiman/uint256"

	"github.com/lightclient/asyncevm/asynctypes"
)

func TestRollbackUndoesStateButNotWitness(t *testing.T) {
	l := New()
	addr := common.Address{0x01}
	slot := common.Hash{0x02}

	l.InstallAccount(addr, &asynctypes.Account{Balance: uint256.NewInt(100)})

	sp := l.BeginSavepoint()
	l.AddBalance(addr, uint256.NewInt(50), tracing.BalanceChangeUnspecified)
	l.SetState(addr, slot, common.Hash{0xaa})

	if got := l.GetBalance(addr); got.Uint64() != 150 {
		t.Fatalf("balance before rollback = %d, want 150", got.Uint64())
	}
	l.Rollback(sp)

	if got := l.GetBalance(addr); got.Uint64() != 100 {
		t.Fatalf("balance after rollback = %d, want 100 (restored)", got.Uint64())
	}
	if got := l.GetState(addr, slot); got != (common.Hash{}) {
		t.Fatalf("storage after rollback = %v, want zero (restored)", got)
	}

	// The witness accumulated by the getters above must survive the
	// rollback untouched — this is the crux of spec §4.B.
	w := l.GetWitnessKeys()
	if !w.Has(asynctypes.AccountKey(addr)) {
		t.Fatal("witness should still record the account touch after rollback")
	}
	if !w.Has(asynctypes.StorageKey(addr, slot)) {
		t.Fatal("witness should still record the storage touch after rollback")
	}
}

func TestClearWitnessKeysDoesNotClearState(t *testing.T) {
	l := New()
	addr := common.Address{0x01}
	l.InstallAccount(addr, &asynctypes.Account{Balance: uint256.NewInt(7)})
	l.GetBalance(addr)

	if l.GetWitnessKeys().Len() == 0 {
		t.Fatal("expected a witness touch before clearing")
	}
	l.ClearWitnessKeys()
	if l.GetWitnessKeys().Len() != 0 {
		t.Fatal("expected witness to be empty after ClearWitnessKeys")
	}
	if got := l.GetBalance(addr); got.Uint64() != 7 {
		t.Fatal("clearing the witness must not clear installed state")
	}
}

func TestStorageReadAlsoTouchesAccount(t *testing.T) {
	l := New()
	addr := common.Address{0x01}
	slot := common.Hash{0x02}

	l.GetState(addr, slot)

	w := l.GetWitnessKeys()
	if !w.Has(asynctypes.AccountKey(addr)) {
		t.Fatal("reading a storage slot should also record an account-level touch")
	}
	if !w.Has(asynctypes.StorageKey(addr, slot)) {
		t.Fatal("expected the storage key itself to be recorded")
	}
}

func TestUnfetchedStateReadsAsZero(t *testing.T) {
	// Spec §4.C: execution proceeds even against an empty ledger, with
	// missing state treated as zero-valued.
	l := New()
	addr := common.Address{0x99}

	if l.Exist(addr) {
		t.Fatal("an address never installed should not exist yet")
	}
	if got := l.GetBalance(addr); !got.IsZero() {
		t.Fatalf("balance of unfetched account = %v, want zero", got)
	}
	if got := l.GetNonce(addr); got != 0 {
		t.Fatalf("nonce of unfetched account = %d, want 0", got)
	}
	if got := l.GetCode(addr); len(got) != 0 {
		t.Fatalf("code of unfetched account = %v, want empty", got)
	}
}

func TestAccessListJournaledSeparatelyFromWitness(t *testing.T) {
	l := New()
	addr := common.Address{0x01}

	sp := l.BeginSavepoint()
	l.AddAddressToAccessList(addr)
	if !l.AddressInAccessList(addr) {
		t.Fatal("expected address to be warm immediately after adding")
	}
	l.Rollback(sp)
	if l.AddressInAccessList(addr) {
		t.Fatal("rollback should undo EIP-2929 warm-address bookkeeping")
	}
}
