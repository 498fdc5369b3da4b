package fetch

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/lightclient/asyncevm/asynctypes"
	"github.com/lightclient/asyncevm/internal/ledger"
	"github.com/lightclient/asyncevm/internal/testutil"
)

func testHeader() *types.Header {
	return &types.Header{Number: big.NewInt(1)}
}

func TestOptimisticRunFetchesAllKeysConcurrently(t *testing.T) {
	backend := testutil.NewMockBackend()
	a1, a2 := common.Address{0x01}, common.Address{0x02}
	backend.SetAccount(a1, &asynctypes.Account{Balance: uint256.NewInt(1)})
	backend.SetAccount(a2, &asynctypes.Account{Balance: uint256.NewInt(2)})

	l := ledger.New()
	l.GetBalance(a1)
	l.GetBalance(a2)

	sched := New(backend, testHeader(), l, NewFetched())
	done, err := sched.Run(context.Background(), Optimistic, l.GetWitnessKeys())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Fatal("expected stateFetchDone=true on first run")
	}
	if l.GetBalance(a1).Uint64() != 1 || l.GetBalance(a2).Uint64() != 2 {
		t.Fatal("expected both accounts installed after optimistic run")
	}

	done, err = sched.Run(context.Background(), Optimistic, l.GetWitnessKeys())
	if err != nil || done {
		t.Fatalf("second run should find nothing new: done=%v err=%v", done, err)
	}
}

func TestConservativeRunOnlyBlocksOnFirstKey(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.Latency = 20 * time.Millisecond
	a1, a2 := common.Address{0x01}, common.Address{0x02}
	backend.SetAccount(a1, &asynctypes.Account{Balance: uint256.NewInt(10)})
	backend.SetAccount(a2, &asynctypes.Account{Balance: uint256.NewInt(20)})

	l := ledger.New()
	l.GetBalance(a1)
	l.GetBalance(a2)

	sched := New(backend, testHeader(), l, NewFetched())
	start := time.Now()
	done, err := sched.Run(context.Background(), Conservative, l.GetWitnessKeys())
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Fatal("expected stateFetchDone=true")
	}
	if elapsed >= 35*time.Millisecond {
		t.Fatalf("conservative Run should not block on the background key, took %v", elapsed)
	}
	if l.GetBalance(a1).Uint64() != 10 {
		t.Fatal("expected the blocking key to be resolved synchronously")
	}
}

func TestNoDuplicateFetchForAlreadyFetchedKey(t *testing.T) {
	backend := testutil.NewMockBackend()
	addr := common.Address{0x01}
	backend.SetAccount(addr, &asynctypes.Account{Balance: uint256.NewInt(5)})

	l := ledger.New()
	fetched := NewFetched()
	sched := New(backend, testHeader(), l, fetched)

	l.GetBalance(addr)
	if _, err := sched.Run(context.Background(), Optimistic, l.GetWitnessKeys()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.GetBalance(addr)
	if _, err := sched.Run(context.Background(), Optimistic, l.GetWitnessKeys()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := backend.AccountCalls(addr); got != 1 {
		t.Fatalf("account fetched %d times, want 1", got)
	}
}

func TestTransportFailureSurfacesAsUnavailableError(t *testing.T) {
	backend := testutil.NewMockBackend()
	addr := common.Address{0x01}
	backend.FailAccounts[addr] = true

	l := ledger.New()
	l.GetBalance(addr)

	sched := New(backend, testHeader(), l, NewFetched())
	_, err := sched.Run(context.Background(), Optimistic, l.GetWitnessKeys())
	if err == nil {
		t.Fatal("expected an error from the failing backend")
	}
	var uerr *asynctypes.UnavailableError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *asynctypes.UnavailableError, got %T: %v", err, err)
	}
}
