package asyncevm

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/lightclient/asyncevm/asynctypes"
	"github.com/lightclient/asyncevm/internal/testutil"
)

func testHeader() *types.Header {
	return &types.Header{
		Number:     big.NewInt(19_000_000),
		Time:       1_700_000_000,
		GasLimit:   30_000_000,
		BaseFee:    big.NewInt(1_000_000_000),
		Difficulty: big.NewInt(0),
	}
}

// TestCallPureTransfer exercises spec §8 scenario 1 through the public
// Call API.
func TestCallPureTransfer(t *testing.T) {
	backend := testutil.NewMockBackend()
	to := common.Address{0xaa}
	backend.SetCode(to, nil)
	backend.SetAccount(to, &asynctypes.Account{Balance: uint256.NewInt(1_000_000_000_000_000_000)})

	engine, err := NewEngine(backend, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	one := hexutil.Big(*big.NewInt(1))
	tx := &asynctypes.TransactionArgs{To: &to, Value: &one}

	res, err := engine.Call(context.Background(), testHeader(), tx, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.GasUsed != 21000 {
		t.Fatalf("gas used = %d, want 21000", res.GasUsed)
	}
	if res.Error != "" {
		t.Fatalf("unexpected revert: %s", res.Error)
	}
}

// TestCallRequiresTo exercises spec §7.1's input validation.
func TestCallRequiresTo(t *testing.T) {
	backend := testutil.NewMockBackend()
	engine, err := NewEngine(backend, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	_, err = engine.Call(context.Background(), testHeader(), &asynctypes.TransactionArgs{}, true)
	if err != asynctypes.ErrToRequired {
		t.Fatalf("err = %v, want ErrToRequired", err)
	}
}

// TestCallGasLargerThanCap exercises spec §7.1's other validation rule.
func TestCallGasLargerThanCap(t *testing.T) {
	backend := testutil.NewMockBackend()
	engine, err := NewEngine(backend, Config{EVMCallGasCap: 1000})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	to := common.Address{0x01}
	gas := hexutil.Uint64(2000)
	_, err = engine.Call(context.Background(), testHeader(), &asynctypes.TransactionArgs{To: &to, Gas: &gas}, true)
	if err != asynctypes.ErrGasTooLarge {
		t.Fatalf("err = %v, want ErrGasTooLarge", err)
	}
}

// TestCallBackendFailure exercises spec §8 scenario 5.
func TestCallBackendFailure(t *testing.T) {
	backend := testutil.NewMockBackend()
	to := common.Address{0x02}
	backend.FailCode[to] = true

	engine, err := NewEngine(backend, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	_, err = engine.Call(context.Background(), testHeader(), &asynctypes.TransactionArgs{To: &to}, true)
	if err == nil {
		t.Fatal("expected an error from the failing backend")
	}
}

// TestCreateAccessListExcludesFrom exercises spec §8 scenario 4 and
// property P5: the returned access list never names tx.from and is
// canonically sorted.
func TestCreateAccessListExcludesFrom(t *testing.T) {
	backend := testutil.NewMockBackend()
	from := common.Address{0xf0}
	to := common.Address{0xdd}

	// PUSH1 0x01; SLOAD; POP; PUSH1 0x02; SLOAD; POP; STOP
	code := []byte{0x60, 0x01, 0x54, 0x50, 0x60, 0x02, 0x54, 0x50, 0x00}
	backend.SetCode(to, code)
	backend.SetAccount(to, &asynctypes.Account{Balance: uint256.NewInt(0)})
	backend.SetStorage(to, uint256.NewInt(1), uint256.NewInt(10))
	backend.SetStorage(to, uint256.NewInt(2), uint256.NewInt(20))
	backend.SetAccount(from, &asynctypes.Account{Balance: uint256.NewInt(1_000_000_000_000_000_000)})

	engine, err := NewEngine(backend, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	tx := &asynctypes.TransactionArgs{From: &from, To: &to}
	list, errMsg, gasUsed, err := engine.CreateAccessList(context.Background(), testHeader(), tx, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errMsg != nil {
		t.Fatalf("unexpected revert: %s", *errMsg)
	}
	if gasUsed == 0 {
		t.Fatal("expected non-zero gas used")
	}
	for _, entry := range list {
		if entry.Address == from {
			t.Fatalf("access list must not include tx.from, got %v", entry)
		}
	}
	var toEntry *types.AccessTuple
	for i := range list {
		if list[i].Address == to {
			toEntry = &list[i]
		}
	}
	if toEntry == nil {
		t.Fatal("expected an access list entry for the called contract")
	}
	if len(toEntry.StorageKeys) != 2 {
		t.Fatalf("expected 2 storage keys, got %d", len(toEntry.StorageKeys))
	}
	// Canonical order: 0x01 before 0x02.
	if toEntry.StorageKeys[0].Big().Cmp(toEntry.StorageKeys[1].Big()) >= 0 {
		t.Fatalf("storage keys not canonically sorted: %v", toEntry.StorageKeys)
	}
}

// TestEstimateGasPureTransfer exercises spec §4.F.3 against the simplest
// possible call.
func TestEstimateGasPureTransfer(t *testing.T) {
	backend := testutil.NewMockBackend()
	to := common.Address{0x03}
	backend.SetCode(to, nil)
	backend.SetAccount(to, &asynctypes.Account{Balance: uint256.NewInt(1)})

	engine, err := NewEngine(backend, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	tx := &asynctypes.TransactionArgs{To: &to}
	gas, err := engine.EstimateGas(context.Background(), testHeader(), tx, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gas != 21000 {
		t.Fatalf("estimated gas = %d, want 21000", gas)
	}
}
