// Package testutil provides an in-memory asynctypes.Backend double for
// exercising the Fetch Scheduler, Prefetch Loop and Engine without a real
// execution client.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lightclient/asyncevm/asynctypes"
)

// MockBackend is a deterministic, in-memory asynctypes.Backend. Zero value
// is not usable; construct with NewMockBackend.
type MockBackend struct {
	mu sync.Mutex

	accounts map[common.Address]*asynctypes.Account
	code     map[common.Address]asynctypes.Code
	storage  map[common.Address]map[[32]byte]*asynctypes.SlotValue

	// Latency, applied to every call before it resolves, for exercising
	// the Conservative scheduling mode.
	Latency time.Duration

	// FailAccounts, FailStorage and FailCode make every call of the
	// matching kind for a listed address return a transport error (used
	// to simulate a transport failure for a specific address).
	FailAccounts map[common.Address]bool
	FailStorage  map[common.Address]bool
	FailCode     map[common.Address]bool

	accountCalls map[common.Address]int
	codeCalls    map[common.Address]int
	storageCalls map[common.Address]int
}

// NewMockBackend returns an empty backend with no accounts installed;
// every account reads as absent until Set* is called.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		accounts:     make(map[common.Address]*asynctypes.Account),
		code:         make(map[common.Address]asynctypes.Code),
		storage:      make(map[common.Address]map[[32]byte]*asynctypes.SlotValue),
		FailAccounts: make(map[common.Address]bool),
		FailStorage:  make(map[common.Address]bool),
		FailCode:     make(map[common.Address]bool),
		accountCalls: make(map[common.Address]int),
		codeCalls:    make(map[common.Address]int),
		storageCalls: make(map[common.Address]int),
	}
}

// SetAccount installs the account data returned for addr.
func (b *MockBackend) SetAccount(addr common.Address, acct *asynctypes.Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[addr] = acct
}

// SetCode installs the code returned for addr.
func (b *MockBackend) SetCode(addr common.Address, code asynctypes.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.code[addr] = code
}

// SetStorage installs the value returned for (addr, slot).
func (b *MockBackend) SetStorage(addr common.Address, slot *asynctypes.SlotKey, value *asynctypes.SlotValue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.storage[addr]
	if !ok {
		m = make(map[[32]byte]*asynctypes.SlotValue)
		b.storage[addr] = m
	}
	m[slot.Bytes32()] = value
}

func (b *MockBackend) sleep(ctx context.Context) error {
	if b.Latency == 0 {
		return nil
	}
	t := time.NewTimer(b.Latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetAccount implements asynctypes.Backend.
func (b *MockBackend) GetAccount(ctx context.Context, header *types.Header, address common.Address) (*asynctypes.Account, error) {
	if err := b.sleep(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accountCalls[address]++
	if b.FailAccounts[address] {
		return nil, fmt.Errorf("mock transport failure fetching account %s", address)
	}
	return b.accounts[address], nil
}

// GetCode implements asynctypes.Backend.
func (b *MockBackend) GetCode(ctx context.Context, header *types.Header, address common.Address) (asynctypes.Code, error) {
	if err := b.sleep(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codeCalls[address]++
	if b.FailCode[address] {
		return nil, fmt.Errorf("mock transport failure fetching code %s", address)
	}
	return b.code[address], nil
}

// GetStorage implements asynctypes.Backend.
func (b *MockBackend) GetStorage(ctx context.Context, header *types.Header, address common.Address, slot *asynctypes.SlotKey) (*asynctypes.SlotValue, error) {
	if err := b.sleep(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.storageCalls[address]++
	if b.FailStorage[address] {
		return nil, fmt.Errorf("mock transport failure fetching slot %s/%s", address, slot)
	}
	m := b.storage[address]
	if m == nil {
		return nil, nil
	}
	return m[slot.Bytes32()], nil
}

// AccountCalls returns how many times GetAccount was called for addr,
// for property P3 (no duplicate fetches) assertions.
func (b *MockBackend) AccountCalls(addr common.Address) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accountCalls[addr]
}

// CodeCalls returns how many times GetCode was called for addr.
func (b *MockBackend) CodeCalls(addr common.Address) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.codeCalls[addr]
}

// StorageCalls returns how many times GetStorage was called for addr
// (across all slots).
func (b *MockBackend) StorageCalls(addr common.Address) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storageCalls[addr]
}

