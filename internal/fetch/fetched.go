package fetch

import "github.com/ethereum/go-ethereum/common"

type storageKey struct {
	addr common.Address
	slot common.Hash
}

// Fetched tracks which (address), (address, slot) and (address, code)
// tuples have already been resolved from the backend, across Prefetch
// Loop iterations, so the scheduler never issues the same query twice
// within a call (spec §4.A / property P3).
type Fetched struct {
	accounts map[common.Address]bool
	code     map[common.Address]bool
	storage  map[storageKey]bool
}

// NewFetched returns an empty tracker.
func NewFetched() *Fetched {
	return &Fetched{
		accounts: make(map[common.Address]bool),
		code:     make(map[common.Address]bool),
		storage:  make(map[storageKey]bool),
	}
}

func (f *Fetched) HasAccount(addr common.Address) bool { return f.accounts[addr] }
func (f *Fetched) HasCode(addr common.Address) bool     { return f.code[addr] }
func (f *Fetched) HasStorage(addr common.Address, slot common.Hash) bool {
	return f.storage[storageKey{addr, slot}]
}

func (f *Fetched) MarkAccount(addr common.Address) { f.accounts[addr] = true }
func (f *Fetched) MarkCode(addr common.Address)     { f.code[addr] = true }
func (f *Fetched) MarkStorage(addr common.Address, slot common.Hash) {
	f.storage[storageKey{addr, slot}] = true
}
