// Package ledger implements the Witness Ledger (spec §4.B): an in-memory
// account/storage/code store that also satisfies go-ethereum's
// core/vm.StateDB interface, so it can be handed directly to vm.NewEVM.
// On top of the ordinary StateDB surface it layers witness tracking (the
// set of keys the EVM touched during a run) and a savepoint/rollback
// boundary that deliberately does not reset that witness — see witness.go.
package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/lightclient/asyncevm/asynctypes"
)

type account struct {
	balance  *uint256.Int
	nonce    uint64
	code     []byte
	codeHash common.Hash
	suicided bool
	empty    bool // true once explicitly known-absent, distinct from zero-valued-but-unknown
	exists   bool // true once the account has been installed (From backend or by execution)
}

func newAccount() *account {
	return &account{balance: new(uint256.Int)}
}

// Ledger is a throwaway, single-call in-memory frame over account,
// storage and code state (spec §3 lifecycle: "created on entry to a
// public API call, destroyed on return").
type Ledger struct {
	accounts map[common.Address]*account
	storage  map[common.Address]map[common.Hash]common.Hash

	witness *Witness

	// EIP-2929/2930 warm/cold tracking consumed by the EVM interpreter
	// itself for gas metering. This is transactional (journaled, reset on
	// rollback) and entirely separate from the outer witness table, per
	// SPEC_FULL.md's domain-stack note.
	accessList *accessList

	refund uint64
	logs   []*types.Log
	logSize uint

	transientStorage map[common.Address]map[common.Hash]common.Hash

	journal *journal
}

// New returns an empty Ledger ready to receive backend-fetched state.
func New() *Ledger {
	return &Ledger{
		accounts:         make(map[common.Address]*account),
		storage:          make(map[common.Address]map[common.Hash]common.Hash),
		transientStorage: make(map[common.Address]map[common.Hash]common.Hash),
		witness:          NewWitness(),
		accessList:       newAccessList(),
		journal:          newJournal(),
	}
}

func (l *Ledger) get(addr common.Address) *account {
	a, ok := l.accounts[addr]
	if !ok {
		a = newAccount()
		l.accounts[addr] = a
	}
	return a
}

// --- population from the backend (spec §4.B) ---
//
// These Install* methods write state fetched from the backend between
// Prefetch Loop iterations (spec §4.E step h). They are deliberately
// distinct from the vm.StateDB setters in statedb.go: backend population
// never happens inside a savepoint and must never be undone by a
// rollback, so it bypasses the journal entirely.

// InstallAccount installs an account fetched from the backend. A nil acct
// marks the address as authoritatively absent.
func (l *Ledger) InstallAccount(addr common.Address, acct *asynctypes.Account) {
	a := l.get(addr)
	if acct == nil {
		a.empty = true
		return
	}
	a.balance = acct.Balance.Clone()
	a.nonce = acct.Nonce
	a.codeHash = acct.CodeHash
	a.exists = true
}

// InstallCode installs code fetched from the backend for addr.
func (l *Ledger) InstallCode(addr common.Address, code []byte) {
	a := l.get(addr)
	a.code = code
	if len(code) > 0 {
		a.codeHash = crypto.Keccak256Hash(code)
	}
	a.exists = true
}

// InstallStorage installs a single storage slot fetched from the backend.
func (l *Ledger) InstallStorage(addr common.Address, slot, value common.Hash) {
	m, ok := l.storage[addr]
	if !ok {
		m = make(map[common.Hash]common.Hash)
		l.storage[addr] = m
	}
	m[slot] = value
}

// --- witness surface (spec §4.B) ---

// GetWitnessKeys returns the current witness in touch order.
func (l *Ledger) GetWitnessKeys() *asynctypes.WitnessTable { return l.witness.Table() }

// ClearWitnessKeys resets the witness to empty without touching stored
// state, per spec §4.B.
func (l *Ledger) ClearWitnessKeys() { l.witness.Reset() }
