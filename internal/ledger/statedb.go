package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

// The methods in this file implement go-ethereum's core/vm.StateDB
// interface (grounded on the getter/setter signatures visible in
// core/state/statedb_test.go), so a *Ledger can be passed straight to
// vm.NewEVM. Every getter that observes state also updates the outer
// witness per spec §4.B; every setter that mutates state appends a
// journal entry so BeginSavepoint/Rollback can undo it without touching
// the witness.

// CreateAccount marks addr as existing with zero balance/nonce/code,
// matching go-ethereum's semantics for the target of a CREATE or for an
// account touched by a value transfer to a previously non-existent
// address.
func (l *Ledger) CreateAccount(addr common.Address) {
	a := l.get(addr)
	l.journal.append(createAccountChange{addr: addr, existed: a.exists})
	a.exists = true
}

// CreateContract is called in addition to CreateAccount when addr is
// specifically becoming a contract (post EIP-6780 semantics); this ledger
// does not distinguish the two beyond existence, so it is a no-op here.
func (l *Ledger) CreateContract(addr common.Address) {}

func (l *Ledger) AddBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int {
	l.witness.touchAccount(addr)
	a := l.get(addr)
	prev := *a.balance
	l.journal.append(balanceChange{addr: addr, prev: a.balance})
	a.balance = new(uint256.Int).Add(a.balance, amount)
	return prev
}

func (l *Ledger) SubBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int {
	l.witness.touchAccount(addr)
	a := l.get(addr)
	prev := *a.balance
	l.journal.append(balanceChange{addr: addr, prev: a.balance})
	a.balance = new(uint256.Int).Sub(a.balance, amount)
	return prev
}

func (l *Ledger) GetBalance(addr common.Address) *uint256.Int {
	l.witness.touchAccount(addr)
	return l.get(addr).balance
}

func (l *Ledger) GetNonce(addr common.Address) uint64 {
	l.witness.touchAccount(addr)
	return l.get(addr).nonce
}

func (l *Ledger) SetNonce(addr common.Address, nonce uint64) {
	a := l.get(addr)
	l.journal.append(nonceChange{addr: addr, prev: a.nonce})
	a.nonce = nonce
}

func (l *Ledger) GetCodeHash(addr common.Address) common.Hash {
	l.witness.touchCode(addr)
	a := l.get(addr)
	if !a.exists {
		return common.Hash{}
	}
	return a.codeHash
}

func (l *Ledger) GetCode(addr common.Address) []byte {
	l.witness.touchCode(addr)
	return l.get(addr).code
}

func (l *Ledger) SetCode(addr common.Address, code []byte) {
	a := l.get(addr)
	l.journal.append(codeChange{addr: addr, prevCode: a.code, prevHash: a.codeHash})
	a.code = code
	a.codeHash = codeHash(code)
}

func (l *Ledger) GetCodeSize(addr common.Address) int {
	l.witness.touchCode(addr)
	return len(l.get(addr).code)
}

func (l *Ledger) AddRefund(gas uint64) {
	l.journal.append(refundChange{prev: l.refund})
	l.refund += gas
}

func (l *Ledger) SubRefund(gas uint64) {
	l.journal.append(refundChange{prev: l.refund})
	if gas > l.refund {
		panic("ledger: refund counter below zero")
	}
	l.refund -= gas
}

func (l *Ledger) GetRefund() uint64 { return l.refund }

func (l *Ledger) GetCommittedState(addr common.Address, slot common.Hash) common.Hash {
	// This ledger never tracks a "committed" baseline distinct from the
	// backend-installed value: the backend value IS the committed value
	// for the single block this engine evaluates against, since nothing
	// here ever commits a block. Reads still populate the witness.
	return l.GetState(addr, slot)
}

func (l *Ledger) GetState(addr common.Address, slot common.Hash) common.Hash {
	l.witness.touchStorage(addr, slot)
	m := l.storage[addr]
	return m[slot]
}

func (l *Ledger) SetState(addr common.Address, slot, value common.Hash) {
	m, ok := l.storage[addr]
	if !ok {
		m = make(map[common.Hash]common.Hash)
		l.storage[addr] = m
	}
	prev, had := m[slot]
	l.journal.append(storageChange{addr: addr, slot: slot, prevVal: prev, hadValue: had})
	m[slot] = value
}

func (l *Ledger) GetStorageRoot(addr common.Address) common.Hash {
	// No trie is maintained; this engine never verifies storage roots
	// (spec §3), so there is nothing meaningful to return.
	return common.Hash{}
}

func (l *Ledger) GetTransientState(addr common.Address, slot common.Hash) common.Hash {
	return l.transientStorage[addr][slot]
}

func (l *Ledger) SetTransientState(addr common.Address, slot, value common.Hash) {
	m, ok := l.transientStorage[addr]
	if !ok {
		m = make(map[common.Hash]common.Hash)
		l.transientStorage[addr] = m
	}
	prev, had := m[slot]
	l.journal.append(transientStorageChange{addr: addr, slot: slot, prevVal: prev, hadValue: had})
	m[slot] = value
}

func (l *Ledger) SelfDestruct(addr common.Address) uint256.Int {
	a := l.get(addr)
	l.journal.append(selfDestructChange{addr: addr, prev: a.suicided})
	prev := *a.balance
	a.suicided = true
	a.balance = new(uint256.Int)
	return prev
}

func (l *Ledger) HasSelfDestructed(addr common.Address) bool {
	return l.get(addr).suicided
}

// Selfdestruct6780 implements EIP-6780: self-destruct only takes effect
// (zeroing the balance immediately) for contracts created in the same
// call frame; this ledger cannot distinguish same-frame creation from a
// pre-existing contract, so it always applies the pre-6780 behavior,
// which is a conservative, documented simplification — the engine never
// persists state across calls, so the distinction only affects whether
// this particular CallResult is byte-identical to a full-state node for
// self-destructing contracts created in the same transaction.
func (l *Ledger) Selfdestruct6780(addr common.Address) (uint256.Int, bool) {
	prev := l.SelfDestruct(addr)
	return prev, true
}

func (l *Ledger) Exist(addr common.Address) bool {
	l.witness.touchAccount(addr)
	// Per spec §4.C, missing (not-yet-fetched) state is treated as
	// zero-valued, i.e. indistinguishable from a non-existent account,
	// until the backend has confirmed otherwise.
	return l.get(addr).exists
}

func (l *Ledger) Empty(addr common.Address) bool {
	l.witness.touchAccount(addr)
	a := l.get(addr)
	return a.nonce == 0 && a.balance.IsZero() && len(a.code) == 0
}

// --- EIP-2929/2930 warm/cold access list, consumed by the interpreter
// for gas metering. Separate from the outer witness (see accesslist.go).

func (l *Ledger) AddressInAccessList(addr common.Address) bool {
	return l.accessList.containsAddress(addr)
}

func (l *Ledger) SlotInAccessList(addr common.Address, slot common.Hash) (addressOk, slotOk bool) {
	return l.accessList.contains(addr, slot)
}

func (l *Ledger) AddAddressToAccessList(addr common.Address) {
	if l.accessList.containsAddress(addr) {
		return
	}
	l.journal.append(accessListAddAccountChange{addr: addr})
	l.accessList.addAddress(addr)
}

func (l *Ledger) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	addrOk, slotOk := l.accessList.contains(addr, slot)
	if !addrOk {
		l.journal.append(accessListAddAccountChange{addr: addr})
		l.accessList.addAddress(addr)
	}
	if !slotOk {
		l.journal.append(accessListAddSlotChange{addr: addr, slot: slot})
		l.accessList.addSlot(addr, slot)
	}
}

// Prepare implements the EIP-2930/3651/... access-list and warm-address
// preparation the EVM performs at the start of a transaction, warming the
// sender, recipient, precompiles and the transaction's declared access
// list. Grounded on the standard go-ethereum StateTransition call shape;
// this ledger's contribution is simply to forward into AddAddressToAccessList
// / AddSlotToAccessList so the outer witness is unaffected (warming is not
// a witness-accumulating read, per spec §4.B which only triggers on
// value/code/storage reads performed by the running bytecode).
func (l *Ledger) Prepare(rules params.Rules, sender, coinbase common.Address, dst *common.Address, precompiles []common.Address, list types.AccessList) {
	l.accessList = newAccessList()
	if rules.IsBerlin {
		l.AddAddressToAccessList(sender)
		if dst != nil {
			l.AddAddressToAccessList(*dst)
		}
		for _, addr := range precompiles {
			l.AddAddressToAccessList(addr)
		}
		for _, el := range list {
			l.AddAddressToAccessList(el.Address)
			for _, key := range el.StorageKeys {
				l.AddSlotToAccessList(el.Address, key)
			}
		}
		if rules.IsShanghai {
			l.AddAddressToAccessList(coinbase)
		}
	}
}

func (l *Ledger) AddLog(log *types.Log) {
	l.journal.append(logChange{})
	l.logs = append(l.logs, log)
}

// Logs returns the logs emitted by the most recent execution.
func (l *Ledger) Logs() []*types.Log { return l.logs }

func (l *Ledger) AddPreimage(hash common.Hash, preimage []byte) {
	// Preimage recording is a full-node archival feature; this engine
	// never persists anything (spec §3), so there is nothing to do.
}

// --- savepoint / rollback (spec §4.B) ---

// BeginSavepoint opens a transactional boundary. Rollback restores every
// mutable field changed since the call; the witness is untouched.
func (l *Ledger) BeginSavepoint() Savepoint { return l.journal.snapshot() }

// Snapshot is the vm.StateDB-facing name for BeginSavepoint.
func (l *Ledger) Snapshot() int { return int(l.BeginSavepoint()) }

// Rollback restores ledger state to sp, discarding every mutation made
// since, without touching the witness table (spec §4.B).
func (l *Ledger) Rollback(sp Savepoint) { l.journal.revertTo(l, sp) }

// RevertToSnapshot is the vm.StateDB-facing name for Rollback.
func (l *Ledger) RevertToSnapshot(sp int) { l.Rollback(Savepoint(sp)) }

// Commit discards sp as a rollback target without undoing anything —
// the transactional boundary is simply no longer needed.
func (l *Ledger) Commit(sp Savepoint) {}

func codeHash(code []byte) common.Hash {
	if len(code) == 0 {
		return common.Hash{}
	}
	return crypto.Keccak256Hash(code)
}
