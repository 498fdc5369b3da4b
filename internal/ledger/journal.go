package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Savepoint is an opaque handle into the journal, returned by
// BeginSavepoint. Rolling back to it undoes every mutable-field change
// recorded since it was taken; the witness is untouched (spec §3/§4.B).
type Savepoint int

// journalEntry undoes a single mutation when replayed in reverse order.
type journalEntry interface {
	revert(l *Ledger)
}

type journal struct {
	entries []journalEntry
}

func newJournal() *journal { return &journal{} }

func (j *journal) append(e journalEntry) { j.entries = append(j.entries, e) }

func (j *journal) snapshot() Savepoint { return Savepoint(len(j.entries)) }

// revertTo undoes every entry recorded since sp, in reverse order, and
// truncates the log. The witness (l.witness) is never touched here.
func (j *journal) revertTo(l *Ledger, sp Savepoint) {
	for i := len(j.entries) - 1; i >= int(sp); i-- {
		j.entries[i].revert(l)
	}
	j.entries = j.entries[:sp]
}

// --- undo log entries; each captures the prior value at the time of the
// mutating call so revert can restore it exactly. ---

type balanceChange struct {
	addr common.Address
	prev *uint256.Int
}

func (c balanceChange) revert(l *Ledger) { l.accounts[c.addr].balance = c.prev }

type nonceChange struct {
	addr common.Address
	prev uint64
}

func (c nonceChange) revert(l *Ledger) { l.accounts[c.addr].nonce = c.prev }

type codeChange struct {
	addr     common.Address
	prevCode []byte
	prevHash common.Hash
}

func (c codeChange) revert(l *Ledger) {
	a := l.accounts[c.addr]
	a.code = c.prevCode
	a.codeHash = c.prevHash
}

type storageChange struct {
	addr     common.Address
	slot     common.Hash
	prevVal  common.Hash
	hadValue bool
}

func (c storageChange) revert(l *Ledger) {
	m := l.storage[c.addr]
	if !c.hadValue {
		delete(m, c.slot)
		return
	}
	m[c.slot] = c.prevVal
}

type transientStorageChange struct {
	addr     common.Address
	slot     common.Hash
	prevVal  common.Hash
	hadValue bool
}

func (c transientStorageChange) revert(l *Ledger) {
	m := l.transientStorage[c.addr]
	if !c.hadValue {
		delete(m, c.slot)
		return
	}
	m[c.slot] = c.prevVal
}

type selfDestructChange struct {
	addr common.Address
	prev bool
}

func (c selfDestructChange) revert(l *Ledger) { l.accounts[c.addr].suicided = c.prev }

type refundChange struct {
	prev uint64
}

func (c refundChange) revert(l *Ledger) { l.refund = c.prev }

type createAccountChange struct {
	addr    common.Address
	existed bool
}

func (c createAccountChange) revert(l *Ledger) {
	if !c.existed {
		a := l.accounts[c.addr]
		a.exists = false
		a.balance = new(uint256.Int)
		a.nonce = 0
		a.code = nil
		a.codeHash = common.Hash{}
	}
}

type accessListAddAccountChange struct {
	addr common.Address
}

func (c accessListAddAccountChange) revert(l *Ledger) {
	l.accessList.removeAddress(c.addr)
}

type accessListAddSlotChange struct {
	addr common.Address
	slot common.Hash
}

func (c accessListAddSlotChange) revert(l *Ledger) {
	l.accessList.removeSlot(c.addr, c.slot)
}

type logChange struct{}

func (c logChange) revert(l *Ledger) {
	l.logs = l.logs[:len(l.logs)-1]
}
