package ledger

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/lightclient/asyncevm/asynctypes"
)

// Witness accumulates the WitnessTable produced by a single EVM run. It is
// intentionally not part of the journal: rolling back a savepoint never
// clears it (spec §4.B — "the witness is the input to the next iteration
// even though state changes are discarded").
type Witness struct {
	table *asynctypes.WitnessTable
}

// NewWitness returns an empty witness accumulator.
func NewWitness() *Witness {
	return &Witness{table: asynctypes.NewWitnessTable()}
}

// Table returns the accumulated witness table.
func (w *Witness) Table() *asynctypes.WitnessTable { return w.table }

// Reset discards the accumulated witness (spec's clearWitnessKeys).
func (w *Witness) Reset() { w.table = asynctypes.NewWitnessTable() }

// touchAccount records an account-level read.
func (w *Witness) touchAccount(addr common.Address) {
	w.table.Touch(asynctypes.AccountKey(addr), false)
}

// touchCode records that addr's code was read: this both marks
// codeTouched and, per spec §4.B, still counts as an account-level touch.
func (w *Witness) touchCode(addr common.Address) {
	w.table.Touch(asynctypes.AccountKey(addr), true)
}

// touchStorage records a storage-slot read, which per spec §4.B also
// touches the owning account.
func (w *Witness) touchStorage(addr common.Address, slot common.Hash) {
	w.table.Touch(asynctypes.StorageKey(addr, slot), false)
	w.table.Touch(asynctypes.AccountKey(addr), false)
}
