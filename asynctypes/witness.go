package asynctypes

import "github.com/ethereum/go-ethereum/common"

// WitnessKey identifies a single piece of state touched by an EVM run: an
// account reference (HasSlot == false) or a storage reference (HasSlot ==
// true, in which case the owning account is implicitly touched too, per
// spec §4.B). Slot is a plain common.Hash rather than a pointer so two
// WitnessKey values naming the same slot compare equal as map keys —
// WitnessTable is keyed directly on WitnessKey.
type WitnessKey struct {
	Address common.Address
	HasSlot bool
	Slot    common.Hash
}

// AccountKey returns the account-only WitnessKey for addr.
func AccountKey(addr common.Address) WitnessKey {
	return WitnessKey{Address: addr}
}

// StorageKey returns the WitnessKey naming a single storage slot.
func StorageKey(addr common.Address, slot common.Hash) WitnessKey {
	return WitnessKey{Address: addr, HasSlot: true, Slot: slot}
}

// IsAccount reports whether this key names an account rather than a slot.
func (k WitnessKey) IsAccount() bool { return !k.HasSlot }

// witnessEntry is the value half of a WitnessTable: whether the EVM read
// this key's account's code, and the order the key was first touched in.
type witnessEntry struct {
	codeTouched bool
	order       int
}

// WitnessTable is an ordered mapping from WitnessKey to whether the
// account's code was touched. Order is insertion order (first touch
// within a single run); equality between two tables is structural and
// order-insensitive, per spec §3.
type WitnessTable struct {
	entries map[WitnessKey]*witnessEntry
	order   []WitnessKey
}

// NewWitnessTable returns an empty witness table.
func NewWitnessTable() *WitnessTable {
	return &WitnessTable{entries: make(map[WitnessKey]*witnessEntry)}
}

// Touch records that key was observed. codeTouched is OR'd into any
// existing entry; a key's position is fixed on first insertion.
func (w *WitnessTable) Touch(key WitnessKey, codeTouched bool) {
	if e, ok := w.entries[key]; ok {
		e.codeTouched = e.codeTouched || codeTouched
		return
	}
	w.entries[key] = &witnessEntry{codeTouched: codeTouched, order: len(w.order)}
	w.order = append(w.order, key)
}

// CodeTouched reports whether key's account code was read during the run
// that produced this table. It returns false for keys never touched.
func (w *WitnessTable) CodeTouched(key WitnessKey) bool {
	e, ok := w.entries[key]
	return ok && e.codeTouched
}

// Has reports whether key was touched at all.
func (w *WitnessTable) Has(key WitnessKey) bool {
	_, ok := w.entries[key]
	return ok
}

// Len returns the number of distinct keys touched. A nil table is treated
// as empty so a fresh *WitnessTable is never required just to compare.
func (w *WitnessTable) Len() int {
	if w == nil {
		return 0
	}
	return len(w.order)
}

// Keys returns the touched keys in first-touch order.
func (w *WitnessTable) Keys() []WitnessKey {
	out := make([]WitnessKey, len(w.order))
	copy(out, w.order)
	return out
}

// Equal compares two witness tables structurally, ignoring touch order,
// as required by spec §3 ("comparison for equality is structural and
// order-insensitive").
func (w *WitnessTable) Equal(other *WitnessTable) bool {
	if w.Len() == 0 || other.Len() == 0 {
		return w.Len() == other.Len()
	}
	if len(w.entries) != len(other.entries) {
		return false
	}
	for k, e := range w.entries {
		oe, ok := other.entries[k]
		if !ok || oe.codeTouched != e.codeTouched {
			return false
		}
	}
	return true
}
