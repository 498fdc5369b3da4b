package ledger

import "github.com/ethereum/go-ethereum/common"

// accessList implements the EIP-2929/2930 warm/cold bookkeeping the EVM
// interpreter itself consults for gas metering. It is a separate concern
// from the outer witness table (asynctypes.WitnessTable): this one is
// journaled and reset by rollback like any other EVM side effect; the
// witness deliberately is not (spec §4.B).
type accessList struct {
	addresses map[common.Address]struct{}
	slots     map[common.Address]map[common.Hash]struct{}
}

func newAccessList() *accessList {
	return &accessList{
		addresses: make(map[common.Address]struct{}),
		slots:     make(map[common.Address]map[common.Hash]struct{}),
	}
}

func (al *accessList) containsAddress(addr common.Address) bool {
	_, ok := al.addresses[addr]
	return ok
}

func (al *accessList) contains(addr common.Address, slot common.Hash) (addressOk, slotOk bool) {
	addressOk = al.containsAddress(addr)
	if !addressOk {
		return false, false
	}
	m, ok := al.slots[addr]
	if !ok {
		return true, false
	}
	_, slotOk = m[slot]
	return true, slotOk
}

func (al *accessList) addAddress(addr common.Address) { al.addresses[addr] = struct{}{} }

func (al *accessList) addSlot(addr common.Address, slot common.Hash) {
	m, ok := al.slots[addr]
	if !ok {
		m = make(map[common.Hash]struct{})
		al.slots[addr] = m
	}
	m[slot] = struct{}{}
}

func (al *accessList) removeAddress(addr common.Address) { delete(al.addresses, addr) }

func (al *accessList) removeSlot(addr common.Address, slot common.Hash) {
	if m, ok := al.slots[addr]; ok {
		delete(m, slot)
	}
}
