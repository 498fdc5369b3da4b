package asynctypes

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// CallResult is the outcome of a single EVM execution (spec §3).
type CallResult struct {
	Output  []byte
	GasUsed uint64
	Error   string // revert reason / EVM error message; empty on success
}

// Reverted reports whether the call failed at the application level
// (distinct from a missing-state failure, which is never placed here —
// see spec §3's invariant on when an access list may be emitted).
func (r *CallResult) Reverted() bool { return r != nil && r.Error != "" }

// BuildAccessList groups witness over storage keys by address from a
// witness table, excluding from (spec §4.F.2), and returns them in the
// canonical order spec §6 requires: addresses ascending by big-endian
// byte representation, and within each address, storage keys ascending
// by big-endian byte representation.
func BuildAccessList(w *WitnessTable, from common.Address) types.AccessList {
	byAddr := make(map[common.Address][]common.Hash)
	var addrs []common.Address
	for _, key := range w.Keys() {
		if key.Address == from {
			continue
		}
		if _, ok := byAddr[key.Address]; !ok {
			addrs = append(addrs, key.Address)
			byAddr[key.Address] = nil
		}
		if key.HasSlot {
			byAddr[key.Address] = append(byAddr[key.Address], key.Slot)
		}
	}

	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i].Bytes(), addrs[j].Bytes()) < 0
	})

	list := make(types.AccessList, 0, len(addrs))
	for _, addr := range addrs {
		keys := byAddr[addr]
		sort.Slice(keys, func(i, j int) bool {
			return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) < 0
		})
		list = append(list, types.AccessTuple{
			Address:     addr,
			StorageKeys: keys,
		})
	}
	return list
}
