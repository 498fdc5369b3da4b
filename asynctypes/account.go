// Package asynctypes holds the data types shared between the ledger,
// executor, fetch and prefetch packages and the public Engine API: account
// and code state, the witness table, transaction arguments, access lists
// and the backend contract. It has no dependency on any other package in
// this module, so it can be imported by all of them without a cycle.
package asynctypes

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SlotKey and SlotValue are 256-bit unsigned integers: a storage slot
// address and its contents, respectively.
type SlotKey = uint256.Int
type SlotValue = uint256.Int

// Account mirrors the subset of account state the engine cares about.
// StorageRoot and CodeHash are carried through for completeness but are
// never verified against anything — this engine trusts its backend.
type Account struct {
	Balance     *uint256.Int
	Nonce       uint64
	CodeHash    common.Hash
	StorageRoot common.Hash
}

// Code is opaque contract bytecode.
type Code []byte

// EmptyAccount returns the zero-valued account used when the backend has
// authoritatively reported that an address does not exist.
func EmptyAccount() *Account {
	return &Account{Balance: new(uint256.Int)}
}
