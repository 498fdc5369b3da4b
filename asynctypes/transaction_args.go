package asynctypes

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransactionArgs mirrors go-ethereum's eth_call-family argument struct
// (internal/ethapi.TransactionArgs), trimmed to the fields this engine's
// scope needs. See spec §3.
type TransactionArgs struct {
	From       *common.Address
	To         *common.Address
	Gas        *hexutil.Uint64
	GasPrice   *hexutil.Big
	Value      *hexutil.Big
	Input      *hexutil.Bytes
	AccessList *types.AccessList

	// Blobs/commitments/proofs are accepted for shape-completeness with
	// spec §3 but are not consumed by this engine (blob-carrying
	// transactions are always type-3 and never originate from a
	// synthetic eth_call-style request in practice); nil is always valid.
	Blobs       []hexutil.Bytes
	Commitments []hexutil.Bytes
	Proofs      []hexutil.Bytes
}

// Clone returns a deep-enough copy suitable for the access-list mutation
// spec §9 calls out ("tx by-value mutation to inject access list"):
// CreateAccessList must not mutate the caller's TransactionArgs.
func (a *TransactionArgs) Clone() *TransactionArgs {
	cp := *a
	if a.AccessList != nil {
		al := make(types.AccessList, len(*a.AccessList))
		copy(al, *a.AccessList)
		cp.AccessList = &al
	}
	return &cp
}

// Validate applies the shared input validation of spec §4.F: `to` is
// required; an explicit gas must not exceed gasCap.
func (a *TransactionArgs) Validate(gasCap uint64) error {
	if a.To == nil {
		return ErrToRequired
	}
	if a.Gas != nil && uint64(*a.Gas) > gasCap {
		return ErrGasTooLarge
	}
	return nil
}

// FromOrZero returns the sender, defaulting to the zero address per
// spec §4.F.
func (a *TransactionArgs) FromOrZero() common.Address {
	if a.From != nil {
		return *a.From
	}
	return common.Address{}
}

// GasOrCap returns the call's gas limit, defaulting to gasCap per spec §4.F.
func (a *TransactionArgs) GasOrCap(gasCap uint64) uint64 {
	if a.Gas != nil {
		return uint64(*a.Gas)
	}
	return gasCap
}

// InputData returns the call data, or nil if none was supplied.
func (a *TransactionArgs) InputData() []byte {
	if a.Input == nil {
		return nil
	}
	return []byte(*a.Input)
}

// ValueOrZero returns the call value, defaulting to zero.
func (a *TransactionArgs) ValueOrZero() *hexutil.Big {
	if a.Value != nil {
		return a.Value
	}
	return (*hexutil.Big)(common.Big0)
}
