package asynctypes

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the async state backend consulted by the Fetch Scheduler
// (spec §4.A). All three methods must be idempotent, read-only,
// order-independent, and safe to call concurrently for distinct keys; the
// engine never issues two concurrent lookups for the same key.
//
// A nil return value with a nil error means the key is authoritatively
// absent (e.g. the account does not exist at this header). A non-nil
// error means the lookup could not be completed. If the error stems from
// context cancellation or a deadline (see IsCancelled), the caller
// propagates it untouched; any other failure is mapped to one of
// ErrAccountUnavailable, ErrSlotUnavailable or ErrCodeUnavailable.
type Backend interface {
	GetAccount(ctx context.Context, header *types.Header, address common.Address) (*Account, error)
	GetStorage(ctx context.Context, header *types.Header, address common.Address, slot *SlotKey) (*SlotValue, error)
	GetCode(ctx context.Context, header *types.Header, address common.Address) (Code, error)
}
