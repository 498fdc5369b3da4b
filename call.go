package asyncevm

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lightclient/asyncevm/asynctypes"
	"github.com/lightclient/asyncevm/internal/fetch"
	"github.com/lightclient/asyncevm/internal/ledger"
	"github.com/lightclient/asyncevm/internal/prefetch"
)

// Call validates tx, runs the Prefetch Loop to convergence against
// header, and returns its result (spec §4.F). The ledger built for the
// call is discarded on return, success or failure (spec §3, property P7).
func (e *Engine) Call(ctx context.Context, header *types.Header, tx *asynctypes.TransactionArgs, optimistic bool) (*asynctypes.CallResult, error) {
	if err := e.validate(tx); err != nil {
		return nil, err
	}
	l := ledger.New()
	return prefetch.Run(ctx, e.backend, e.chainConfig, header, l, tx, e.gasCap, e.mode(optimistic), e.callLimit)
}

func (e *Engine) mode(optimistic bool) fetch.Mode {
	if optimistic {
		return fetch.Optimistic
	}
	return fetch.Conservative
}
