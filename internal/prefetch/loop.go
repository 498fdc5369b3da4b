// Package prefetch implements the Prefetch Loop (spec §4.E): the
// fixed-point algorithm that alternately executes the EVM Adapter against
// whatever state is resident and fetches whatever the resulting witness
// says is missing, until the witness stabilizes.
package prefetch

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"

	"github.com/lightclient/asyncevm/asynctypes"
	"github.com/lightclient/asyncevm/internal/executor"
	"github.com/lightclient/asyncevm/internal/fetch"
	"github.com/lightclient/asyncevm/internal/ledger"
)

// CallLimit is the safety ceiling against pathological non-convergence
// from an interpreter bug (spec §4.E step 3); ordinary calls converge far
// sooner, in proportion to the call's depth of novel state accesses.
const CallLimit = 10_000

// Run drives the fixed-point loop to convergence and returns the EVM
// Adapter's final result (spec §4.E). l must be a freshly constructed
// ledger (spec §3's throwaway-frame lifecycle); Run pre-seeds tx.to's
// code before the loop begins, per step 1, since the call cannot even
// begin without it. callLimit of 0 selects CallLimit.
func Run(ctx context.Context, backend asynctypes.Backend, chainConfig *params.ChainConfig, header *types.Header, l *ledger.Ledger, tx *asynctypes.TransactionArgs, gasCap uint64, mode fetch.Mode, callLimit int) (*asynctypes.CallResult, error) {
	if callLimit <= 0 {
		callLimit = CallLimit
	}
	fetched := fetch.NewFetched()
	scheduler := fetch.New(backend, header, l, fetched)

	if to := tx.To; to != nil {
		code, err := backend.GetCode(ctx, header, *to)
		if err != nil {
			if asynctypes.IsCancelled(err) {
				return nil, err
			}
			return nil, &asynctypes.UnavailableError{Kind: asynctypes.ErrCodeUnavailable, Err: err}
		}
		l.InstallCode(*to, code)
		fetched.MarkCode(*to)
	}

	var lastWitness *asynctypes.WitnessTable
	var lastResult *asynctypes.CallResult

	for i := 0; i < callLimit; i++ {
		l.ClearWitnessKeys()

		sp := l.BeginSavepoint()
		res, err := executor.Execute(l, chainConfig, header, tx, gasCap)
		l.Rollback(sp)
		if err != nil {
			return nil, err
		}
		lastResult = res

		witness := l.GetWitnessKeys()

		stateFetchDone, err := scheduler.Run(ctx, mode, witness)
		if err != nil {
			return nil, err
		}

		converged := false
		switch mode {
		case fetch.Optimistic:
			converged = lastWitness != nil && lastWitness.Equal(witness)
		case fetch.Conservative:
			converged = !stateFetchDone
		}
		if converged {
			log.Debug("prefetch: witness fixed point reached", "iterations", i+1, "witnessSize", witness.Len())
			return lastResult, nil
		}
		lastWitness = witness
	}

	// spec §4.E step 4: the loop returns the last result unconditionally
	// once CALL_LIMIT is exhausted, without raising — CallLimit exists to
	// bound pathological non-convergence, not to fail the call.
	log.Debug("prefetch: call limit reached without converging", "callLimit", callLimit)
	return lastResult, nil
}
