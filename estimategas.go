package asyncevm

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"

	"github.com/lightclient/asyncevm/asynctypes"
	"github.com/lightclient/asyncevm/internal/ledger"
	"github.com/lightclient/asyncevm/internal/prefetch"
)

// IntrinsicGas is the minimum gas any transaction consumes. The binary
// search starts one below it, so IntrinsicGas itself is a possible result.
const IntrinsicGas = params.TxGas

// EstimateGas implements spec §4.F.3: run the Prefetch Loop once to
// populate a ledger, then binary-search over gas caps, re-executing the
// transaction against progressively narrower bounds. Each candidate
// execution is wrapped in its own bounded Prefetch Loop (SPEC_FULL.md
// decision 4), since a binary-search branch can legitimately touch state
// the initial pass never visited — e.g. a code path only taken near the
// gas ceiling.
func (e *Engine) EstimateGas(ctx context.Context, header *types.Header, tx *asynctypes.TransactionArgs, optimistic bool) (uint64, error) {
	if err := e.validate(tx); err != nil {
		return 0, err
	}

	seedLedger := ledger.New()
	if _, err := prefetch.Run(ctx, e.backend, e.chainConfig, header, seedLedger, tx, e.gasCap, e.mode(optimistic), e.callLimit); err != nil {
		return 0, err
	}

	lo, hi := uint64(IntrinsicGas)-1, tx.GasOrCap(e.gasCap)
	if hi < IntrinsicGas {
		hi = IntrinsicGas
	}

	// executable reports whether the transaction succeeds (does not
	// revert and does not fail with an EVM execution error) when capped
	// at gas. Non-goal per spec §1: accurate estimation when the call
	// reverts for reasons unrelated to gas is out of scope, so any
	// revert is simply treated as "needs more gas" up to hi.
	executable := func(gas uint64) (bool, error) {
		candidate := tx.Clone()
		g := hexutil.Uint64(gas)
		candidate.Gas = &g

		l := ledger.New()
		res, err := prefetch.Run(ctx, e.backend, e.chainConfig, header, l, candidate, gas, e.mode(optimistic), e.callLimit)
		if err != nil {
			var unavailable *asynctypes.UnavailableError
			if errors.As(err, &unavailable) || asynctypes.IsCancelled(err) {
				return false, err
			}
			// An EVM execution failure (e.g. a cap below the intrinsic
			// gas) at this cap means the candidate needs more gas, not
			// that the call is unestimable.
			return false, nil
		}
		return !res.Reverted(), nil
	}

	if ok, err := executable(hi); err != nil {
		return 0, err
	} else if !ok {
		// The transaction fails even at the maximum allowed gas; surface
		// the failure from a final direct run so the caller sees the
		// real error (spec's Non-goal: accurate estimation on revert is
		// not guaranteed, but the failure itself must still propagate).
		res, err := prefetch.Run(ctx, e.backend, e.chainConfig, header, ledger.New(), tx, hi, e.mode(optimistic), e.callLimit)
		if err != nil {
			return 0, err
		}
		if res.Reverted() {
			return 0, &asynctypes.EVMExecutionError{Code: errors.New(res.Error)}
		}
		return hi, nil
	}

	for lo+1 < hi {
		mid := lo + (hi-lo)/2
		ok, err := executable(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}
