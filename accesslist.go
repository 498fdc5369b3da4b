package asyncevm

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/lightclient/asyncevm/asynctypes"
	"github.com/lightclient/asyncevm/internal/executor"
	"github.com/lightclient/asyncevm/internal/ledger"
	"github.com/lightclient/asyncevm/internal/prefetch"
)

// CreateAccessList implements spec §4.F.2. It runs the Prefetch Loop to
// populate a ledger (discarding that run's gas figure, since it does not
// reflect the access list's EIP-2930 discount), builds a canonical
// access list from the final witness, then re-executes once more with
// that access list attached to obtain the gas/revert figures callers
// actually want. The return shape matches spec §6 exactly:
// (AccessList, optional error message, gas used, error).
func (e *Engine) CreateAccessList(ctx context.Context, header *types.Header, tx *asynctypes.TransactionArgs, optimistic bool) (types.AccessList, *string, uint64, error) {
	if err := e.validate(tx); err != nil {
		return nil, nil, 0, err
	}

	l := ledger.New()
	if _, err := prefetch.Run(ctx, e.backend, e.chainConfig, header, l, tx, e.gasCap, e.mode(optimistic), e.callLimit); err != nil {
		return nil, nil, 0, err
	}

	from := tx.FromOrZero()
	list := asynctypes.BuildAccessList(l.GetWitnessKeys(), from)

	slots := 0
	for _, entry := range list {
		slots += len(entry.StorageKeys)
	}
	log.Debug("create_access_list: generated list", "addresses", len(list), "slots", slots)

	withList := tx.Clone()
	withList.AccessList = &list

	res, err := executor.Execute(l, e.chainConfig, header, withList, e.gasCap)
	if err != nil {
		return nil, nil, 0, err
	}

	var errMsg *string
	if res.Error != "" {
		errMsg = &res.Error
	}
	return list, errMsg, res.GasUsed, nil
}
