// Package executor is the EVM Adapter (spec §4.C): a pure, synchronous
// invocation of go-ethereum's own EVM interpreter against a
// *ledger.Ledger, under a gas cap. It never suspends — the interpreter
// itself is treated as an external, out-of-scope collaborator per
// spec §1, so this package is a thin wiring layer, not a reimplementation.
package executor

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"

	"github.com/lightclient/asyncevm/asynctypes"
	"github.com/lightclient/asyncevm/internal/ledger"
)

// MaxPrecompileAddress documents the highest known precompile address as
// of Cancun (0x0a, the point-evaluation precompile); it is informational
// only. The Prefetch Loop's pre-seed step (spec §4.E step 1) always
// fetches tx.to's code unconditionally, including when tx.to falls in
// this range — see SPEC_FULL.md's resolution of the corresponding §9
// open question.
const MaxPrecompileAddress = 0x0a

// Execute runs tx against header using ledger as the backing state,
// capped at gasCap, and returns its raw output/gas/revert triple
// (spec §4.C). It never suspends: every read ledger serves either comes
// from previously-fetched backend state or is treated as zero-valued.
func Execute(l *ledger.Ledger, chainConfig *params.ChainConfig, header *types.Header, tx *asynctypes.TransactionArgs, gasCap uint64) (*asynctypes.CallResult, error) {
	msg := toMessage(tx, gasCap)

	blockCtx := NewBlockContext(header)
	txCtx := core.NewEVMTxContext(msg)

	evm := vm.NewEVM(blockCtx, txCtx, l, chainConfig, vm.Config{NoBaseFee: true})

	gasPool := new(core.GasPool).AddGas(gasCap)
	res, err := core.ApplyMessage(evm, msg, gasPool)
	if err != nil {
		// A non-revert failure from ApplyMessage (e.g. intrinsic-gas
		// rejection, nonce mismatch were it enforced) is an EVM
		// execution failure per spec §7.3, not a revert.
		return nil, &asynctypes.EVMExecutionError{Code: err}
	}

	result := &asynctypes.CallResult{
		Output:  res.ReturnData,
		GasUsed: res.UsedGas,
	}
	if res.Err != nil {
		result.Error = res.Err.Error()
	}
	return result, nil
}

func toMessage(tx *asynctypes.TransactionArgs, gasCap uint64) *core.Message {
	var accessList types.AccessList
	if tx.AccessList != nil {
		accessList = *tx.AccessList
	}
	gasPrice := new(big.Int)
	if tx.GasPrice != nil {
		gasPrice = tx.GasPrice.ToInt()
	}
	value := new(big.Int)
	if tx.Value != nil {
		value = tx.Value.ToInt()
	}
	return &core.Message{
		From:              tx.FromOrZero(),
		To:                tx.To,
		Value:             value,
		GasLimit:          tx.GasOrCap(gasCap),
		GasPrice:          gasPrice,
		GasFeeCap:         gasPrice,
		GasTipCap:         common.Big0,
		Data:              tx.InputData(),
		AccessList:        accessList,
		SkipAccountChecks: true,
	}
}
