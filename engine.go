package asyncevm

import (
	"github.com/ethereum/go-ethereum/params"

	"github.com/lightclient/asyncevm/asynctypes"
)

// Engine is a process-lifetime singleton holding immutable chain config
// and a backend handle (spec §3's Engine lifecycle note). It has no
// mutable state of its own: every public API call builds and destroys
// its own throwaway ledger, so an Engine can safely serve concurrent
// calls from multiple goroutines.
type Engine struct {
	backend     asynctypes.Backend
	chainConfig *params.ChainConfig
	gasCap      uint64
	callLimit   int
}

// NewEngine validates cfg and returns an Engine bound to backend.
func NewEngine(backend asynctypes.Backend, cfg Config) (*Engine, error) {
	chainConfig, err := cfg.chainConfig()
	if err != nil {
		return nil, err
	}
	return &Engine{
		backend:     backend,
		chainConfig: chainConfig,
		gasCap:      cfg.gasCap(),
		callLimit:   cfg.callLimit(),
	}, nil
}

// validate applies spec §4.F's shared input validation: tx.to is
// required; tx.gas, if present, must not exceed the engine's gas cap. It
// does not fill defaults; a missing tx.from reads as the zero address
// wherever the sender is used (TransactionArgs.FromOrZero).
func (e *Engine) validate(tx *asynctypes.TransactionArgs) error {
	return tx.Validate(e.gasCap)
}
