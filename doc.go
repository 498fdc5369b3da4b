// Package asyncevm implements an EVM call engine for callers whose state
// is not locally resident and must be fetched over a high-latency
// asynchronous backend (e.g. a light client or portal network). It
// evaluates an unsigned transaction against a supplied block header by
// alternately executing go-ethereum's own EVM interpreter and fetching
// whatever state that execution reveals is missing, until the set of
// keys touched (the witness) stabilizes.
//
// The engine never persists anything between calls: every Call,
// CreateAccessList or EstimateGas invocation builds a throwaway ledger,
// drives it to convergence, and discards it on return.
package asyncevm
