// Package fetch is the Fetch Scheduler (spec §4.D): it turns a witness
// table's not-yet-resolved keys into backend calls, in either Optimistic
// (fan out everything, await all) or Conservative (await only the first,
// let the rest resolve in the background) mode, and writes results
// straight into the Witness Ledger.
package fetch

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"github.com/lightclient/asyncevm/asynctypes"
	"github.com/lightclient/asyncevm/internal/ledger"
)

// Mode selects how the scheduler awaits the backend calls it issues
// (spec §4.D).
type Mode int

const (
	// Optimistic schedules every not-yet-fetched key concurrently and
	// awaits all of them before returning.
	Optimistic Mode = iota
	// Conservative schedules only the first not-yet-fetched key as
	// blocking; the rest are fired in the background and awaited by a
	// later call to Run once they complete.
	Conservative
)

func (m Mode) String() string {
	if m == Conservative {
		return "conservative"
	}
	return "optimistic"
}

type kind int

const (
	kindAccount kind = iota
	kindCode
	kindStorage
)

type job struct {
	kind kind
	addr common.Address
	slot common.Hash
}

// Scheduler issues asynctypes.Backend lookups on behalf of one in-flight
// public API call and writes their results into a ledger.Ledger. It is
// not safe for concurrent use by more than one Prefetch Loop.
type Scheduler struct {
	backend asynctypes.Backend
	header  *types.Header
	ledger  *ledger.Ledger
	fetched *Fetched

	mu      sync.Mutex
	pending map[pendingKey]struct{}
	bgErr   error // first error surfaced by a detached Conservative background fetch
}

type pendingKey struct {
	kind kind
	addr common.Address
	slot common.Hash
}

// New returns a Scheduler bound to one call's backend, header, ledger and
// fetched-key tracker. fetched must be shared across every Prefetch Loop
// iteration for the same call, so the scheduler never re-issues a query
// for a key it has already resolved (property P3).
func New(backend asynctypes.Backend, header *types.Header, l *ledger.Ledger, fetched *Fetched) *Scheduler {
	return &Scheduler{
		backend: backend,
		header:  header,
		ledger:  l,
		fetched: fetched,
		pending: make(map[pendingKey]struct{}),
	}
}

// plan returns the witness keys that still need a backend call: not yet
// fetched, and not already in flight from a previous Run (spec §4.D's
// account/code/storage policy). The zero address is never fetched — it
// never denotes a real account under the spec's addressing scheme.
func (s *Scheduler) plan(witness *asynctypes.WitnessTable) []job {
	var jobs []job
	for _, key := range witness.Keys() {
		if key.Address == (common.Address{}) {
			continue
		}
		if !key.HasSlot {
			pk := pendingKey{kind: kindAccount, addr: key.Address}
			if !s.fetched.HasAccount(key.Address) {
				if _, ok := s.pending[pk]; !ok {
					jobs = append(jobs, job{kind: kindAccount, addr: key.Address})
				}
			}
			if witness.CodeTouched(key) {
				ck := pendingKey{kind: kindCode, addr: key.Address}
				if !s.fetched.HasCode(key.Address) {
					if _, ok := s.pending[ck]; !ok {
						jobs = append(jobs, job{kind: kindCode, addr: key.Address})
					}
				}
			}
			continue
		}
		sk := pendingKey{kind: kindStorage, addr: key.Address, slot: key.Slot}
		if !s.fetched.HasStorage(key.Address, key.Slot) {
			if _, ok := s.pending[sk]; !ok {
				jobs = append(jobs, job{kind: kindStorage, addr: key.Address, slot: key.Slot})
			}
		}
	}
	return jobs
}

func (j job) pendingKey() pendingKey {
	return pendingKey{kind: j.kind, addr: j.addr, slot: j.slot}
}

// Run inspects witness for not-yet-fetched keys and resolves them against
// the backend, writing results into the ledger. stateFetchDone reports
// whether this call discovered anything new to fetch (spec §4.E's
// termination test).
//
// In Optimistic mode every discovered key is scheduled concurrently and
// Run blocks until all of them complete.
//
// In Conservative mode only the first discovered key is awaited by this
// call; the remaining keys are fired in background goroutines that write
// their results into the ledger as they complete, tracked in s.pending
// so a later Run (once the EVM re-discovers the same key still missing)
// does not issue a duplicate query for it.
func (s *Scheduler) Run(ctx context.Context, mode Mode, witness *asynctypes.WitnessTable) (bool, error) {
	s.mu.Lock()
	bgErr := s.bgErr
	s.mu.Unlock()
	if bgErr != nil {
		return true, bgErr
	}

	jobs := s.plan(witness)
	if len(jobs) == 0 {
		return false, nil
	}
	for _, j := range jobs {
		s.pending[j.pendingKey()] = struct{}{}
	}
	log.Debug("prefetch: scheduling fetch", "mode", mode, "keys", len(jobs))

	if mode == Optimistic {
		g, gctx := errgroup.WithContext(ctx)
		for _, j := range jobs {
			j := j
			g.Go(func() error { return s.resolve(gctx, j) })
		}
		return true, g.Wait()
	}

	blocking, background := jobs[0], jobs[1:]
	for _, j := range background {
		j := j
		go func() {
			// Background fetches in conservative mode run detached from
			// the calling context: the call that scheduled them may have
			// already moved on to a further Prefetch Loop iteration by
			// the time they complete. A failure here cannot be returned
			// from this Run invocation since it has likely already
			// returned; it is recorded and surfaced on the next Run call
			// instead, so a transport failure never goes unnoticed.
			if err := s.resolve(context.Background(), j); err != nil {
				s.mu.Lock()
				if s.bgErr == nil {
					s.bgErr = err
				}
				s.mu.Unlock()
			}
		}()
	}
	return true, s.resolve(ctx, blocking)
}

// resolve issues the single backend call j describes. A cancelled parent
// context (or a deadline) propagates to the caller untouched, distinct
// from the "Unable to get ..." taxonomy (spec §5/§7.4): a caller checking
// for ctx.Err() via errors.Is must see the real context error, not an
// UnavailableError wrapping it.
func (s *Scheduler) resolve(ctx context.Context, j job) error {
	switch j.kind {
	case kindAccount:
		acct, err := s.backend.GetAccount(ctx, s.header, j.addr)
		if err != nil {
			if asynctypes.IsCancelled(err) {
				return err
			}
			return &asynctypes.UnavailableError{Kind: asynctypes.ErrAccountUnavailable, Err: err}
		}
		if acct == nil {
			log.Debug("prefetch: account not found", "address", j.addr)
		}
		s.mu.Lock()
		s.ledger.InstallAccount(j.addr, acct)
		s.fetched.MarkAccount(j.addr)
		delete(s.pending, j.pendingKey())
		s.mu.Unlock()
		return nil

	case kindCode:
		code, err := s.backend.GetCode(ctx, s.header, j.addr)
		if err != nil {
			if asynctypes.IsCancelled(err) {
				return err
			}
			return &asynctypes.UnavailableError{Kind: asynctypes.ErrCodeUnavailable, Err: err}
		}
		if len(code) == 0 {
			log.Debug("prefetch: code not found", "address", j.addr)
		}
		s.mu.Lock()
		s.ledger.InstallCode(j.addr, code)
		s.fetched.MarkCode(j.addr)
		delete(s.pending, j.pendingKey())
		s.mu.Unlock()
		return nil

	default: // kindStorage
		key := new(uint256.Int).SetBytes32(j.slot.Bytes())
		val, err := s.backend.GetStorage(ctx, s.header, j.addr, key)
		if err != nil {
			if asynctypes.IsCancelled(err) {
				return err
			}
			return &asynctypes.UnavailableError{Kind: asynctypes.ErrSlotUnavailable, Err: err}
		}
		var word common.Hash
		if val != nil {
			word = common.Hash(val.Bytes32())
		} else {
			log.Debug("prefetch: storage slot not found", "address", j.addr, "slot", j.slot)
		}
		s.mu.Lock()
		s.ledger.InstallStorage(j.addr, j.slot, word)
		s.fetched.MarkStorage(j.addr, j.slot)
		delete(s.pending, j.pendingKey())
		s.mu.Unlock()
		return nil
	}
}
