// Copyright 2023 The go-rspow Authors
// This file is part of the go-rspow library.
//
// The go-rspow library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-rspow library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-rspow library. If not, see <http://www.gnu.org/licenses/>.

package equix

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	log "github.com/inconshreveable/log15"
	"github.com/rcrowley/go-metrics"
	"github.com/rspow/go-rspow/common"
	"github.com/rspow/go-rspow/common/bitutil"
	"github.com/rspow/go-rspow/core/types"
	"github.com/rspow/go-rspow/crypto"
)

var (
	// ErrInvalidConfig is returned for out-of-range parameters at
	// construction or reconfiguration.
	ErrInvalidConfig = errors.New("invalid engine config")

	// ErrSolverFailed is returned when the underlying primitive failed or
	// an insertion violated a bundle invariant. No partial bundle is
	// surfaced.
	ErrSolverFailed = errors.New("solver failed")

	// ErrChannelClosed is returned when the workers exited before the
	// target number of proofs was collected.
	ErrChannelClosed = errors.New("solver channel closed")
)

// Config are the configuration parameters of the engine.
type Config struct {
	// Bits is the number of leading zero bits required of each solution
	// digest. Must be >= 1.
	Bits uint32

	// Threads is the number of concurrent search workers. Must be >= 1.
	Threads int

	// RequiredProofs is the bundle size a solve call targets. Must be >= 1.
	RequiredProofs int

	// Progress, if set, is bumped once per proof accepted by the
	// coordinator. It is monotonic within a solve call and observable by
	// external watchers. A fresh counter is allocated when nil.
	Progress *uint64

	// Backend is the Equi-X primitive. Defaults to the native one.
	Backend Backend

	// Log is the logger the engine reports through. Defaults to the root
	// logger.
	Log log.Logger
}

// Engine searches for bundles of Equi-X proofs against a master challenge.
// An Engine is safe for sequential reuse; a solve call runs its own worker
// set and leaves no state behind beyond the progress counter and the
// hashrate meter.
type Engine struct {
	lock     sync.Mutex // protects required against concurrent reconfig
	bits     uint32
	threads  int
	required int
	progress *uint64
	backend  Backend
	log      log.Logger

	hashrate metrics.Meter // attempt rate across all workers
}

// New validates the configuration and creates an engine.
func New(config Config) (*Engine, error) {
	if config.Bits == 0 {
		return nil, fmt.Errorf("%w: bits must be >= 1", ErrInvalidConfig)
	}
	if config.Threads < 1 {
		return nil, fmt.Errorf("%w: threads must be >= 1", ErrInvalidConfig)
	}
	if config.RequiredProofs < 1 {
		return nil, fmt.Errorf("%w: required proofs must be >= 1", ErrInvalidConfig)
	}
	progress := config.Progress
	if progress == nil {
		progress = new(uint64)
	}
	backend := config.Backend
	if backend == nil {
		backend = NativeBackend()
	}
	logger := config.Log
	if logger == nil {
		logger = log.Root()
	}
	return &Engine{
		bits:     config.Bits,
		threads:  config.Threads,
		required: config.RequiredProofs,
		progress: progress,
		backend:  backend,
		log:      logger,
		hashrate: metrics.NewMeter(),
	}, nil
}

// Bits returns the difficulty the engine solves against.
func (e *Engine) Bits() uint32 { return e.bits }

// RequiredProofs returns the current bundle size target.
func (e *Engine) RequiredProofs() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.required
}

// SetRequiredProofs updates the bundle size target for future solve and
// resume calls.
func (e *Engine) SetRequiredProofs(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: required proofs must be >= 1", ErrInvalidConfig)
	}
	e.lock.Lock()
	e.required = n
	e.lock.Unlock()
	return nil
}

// Hashrate returns the measured rate of Equi-X attempts per second across
// all workers of recent solve calls.
func (e *Engine) Hashrate() float64 {
	return e.hashrate.Rate1()
}

// VerifyBundle strictly verifies a bundle with the engine's backend.
func (e *Engine) VerifyBundle(b *types.ProofBundle, bits uint32, count int) error {
	return VerifyBundle(e.backend, b, bits, count)
}

// SolveBundle finds the configured number of distinct proofs against master,
// one per derived challenge id, each meeting the difficulty. The returned
// bundle is sorted by id and verifies strictly.
func (e *Engine) SolveBundle(master common.Hash) (*types.ProofBundle, error) {
	target := e.RequiredProofs()
	atomic.StoreUint64(e.progress, 0)

	bundle := types.NewProofBundle(master, e.bits)
	proofs, err := e.solveRange(master, 0, 0, target)
	if err != nil {
		return nil, err
	}
	for _, p := range proofs {
		if err := bundle.InsertProof(p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSolverFailed, err)
		}
	}
	return bundle, nil
}

// Resume continues a previously solved bundle up to the engine's current
// proof target. The existing bundle is strictly verified first and is not
// mutated; new proofs use ids above every id it already contains.
func (e *Engine) Resume(existing *types.ProofBundle) (*types.ProofBundle, error) {
	if existing.Config.Bits != e.bits {
		return nil, fmt.Errorf("%w: bundle difficulty does not match engine", ErrInvalidConfig)
	}
	if err := VerifyBundle(e.backend, existing, e.bits, existing.Len()); err != nil {
		return nil, fmt.Errorf("%w: existing bundle does not verify: %v", ErrSolverFailed, err)
	}
	target := e.RequiredProofs()
	if target < existing.Len() {
		return nil, fmt.Errorf("%w: required proofs must be >= existing proofs", ErrInvalidConfig)
	}
	atomic.StoreUint64(e.progress, uint64(existing.Len()))

	bundle := existing.Copy()
	if bundle.Len() >= target {
		return bundle, nil
	}
	// After a strict verify the existing ids are distinct, so starting past
	// the highest one preserves distinctness without redoing work.
	startID := uint64(bundle.Len())
	if max, ok := bundle.MaxID(); ok {
		startID = max + 1
	}
	proofs, err := e.solveRange(bundle.MasterChallenge, startID, bundle.Len(), target)
	if err != nil {
		return nil, err
	}
	for _, p := range proofs {
		if err := bundle.InsertProof(p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSolverFailed, err)
		}
	}
	return bundle, nil
}

// proofResult carries either a found proof or a fatal worker error.
type proofResult struct {
	proof types.Proof
	err   error
}

// solveRange runs the worker set until target-have additional proofs are
// collected, dispensing ids from startID upward.
func (e *Engine) solveRange(master common.Hash, startID uint64, have, target int) ([]types.Proof, error) {
	needed := target - have
	if needed <= 0 {
		return nil, nil
	}
	var (
		pend  sync.WaitGroup
		next  = startID // shared monotonic id source, advanced with fetch-add
		abort = make(chan struct{})
		found = make(chan proofResult, boundFor(e.threads))
	)
	for i := 0; i < e.threads; i++ {
		pend.Add(1)
		go func(id int) {
			defer pend.Done()
			e.mine(id, master, &next, abort, found)
		}(i)
	}
	// Close found once every worker has exited, so the collection loop
	// cannot block on a dead worker set.
	go func() {
		pend.Wait()
		close(found)
	}()

	var (
		proofs  = make([]types.Proof, 0, needed)
		seen    = make(map[uint64]struct{}, needed)
		failure error
	)
	for len(proofs) < needed {
		res, ok := <-found
		if !ok {
			break
		}
		if res.err != nil {
			failure = res.err
			break
		}
		// Each id is dispensed once; the dedup is a guard against replayed
		// deliveries, not an expected path.
		if _, dup := seen[res.proof.ID]; dup {
			continue
		}
		seen[res.proof.ID] = struct{}{}
		proofs = append(proofs, res.proof)
		atomic.AddUint64(e.progress, 1)
	}
	close(abort)
	pend.Wait()

	if failure != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverFailed, failure)
	}
	if len(proofs) < needed {
		return nil, ErrChannelClosed
	}
	sort.Slice(proofs, func(i, j int) bool { return proofs[i].ID < proofs[j].ID })
	return proofs, nil
}

// boundFor sizes the results channel for the worker count.
func boundFor(threads int) int {
	if threads < 1 {
		return 1
	}
	return threads * 2
}

// mine is the actual proof search loop run by a single worker. It draws ids
// from the shared source, derives each challenge, and publishes hits on the
// bounded found channel. A hit found after the abort latch is set is
// discarded; until then hits are delivered in the order they are found,
// which keeps single-threaded solving deterministic.
func (e *Engine) mine(id int, master common.Hash, next *uint64, abort chan struct{}, found chan<- proofResult) {
	var (
		logger   = e.log.New("miner", id)
		attempts = int64(0)
	)
	logger.Debug("Started equix proof search", "master", master)
search:
	for {
		select {
		case <-abort:
			logger.Debug("Equix proof search aborted", "attempts", attempts)
			break search

		default:
			proofID := atomic.AddUint64(next, 1) - 1
			challenge := crypto.DeriveChallenge(master, proofID)

			attempts++
			if attempts%(1<<6) == 0 {
				e.hashrate.Mark(attempts)
				attempts = 0
			}
			sols, err := e.backend.Solve(challenge)
			if err != nil {
				select {
				case found <- proofResult{err: err}:
				case <-abort:
				}
				break search
			}
			sol, ok := firstMeeting(sols, e.bits)
			if !ok {
				// The id is consumed without producing a proof. Expected:
				// the search space is the pair (id, equix outcome).
				continue
			}
			select {
			case found <- proofResult{proof: types.Proof{ID: proofID, Challenge: challenge, Solution: sol}}:
				logger.Debug("Equix proof found and reported", "id", proofID)
			case <-abort:
				logger.Debug("Equix proof found but discarded", "id", proofID)
				break search
			}
		}
	}
	e.hashrate.Mark(attempts)
}

// firstMeeting returns the first solution whose digest meets the difficulty.
func firstMeeting(sols []common.Solution, bits uint32) (common.Solution, bool) {
	for _, sol := range sols {
		digest := crypto.SolutionDigest(sol)
		if bitutil.MeetsDifficulty(digest[:], bits) {
			return sol, true
		}
	}
	return common.Solution{}, false
}
