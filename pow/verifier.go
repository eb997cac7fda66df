// Copyright 2024 The go-rspow Authors
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

package pow

import (
	"errors"
	"fmt"
	"sync/atomic"

	log "github.com/inconshreveable/log15"
	"github.com/rcrowley/go-metrics"
	"github.com/rspow/go-rspow/common"
	"github.com/rspow/go-rspow/consensus/equix"
	"github.com/rspow/go-rspow/crypto"
)

var (
	// ErrFutureTimestamp rejects a submission stamped after the verifier's
	// current time.
	ErrFutureTimestamp = errors.New("timestamp is in the future")

	// ErrStaleTimestamp rejects a submission whose timestamp has aged past
	// the policy window. The window edge itself is stale.
	ErrStaleTimestamp = errors.New("timestamp too old")

	// ErrMasterChallengeMismatch rejects a bundle not bound to the master
	// challenge recomputed from the secret, timestamp and client nonce.
	ErrMasterChallengeMismatch = errors.New("master challenge mismatch")

	// ErrReplay rejects a client nonce already seen within the window.
	ErrReplay = errors.New("replay detected")

	// ErrCache wraps replay cache failures.
	ErrCache = errors.New("replay cache error")
)

// VerifierOptions are the injectable collaborators of a Verifier. Nil fields
// fall back to production defaults.
type VerifierOptions struct {
	Nonces  NonceProvider // deterministic nonce derivation
	Cache   ReplayCache   // client-nonce replay tracking
	Clock   Clock         // current time source
	Backend equix.Backend // Equi-X verification primitive
	Log     log.Logger
}

// Verifier is the server side of the near-stateless protocol. Between
// issuing parameters and verifying a submission it keeps no per-client
// state: only the secret, the current policy and the replay cache.
type Verifier struct {
	secret  common.Hash
	policy  atomic.Value // *VerifierConfig, copy-on-write for hot reload
	nonces  NonceProvider
	cache   ReplayCache
	clock   Clock
	backend equix.Backend
	log     log.Logger

	accepted metrics.Counter
	rejected metrics.Counter
}

// NewVerifier validates the policy and creates a verifier around the
// long-lived secret.
func NewVerifier(policy VerifierConfig, secret common.Hash, opts *VerifierOptions) (*Verifier, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &VerifierOptions{}
	}
	v := &Verifier{
		secret:   secret,
		nonces:   opts.Nonces,
		cache:    opts.Cache,
		clock:    opts.Clock,
		backend:  opts.Backend,
		log:      opts.Log,
		accepted: metrics.NewCounter(),
		rejected: metrics.NewCounter(),
	}
	if v.nonces == nil {
		v.nonces = Blake3NonceProvider()
	}
	if v.cache == nil {
		cache, err := NewLRUReplayCache(DefaultCacheEntries)
		if err != nil {
			return nil, err
		}
		v.cache = cache
	}
	if v.clock == nil {
		v.clock = SystemClock()
	}
	if v.backend == nil {
		v.backend = equix.NativeBackend()
	}
	if v.log == nil {
		v.log = log.Root()
	}
	v.policy.Store(&policy)
	return v, nil
}

// Policy returns the current policy snapshot.
func (v *Verifier) Policy() VerifierConfig {
	return *v.policy.Load().(*VerifierConfig)
}

// SetPolicy swaps in a new policy after validation. In-flight verifications
// keep the snapshot they started with.
func (v *Verifier) SetPolicy(policy VerifierConfig) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	v.policy.Store(&policy)
	v.log.Info("Verifier policy updated", "window", policy.TimeWindow, "bits", policy.MinDifficulty, "proofs", policy.MinRequiredProofs)
	return nil
}

// Accepted returns the number of submissions verified Ok.
func (v *Verifier) Accepted() int64 { return v.accepted.Count() }

// Rejected returns the number of submissions rejected.
func (v *Verifier) Rejected() int64 { return v.rejected.Count() }

// IssueParams stamps the current time and hands out the deterministic nonce
// for it together with the current policy. Nothing is recorded: the nonce is
// recomputable from the secret and the timestamp at verification time.
func (v *Verifier) IssueParams() SolveParams {
	ts := v.clock.Now()
	return SolveParams{
		Timestamp:          ts,
		DeterministicNonce: v.nonces.Derive(v.secret, ts),
		Policy:             v.Policy(),
	}
}

// VerifySubmission checks a submission under the current policy. The first
// failing check is returned and the rest are not run. Cheap checks come
// first, and the replay insertion is last so rejected submissions never
// consume cache capacity.
func (v *Verifier) VerifySubmission(sub *Submission) error {
	if err := v.verifySubmission(sub); err != nil {
		v.rejected.Inc(1)
		return err
	}
	v.accepted.Inc(1)
	return nil
}

func (v *Verifier) verifySubmission(sub *Submission) error {
	policy := v.Policy()

	now := v.clock.Now()
	ts := sub.Timestamp
	if ts > now {
		return ErrFutureTimestamp
	}
	if now-ts >= policy.windowSeconds() {
		return ErrStaleTimestamp
	}

	detNonce := v.nonces.Derive(v.secret, ts)
	expected := crypto.DeriveMasterChallenge(detNonce, sub.ClientNonce)
	if sub.ProofBundle == nil || sub.ProofBundle.MasterChallenge != expected {
		return ErrMasterChallengeMismatch
	}

	if err := equix.VerifyBundle(v.backend, sub.ProofBundle, policy.MinDifficulty, policy.MinRequiredProofs); err != nil {
		return fmt.Errorf("bundle verification failed: %w", err)
	}

	expiresAt := ts + policy.windowSeconds()
	inserted, err := v.cache.InsertIfAbsent(sub.ClientNonce, expiresAt, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCache, err)
	}
	if !inserted {
		return ErrReplay
	}
	return nil
}
