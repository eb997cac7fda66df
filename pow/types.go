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

// Package pow implements the near-stateless proof-of-work protocol: the
// server issues recomputable solving parameters, the client solves an Equi-X
// bundle bound to them, and the server verifies holding only a long-lived
// secret, a time window and a bounded replay cache.
package pow

import (
	"fmt"
	"time"

	"github.com/rspow/go-rspow/common"
	"github.com/rspow/go-rspow/consensus/equix"
	"github.com/rspow/go-rspow/core/types"
)

// VerifierConfig is the server policy a submission is verified under.
type VerifierConfig struct {
	// TimeWindow is how long an issued timestamp stays acceptable. Whole
	// seconds, at least one.
	TimeWindow time.Duration `json:"time_window"`

	// MinDifficulty is the leading-zero-bit requirement on each solution
	// digest. Must be >= 1; a zero requirement would accept any hash.
	MinDifficulty uint32 `json:"min_difficulty"`

	// MinRequiredProofs is the exact bundle size demanded. Must be >= 1.
	MinRequiredProofs int `json:"min_required_proofs"`
}

// Validate checks the policy ranges.
func (c *VerifierConfig) Validate() error {
	if c.TimeWindow < time.Second {
		return fmt.Errorf("%w: time window must be at least 1s", equix.ErrInvalidConfig)
	}
	if c.TimeWindow%time.Second != 0 {
		return fmt.Errorf("%w: time window must be whole seconds", equix.ErrInvalidConfig)
	}
	if c.MinDifficulty == 0 {
		return fmt.Errorf("%w: min difficulty must be >= 1", equix.ErrInvalidConfig)
	}
	if c.MinRequiredProofs < 1 {
		return fmt.Errorf("%w: min required proofs must be >= 1", equix.ErrInvalidConfig)
	}
	return nil
}

// windowSeconds returns the time window in whole seconds.
func (c *VerifierConfig) windowSeconds() uint64 {
	return uint64(c.TimeWindow / time.Second)
}

// SolveParams is what the server hands a client asking for work: the issue
// timestamp, the deterministic nonce recomputable from (secret, timestamp),
// and the policy to solve against.
type SolveParams struct {
	Timestamp          uint64         `json:"timestamp"`
	DeterministicNonce common.Hash    `json:"deterministic_nonce"`
	Policy             VerifierConfig `json:"policy"`
}

// Submission is what a client hands back: the issue timestamp, the random
// per-submission client nonce, and the solved bundle.
type Submission struct {
	Timestamp   uint64             `json:"timestamp"`
	ClientNonce common.Hash        `json:"client_nonce"`
	ProofBundle *types.ProofBundle `json:"proof_bundle"`
}
