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
	"github.com/rspow/go-rspow/common/bitutil"
	"github.com/rspow/go-rspow/core/types"
	"github.com/rspow/go-rspow/crypto"
)

// VerifyProof checks a single proof against the difficulty and the Equi-X
// primitive. The difficulty check runs first; the Equi-X verification is the
// expensive step.
func VerifyProof(backend Backend, p *types.Proof, bits uint32) error {
	digest := crypto.SolutionDigest(p.Solution)
	if !bitutil.MeetsDifficulty(digest[:], bits) {
		return types.ErrInvalidDifficulty
	}
	if !backend.Verify(p.Challenge, p.Solution) {
		return types.ErrMalformed
	}
	return nil
}

// VerifyBundle strictly verifies a bundle: exact proof count, strictly
// increasing ids, challenge binding to the master, per-proof difficulty and
// Equi-X validity. Checks are ordered so that malformed bundles are rejected
// before any Equi-X work is done on them.
func VerifyBundle(backend Backend, b *types.ProofBundle, bits uint32, count int) error {
	if b.Len() != count {
		return types.ErrInvalidDifficulty
	}
	var (
		prev     uint64
		havePrev bool
	)
	for i := range b.Proofs {
		p := &b.Proofs[i]
		if havePrev {
			if p.ID == prev {
				return types.ErrDuplicateProof
			}
			if p.ID < prev {
				return types.ErrMalformed
			}
		}
		prev, havePrev = p.ID, true

		if crypto.DeriveChallenge(b.MasterChallenge, p.ID) != p.Challenge {
			return types.ErrMalformed
		}
		digest := crypto.SolutionDigest(p.Solution)
		if !bitutil.MeetsDifficulty(digest[:], bits) {
			return types.ErrInvalidDifficulty
		}
	}
	for i := range b.Proofs {
		p := &b.Proofs[i]
		if !backend.Verify(p.Challenge, p.Solution) {
			return types.ErrMalformed
		}
	}
	return nil
}
