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
	crand "crypto/rand"
	"runtime"

	"github.com/rspow/go-rspow/common"
	"github.com/rspow/go-rspow/consensus/equix"
	"github.com/rspow/go-rspow/crypto"
)

// NewClientNonce draws a fresh random 32-byte client nonce. One per
// submission; it keys the server's replay cache.
func NewClientNonce() (common.Hash, error) {
	var nonce common.Hash
	if _, err := crand.Read(nonce[:]); err != nil {
		return common.Hash{}, err
	}
	return nonce, nil
}

// EngineFromParams builds a solver engine matching the issued policy.
// A non-positive thread count picks one per spare CPU.
func EngineFromParams(params *SolveParams, threads int, progress *uint64) (*equix.Engine, error) {
	if threads <= 0 {
		threads = runtime.NumCPU() - 1
		if threads < 1 {
			threads = 1
		}
	}
	return equix.New(equix.Config{
		Bits:           params.Policy.MinDifficulty,
		Threads:        threads,
		RequiredProofs: params.Policy.MinRequiredProofs,
		Progress:       progress,
	})
}

// SolveSubmission derives the master challenge from the issued parameters
// and the client nonce, solves a bundle against it, and packages the result
// for submission.
func SolveSubmission(engine *equix.Engine, params *SolveParams, clientNonce common.Hash) (*Submission, error) {
	master := crypto.DeriveMasterChallenge(params.DeterministicNonce, clientNonce)
	bundle, err := engine.SolveBundle(master)
	if err != nil {
		return nil, err
	}
	return &Submission{
		Timestamp:   params.Timestamp,
		ClientNonce: clientNonce,
		ProofBundle: bundle,
	}, nil
}
