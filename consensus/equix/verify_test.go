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
	"testing"

	"github.com/rspow/go-rspow/common"
	"github.com/rspow/go-rspow/core/types"
)

func solvedBundle(t *testing.T, master common.Hash, bits uint32, proofs int) *types.ProofBundle {
	t.Helper()
	bundle, err := testEngine(t, bits, 1, proofs).SolveBundle(master)
	if err != nil {
		t.Fatalf("failed to solve bundle: %v", err)
	}
	return bundle
}

func TestVerifyBundleAcceptsSolved(t *testing.T) {
	bundle := solvedBundle(t, common.Hash{1: 1}, 1, 2)
	if err := VerifyBundle(stubBackend{solve: echoSolve}, bundle, 1, 2); err != nil {
		t.Errorf("solved bundle rejected: %v", err)
	}
}

func TestVerifyBundleWrongCount(t *testing.T) {
	bundle := solvedBundle(t, common.Hash{2: 2}, 1, 2)
	if err := VerifyBundle(stubBackend{solve: echoSolve}, bundle, 1, 3); !errors.Is(err, types.ErrInvalidDifficulty) {
		t.Errorf("have %v, want ErrInvalidDifficulty", err)
	}
}

func TestVerifyBundleTamperedChallenge(t *testing.T) {
	bundle := solvedBundle(t, common.Hash{3: 3}, 1, 1)
	bundle.Proofs[0].Challenge[0] ^= 0x01
	if err := VerifyBundle(stubBackend{solve: echoSolve}, bundle, 1, 1); !errors.Is(err, types.ErrMalformed) {
		t.Errorf("have %v, want ErrMalformed", err)
	}
}

func TestVerifyBundleDuplicateID(t *testing.T) {
	bundle := solvedBundle(t, common.Hash{4: 4}, 1, 2)
	// Bypass InsertProof to fake a duplicate delivery.
	bundle.Proofs[1] = bundle.Proofs[0]
	if err := VerifyBundle(stubBackend{solve: echoSolve}, bundle, 1, 2); !errors.Is(err, types.ErrDuplicateProof) {
		t.Errorf("have %v, want ErrDuplicateProof", err)
	}
}

func TestVerifyBundleDecreasingIDs(t *testing.T) {
	bundle := solvedBundle(t, common.Hash{5: 5}, 1, 2)
	bundle.Proofs[0], bundle.Proofs[1] = bundle.Proofs[1], bundle.Proofs[0]
	if err := VerifyBundle(stubBackend{solve: echoSolve}, bundle, 1, 2); !errors.Is(err, types.ErrMalformed) {
		t.Errorf("have %v, want ErrMalformed", err)
	}
}

func TestVerifyBundleInsufficientDifficulty(t *testing.T) {
	bundle := solvedBundle(t, common.Hash{6: 6}, 1, 2)
	// The bundle was solved for 1 leading zero bit; demanding far more
	// must fail on the difficulty check, not on Equi-X validity.
	if err := VerifyBundle(stubBackend{solve: echoSolve}, bundle, 200, 2); !errors.Is(err, types.ErrInvalidDifficulty) {
		t.Errorf("have %v, want ErrInvalidDifficulty", err)
	}
}

func TestVerifyBundleEquixReject(t *testing.T) {
	bundle := solvedBundle(t, common.Hash{7: 7}, 1, 1)
	// A backend that accepts nothing: the proof passes the cheap checks
	// only if its challenge still binds, then fails the primitive.
	reject := stubBackend{solve: func(common.Hash) ([]common.Solution, error) {
		return nil, nil
	}}
	if err := VerifyBundle(reject, bundle, 1, 1); !errors.Is(err, types.ErrMalformed) {
		t.Errorf("have %v, want ErrMalformed", err)
	}
}

func TestVerifyProofChecksDifficultyFirst(t *testing.T) {
	// A solution whose digest misses the difficulty must be rejected as
	// InvalidDifficulty even when the primitive would also reject it.
	p := types.Proof{ID: 0, Challenge: common.Hash{}, Solution: common.Solution{0: 0xff}}
	reject := stubBackend{solve: func(common.Hash) ([]common.Solution, error) {
		return nil, nil
	}}
	if err := VerifyProof(reject, &p, 300); !errors.Is(err, types.ErrInvalidDifficulty) {
		t.Errorf("have %v, want ErrInvalidDifficulty", err)
	}
}
