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

// Package equix implements the multi-threaded Equi-X proof-of-work engine:
// bundle solving, resumption and strict verification. The Equi-X puzzle
// itself sits behind the Backend interface.
package equix

import (
	"github.com/rspow/go-rspow/common"
	xequix "gitlab.com/yawning/equix.git"
)

// Backend is the Equi-X primitive as the engine consumes it. Implementations
// must be safe for concurrent use.
type Backend interface {
	// Solve enumerates the solutions for challenge. Challenges the
	// primitive rejects at construction time yield an empty set and no
	// error; an error is reserved for genuine internal failure.
	Solve(challenge common.Hash) ([]common.Solution, error)

	// Verify reports whether solution answers challenge.
	Verify(challenge common.Hash, solution common.Solution) bool
}

type nativeBackend struct{}

// NativeBackend returns the Backend backed by the pure-Go Equi-X
// implementation.
func NativeBackend() Backend { return nativeBackend{} }

func (nativeBackend) Solve(challenge common.Hash) ([]common.Solution, error) {
	sols, err := xequix.Solve(challenge[:])
	if err != nil {
		// A small fraction of challenge values fail program construction
		// by design. Those have no solutions; the search moves on.
		return nil, nil
	}
	out := make([]common.Solution, 0, len(sols))
	for i := range sols {
		out = append(out, common.BytesToSolution(sols[i][:]))
	}
	return out, nil
}

func (nativeBackend) Verify(challenge common.Hash, solution common.Solution) bool {
	var sol xequix.Solution
	copy(sol[:], solution[:])
	return xequix.Verify(challenge[:], &sol) == nil
}
