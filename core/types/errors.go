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

package types

import "errors"

var (
	// ErrDuplicateProof is returned when a bundle carries, or would carry,
	// two proofs with the same id.
	ErrDuplicateProof = errors.New("duplicate proof")

	// ErrInvalidDifficulty is returned when a proof's solution digest does
	// not meet the required leading zero bits, or a bundle does not carry
	// the required number of proofs.
	ErrInvalidDifficulty = errors.New("proof does not meet difficulty")

	// ErrMalformed is returned when a bundle is structurally broken: ids out
	// of order, a challenge that does not match its derivation, or a
	// solution the Equi-X primitive rejects.
	ErrMalformed = errors.New("malformed proof or bundle")
)
