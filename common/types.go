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

// Package common contains the fixed-size byte types shared across the
// solver, the verifier and the wire encodings.
package common

import (
	"encoding/hex"
	"fmt"
)

const (
	// HashLength is the byte length of challenges, nonces and digests.
	HashLength = 32
	// SolutionLength is the byte length of an Equi-X solution.
	SolutionLength = 16
)

// Hash represents a 32-byte value: a master challenge, a derived per-proof
// challenge, a client or deterministic nonce, or a BLAKE3 digest.
type Hash [HashLength]byte

// BytesToHash sets b to hash, left-padding if b is shorter than 32 bytes and
// cropping from the left if it is longer.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash sets byte representation of s to hash.
func HexToHash(s string) Hash { return BytesToHash(fromHex(s)) }

// SetBytes sets the hash to the value of b.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Bytes gets the byte representation of the underlying hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex converts a hash to a 0x prefixed hex string.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements the stringer interface and is used also by the logger.
func (h Hash) String() string { return h.Hex() }

// MarshalText returns the hex representation of h.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	return unmarshalFixedText("Hash", input, h[:])
}

// Solution represents a 16-byte Equi-X solution.
type Solution [SolutionLength]byte

// BytesToSolution sets b to a solution, left-padded or left-cropped to fit.
func BytesToSolution(b []byte) Solution {
	var s Solution
	if len(b) > len(s) {
		b = b[len(b)-SolutionLength:]
	}
	copy(s[SolutionLength-len(b):], b)
	return s
}

// Bytes gets the byte representation of the underlying solution.
func (s Solution) Bytes() []byte { return s[:] }

// Hex converts a solution to a 0x prefixed hex string.
func (s Solution) Hex() string { return "0x" + hex.EncodeToString(s[:]) }

// String implements the stringer interface.
func (s Solution) String() string { return s.Hex() }

// MarshalText returns the hex representation of s.
func (s Solution) MarshalText() ([]byte, error) {
	return []byte(s.Hex()), nil
}

// UnmarshalText parses a solution in hex syntax.
func (s *Solution) UnmarshalText(input []byte) error {
	return unmarshalFixedText("Solution", input, s[:])
}

// unmarshalFixedText decodes input as a 0x prefixed hex string into out,
// insisting on an exact length match.
func unmarshalFixedText(typname string, input, out []byte) error {
	raw := input
	if len(raw) >= 2 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X') {
		raw = raw[2:]
	}
	if len(raw) != hex.EncodedLen(len(out)) {
		return fmt.Errorf("hex string of odd or wrong length for %s", typname)
	}
	// Decode into a scratch buffer so out is untouched on error.
	var tmp = make([]byte, len(out))
	if _, err := hex.Decode(tmp, raw); err != nil {
		return fmt.Errorf("invalid hex string for %s: %v", typname, err)
	}
	copy(out, tmp)
	return nil
}

func fromHex(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}
