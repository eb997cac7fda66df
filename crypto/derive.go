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

// Package crypto implements the protocol digests. All derivations are
// BLAKE3 with byte-exact domain tags; changing a tag breaks interop.
package crypto

import (
	"encoding/binary"

	"github.com/rspow/go-rspow/common"
	"lukechampine.com/blake3"
)

// Domain separation tags. Wire-critical: both sides of the protocol must
// agree on these byte for byte.
const (
	// challengeTag prefixes the per-proof challenge derivation.
	challengeTag = "rspow:equix:challenge:v1|"
	// masterTag prefixes the master challenge derivation.
	masterTag = "rspow:challenge:v1"
	// nonceTag prefixes the deterministic nonce derivation.
	nonceTag = "rspow:nonce:v1"
)

// DeriveChallenge derives the Equi-X challenge a proof with the given id
// must answer: BLAKE3(tag || master || id_le64).
func DeriveChallenge(master common.Hash, id uint64) common.Hash {
	var buf [len(challengeTag) + common.HashLength + 8]byte
	n := copy(buf[:], challengeTag)
	n += copy(buf[n:], master[:])
	binary.LittleEndian.PutUint64(buf[n:], id)
	return blake3.Sum256(buf[:])
}

// DeriveMasterChallenge derives the 32-byte value binding a whole bundle:
// BLAKE3(tag || deterministic_nonce || client_nonce). Both the server and
// the client compute it independently.
func DeriveMasterChallenge(deterministicNonce, clientNonce common.Hash) common.Hash {
	var buf [len(masterTag) + 2*common.HashLength]byte
	n := copy(buf[:], masterTag)
	n += copy(buf[n:], deterministicNonce[:])
	copy(buf[n:], clientNonce[:])
	return blake3.Sum256(buf[:])
}

// DeriveDeterministicNonce derives the server-recomputable nonce for a
// timestamp: keyed BLAKE3 under secret over tag || ts_le64. The server keeps
// no per-challenge state; the nonce is recomputed at verification time.
func DeriveDeterministicNonce(secret common.Hash, ts uint64) common.Hash {
	var msg [len(nonceTag) + 8]byte
	n := copy(msg[:], nonceTag)
	binary.LittleEndian.PutUint64(msg[n:], ts)

	h := blake3.New(common.HashLength, secret[:])
	h.Write(msg[:])
	return common.BytesToHash(h.Sum(nil))
}

// SolutionDigest hashes a solution for the difficulty check.
func SolutionDigest(sol common.Solution) common.Hash {
	return blake3.Sum256(sol[:])
}
