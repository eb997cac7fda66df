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

package crypto

import (
	"testing"

	"github.com/rspow/go-rspow/common"
)

func TestDeriveChallengeDeterministic(t *testing.T) {
	master := common.Hash{11: 0xaa}
	if DeriveChallenge(master, 7) != DeriveChallenge(master, 7) {
		t.Error("same (master, id) should derive the same challenge")
	}
}

func TestDeriveChallengeIDSensitive(t *testing.T) {
	master := common.Hash{0: 1}
	seen := make(map[common.Hash]uint64)
	for id := uint64(0); id < 64; id++ {
		ch := DeriveChallenge(master, id)
		if prev, ok := seen[ch]; ok {
			t.Fatalf("ids %d and %d derive the same challenge", prev, id)
		}
		seen[ch] = id
	}
}

func TestDeriveChallengeMasterSensitive(t *testing.T) {
	a := DeriveChallenge(common.Hash{0: 1}, 0)
	b := DeriveChallenge(common.Hash{0: 2}, 0)
	if a == b {
		t.Error("different masters should derive different challenges")
	}
}

func TestDeriveMasterChallenge(t *testing.T) {
	det := common.Hash{1: 1}
	client := common.Hash{2: 2}
	master := DeriveMasterChallenge(det, client)
	if master != DeriveMasterChallenge(det, client) {
		t.Error("master challenge derivation should be deterministic")
	}
	flipped := client
	flipped[0] ^= 0x01
	if master == DeriveMasterChallenge(det, flipped) {
		t.Error("flipping a client nonce bit should change the master challenge")
	}
	if master == DeriveMasterChallenge(client, det) {
		t.Error("swapping nonce operands should change the master challenge")
	}
}

func TestDeriveDeterministicNonce(t *testing.T) {
	secret := common.Hash{31: 9}
	nonce := DeriveDeterministicNonce(secret, 1000)
	if nonce != DeriveDeterministicNonce(secret, 1000) {
		t.Error("nonce derivation should be deterministic")
	}
	if nonce == DeriveDeterministicNonce(secret, 1001) {
		t.Error("different timestamps should derive different nonces")
	}
	other := secret
	other[0] ^= 0x80
	if nonce == DeriveDeterministicNonce(other, 1000) {
		t.Error("different secrets should derive different nonces")
	}
	if nonce == (common.Hash{}) {
		t.Error("derived nonce should not be zero")
	}
}

func TestSolutionDigestDeterministic(t *testing.T) {
	sol := common.Solution{0: 1, 15: 0xff}
	if SolutionDigest(sol) != SolutionDigest(sol) {
		t.Error("solution digest should be deterministic")
	}
	other := sol
	other[3] ^= 0x10
	if SolutionDigest(sol) == SolutionDigest(other) {
		t.Error("different solutions should digest differently")
	}
}
