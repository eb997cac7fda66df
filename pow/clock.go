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
	"time"

	"github.com/rspow/go-rspow/common"
	"github.com/rspow/go-rspow/crypto"
)

// Clock supplies the verifier's notion of current UNIX time in seconds.
// Injected so tests can freeze it.
type Clock interface {
	Now() uint64
}

type systemClock struct{}

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// NonceProvider derives the deterministic 32-byte nonce for a timestamp.
// Injected so tests can enumerate nonces.
type NonceProvider interface {
	Derive(secret common.Hash, ts uint64) common.Hash
}

type blake3NonceProvider struct{}

// Blake3NonceProvider returns the default keyed-BLAKE3 provider.
func Blake3NonceProvider() NonceProvider { return blake3NonceProvider{} }

func (blake3NonceProvider) Derive(secret common.Hash, ts uint64) common.Hash {
	return crypto.DeriveDeterministicNonce(secret, ts)
}
