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
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rspow/go-rspow/common"
)

// DefaultCacheEntries is the replay cache capacity used when none is given.
const DefaultCacheEntries = 65536

// ReplayCache maps client nonces to their expiry. Implementations must be
// safe for concurrent use by the verifier.
type ReplayCache interface {
	// InsertIfAbsent records the nonce with the given expiry (unix seconds)
	// if it is absent or already expired, reporting whether it inserted.
	// An unexpired entry means the nonce was seen within the window.
	InsertIfAbsent(clientNonce common.Hash, expiresAt, now uint64) (bool, error)
}

// lruReplayCache is a capacity-bounded in-memory replay cache. Eviction is
// LRU; an evicted nonce can in principle be replayed, which the capacity is
// sized to make uninteresting within a time window.
type lruReplayCache struct {
	mu      sync.Mutex // the check-then-insert must be one step
	entries *lru.Cache
}

// NewLRUReplayCache creates a replay cache holding at most the given number
// of nonces.
func NewLRUReplayCache(capacity int) (ReplayCache, error) {
	entries, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCache, err)
	}
	return &lruReplayCache{entries: entries}, nil
}

func (c *lruReplayCache) InsertIfAbsent(clientNonce common.Hash, expiresAt, now uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries.Get(clientNonce); ok {
		if exp := v.(uint64); exp > now {
			return false, nil
		}
		// Expired entries are never treated as present.
		c.entries.Remove(clientNonce)
	}
	c.entries.Add(clientNonce, expiresAt)
	return true, nil
}
