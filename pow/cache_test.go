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
	"sync"
	"testing"

	"github.com/rspow/go-rspow/common"
)

func TestReplayCacheInsertIfAbsent(t *testing.T) {
	cache, err := NewLRUReplayCache(16)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	nonce := common.Hash{0: 1}

	inserted, err := cache.InsertIfAbsent(nonce, 1010, 1000)
	if err != nil || !inserted {
		t.Fatalf("fresh nonce not inserted: %v %v", inserted, err)
	}
	inserted, err = cache.InsertIfAbsent(nonce, 1011, 1005)
	if err != nil || inserted {
		t.Fatalf("unexpired nonce should not reinsert: %v %v", inserted, err)
	}
	inserted, err = cache.InsertIfAbsent(nonce, 1030, 1010)
	if err != nil || !inserted {
		t.Fatalf("expired nonce should reinsert: %v %v", inserted, err)
	}
}

func TestReplayCacheEvictsOldEntries(t *testing.T) {
	cache, err := NewLRUReplayCache(2)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	a, b, c := common.Hash{0: 1}, common.Hash{0: 2}, common.Hash{0: 3}
	cache.InsertIfAbsent(a, 2000, 1000)
	cache.InsertIfAbsent(b, 2000, 1000)
	cache.InsertIfAbsent(c, 2000, 1000)
	// a was least recently used; once evicted it reads as absent.
	inserted, err := cache.InsertIfAbsent(a, 2000, 1000)
	if err != nil || !inserted {
		t.Errorf("evicted nonce should insert again: %v %v", inserted, err)
	}
}

func TestReplayCacheConcurrentSameNonce(t *testing.T) {
	cache, err := NewLRUReplayCache(16)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	nonce := common.Hash{0: 7}

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			ok, err := cache.InsertIfAbsent(nonce, 1010, 1000)
			if err != nil {
				t.Errorf("insert failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if inserted != 1 {
		t.Errorf("%d concurrent inserts of one nonce succeeded, want exactly 1", inserted)
	}
}
