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

// Package bitutil implements the bit counting used by the difficulty checks.
package bitutil

import "math/bits"

// LeadingZeroBits counts the zero bits at the most significant end of hash,
// big-endian bit order within each byte.
func LeadingZeroBits(hash []byte) uint32 {
	var count uint32
	for _, b := range hash {
		if b == 0 {
			count += 8
			continue
		}
		count += uint32(bits.LeadingZeros8(b))
		break
	}
	return count
}

// MeetsDifficulty reports whether hash carries at least the required number
// of leading zero bits. A requirement of 0 is met by any hash; a requirement
// exceeding the bit length of hash can never be met.
func MeetsDifficulty(hash []byte, required uint32) bool {
	if required == 0 {
		return true
	}
	if required > uint32(len(hash)*8) {
		return false
	}
	return LeadingZeroBits(hash) >= required
}
