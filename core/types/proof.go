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

// Package types contains the wire-visible data types of the proof-of-work
// protocol: proofs, proof bundles and their encodings.
package types

import (
	"encoding/binary"
	"errors"
	"sort"

	"github.com/rspow/go-rspow/common"
)

// Proof is a single answer within a bundle: the monotonic id selecting the
// derived challenge, the challenge itself, and an Equi-X solution for it.
type Proof struct {
	ID        uint64          `json:"id"`
	Challenge common.Hash     `json:"challenge"`
	Solution  common.Solution `json:"solution"`
}

// proofBinaryLen is the length of the fixed little-endian proof encoding.
const proofBinaryLen = 8 + common.HashLength + common.SolutionLength

// MarshalBinary encodes the proof as id_le64 || challenge || solution.
func (p *Proof) MarshalBinary() ([]byte, error) {
	buf := make([]byte, proofBinaryLen)
	binary.LittleEndian.PutUint64(buf, p.ID)
	copy(buf[8:], p.Challenge[:])
	copy(buf[8+common.HashLength:], p.Solution[:])
	return buf, nil
}

// UnmarshalBinary decodes a proof from its fixed little-endian encoding.
func (p *Proof) UnmarshalBinary(data []byte) error {
	if len(data) != proofBinaryLen {
		return errors.New("invalid proof encoding length")
	}
	p.ID = binary.LittleEndian.Uint64(data)
	copy(p.Challenge[:], data[8:])
	copy(p.Solution[:], data[8+common.HashLength:])
	return nil
}

// ProofConfig carries the difficulty a bundle was solved against: the number
// of leading zero bits required of each solution digest.
type ProofConfig struct {
	Bits uint32 `json:"bits"`
}

// ProofBundle is an ordered set of proofs bound to one master challenge and
// one difficulty. Proofs are kept sorted by id with no duplicates; consumers
// outside the solver treat a bundle as immutable.
type ProofBundle struct {
	Proofs          []Proof     `json:"proofs"`
	Config          ProofConfig `json:"config"`
	MasterChallenge common.Hash `json:"master_challenge"`
}

// NewProofBundle creates an empty bundle for the given master challenge and
// difficulty.
func NewProofBundle(master common.Hash, bits uint32) *ProofBundle {
	return &ProofBundle{
		Config:          ProofConfig{Bits: bits},
		MasterChallenge: master,
	}
}

// Len returns the number of proofs in the bundle.
func (b *ProofBundle) Len() int { return len(b.Proofs) }

// MaxID returns the highest proof id in the bundle. The second return is
// false for an empty bundle.
func (b *ProofBundle) MaxID() (uint64, bool) {
	if len(b.Proofs) == 0 {
		return 0, false
	}
	max := b.Proofs[0].ID
	for _, p := range b.Proofs[1:] {
		if p.ID > max {
			max = p.ID
		}
	}
	return max, true
}

// InsertProof adds a proof to the bundle, keeping the id order. Workers may
// deliver out of order; ordering is an invariant on egress, not on ingress.
// Inserting an id already present fails with ErrDuplicateProof.
func (b *ProofBundle) InsertProof(p Proof) error {
	for i := range b.Proofs {
		if b.Proofs[i].ID == p.ID {
			return ErrDuplicateProof
		}
	}
	b.Proofs = append(b.Proofs, p)
	sort.Slice(b.Proofs, func(i, j int) bool { return b.Proofs[i].ID < b.Proofs[j].ID })
	return nil
}

// Copy returns a deep copy of the bundle.
func (b *ProofBundle) Copy() *ProofBundle {
	cpy := *b
	cpy.Proofs = make([]Proof, len(b.Proofs))
	copy(cpy.Proofs, b.Proofs)
	return &cpy
}

// MarshalBinary encodes the bundle as
// master || bits_le32 || count_le32 || proofs.
func (b *ProofBundle) MarshalBinary() ([]byte, error) {
	buf := make([]byte, common.HashLength+8+len(b.Proofs)*proofBinaryLen)
	n := copy(buf, b.MasterChallenge[:])
	binary.LittleEndian.PutUint32(buf[n:], b.Config.Bits)
	binary.LittleEndian.PutUint32(buf[n+4:], uint32(len(b.Proofs)))
	n += 8
	for i := range b.Proofs {
		enc, _ := b.Proofs[i].MarshalBinary()
		n += copy(buf[n:], enc)
	}
	return buf, nil
}

// UnmarshalBinary decodes a bundle from its fixed little-endian encoding.
func (b *ProofBundle) UnmarshalBinary(data []byte) error {
	if len(data) < common.HashLength+8 {
		return errors.New("bundle encoding too short")
	}
	copy(b.MasterChallenge[:], data)
	b.Config.Bits = binary.LittleEndian.Uint32(data[common.HashLength:])
	count := binary.LittleEndian.Uint32(data[common.HashLength+4:])
	rest := data[common.HashLength+8:]
	if len(rest) != int(count)*proofBinaryLen {
		return errors.New("bundle proof section length mismatch")
	}
	b.Proofs = make([]Proof, count)
	for i := range b.Proofs {
		if err := b.Proofs[i].UnmarshalBinary(rest[:proofBinaryLen]); err != nil {
			return err
		}
		rest = rest[proofBinaryLen:]
	}
	return nil
}
