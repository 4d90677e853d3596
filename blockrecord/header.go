// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockrecord - block metadata records
//
// A block is the unit of commit ordering supplied by the consensus
// layer; heights are only ever consumed here, never assigned
package blockrecord

import (
	"encoding/binary"
	"encoding/json"

	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
)

// Block - committed block metadata
type Block struct {
	AppHash digest.Digest   `json:"app_hash"`
	Height  uint64          `json:"height"`
	TxIds   []digest.Digest `json:"transaction_ids"`
}

// PreCommit - transactions of a block delivered but not yet sealed
//
// written at end block so that a crash between storing transactions
// and storing the block record is recoverable when consensus replays
// the same height
type PreCommit struct {
	Height uint64          `json:"height"`
	TxIds  []digest.Digest `json:"transaction_ids"`
}

// Packed - packed records are just a byte slice
type Packed []byte

// HeightKey - big endian height so that pool iteration orders blocks
func HeightKey(height uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, height)
	return key
}

// HeightFromKey - decode a pool key back into a height
func HeightFromKey(key []byte) (uint64, error) {
	if 8 != len(key) {
		return 0, fault.ErrInvalidStructure
	}
	return binary.BigEndian.Uint64(key), nil
}

// Pack - canonical serialization
func (block *Block) Pack() (Packed, error) {
	packed, err := json.Marshal(block)
	if nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return Packed(packed), nil
}

// Unpack - decode a packed block
func (record Packed) Unpack() (*Block, error) {
	block := &Block{}
	if err := json.Unmarshal(record, block); nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return block, nil
}

// Pack - canonical serialization
func (state *PreCommit) Pack() (Packed, error) {
	packed, err := json.Marshal(state)
	if nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return Packed(packed), nil
}

// UnpackPreCommit - decode a packed pre-commit record
func (record Packed) UnpackPreCommit() (*PreCommit, error) {
	state := &PreCommit{}
	if err := json.Unmarshal(record, state); nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return state, nil
}
