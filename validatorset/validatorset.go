// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package validatorset - persisted consensus membership state
//
// The voting and election protocol itself lives in the consensus
// layer; this package only models the state it reads and writes
// through the storage gateway.
package validatorset

import (
	"encoding/json"

	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
)

// Validator - one consensus member
type Validator struct {
	PublicKey *account.Account `json:"public_key"`
	Power     uint64           `json:"voting_power"`
}

// Set - the validator set effective from a given height
//
// stored last-writer-wins per height
type Set struct {
	Height     uint64      `json:"height"`
	Validators []Validator `json:"validators"`
}

// Election - minimal election bookkeeping for the consensus layer
type Election struct {
	Id        digest.Digest `json:"election_id"`
	Height    uint64        `json:"height"`
	Concluded bool          `json:"is_concluded"`
}

// Packed - packed records are just a byte slice
type Packed []byte

// CheckStructure - a set must have at least one member with power
func (set *Set) CheckStructure() error {
	if nil == set || 0 == len(set.Validators) {
		return fault.ErrInvalidStructure
	}
	for _, validator := range set.Validators {
		if nil == validator.PublicKey || nil == validator.PublicKey.AccountInterface {
			return fault.ErrInvalidStructure
		}
		if 0 == validator.Power {
			return fault.ErrInvalidStructure
		}
	}
	return nil
}

// TotalPower - sum of all members' voting power
func (set *Set) TotalPower() uint64 {
	total := uint64(0)
	for _, validator := range set.Validators {
		total += validator.Power
	}
	return total
}

// Pack - canonical serialization
func (set *Set) Pack() (Packed, error) {
	packed, err := json.Marshal(set)
	if nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return Packed(packed), nil
}

// UnpackSet - decode a packed validator set
func UnpackSet(record Packed) (*Set, error) {
	set := &Set{}
	if err := json.Unmarshal(record, set); nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return set, nil
}

// Pack - canonical serialization
func (election *Election) Pack() (Packed, error) {
	packed, err := json.Marshal(election)
	if nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return Packed(packed), nil
}

// UnpackElection - decode a packed election record
func UnpackElection(record Packed) (*Election, error) {
	election := &Election{}
	if err := json.Unmarshal(record, election); nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return election, nil
}
