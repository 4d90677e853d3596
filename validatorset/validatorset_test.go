// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validatorset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/validatorset"
)

func makeSet(t *testing.T, height uint64, powers ...uint64) *validatorset.Set {
	validators := make([]validatorset.Validator, len(powers))
	for i, power := range powers {
		key, err := account.NewPrivateKey(true)
		assert.NoError(t, err, "key generation")
		validators[i] = validatorset.Validator{
			PublicKey: key.Account(),
			Power:     power,
		}
	}
	return &validatorset.Set{
		Height:     height,
		Validators: validators,
	}
}

func TestSetRoundTrip(t *testing.T) {
	set := makeSet(t, 12, 10, 5, 1)
	assert.NoError(t, set.CheckStructure(), "structure")
	assert.Equal(t, uint64(16), set.TotalPower(), "total power")

	packed, err := set.Pack()
	assert.NoError(t, err, "pack")

	back, err := validatorset.UnpackSet(packed)
	assert.NoError(t, err, "unpack")
	assert.Equal(t, set.Height, back.Height, "height")
	assert.Equal(t, len(set.Validators), len(back.Validators), "member count")
	for i := range set.Validators {
		assert.True(t, set.Validators[i].PublicKey.IsSameAs(back.Validators[i].PublicKey), "member key")
		assert.Equal(t, set.Validators[i].Power, back.Validators[i].Power, "member power")
	}
}

func TestSetStructure(t *testing.T) {
	empty := &validatorset.Set{Height: 1}
	assert.Error(t, empty.CheckStructure(), "empty set")

	powerless := makeSet(t, 1, 0)
	assert.Error(t, powerless.CheckStructure(), "zero power member")
}

func TestElectionRoundTrip(t *testing.T) {
	election := &validatorset.Election{
		Id:        digest.NewDigest([]byte("upsert validator vote")),
		Height:    30,
		Concluded: true,
	}

	packed, err := election.Pack()
	assert.NoError(t, err, "pack")

	back, err := validatorset.UnpackElection(packed)
	assert.NoError(t, err, "unpack")
	assert.Equal(t, election.Id, back.Id, "id")
	assert.Equal(t, election.Height, back.Height, "height")
	assert.True(t, back.Concluded, "concluded")
}
