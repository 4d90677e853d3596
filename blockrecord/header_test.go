// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord_test

import (
	"bytes"
	"testing"

	"github.com/metolius/ledgerd/blockrecord"
	"github.com/metolius/ledgerd/digest"
)

func TestPackUnpack(t *testing.T) {
	block := &blockrecord.Block{
		AppHash: digest.NewDigest([]byte("app state")),
		Height:  42,
		TxIds: []digest.Digest{
			digest.NewDigest([]byte("tx one")),
			digest.NewDigest([]byte("tx two")),
		},
	}

	packed, err := block.Pack()
	if nil != err {
		t.Fatalf("pack error: %s", err)
	}

	back, err := packed.Unpack()
	if nil != err {
		t.Fatalf("unpack error: %s", err)
	}

	if back.Height != block.Height || back.AppHash != block.AppHash {
		t.Errorf("block: %+v  expected: %+v", back, block)
	}
	if 2 != len(back.TxIds) || back.TxIds[0] != block.TxIds[0] || back.TxIds[1] != block.TxIds[1] {
		t.Errorf("transaction ids not preserved: %v", back.TxIds)
	}
}

func TestHeightKeyOrdering(t *testing.T) {
	// big endian keys must sort in height order
	low := blockrecord.HeightKey(41)
	high := blockrecord.HeightKey(42)
	higher := blockrecord.HeightKey(1 << 40)

	if bytes.Compare(low, high) >= 0 {
		t.Errorf("key 41 does not sort below key 42")
	}
	if bytes.Compare(high, higher) >= 0 {
		t.Errorf("key 42 does not sort below key 2^40")
	}

	height, err := blockrecord.HeightFromKey(higher)
	if nil != err {
		t.Fatalf("height from key error: %s", err)
	}
	if uint64(1<<40) != height {
		t.Errorf("height: %d  expected: %d", height, uint64(1)<<40)
	}

	_, err = blockrecord.HeightFromKey([]byte{1, 2, 3})
	if nil == err {
		t.Errorf("unexpected success on short key")
	}
}
