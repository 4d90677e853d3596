// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"encoding/binary"
	"fmt"

	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
)

// OutputLocation - a reference from an input back to the output it
// claims to spend; never an owning pointer
type OutputLocation struct {
	TxId        digest.Digest `json:"transaction_id"`
	OutputIndex uint64        `json:"output_index"`
}

// number of bytes in a packed location
const outputLocationKeyLength = digest.Length + 8

// Key - pack the location for use as a storage key
//
// digest bytes followed by the index as big endian so that a
// transaction's outputs stay adjacent and ordered
func (link OutputLocation) Key() []byte {
	key := make([]byte, outputLocationKeyLength)
	copy(key, link.TxId[:])
	binary.BigEndian.PutUint64(key[digest.Length:], link.OutputIndex)
	return key
}

// OutputLocationFromKey - unpack a storage key back into a location
func OutputLocationFromKey(key []byte) (OutputLocation, error) {
	link := OutputLocation{}
	if outputLocationKeyLength != len(key) {
		return link, fault.ErrInvalidStructure
	}
	copy(link.TxId[:], key[:digest.Length])
	link.OutputIndex = binary.BigEndian.Uint64(key[digest.Length:])
	return link, nil
}

// String - location in "txid[index]" form for logs
func (link OutputLocation) String() string {
	return fmt.Sprintf("%s[%d]", link.TxId, link.OutputIndex)
}
