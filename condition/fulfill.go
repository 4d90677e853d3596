// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package condition

import (
	"bytes"

	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/fault"
)

// Fulfill - build a fulfillment for a condition by signing the message
// with every supplied private key that matches one of the condition's
// public keys
//
// keys not named by the condition are ignored; fails if the signing
// keys cannot reach the condition's threshold
func (condition *Condition) Fulfill(message []byte, keys []*account.PrivateKey) (*Fulfillment, error) {
	if err := condition.CheckStructure(); nil != err {
		return nil, err
	}

	signatures := make([]account.Signature, len(condition.PublicKeys))
	signed := uint64(0)

scan:
	for i, owner := range condition.PublicKeys {
		for _, key := range keys {
			if bytes.Equal(owner.Bytes(), key.Account().Bytes()) {
				signatures[i] = key.Sign(message)
				signed += 1
				continue scan
			}
		}
	}

	if signed < condition.Threshold {
		return nil, fault.ErrInvalidThreshold
	}

	return &Fulfillment{Signatures: signatures}, nil
}
