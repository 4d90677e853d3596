// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package condition - spending conditions and their fulfillments
//
// A condition is a threshold-of-public-keys predicate attached to an
// output; the matching fulfillment carries one signature slot per
// public key, in the condition's key order.  A fulfillment satisfies a
// condition when at least threshold slots hold valid signatures over
// the message and no present signature is invalid.
package condition

import (
	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/fault"
)

// Condition - a threshold of public keys predicate
//
// Threshold == 1 with a single key is the plain public-key condition
type Condition struct {
	Threshold  uint64             `json:"threshold"`
	PublicKeys []*account.Account `json:"public_keys"`
}

// NewCondition - build a condition over a list of owners
//
// threshold 0 selects all owners, i.e. an n of n condition
func NewCondition(owners []*account.Account, threshold uint64) (*Condition, error) {
	if 0 == len(owners) {
		return nil, fault.ErrMissingOwners
	}
	if 0 == threshold {
		threshold = uint64(len(owners))
	}
	if threshold > uint64(len(owners)) {
		return nil, fault.ErrInvalidThreshold
	}
	return &Condition{
		Threshold:  threshold,
		PublicKeys: owners,
	}, nil
}

// CheckStructure - validate threshold and key list consistency
func (condition *Condition) CheckStructure() error {
	if nil == condition || 0 == len(condition.PublicKeys) {
		return fault.ErrMissingOwners
	}
	for _, owner := range condition.PublicKeys {
		if nil == owner || nil == owner.AccountInterface {
			return fault.ErrMissingOwners
		}
	}
	if 0 == condition.Threshold || condition.Threshold > uint64(len(condition.PublicKeys)) {
		return fault.ErrInvalidThreshold
	}
	return nil
}

// IsSameAs - structural equality of two conditions
func (condition *Condition) IsSameAs(other *Condition) bool {
	if nil == condition || nil == other {
		return false
	}
	if condition.Threshold != other.Threshold {
		return false
	}
	if len(condition.PublicKeys) != len(other.PublicKeys) {
		return false
	}
	for i, owner := range condition.PublicKeys {
		if !owner.IsSameAs(other.PublicKeys[i]) {
			return false
		}
	}
	return true
}

// Fulfillment - signature slots paired to a condition's public keys
//
// a nil slot means the corresponding key did not sign
type Fulfillment struct {
	Signatures []account.Signature `json:"signatures"`
}

// IsPresent - a fulfillment with no signatures at all is absent
func (fulfillment *Fulfillment) IsPresent() bool {
	if nil == fulfillment {
		return false
	}
	for _, signature := range fulfillment.Signatures {
		if 0 != len(signature) {
			return true
		}
	}
	return false
}

// Verify - check a fulfillment cryptographically satisfies a condition
//
// every present signature must verify and the count of verified
// signers must reach the condition's threshold
func (condition *Condition) Verify(fulfillment *Fulfillment, message []byte) error {
	if err := condition.CheckStructure(); nil != err {
		return err
	}
	if !fulfillment.IsPresent() {
		return fault.ErrFulfillmentNotPresent
	}
	if len(fulfillment.Signatures) != len(condition.PublicKeys) {
		return fault.ErrInvalidSignature
	}

	verified := uint64(0)
	for i, signature := range fulfillment.Signatures {
		if 0 == len(signature) {
			continue
		}
		if err := condition.PublicKeys[i].CheckSignature(message, signature); nil != err {
			return err
		}
		verified += 1
	}

	if verified < condition.Threshold {
		return fault.ErrInvalidSignature
	}
	return nil
}
