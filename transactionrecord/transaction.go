// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transactionrecord - the transaction model
//
// Immutable value records describing the creation and movement of
// divisible, multi-owner digital assets.  A record is identified by
// the digest of its canonical serialization; any mutation after
// signing makes the record permanently invalid.
package transactionrecord

import (
	"encoding/json"

	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/condition"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
)

// Operation - the kind of a transaction record
type Operation string

// enumerate the possible transaction operations
const (
	CreateOperation    = Operation("CREATE")    // mint new assets
	TransferOperation  = Operation("TRANSFER")  // move outputs to new owners
	ComposeOperation   = Operation("COMPOSE")   // merge assets under one condition
	DecomposeOperation = Operation("DECOMPOSE") // split assets apart again
)

// Version - the only record layout this daemon reads or writes
const Version = "1.0"

// Packed - the canonical serialized form of a record
type Packed []byte

// AssetReference - an asset payload (CREATE) or a reference to one
// (TRANSFER/COMPOSE/DECOMPOSE); exactly one field is set
type AssetReference struct {
	Id   *digest.Digest         `json:"id,omitempty"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// Output - a spendable unit of value
//
// the condition is always derived from the public key list; it is kept
// explicit in the record so spenders need no out-of-band knowledge
type Output struct {
	Amount     uint64               `json:"amount"`
	Condition  *condition.Condition `json:"condition"`
	PublicKeys []*account.Account   `json:"public_keys"`
	AssetId    digest.Digest        `json:"asset_id"`
}

// Input - proof of authority to consume a prior output
//
// Fulfills is nil exactly when the record is a CREATE
type Input struct {
	OwnersBefore []*account.Account     `json:"owners_before"`
	Fulfills     *OutputLocation        `json:"fulfills"`
	Fulfillment  *condition.Fulfillment `json:"fulfillment"`
}

// Transaction - a complete transaction record
type Transaction struct {
	Id        digest.Digest          `json:"id"`
	Operation Operation              `json:"operation"`
	Version   string                 `json:"version"`
	Inputs    []*Input               `json:"inputs"`
	Outputs   []*Output              `json:"outputs"`
	Assets    []AssetReference       `json:"assets"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AssetId - the content-addressed id of the referenced asset
func (asset AssetReference) AssetId() (digest.Digest, error) {
	if nil != asset.Id {
		return *asset.Id, nil
	}
	if nil == asset.Data {
		return digest.Digest{}, fault.ErrMissingAssetReference
	}
	data, err := json.Marshal(asset.Data)
	if nil != err {
		return digest.Digest{}, fault.ErrInvalidStructure
	}
	return digest.NewDigest(data), nil
}

// IsMint - whether this operation creates value rather than moving it
func (operation Operation) IsMint() bool {
	return CreateOperation == operation
}

// IsValid - whether the operation code is known
func (operation Operation) IsValid() bool {
	switch operation {
	case CreateOperation, TransferOperation, ComposeOperation, DecomposeOperation:
		return true
	default:
		return false
	}
}

// RecordName - returns the name of a transaction record as a string
func RecordName(record interface{}) (string, bool) {
	switch tx := record.(type) {
	case *Transaction:
		if tx.Operation.IsValid() {
			return string(tx.Operation), true
		}
		return "*unknown*", false
	default:
		return "*unknown*", false
	}
}

// ToInputs - build the inputs a spender needs to consume every output
// of this transaction
func (tx *Transaction) ToInputs() []*Input {
	inputs := make([]*Input, len(tx.Outputs))
	for i, output := range tx.Outputs {
		inputs[i] = &Input{
			OwnersBefore: output.PublicKeys,
			Fulfills: &OutputLocation{
				TxId:        tx.Id,
				OutputIndex: uint64(i),
			},
		}
	}
	return inputs
}
