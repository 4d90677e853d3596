// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"encoding/json"

	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
)

// the id-free body used for identity and signing
//
// field order is fixed by this declaration and map keys are sorted by
// the JSON encoder, so the serialization is canonical
type transactionBody struct {
	Operation Operation              `json:"operation"`
	Version   string                 `json:"version"`
	Inputs    []*Input               `json:"inputs"`
	Outputs   []*Output              `json:"outputs"`
	Assets    []AssetReference       `json:"assets"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func (tx *Transaction) body(withFulfillments bool) transactionBody {
	inputs := tx.Inputs
	if !withFulfillments {
		inputs = make([]*Input, len(tx.Inputs))
		for i, input := range tx.Inputs {
			inputs[i] = &Input{
				OwnersBefore: input.OwnersBefore,
				Fulfills:     input.Fulfills,
				Fulfillment:  nil,
			}
		}
	}
	return transactionBody{
		Operation: tx.Operation,
		Version:   tx.Version,
		Inputs:    inputs,
		Outputs:   tx.Outputs,
		Assets:    tx.Assets,
		Metadata:  tx.Metadata,
	}
}

// SigningMessage - the canonical bytes every fulfillment signs
//
// excludes the id and all fulfillments so that signing does not depend
// on other signatures
func (tx *Transaction) SigningMessage() ([]byte, error) {
	message, err := json.Marshal(tx.body(false))
	if nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return message, nil
}

// MakeId - recompute the content-addressed id
//
// the digest covers the whole body including fulfillments, so altering
// any byte of a signed record changes its id
func (tx *Transaction) MakeId() (digest.Digest, error) {
	body, err := json.Marshal(tx.body(true))
	if nil != err {
		return digest.Digest{}, fault.ErrInvalidStructure
	}
	return digest.NewDigest(body), nil
}

// Pack - canonical serialization of the full record including its id
func (tx *Transaction) Pack() (Packed, error) {
	packed, err := json.Marshal(tx)
	if nil != err {
		return nil, fault.ErrInvalidStructure
	}
	return Packed(packed), nil
}

// Unpack - deserialize a packed record
//
// only decodes and verifies structure; identity and signatures are the
// validator's concern
func (record Packed) Unpack() (*Transaction, error) {
	tx := &Transaction{}
	if err := json.Unmarshal(record, tx); nil != err {
		return nil, fault.ErrInvalidStructure
	}
	if err := tx.CheckSchema(); nil != err {
		return nil, err
	}
	return tx, nil
}

// Deserialize - decode bytes from the wire into a transaction
func Deserialize(buffer []byte) (*Transaction, error) {
	return Packed(buffer).Unpack()
}
