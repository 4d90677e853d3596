// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/condition"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
)

// OutputSpec - parameters for one output of a new transaction
//
// AssetId may stay nil when the transaction references exactly one
// asset; with several assets every output must name its group
type OutputSpec struct {
	Owners  []*account.Account
	Amount  uint64
	AssetId *digest.Digest
}

func makeOutputs(specs []OutputSpec, assetIds []digest.Digest) ([]*Output, error) {
	outputs := make([]*Output, len(specs))
	for i, spec := range specs {
		cond, err := condition.NewCondition(spec.Owners, 0)
		if nil != err {
			return nil, err
		}

		assetId := digest.Digest{}
		if nil != spec.AssetId {
			assetId = *spec.AssetId
		} else if 1 == len(assetIds) {
			assetId = assetIds[0]
		} else {
			return nil, fault.ErrUnpairedAssetGroup
		}

		outputs[i] = &Output{
			Amount:     spec.Amount,
			Condition:  cond,
			PublicKeys: spec.Owners,
			AssetId:    assetId,
		}
	}
	return outputs, nil
}

// NewCreate - build an unsigned CREATE minting one asset
func NewCreate(
	ownersBefore []*account.Account,
	outputs []OutputSpec,
	assetData map[string]interface{},
	metadata map[string]interface{},
) (*Transaction, error) {
	if 0 == len(ownersBefore) {
		return nil, fault.ErrMissingOwners
	}

	asset := AssetReference{Data: assetData}
	assetId, err := asset.AssetId()
	if nil != err {
		return nil, err
	}

	outs, err := makeOutputs(outputs, []digest.Digest{assetId})
	if nil != err {
		return nil, err
	}

	return &Transaction{
		Operation: CreateOperation,
		Version:   Version,
		Inputs: []*Input{{
			OwnersBefore: ownersBefore,
			Fulfills:     nil,
		}},
		Outputs:  outs,
		Assets:   []AssetReference{asset},
		Metadata: metadata,
	}, nil
}

// build an unsigned spending transaction of any operation
func newSpend(
	operation Operation,
	inputs []*Input,
	outputs []OutputSpec,
	assetIds []digest.Digest,
	metadata map[string]interface{},
) (*Transaction, error) {
	if 0 == len(inputs) {
		return nil, fault.ErrMissingInputs
	}
	if 0 == len(assetIds) {
		return nil, fault.ErrMissingAssetReference
	}

	assets := make([]AssetReference, len(assetIds))
	for i := range assetIds {
		id := assetIds[i]
		assets[i] = AssetReference{Id: &id}
	}

	outs, err := makeOutputs(outputs, assetIds)
	if nil != err {
		return nil, err
	}

	return &Transaction{
		Operation: operation,
		Version:   Version,
		Inputs:    inputs,
		Outputs:   outs,
		Assets:    assets,
		Metadata:  metadata,
	}, nil
}

// NewTransfer - build an unsigned TRANSFER spending prior outputs
func NewTransfer(
	inputs []*Input,
	outputs []OutputSpec,
	assetIds []digest.Digest,
	metadata map[string]interface{},
) (*Transaction, error) {
	return newSpend(TransferOperation, inputs, outputs, assetIds, metadata)
}

// NewCompose - build an unsigned COMPOSE merging several assets into
// one output set under a single condition
func NewCompose(
	inputs []*Input,
	outputs []OutputSpec,
	assetIds []digest.Digest,
	metadata map[string]interface{},
) (*Transaction, error) {
	return newSpend(ComposeOperation, inputs, outputs, assetIds, metadata)
}

// NewDecompose - build an unsigned DECOMPOSE splitting composed assets
// back into independently spendable outputs
func NewDecompose(
	inputs []*Input,
	outputs []OutputSpec,
	assetIds []digest.Digest,
	metadata map[string]interface{},
) (*Transaction, error) {
	return newSpend(DecomposeOperation, inputs, outputs, assetIds, metadata)
}

// Sign - fulfil every input and seal the record with its id
//
// each input is signed by the supplied keys that match its owners
// before list; the id is computed last so it covers the fulfillments
func (tx *Transaction) Sign(keys []*account.PrivateKey) error {
	if err := tx.CheckSchema(); nil != err {
		return err
	}

	message, err := tx.SigningMessage()
	if nil != err {
		return err
	}

	for _, input := range tx.Inputs {
		// sign with whichever keys match; the verifier applies the
		// real threshold of the condition being fulfilled
		cond, err := condition.NewCondition(input.OwnersBefore, 1)
		if nil != err {
			return err
		}
		fulfillment, err := cond.Fulfill(message, keys)
		if nil != err {
			return err
		}
		input.Fulfillment = fulfillment
	}

	id, err := tx.MakeId()
	if nil != err {
		return err
	}
	tx.Id = id
	return nil
}
