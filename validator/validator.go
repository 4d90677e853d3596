// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package validator - deterministic transaction validation
//
// a validator is a pure function of the transaction, the committed
// state behind the gateway and an optional candidate list of
// transactions accepted into the block in progress; it takes no locks
// and writes nothing, so any number of validations may run
// concurrently
//
// validation is advisory for double spends: two racing transactions
// can both pass here, the spend index insert at commit is the final
// arbiter
package validator

import (
	"github.com/bitmark-inc/logger"

	"github.com/metolius/ledgerd/condition"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
	"github.com/metolius/ledgerd/storage"
	"github.com/metolius/ledgerd/transactionrecord"
)

// Validator - transaction admission check
type Validator interface {
	Validate(tx *transactionrecord.Transaction, candidates []*transactionrecord.Transaction) error
}

type validator struct {
	store storage.Gateway
	log   *logger.L
}

// New - attach a validator to a gateway
func New(store storage.Gateway) Validator {
	return &validator{
		store: store,
		log:   logger.New("validator"),
	}
}

// Validate - run the full validation pipeline
//
// stages, in order: schema and id integrity, duplicate transaction,
// input resolution and fulfillment verification, double spend against
// the transaction itself, the candidate list and committed state,
// per-asset amount conservation
func (v *validator) Validate(tx *transactionrecord.Transaction, candidates []*transactionrecord.Transaction) error {

	err := tx.CheckSchema()
	if nil != err {
		return err
	}

	// the id must be exactly the digest of the signed content
	expectedId, err := tx.MakeId()
	if nil != err {
		return err
	}
	if expectedId != tx.Id {
		return fault.ErrInvalidTransactionId
	}

	err = v.checkDuplicateTransaction(tx, candidates)
	if nil != err {
		return err
	}

	message, err := tx.SigningMessage()
	if nil != err {
		return err
	}

	if tx.Operation.IsMint() {
		return v.validateMint(tx, message)
	}
	return v.validateSpend(tx, message, candidates)
}

func (v *validator) checkDuplicateTransaction(tx *transactionrecord.Transaction, candidates []*transactionrecord.Transaction) error {
	_, err := v.store.GetTransaction(tx.Id)
	if nil == err {
		return fault.ErrTransactionAlreadyExists
	}
	if fault.ErrTransactionNotFound != err {
		return err
	}
	for _, candidate := range candidates {
		if candidate.Id == tx.Id {
			return fault.ErrTransactionAlreadyExists
		}
	}
	return nil
}

// a mint carries no links, its authority is the owners before list
// itself
func (v *validator) validateMint(tx *transactionrecord.Transaction, message []byte) error {
	for _, input := range tx.Inputs {
		cond, err := condition.NewCondition(input.OwnersBefore, 0)
		if nil != err {
			return err
		}
		err = cond.Verify(input.Fulfillment, message)
		if nil != err {
			return err
		}
	}
	return nil
}

func (v *validator) validateSpend(tx *transactionrecord.Transaction, message []byte, candidates []*transactionrecord.Transaction) error {

	err := v.checkAssetsResolve(tx, candidates)
	if nil != err {
		return err
	}

	inputSums := map[digest.Digest]uint64{}
	seen := map[transactionrecord.OutputLocation]struct{}{}

	for _, input := range tx.Inputs {
		location := *input.Fulfills

		if location.TxId == tx.Id {
			return fault.ErrTransactionLinksToSelf
		}

		// the same output twice in one transaction is already a double
		// spend
		if _, ok := seen[location]; ok {
			return fault.ErrDoubleSpend
		}
		seen[location] = struct{}{}

		output, err := v.resolveOutput(location, candidates)
		if nil != err {
			return err
		}

		err = checkOwnersBefore(input, output)
		if nil != err {
			return err
		}

		err = output.Condition.Verify(input.Fulfillment, message)
		if nil != err {
			return err
		}

		err = v.checkNotSpent(location, candidates)
		if nil != err {
			return err
		}

		inputSums[output.AssetId] += output.Amount
	}

	return checkConservation(tx, inputSums)
}

// every referenced asset must have been registered by a committed mint
// or by one still in the candidate list
func (v *validator) checkAssetsResolve(tx *transactionrecord.Transaction, candidates []*transactionrecord.Transaction) error {
assets:
	for _, asset := range tx.Assets {
		if nil == asset.Id {
			continue assets
		}
		_, err := v.store.GetAsset(*asset.Id)
		if nil == err {
			continue assets
		}
		if fault.ErrAssetNotFound != err {
			return err
		}
		for _, candidate := range candidates {
			if !candidate.Operation.IsMint() {
				continue
			}
			for _, candidateAsset := range candidate.Assets {
				candidateId, err := candidateAsset.AssetId()
				if nil != err {
					return err
				}
				if candidateId == *asset.Id {
					continue assets
				}
			}
		}
		return fault.ErrAssetNotFound
	}
	return nil
}

// find the output an input claims, first in committed state then in
// the candidate list
func (v *validator) resolveOutput(location transactionrecord.OutputLocation, candidates []*transactionrecord.Transaction) (*transactionrecord.Output, error) {
	linked, err := v.store.GetTransaction(location.TxId)
	if fault.ErrTransactionNotFound == err {
		linked = nil
		for _, candidate := range candidates {
			if candidate.Id == location.TxId {
				linked = candidate
				break
			}
		}
		if nil == linked {
			return nil, fault.ErrLinkedOutputNotFound
		}
	} else if nil != err {
		return nil, err
	}

	if location.OutputIndex >= uint64(len(linked.Outputs)) {
		return nil, fault.ErrLinkedOutputNotFound
	}
	return linked.Outputs[location.OutputIndex], nil
}

// the spender must declare exactly the owning keys of the output it
// consumes
func checkOwnersBefore(input *transactionrecord.Input, output *transactionrecord.Output) error {
	if len(input.OwnersBefore) != len(output.PublicKeys) {
		return fault.ErrIncorrectOwnersBefore
	}
	for i, owner := range input.OwnersBefore {
		if !owner.IsSameAs(output.PublicKeys[i]) {
			return fault.ErrIncorrectOwnersBefore
		}
	}
	return nil
}

func (v *validator) checkNotSpent(location transactionrecord.OutputLocation, candidates []*transactionrecord.Transaction) error {
	spender, err := v.store.GetSpent(location)
	if nil != err {
		return err
	}
	if nil != spender {
		return fault.ErrDoubleSpend
	}

	for _, candidate := range candidates {
		for _, input := range candidate.Inputs {
			if nil == input.Fulfills {
				continue
			}
			if *input.Fulfills == location {
				return fault.ErrDoubleSpend
			}
		}
	}
	return nil
}

// per asset group the consumed and produced amounts must balance
// exactly
func checkConservation(tx *transactionrecord.Transaction, inputSums map[digest.Digest]uint64) error {
	outputSums := map[digest.Digest]uint64{}
	for _, output := range tx.Outputs {
		outputSums[output.AssetId] += output.Amount
	}

	if len(inputSums) != len(outputSums) {
		return fault.ErrUnpairedAssetGroup
	}
	for assetId, inputSum := range inputSums {
		outputSum, ok := outputSums[assetId]
		if !ok {
			return fault.ErrUnpairedAssetGroup
		}
		if inputSum != outputSum {
			return fault.AmountMismatchError{
				InputSum:  inputSum,
				OutputSum: outputSum,
			}
		}
	}
	return nil
}
