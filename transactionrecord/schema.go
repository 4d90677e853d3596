// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"strings"

	"github.com/metolius/ledgerd/fault"
)

// characters not allowed in asset data or metadata keys; reserved for
// backend specific indexing
const reservedKeyCharacters = ".$\x00"

// CheckSchema - structural validation of a transaction record
//
// rejects before any cryptographic or storage work is done; a nil
// return means only that the record is well formed
func (tx *Transaction) CheckSchema() error {
	if Version != tx.Version {
		return fault.ErrInvalidTransactionVersion
	}
	if !tx.Operation.IsValid() {
		return fault.ErrUnknownOperation
	}
	if 0 == len(tx.Inputs) {
		return fault.ErrMissingInputs
	}
	if 0 == len(tx.Outputs) {
		return fault.ErrMissingOutputs
	}
	if 0 == len(tx.Assets) {
		return fault.ErrMissingAssetReference
	}

	if err := tx.checkInputs(); nil != err {
		return err
	}
	if err := tx.checkOutputs(); nil != err {
		return err
	}
	if err := tx.checkAssets(); nil != err {
		return err
	}

	return checkKeys(tx.Metadata)
}

func (tx *Transaction) checkInputs() error {
	isMint := tx.Operation.IsMint()

	if isMint && 1 != len(tx.Inputs) {
		return fault.ErrInvalidStructure
	}

	for _, input := range tx.Inputs {
		if nil == input || 0 == len(input.OwnersBefore) {
			return fault.ErrMissingOwners
		}
		for _, owner := range input.OwnersBefore {
			if nil == owner || nil == owner.AccountInterface {
				return fault.ErrMissingOwners
			}
		}
		if isMint {
			if nil != input.Fulfills {
				return fault.ErrLinkNotPermitted
			}
		} else if nil == input.Fulfills {
			return fault.ErrLinkRequired
		}
	}
	return nil
}

func (tx *Transaction) checkOutputs() error {
	for _, output := range tx.Outputs {
		if nil == output {
			return fault.ErrInvalidStructure
		}
		if 0 == output.Amount {
			return fault.ErrInvalidAmount
		}
		if 0 == len(output.PublicKeys) {
			return fault.ErrMissingOwners
		}
		if nil == output.Condition {
			return fault.ErrInvalidStructure
		}
		if err := output.Condition.CheckStructure(); nil != err {
			return err
		}

		// the condition is always over exactly the output's key list
		if len(output.Condition.PublicKeys) != len(output.PublicKeys) {
			return fault.ErrInvalidStructure
		}
		for i, owner := range output.PublicKeys {
			if nil == owner || nil == owner.AccountInterface {
				return fault.ErrMissingOwners
			}
			if !owner.IsSameAs(output.Condition.PublicKeys[i]) {
				return fault.ErrInvalidStructure
			}
		}
	}

	if ComposeOperation == tx.Operation {
		shared := tx.Outputs[0].Condition
		for _, output := range tx.Outputs[1:] {
			if !shared.IsSameAs(output.Condition) {
				return fault.ErrSharedConditionRequired
			}
		}
	}
	return nil
}

func (tx *Transaction) checkAssets() error {
	isMint := tx.Operation.IsMint()

	assetIds := make(map[string]struct{}, len(tx.Assets))
	for _, asset := range tx.Assets {
		if isMint {
			if nil != asset.Id || nil == asset.Data {
				return fault.ErrMissingAssetReference
			}
			if err := checkKeys(asset.Data); nil != err {
				return err
			}
		} else if nil == asset.Id || nil != asset.Data {
			return fault.ErrMissingAssetReference
		}
		assetId, err := asset.AssetId()
		if nil != err {
			return err
		}
		assetIds[string(assetId[:])] = struct{}{}
	}

	switch tx.Operation {
	case ComposeOperation:
		if len(assetIds) < 2 {
			return fault.ErrComposeRequiresMerge
		}
	case DecomposeOperation:
		if len(assetIds) < 2 {
			return fault.ErrDecomposeRequiresSeparation
		}
	default:
	}

	// every output must belong to a declared asset group
	for _, output := range tx.Outputs {
		if _, ok := assetIds[string(output.AssetId[:])]; !ok {
			return fault.ErrUnpairedAssetGroup
		}
	}
	return nil
}

// recursively reject reserved characters in map keys
func checkKeys(data map[string]interface{}) error {
	for key, value := range data {
		if strings.ContainsAny(key, reservedKeyCharacters) {
			return fault.ErrReservedCharacterInKey
		}
		if err := checkValue(value); nil != err {
			return err
		}
	}
	return nil
}

func checkValue(value interface{}) error {
	switch item := value.(type) {
	case map[string]interface{}:
		return checkKeys(item)
	case []interface{}:
		for _, element := range item {
			if err := checkValue(element); nil != err {
				return err
			}
		}
	default:
	}
	return nil
}
