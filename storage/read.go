// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"encoding/json"

	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/blockrecord"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
	"github.com/metolius/ledgerd/transactionrecord"
	"github.com/metolius/ledgerd/validatorset"
)

// GetTransaction - fetch a committed transaction by id
func (s *Store) GetTransaction(txId digest.Digest) (*transactionrecord.Transaction, error) {
	record := s.Pool.Transactions.Get(txId[:])
	if nil == record {
		return nil, fault.ErrTransactionNotFound
	}
	return transactionrecord.Packed(record).Unpack()
}

// GetAsset - fetch a registered asset payload by its content id
func (s *Store) GetAsset(assetId digest.Digest) (map[string]interface{}, error) {
	record := s.Pool.Assets.Get(assetId[:])
	if nil == record {
		return nil, fault.ErrAssetNotFound
	}
	data := map[string]interface{}{}
	err := json.Unmarshal(record, &data)
	if nil != err {
		return nil, err
	}
	return data, nil
}

// GetSpent - the id of the transaction that consumed an output
//
// nil with no error means the output is unspent
func (s *Store) GetSpent(location transactionrecord.OutputLocation) (*digest.Digest, error) {
	record := s.Pool.Spend.Get(location.Key())
	if nil == record {
		return nil, nil
	}
	spender := digest.Digest{}
	err := digest.DigestFromBytes(&spender, record)
	if nil != err {
		return nil, err
	}
	return &spender, nil
}

// GetOutputsByPublicKey - every output ever assigned to an owning key
//
// the list is append only so spent outputs are included; use the spend
// index to partition them
func (s *Store) GetOutputsByPublicKey(owner *account.Account) ([]transactionrecord.OutputLocation, error) {
	ownerKey := owner.Bytes()

	count, ok := s.Pool.OwnerNextCount.GetN(ownerKey)
	if !ok {
		return nil, nil
	}

	listKey := make([]byte, len(ownerKey)+8)
	copy(listKey, ownerKey)

	locations := make([]transactionrecord.OutputLocation, 0, count)
	for i := uint64(0); i < count; i += 1 {
		binary.BigEndian.PutUint64(listKey[len(ownerKey):], i)
		record := s.Pool.OwnerList.Get(listKey)
		if nil == record {
			s.log.Criticalf("owner list gap for: %x at: %d", ownerKey, i)
			return nil, fault.ErrDataInconsistency
		}
		location, err := transactionrecord.OutputLocationFromKey(record)
		if nil != err {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}

// GetLatestBlock - the most recently committed block header
func (s *Store) GetLatestBlock() (*blockrecord.Block, error) {
	latest, found := s.Pool.Blocks.LastElement()
	if !found {
		return nil, fault.ErrBlockNotFound
	}
	return blockrecord.Packed(latest.Value).Unpack()
}

// GetBlock - fetch a block header by height
func (s *Store) GetBlock(height uint64) (*blockrecord.Block, error) {
	record := s.Pool.Blocks.Get(blockrecord.HeightKey(height))
	if nil == record {
		return nil, fault.ErrBlockNotFound
	}
	return blockrecord.Packed(record).Unpack()
}

// GetPreCommitState - the pre-commit record of the last end block
//
// nil with no error when nothing was ever recorded
func (s *Store) GetPreCommitState() (*blockrecord.PreCommit, error) {
	record := s.Pool.PreCommit.Get(preCommitKey)
	if nil == record {
		return nil, nil
	}
	return blockrecord.Packed(record).UnpackPreCommit()
}

// GetValidators - the validator set in force at a given height
//
// this is the set stored at the greatest height not above the one
// requested
func (s *Store) GetValidators(height uint64) (*validatorset.Set, error) {
	element, found := s.Pool.ValidatorSets.LastElementLE(blockrecord.HeightKey(height))
	if !found {
		return nil, fault.ErrValidatorSetNotFound
	}
	return validatorset.UnpackSet(element.Value)
}

// GetElection - fetch an election record by id
func (s *Store) GetElection(electionId digest.Digest) (*validatorset.Election, error) {
	record := s.Pool.Elections.Get(electionId[:])
	if nil == record {
		return nil, fault.ErrElectionNotFound
	}
	return validatorset.UnpackElection(record)
}
