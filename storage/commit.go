// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"encoding/json"

	"github.com/metolius/ledgerd/blockrecord"
	"github.com/metolius/ledgerd/fault"
	"github.com/metolius/ledgerd/transactionrecord"
	"github.com/metolius/ledgerd/validatorset"
)

// StoreTransactions - commit a list of validated transactions
//
// each transaction is committed atomically under the store lock; the
// spend index insert inside that critical section is the final arbiter
// of double spends, so a transaction that lost a concurrent race is
// rejected here with ErrCriticalDoubleSpend and nothing of it is
// written
func (s *Store) StoreTransactions(txs []*transactionrecord.Transaction) error {
	for _, tx := range txs {
		err := s.storeTransaction(tx)
		if nil != err {
			return err
		}
	}
	return nil
}

func (s *Store) storeTransaction(tx *transactionrecord.Transaction) error {
	s.Lock()
	defer s.Unlock()

	err := s.begin()
	if nil != err {
		return err
	}

	txId := tx.Id

	if s.Pool.Transactions.Has(txId[:]) {
		s.access.Abort()
		return fault.ErrTransactionAlreadyExists
	}

	// mark every consumed output as spent; an existing marker means a
	// concurrent spender already won; markers staged by this batch are
	// tracked locally because the batch is unreadable until it commits
	staged := make(map[string]struct{}, len(tx.Inputs))
	for _, input := range tx.Inputs {
		if nil == input.Fulfills {
			continue
		}
		spendKey := input.Fulfills.Key()
		_, duplicate := staged[string(spendKey)]
		if duplicate || s.Pool.Spend.Has(spendKey) {
			s.access.Abort()
			s.log.Criticalf("double spend of %s detected at commit for tx: %s", input.Fulfills, txId)
			return fault.ErrCriticalDoubleSpend
		}
		s.Pool.Spend.Put(spendKey, txId[:])
		staged[string(spendKey)] = struct{}{}
	}

	// register asset payloads carried by a mint
	if tx.Operation.IsMint() {
		for _, asset := range tx.Assets {
			if nil == asset.Data {
				continue
			}
			assetId, err := asset.AssetId()
			if nil != err {
				s.access.Abort()
				return err
			}
			payload, err := json.Marshal(asset.Data)
			if nil != err {
				s.access.Abort()
				return err
			}
			s.Pool.Assets.Put(assetId[:], payload)
		}
	}

	packed, err := tx.Pack()
	if nil != err {
		s.access.Abort()
		return err
	}
	s.Pool.Transactions.Put(txId[:], packed)

	// append each output to the list of every owning key; entries are
	// never removed, spent outputs stay listed
	counts := make(map[string]uint64)
	for index, output := range tx.Outputs {
		location := transactionrecord.OutputLocation{
			TxId:        txId,
			OutputIndex: uint64(index),
		}
		for _, owner := range output.PublicKeys {
			s.appendOwnedOutput(counts, owner.Bytes(), location)
		}
	}

	err = s.access.Commit()
	if nil != err {
		s.access.Abort()
		return err
	}

	s.log.Debugf("stored transaction: %s", txId)
	return nil
}

// counts carries the next index per owner across the outputs of one
// transaction, since counters staged in the open batch cannot be read
// back before the batch commits
func (s *Store) appendOwnedOutput(counts map[string]uint64, ownerKey []byte, location transactionrecord.OutputLocation) {
	count, ok := counts[string(ownerKey)]
	if !ok {
		count, _ = s.Pool.OwnerNextCount.GetN(ownerKey)
	}

	listKey := make([]byte, len(ownerKey)+8)
	copy(listKey, ownerKey)
	binary.BigEndian.PutUint64(listKey[len(ownerKey):], count)

	s.Pool.OwnerList.Put(listKey, location.Key())
	s.Pool.OwnerNextCount.PutN(ownerKey, count+1)
	counts[string(ownerKey)] = count + 1
}

// StoreBlock - commit a block header
//
// heights must be strictly increasing; the header is written after its
// transactions so a crash between the two never leaves a block that
// claims transactions the store does not have
func (s *Store) StoreBlock(block *blockrecord.Block) error {
	s.Lock()
	defer s.Unlock()

	err := s.begin()
	if nil != err {
		return err
	}

	latest, found := s.Pool.Blocks.LastElement()
	if found {
		latestHeight, err := blockrecord.HeightFromKey(latest.Key)
		if nil != err {
			s.access.Abort()
			return err
		}
		if block.Height <= latestHeight {
			s.access.Abort()
			return fault.ErrHeightOutOfSequence
		}
	}

	packed, err := block.Pack()
	if nil != err {
		s.access.Abort()
		return err
	}
	s.Pool.Blocks.Put(blockrecord.HeightKey(block.Height), packed)

	err = s.access.Commit()
	if nil != err {
		s.access.Abort()
		return err
	}

	s.log.Infof("stored block: %d  app hash: %s", block.Height, block.AppHash)
	return nil
}

// the pre-commit pool holds a single record
var preCommitKey = []byte("state")

// StorePreCommitState - record the transactions of the block about to
// be committed
//
// overwritten at every end block; after a restart a record matching
// the replayed height marks transactions that may already be durable
// from an interrupted commit
func (s *Store) StorePreCommitState(state *blockrecord.PreCommit) error {
	s.Lock()
	defer s.Unlock()

	err := s.begin()
	if nil != err {
		return err
	}

	packed, err := state.Pack()
	if nil != err {
		s.access.Abort()
		return err
	}
	s.Pool.PreCommit.Put(preCommitKey, packed)

	err = s.access.Commit()
	if nil != err {
		s.access.Abort()
		return err
	}
	return nil
}

// StoreValidatorSet - record the validator set effective from its height
//
// storing again for the same height overwrites, last writer wins
func (s *Store) StoreValidatorSet(set *validatorset.Set) error {
	s.Lock()
	defer s.Unlock()

	err := set.CheckStructure()
	if nil != err {
		return err
	}

	err = s.begin()
	if nil != err {
		return err
	}

	packed, err := set.Pack()
	if nil != err {
		s.access.Abort()
		return err
	}
	s.Pool.ValidatorSets.Put(blockrecord.HeightKey(set.Height), packed)

	err = s.access.Commit()
	if nil != err {
		s.access.Abort()
		return err
	}
	return nil
}

// StoreElection - record or update an election
func (s *Store) StoreElection(election *validatorset.Election) error {
	s.Lock()
	defer s.Unlock()

	err := s.begin()
	if nil != err {
		return err
	}

	packed, err := election.Pack()
	if nil != err {
		s.access.Abort()
		return err
	}
	s.Pool.Elections.Put(election.Id[:], packed)

	err = s.access.Commit()
	if nil != err {
		s.access.Abort()
		return err
	}
	return nil
}
