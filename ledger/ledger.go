// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the commit cycle a consensus layer drives
//
// the cycle is begin block, deliver transactions, end block, commit;
// mempool admission runs through CheckTransaction at any time
//
// the ledger serialises block state transitions internally but holds
// no lock while a transaction is being validated, so checks and
// deliveries for different transactions overlap freely
package ledger

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/metolius/ledgerd/blockrecord"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
	"github.com/metolius/ledgerd/storage"
	"github.com/metolius/ledgerd/transactionrecord"
	"github.com/metolius/ledgerd/validator"
)

// Ledger - block-oriented state machine over a gateway
type Ledger struct {
	sync.Mutex

	store    storage.Gateway
	validate validator.Validator
	log      *logger.L
	inBlock  bool
	height   uint64
	previous digest.Digest
	appHash  *digest.Digest
	accepted []*transactionrecord.Transaction

	// replay recovery: ids recorded by the pre-commit state of an
	// interrupted commit at this height, and the subset of delivered
	// transactions found to be durable already
	recovering map[digest.Digest]bool
	stored     map[digest.Digest]bool
}

// New - attach a ledger to a gateway
func New(store storage.Gateway) *Ledger {
	return &Ledger{
		store:    store,
		validate: validator.New(store),
		log:      logger.New("ledger"),
	}
}

// CheckTransaction - mempool admission
//
// validates against committed state only; acceptance here is advisory,
// delivery into a block revalidates
func (l *Ledger) CheckTransaction(tx *transactionrecord.Transaction) error {
	return l.validate.Validate(tx, nil)
}

// BeginBlock - open the block at the given height
//
// the height must directly follow the latest committed block; the
// first block of an empty ledger is height one
func (l *Ledger) BeginBlock(height uint64) error {
	l.Lock()
	defer l.Unlock()

	if l.inBlock {
		return fault.ErrBlockInProgress
	}

	previous := digest.Digest{}
	expectedHeight := uint64(1)

	latest, err := l.store.GetLatestBlock()
	if nil == err {
		previous = latest.AppHash
		expectedHeight = latest.Height + 1
	} else if fault.ErrBlockNotFound != err {
		return err
	}

	if height != expectedHeight {
		return fault.ErrHeightOutOfSequence
	}

	// a pre-commit record at this height means the previous attempt to
	// commit it was interrupted and consensus is replaying the block
	var recovering map[digest.Digest]bool
	state, err := l.store.GetPreCommitState()
	if nil != err {
		return err
	}
	if nil != state && height == state.Height {
		recovering = make(map[digest.Digest]bool, len(state.TxIds))
		for _, txId := range state.TxIds {
			recovering[txId] = true
		}
		l.log.Warnf("replaying interrupted block %d with %d transactions", height, len(state.TxIds))
	}

	l.inBlock = true
	l.height = height
	l.previous = previous
	l.appHash = nil
	l.accepted = nil
	l.recovering = recovering
	l.stored = nil
	return nil
}

// DeliverTransaction - validate against committed state plus the
// transactions already accepted for this block, then accept
func (l *Ledger) DeliverTransaction(tx *transactionrecord.Transaction) error {
	l.Lock()
	if !l.inBlock {
		l.Unlock()
		return fault.ErrNoBlockInProgress
	}
	candidates := l.accepted
	replayed := l.recovering[tx.Id]
	l.Unlock()

	// validation runs without the ledger lock; the candidate slice is
	// append only so the snapshot stays valid
	err := l.validate.Validate(tx, candidates)
	if nil != err {
		// a replayed transaction an interrupted commit already made
		// durable fails only the duplicate check; accept it again and
		// skip it at commit
		if !replayed || fault.ErrTransactionAlreadyExists != err {
			return err
		}
	}

	l.Lock()
	defer l.Unlock()
	if !l.inBlock {
		return fault.ErrNoBlockInProgress
	}

	// a concurrent delivery may have accepted a conflicting spend
	// after the snapshot was taken
	for _, candidate := range l.accepted[len(candidates):] {
		if candidate.Id == tx.Id {
			return fault.ErrTransactionAlreadyExists
		}
		if spendsConflict(candidate, tx) {
			return fault.ErrDoubleSpend
		}
	}

	if replayed && nil != err {
		if nil == l.stored {
			l.stored = make(map[digest.Digest]bool)
		}
		l.stored[tx.Id] = true
	}
	l.accepted = append(l.accepted, tx)
	return nil
}

// EndBlock - seal the accepted list and compute the next app hash
//
// an empty block leaves the app hash unchanged
func (l *Ledger) EndBlock() (digest.Digest, error) {
	l.Lock()
	defer l.Unlock()

	if !l.inBlock {
		return digest.Digest{}, fault.ErrNoBlockInProgress
	}

	txIds := make([]digest.Digest, len(l.accepted))
	for i, tx := range l.accepted {
		txIds[i] = tx.Id
	}

	// the pre-commit record makes an interrupted commit of this block
	// recoverable on replay
	err := l.store.StorePreCommitState(&blockrecord.PreCommit{
		Height: l.height,
		TxIds:  txIds,
	})
	if nil != err {
		return digest.Digest{}, err
	}

	appHash := digest.AppHash(l.previous, txIds)
	l.appHash = &appHash
	return appHash, nil
}

// Commit - persist the block
//
// transactions are stored before the block record so a crash in
// between never leaves a block claiming transactions the store does
// not have; the pre-commit record written at end block lets a replay
// of the same height resume past transactions already durable; a
// critical double spend aborts the whole block
func (l *Ledger) Commit() (*blockrecord.Block, error) {
	l.Lock()
	defer l.Unlock()

	if !l.inBlock {
		return nil, fault.ErrNoBlockInProgress
	}
	if nil == l.appHash {
		return nil, fault.ErrNoBlockInProgress
	}

	fresh := make([]*transactionrecord.Transaction, 0, len(l.accepted))
	for _, tx := range l.accepted {
		if !l.stored[tx.Id] {
			fresh = append(fresh, tx)
		}
	}

	err := l.store.StoreTransactions(fresh)
	if nil != err {
		l.log.Criticalf("block %d commit failed: %s", l.height, err)
		return nil, err
	}

	txIds := make([]digest.Digest, len(l.accepted))
	for i, tx := range l.accepted {
		txIds[i] = tx.Id
	}

	block := &blockrecord.Block{
		AppHash: *l.appHash,
		Height:  l.height,
		TxIds:   txIds,
	}
	err = l.store.StoreBlock(block)
	if nil != err {
		return nil, err
	}

	l.log.Infof("committed block %d with %d transactions", block.Height, len(txIds))

	l.inBlock = false
	l.accepted = nil
	l.appHash = nil
	l.recovering = nil
	l.stored = nil
	return block, nil
}

// true when both transactions consume at least one common output
func spendsConflict(a, b *transactionrecord.Transaction) bool {
	for _, inputA := range a.Inputs {
		if nil == inputA.Fulfills {
			continue
		}
		for _, inputB := range b.Inputs {
			if nil == inputB.Fulfills {
				continue
			}
			if *inputA.Fulfills == *inputB.Fulfills {
				return true
			}
		}
	}
	return false
}
