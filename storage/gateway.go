// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/blockrecord"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/transactionrecord"
	"github.com/metolius/ledgerd/validatorset"
)

// Gateway - the only path between validation logic and persistence
//
// callers never touch pool keys directly; every backend operation the
// ledger needs is one of these methods
type Gateway interface {

	// transactions and assets
	StoreTransactions(txs []*transactionrecord.Transaction) error
	GetTransaction(txId digest.Digest) (*transactionrecord.Transaction, error)
	GetAsset(assetId digest.Digest) (map[string]interface{}, error)

	// spend index
	GetSpent(location transactionrecord.OutputLocation) (*digest.Digest, error)
	GetOutputsByPublicKey(owner *account.Account) ([]transactionrecord.OutputLocation, error)

	// blocks
	StoreBlock(block *blockrecord.Block) error
	GetLatestBlock() (*blockrecord.Block, error)
	GetBlock(height uint64) (*blockrecord.Block, error)
	StorePreCommitState(state *blockrecord.PreCommit) error
	GetPreCommitState() (*blockrecord.PreCommit, error)

	// consensus bookkeeping
	StoreValidatorSet(set *validatorset.Set) error
	GetValidators(height uint64) (*validatorset.Set, error)
	StoreElection(election *validatorset.Election) error
	GetElection(electionId digest.Digest) (*validatorset.Election, error)
}

// Store implements the full gateway
var _ Gateway = (*Store)(nil)
