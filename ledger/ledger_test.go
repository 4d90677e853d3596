// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fault"
	"github.com/metolius/ledgerd/ledger"
	"github.com/metolius/ledgerd/storage"
	"github.com/metolius/ledgerd/transactionrecord"
)

const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test"
)

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func setup(t *testing.T) *storage.Store {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)
	store, err := storage.NewStore(storage.Config{
		Database: databaseFileName,
		ReadOnly: storage.ReadWrite,
	})
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
	return store
}

func teardown(store *storage.Store) {
	store.Close()
	removeFiles()
}

func TestMain(m *testing.M) {
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		panic(fmt.Sprintf("logger initialisation failed: %s", err))
	}

	rc := m.Run()
	removeFiles()
	os.Exit(rc)
}

func newKey(t *testing.T) *account.PrivateKey {
	key, err := account.NewPrivateKey(true)
	assert.NoError(t, err)
	return key
}

func signedCreate(t *testing.T, key *account.PrivateKey, serial string) *transactionrecord.Transaction {
	owner := key.Account()
	tx, err := transactionrecord.NewCreate(
		[]*account.Account{owner},
		[]transactionrecord.OutputSpec{{
			Owners: []*account.Account{owner},
			Amount: 100,
		}},
		map[string]interface{}{"serial": serial},
		nil,
	)
	assert.NoError(t, err)
	assert.NoError(t, tx.Sign([]*account.PrivateKey{key}))
	return tx
}

func signedTransfer(t *testing.T, key *account.PrivateKey, prior *transactionrecord.Transaction, newOwner *account.Account) *transactionrecord.Transaction {
	assetId, err := prior.Assets[0].AssetId()
	assert.NoError(t, err)

	tx, err := transactionrecord.NewTransfer(
		prior.ToInputs(),
		[]transactionrecord.OutputSpec{{
			Owners: []*account.Account{newOwner},
			Amount: 100,
		}},
		[]digest.Digest{assetId},
		nil,
	)
	assert.NoError(t, err)
	assert.NoError(t, tx.Sign([]*account.PrivateKey{key}))
	return tx
}

func TestBlockCycle(t *testing.T) {
	store := setup(t)
	defer teardown(store)
	l := ledger.New(store)

	alice := newKey(t)
	bob := newKey(t)

	create := signedCreate(t, alice, "issue-0001")

	assert.NoError(t, l.CheckTransaction(create))

	assert.NoError(t, l.BeginBlock(1))
	assert.NoError(t, l.DeliverTransaction(create))

	appHash, err := l.EndBlock()
	assert.NoError(t, err)
	expected := digest.AppHash(digest.Digest{}, []digest.Digest{create.Id})
	assert.Equal(t, expected, appHash)

	block, err := l.Commit()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), block.Height)
	assert.Equal(t, appHash, block.AppHash)
	assert.Equal(t, []digest.Digest{create.Id}, block.TxIds)

	latest, err := store.GetLatestBlock()
	assert.NoError(t, err)
	assert.Equal(t, block.AppHash, latest.AppHash)

	// the transaction is committed; spending it in the next block works
	transfer := signedTransfer(t, alice, create, bob.Account())
	assert.NoError(t, l.BeginBlock(2))
	assert.NoError(t, l.DeliverTransaction(transfer))
	nextHash, err := l.EndBlock()
	assert.NoError(t, err)
	assert.Equal(t, digest.AppHash(appHash, []digest.Digest{transfer.Id}), nextHash)
	_, err = l.Commit()
	assert.NoError(t, err)
}

func TestEmptyBlockKeepsAppHash(t *testing.T) {
	store := setup(t)
	defer teardown(store)
	l := ledger.New(store)

	alice := newKey(t)
	create := signedCreate(t, alice, "issue-0001")

	assert.NoError(t, l.BeginBlock(1))
	assert.NoError(t, l.DeliverTransaction(create))
	firstHash, err := l.EndBlock()
	assert.NoError(t, err)
	_, err = l.Commit()
	assert.NoError(t, err)

	assert.NoError(t, l.BeginBlock(2))
	emptyHash, err := l.EndBlock()
	assert.NoError(t, err)
	assert.Equal(t, firstHash, emptyHash)

	block, err := l.Commit()
	assert.NoError(t, err)
	assert.Equal(t, firstHash, block.AppHash)
	assert.Empty(t, block.TxIds)
}

func TestBlockStateMachine(t *testing.T) {
	store := setup(t)
	defer teardown(store)
	l := ledger.New(store)

	alice := newKey(t)
	create := signedCreate(t, alice, "issue-0001")

	// nothing is possible before begin
	assert.Equal(t, fault.ErrNoBlockInProgress, l.DeliverTransaction(create))
	_, err := l.EndBlock()
	assert.Equal(t, fault.ErrNoBlockInProgress, err)
	_, err = l.Commit()
	assert.Equal(t, fault.ErrNoBlockInProgress, err)

	// the first block is height one
	assert.Equal(t, fault.ErrHeightOutOfSequence, l.BeginBlock(5))
	assert.NoError(t, l.BeginBlock(1))

	// no double begin, no commit before end
	assert.Equal(t, fault.ErrBlockInProgress, l.BeginBlock(2))
	_, err = l.Commit()
	assert.Equal(t, fault.ErrNoBlockInProgress, err)

	_, err = l.EndBlock()
	assert.NoError(t, err)
	_, err = l.Commit()
	assert.NoError(t, err)

	// heights never rewind or skip
	assert.Equal(t, fault.ErrHeightOutOfSequence, l.BeginBlock(1))
	assert.Equal(t, fault.ErrHeightOutOfSequence, l.BeginBlock(3))
	assert.NoError(t, l.BeginBlock(2))
}

func TestDeliverChainedSpendInOneBlock(t *testing.T) {
	store := setup(t)
	defer teardown(store)
	l := ledger.New(store)

	alice := newKey(t)
	bob := newKey(t)

	create := signedCreate(t, alice, "issue-0001")
	transfer := signedTransfer(t, alice, create, bob.Account())

	// the transfer spends an output created earlier in the same block
	assert.NoError(t, l.BeginBlock(1))
	assert.NoError(t, l.DeliverTransaction(create))
	assert.NoError(t, l.DeliverTransaction(transfer))

	_, err := l.EndBlock()
	assert.NoError(t, err)
	block, err := l.Commit()
	assert.NoError(t, err)
	assert.Equal(t, []digest.Digest{create.Id, transfer.Id}, block.TxIds)
}

func TestDeliverRejectsDoubleSpendInOneBlock(t *testing.T) {
	store := setup(t)
	defer teardown(store)
	l := ledger.New(store)

	alice := newKey(t)
	bob := newKey(t)
	carol := newKey(t)

	create := signedCreate(t, alice, "issue-0001")
	assert.NoError(t, store.StoreTransactions([]*transactionrecord.Transaction{create}))

	toBob := signedTransfer(t, alice, create, bob.Account())
	toCarol := signedTransfer(t, alice, create, carol.Account())

	assert.NoError(t, l.BeginBlock(1))
	assert.NoError(t, l.DeliverTransaction(toBob))
	assert.Equal(t, fault.ErrDoubleSpend, l.DeliverTransaction(toCarol))

	_, err := l.EndBlock()
	assert.NoError(t, err)
	block, err := l.Commit()
	assert.NoError(t, err)
	assert.Equal(t, []digest.Digest{toBob.Id}, block.TxIds)
}

func TestDeliverRacingSpenders(t *testing.T) {
	store := setup(t)
	defer teardown(store)
	l := ledger.New(store)

	alice := newKey(t)

	create := signedCreate(t, alice, "issue-0001")
	assert.NoError(t, store.StoreTransactions([]*transactionrecord.Transaction{create}))

	spenders := make([]*transactionrecord.Transaction, 8)
	for i := range spenders {
		receiver := newKey(t)
		spenders[i] = signedTransfer(t, alice, create, receiver.Account())
	}

	assert.NoError(t, l.BeginBlock(1))

	errs := make([]error, len(spenders))
	wg := sync.WaitGroup{}
	for i, tx := range spenders {
		wg.Add(1)
		go func(i int, tx *transactionrecord.Transaction) {
			defer wg.Done()
			errs[i] = l.DeliverTransaction(tx)
		}(i, tx)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		switch err {
		case nil:
			accepted += 1
		case fault.ErrDoubleSpend:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, accepted)

	_, err := l.EndBlock()
	assert.NoError(t, err)
	block, err := l.Commit()
	assert.NoError(t, err)
	assert.Len(t, block.TxIds, 1)
}

func TestCheckTransactionAfterCommit(t *testing.T) {
	store := setup(t)
	defer teardown(store)
	l := ledger.New(store)

	alice := newKey(t)
	bob := newKey(t)
	carol := newKey(t)

	create := signedCreate(t, alice, "issue-0001")
	toBob := signedTransfer(t, alice, create, bob.Account())
	toCarol := signedTransfer(t, alice, create, carol.Account())

	assert.NoError(t, l.BeginBlock(1))
	assert.NoError(t, l.DeliverTransaction(create))
	assert.NoError(t, l.DeliverTransaction(toBob))
	_, err := l.EndBlock()
	assert.NoError(t, err)
	_, err = l.Commit()
	assert.NoError(t, err)

	// the mempool check now sees the committed spend
	assert.Equal(t, fault.ErrDoubleSpend, l.CheckTransaction(toCarol))
	assert.Equal(t, fault.ErrTransactionAlreadyExists, l.CheckTransaction(toBob))
}

// a crash between storing transactions and storing the block record
// must be recoverable when consensus replays the same height
func TestCommitReplayAfterInterruption(t *testing.T) {
	store := setup(t)
	defer teardown(store)
	l := ledger.New(store)

	alice := newKey(t)
	bob := newKey(t)

	create := signedCreate(t, alice, "issue-0001")
	assert.NoError(t, l.BeginBlock(1))
	assert.NoError(t, l.DeliverTransaction(create))
	_, err := l.EndBlock()
	assert.NoError(t, err)
	_, err = l.Commit()
	assert.NoError(t, err)

	// deliver block two but never commit it; the pre-commit record is
	// durable after end block
	newIssue := signedCreate(t, alice, "issue-0002")
	transfer := signedTransfer(t, alice, create, bob.Account())
	assert.NoError(t, l.BeginBlock(2))
	assert.NoError(t, l.DeliverTransaction(newIssue))
	assert.NoError(t, l.DeliverTransaction(transfer))
	appHash, err := l.EndBlock()
	assert.NoError(t, err)

	// the interrupted commit made only the transfer durable before the
	// block record could be written
	assert.NoError(t, store.StoreTransactions([]*transactionrecord.Transaction{transfer}))

	// a fresh ledger stands in for the restarted process
	restarted := ledger.New(store)
	assert.NoError(t, restarted.BeginBlock(2))
	assert.NoError(t, restarted.DeliverTransaction(newIssue))
	assert.NoError(t, restarted.DeliverTransaction(transfer))

	replayHash, err := restarted.EndBlock()
	assert.NoError(t, err)
	assert.Equal(t, appHash, replayHash)

	block, err := restarted.Commit()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), block.Height)
	assert.Equal(t, []digest.Digest{newIssue.Id, transfer.Id}, block.TxIds)

	latest, err := store.GetLatestBlock()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), latest.Height)

	// both transactions are durable exactly once
	_, err = store.GetTransaction(newIssue.Id)
	assert.NoError(t, err)
	_, err = store.GetTransaction(transfer.Id)
	assert.NoError(t, err)

	spender, err := store.GetSpent(transactionrecord.OutputLocation{
		TxId:        create.Id,
		OutputIndex: 0,
	})
	assert.NoError(t, err)
	assert.Equal(t, transfer.Id, *spender)

	// a later duplicate delivery is no longer excused
	assert.NoError(t, restarted.BeginBlock(3))
	assert.Equal(t, fault.ErrTransactionAlreadyExists, restarted.DeliverTransaction(transfer))
}
