// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fastquery_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/fastquery"
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

// a CREATE with two equal outputs followed by a TRANSFER consuming only
// the first of them
func populate(t *testing.T, store *storage.Store) (create, transfer *transactionrecord.Transaction, alice, bob *account.PrivateKey) {
	alice, err := account.NewPrivateKey(true)
	assert.NoError(t, err)
	bob, err = account.NewPrivateKey(true)
	assert.NoError(t, err)

	aliceAccount := alice.Account()

	create, err = transactionrecord.NewCreate(
		[]*account.Account{aliceAccount},
		[]transactionrecord.OutputSpec{
			{Owners: []*account.Account{aliceAccount}, Amount: 50},
			{Owners: []*account.Account{aliceAccount}, Amount: 50},
		},
		map[string]interface{}{"serial": "issue-0001"},
		nil,
	)
	assert.NoError(t, err)
	assert.NoError(t, create.Sign([]*account.PrivateKey{alice}))

	assetId, err := create.Assets[0].AssetId()
	assert.NoError(t, err)

	transfer, err = transactionrecord.NewTransfer(
		[]*transactionrecord.Input{{
			OwnersBefore: []*account.Account{aliceAccount},
			Fulfills: &transactionrecord.OutputLocation{
				TxId:        create.Id,
				OutputIndex: 0,
			},
		}},
		[]transactionrecord.OutputSpec{
			{Owners: []*account.Account{bob.Account()}, Amount: 50},
		},
		[]digest.Digest{assetId},
		nil,
	)
	assert.NoError(t, err)
	assert.NoError(t, transfer.Sign([]*account.PrivateKey{alice}))

	err = store.StoreTransactions([]*transactionrecord.Transaction{create, transfer})
	assert.NoError(t, err)

	return create, transfer, alice, bob
}

func TestGetOutputsByPublicKeyIncludesSpent(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	create, transfer, alice, bob := populate(t, store)

	queries := fastquery.New(store)

	// both of alice's outputs stay listed even though one is spent
	aliceOutputs, err := queries.GetOutputsByPublicKey(alice.Account())
	assert.NoError(t, err)
	assert.Equal(t, []transactionrecord.OutputLocation{
		{TxId: create.Id, OutputIndex: 0},
		{TxId: create.Id, OutputIndex: 1},
	}, aliceOutputs)

	bobOutputs, err := queries.GetOutputsByPublicKey(bob.Account())
	assert.NoError(t, err)
	assert.Equal(t, []transactionrecord.OutputLocation{
		{TxId: transfer.Id, OutputIndex: 0},
	}, bobOutputs)
}

func TestGetSpent(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	create, transfer, _, _ := populate(t, store)

	queries := fastquery.New(store)

	spender, err := queries.GetSpent(transactionrecord.OutputLocation{
		TxId:        create.Id,
		OutputIndex: 0,
	})
	assert.NoError(t, err)
	assert.NotNil(t, spender)
	assert.Equal(t, transfer.Id, spender.Id)

	unspent, err := queries.GetSpent(transactionrecord.OutputLocation{
		TxId:        create.Id,
		OutputIndex: 1,
	})
	assert.NoError(t, err)
	assert.Nil(t, unspent)
}

func TestFiltersPartitionOutputs(t *testing.T) {
	store := setup(t)
	defer teardown(store)

	create, _, alice, _ := populate(t, store)

	queries := fastquery.New(store)

	outputs, err := queries.GetOutputsByPublicKey(alice.Account())
	assert.NoError(t, err)
	assert.Len(t, outputs, 2)

	spent, err := queries.FilterSpentOutputs(outputs)
	assert.NoError(t, err)
	assert.Equal(t, []transactionrecord.OutputLocation{
		{TxId: create.Id, OutputIndex: 0},
	}, spent)

	unspent, err := queries.FilterUnspentOutputs(outputs)
	assert.NoError(t, err)
	assert.Equal(t, []transactionrecord.OutputLocation{
		{TxId: create.Id, OutputIndex: 1},
	}, unspent)

	// the partition is exact
	assert.Equal(t, len(outputs), len(spent)+len(unspent))
}
