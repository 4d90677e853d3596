// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/metolius/ledgerd/account"
	"github.com/metolius/ledgerd/digest"
	"github.com/metolius/ledgerd/storage"
	"github.com/metolius/ledgerd/transactionrecord"
)

// test database files
const (
	testingDirName   = "testing"
	databaseFileName = testingDirName + "/test"
)

// common test setup routines

// remove all files created by test
func removeFiles() {
	os.RemoveAll(testingDirName)
}

// configure for testing
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

// post test cleanup
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

// a string data item
type stringElement struct {
	key   string
	value string
}

// make an element array
func makeElements(input []stringElement) []storage.Element {
	output := make([]storage.Element, 0, len(input))
	for _, e := range input {
		output = append(output, storage.Element{
			Key:   []byte(e.key),
			Value: []byte(e.value),
		})
	}
	return output
}

// build a signed CREATE for one owner
func makeCreate(t *testing.T, key *account.PrivateKey, serial string) *transactionrecord.Transaction {
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
	if nil != err {
		t.Fatalf("new create error: %s", err)
	}
	err = tx.Sign([]*account.PrivateKey{key})
	if nil != err {
		t.Fatalf("sign error: %s", err)
	}
	return tx
}

// build a signed CREATE splitting one hundred units over two outputs
func makeSplitCreate(t *testing.T, key *account.PrivateKey, serial string) *transactionrecord.Transaction {
	owner := key.Account()
	tx, err := transactionrecord.NewCreate(
		[]*account.Account{owner},
		[]transactionrecord.OutputSpec{{
			Owners: []*account.Account{owner},
			Amount: 50,
		}, {
			Owners: []*account.Account{owner},
			Amount: 50,
		}},
		map[string]interface{}{"serial": serial},
		nil,
	)
	if nil != err {
		t.Fatalf("new create error: %s", err)
	}
	err = tx.Sign([]*account.PrivateKey{key})
	if nil != err {
		t.Fatalf("sign error: %s", err)
	}
	return tx
}

// build a signed TRANSFER spending every output of a prior transaction
func makeTransfer(t *testing.T, key *account.PrivateKey, prior *transactionrecord.Transaction, newOwner *account.Account) *transactionrecord.Transaction {
	assetId, err := prior.Assets[0].AssetId()
	if nil != err {
		t.Fatalf("asset id error: %s", err)
	}

	amount := uint64(0)
	for _, output := range prior.Outputs {
		amount += output.Amount
	}

	tx, err := transactionrecord.NewTransfer(
		prior.ToInputs(),
		[]transactionrecord.OutputSpec{{
			Owners: []*account.Account{newOwner},
			Amount: amount,
		}},
		[]digest.Digest{assetId},
		nil,
	)
	if nil != err {
		t.Fatalf("new transfer error: %s", err)
	}
	err = tx.Sign([]*account.PrivateKey{key})
	if nil != err {
		t.Fatalf("sign error: %s", err)
	}
	return tx
}
