// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"
)

// DataAccess - batch staging area in front of the database
//
// writes go to a batch while one is open and reach the shared read
// cache only after Commit has written the batch; a concurrent reader
// never observes records of a commit that is later aborted
type DataAccess interface {
	Abort()
	Begin() error
	Commit() error
	Delete([]byte)
	Get([]byte) ([]byte, error)
	Has([]byte) (bool, error)
	InUse() bool
	Iterator(*ldb_util.Range) iterator.Iterator
	Put([]byte, []byte)
}

// a write recorded in the batch, replayed into the cache on commit
type stagedUpdate struct {
	op    int
	key   string
	value []byte
}

type dataAccess struct {
	sync.Mutex
	inUse  bool
	db     *leveldb.DB
	batch  *leveldb.Batch
	staged []stagedUpdate
	cache  Cache
}

func newDataAccess(db *leveldb.DB, cache Cache) DataAccess {
	return &dataAccess{
		inUse: false,
		db:    db,
		batch: new(leveldb.Batch),
		cache: cache,
	}
}

func (d *dataAccess) Begin() error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		return fmt.Errorf("batch already in use")
	}

	d.inUse = true
	return nil
}

// writes go to the batch when one is open, otherwise straight to the
// database; the cache only ever holds records that are durable, so a
// staged write stays invisible to readers until its batch commits
func (d *dataAccess) Put(key []byte, value []byte) {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		d.batch.Put(key, value)
		d.staged = append(d.staged, stagedUpdate{dbPut, string(key), value})
		return
	}
	err := d.db.Put(key, value, nil)
	logger.PanicIfError("storage.Put", err)
	d.cache.Set(dbPut, string(key), value)
}

func (d *dataAccess) Delete(key []byte) {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		d.batch.Delete(key)
		d.staged = append(d.staged, stagedUpdate{dbDelete, string(key), []byte{}})
		return
	}
	err := d.db.Delete(key, nil)
	logger.PanicIfError("storage.Delete", err)
	d.cache.Set(dbDelete, string(key), []byte{})
}

func (d *dataAccess) Commit() error {
	d.Lock()
	defer d.Unlock()

	err := d.db.Write(d.batch, nil)
	if nil != err {
		return err
	}
	for _, update := range d.staged {
		d.cache.Set(update.op, update.key, update.value)
	}
	d.staged = nil
	d.batch.Reset()
	d.inUse = false
	return nil
}

func (d *dataAccess) Abort() {
	d.Lock()
	defer d.Unlock()

	d.batch.Reset()
	d.staged = nil
	d.inUse = false
}

func (d *dataAccess) Get(key []byte) ([]byte, error) {
	val, found := d.getFromCache(key)
	if found {
		return val, nil
	}
	return d.getFromDB(key)
}

func (d *dataAccess) getFromCache(key []byte) ([]byte, bool) {
	return d.cache.Get(string(key))
}

func (d *dataAccess) getFromDB(key []byte) ([]byte, error) {
	return d.db.Get(key, nil)
}

func (d *dataAccess) Iterator(searchRange *ldb_util.Range) iterator.Iterator {
	return d.db.NewIterator(searchRange, nil)
}

func (d *dataAccess) Has(key []byte) (bool, error) {
	_, found := d.getFromCache(key)
	if found {
		return true, nil
	}
	return d.db.Has(key, nil)
}

func (d *dataAccess) InUse() bool {
	d.Lock()
	defer d.Unlock()
	return d.inUse
}
