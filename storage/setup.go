// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"

	"github.com/metolius/ledgerd/fault"
)

// Config - storage backend parameters
type Config struct {
	Database string `gluamapper:"database" json:"database"`
	ReadOnly bool   `gluamapper:"read_only" json:"read_only"`
}

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Transactions   *PoolHandle `prefix:"T"`
	Assets         *PoolHandle `prefix:"A"`
	Spend          *PoolHandle `prefix:"S"`
	OwnerNextCount *PoolHandle `prefix:"N"`
	OwnerList      *PoolHandle `prefix:"L"`
	Blocks         *PoolHandle `prefix:"B"`
	PreCommit      *PoolHandle `prefix:"P"`
	ValidatorSets  *PoolHandle `prefix:"V"`
	Elections      *PoolHandle `prefix:"E"`
	TestData       *PoolHandle `prefix:"Z"`
}

// Store - a single opened ledger database and its set of pools
//
// the mutex serialises commits; readers go straight to the pools
type Store struct {
	sync.Mutex
	Pool pools

	log      *logger.L
	db       *leveldb.DB
	access   DataAccess
	cache    Cache
	readOnly bool
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// NewStore - open up the database connection
//
// this must be called before any pool is accessed
func NewStore(cfg Config) (*Store, error) {

	databaseName := cfg.Database + "-data.leveldb"

	db, version, err := getDB(databaseName, cfg.ReadOnly)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		db.Close()
		return nil, fmt.Errorf("database version: %d > current version: %d", version, currentDBVersion)
	}

	if 0 == version && !cfg.ReadOnly {
		// database was empty so tag as current version
		err = putVersion(db, currentDBVersion)
		if nil != err {
			db.Close()
			return nil, err
		}
	}

	store := &Store{
		log:      logger.New("storage"),
		db:       db,
		cache:    newCache(),
		readOnly: cfg.ReadOnly,
	}
	store.access = newDataAccess(db, store.cache)

	// this will be a struct type
	poolType := reflect.TypeOf(store.Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&store.Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			db.Close()
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix:     prefix,
			limit:      limit,
			dataAccess: store.access,
		}

		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	return store, nil
}

// Close - close the database connection
func (s *Store) Close() {
	s.Lock()
	defer s.Unlock()

	if nil != s.db {
		s.db.Close()
		s.db = nil
		s.cache.Clear()
	}
}

// IsReadOnly - true when the store rejects commits
func (s *Store) IsReadOnly() bool {
	return s.readOnly
}

// begin a batch; the store lock must already be held
func (s *Store) begin() error {
	if s.readOnly {
		return fault.ErrDatabaseIsReadOnly
	}
	if nil == s.db {
		return fault.ErrNotInitialised
	}
	return s.access.Begin()
}

// return:
//   database handle
//   version number
func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
