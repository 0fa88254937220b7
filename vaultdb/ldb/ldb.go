// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ldb implements the vaultdb contract on top of goleveldb,
// giving the vault a durable single-file store with cheap prefix
// iteration.
package ldb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/covault/covault/vaultdb"
)

// store wraps a leveldb handle.  leveldb handles are already safe for
// concurrent use, so no additional locking is needed here.
type store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) the database at path.
func Open(path string) (vaultdb.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &store{db: db}, nil
}

func (s *store) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, vaultdb.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *store) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *store) Delete(key []byte) error {
	// leveldb treats deletion of an absent key as a no-op, matching
	// the vaultdb contract.
	return s.db.Delete(key, nil)
}

func (s *store) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var keys [][]byte
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		keys = append(keys, key)
	}
	return keys, iter.Error()
}

func (s *store) Close() error {
	return s.db.Close()
}
