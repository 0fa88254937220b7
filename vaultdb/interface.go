// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vaultdb defines the persistence contract consumed by the
// vault package.  The store is an opaque byte-keyed map with a prefix
// scan; backends provide durability (ldb) or live entirely in memory
// (memdb).  Record semantics, serialization, and locking all live
// above this interface.
package vaultdb

import "errors"

// ErrKeyNotFound is returned by Get when no value is stored under the
// requested key.
var ErrKeyNotFound = errors.New("vaultdb: key not found")

// DB is the minimal key/value store the vault requires.  All methods
// must be safe for concurrent use.
type DB interface {
	// Get returns the value stored under key.  It returns
	// ErrKeyNotFound if the key is absent.
	Get(key []byte) ([]byte, error)

	// Put stores value under key, overwriting any existing value.
	Put(key, value []byte) error

	// Delete removes the value stored under key.  Deleting an absent
	// key is not an error.
	Delete(key []byte) error

	// KeysWithPrefix returns every stored key beginning with prefix,
	// in unspecified order.
	KeysWithPrefix(prefix []byte) ([][]byte, error)

	// Close releases any resources held by the backend.
	Close() error
}
