// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memdb implements the vaultdb contract with an in-memory map.
// It backs unit tests and throwaway tooling runs; nothing survives the
// process.
package memdb

import (
	"bytes"
	"sync"

	"github.com/covault/covault/vaultdb"
)

type store struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// New returns an empty in-memory store.
func New() vaultdb.DB {
	return &store{m: make(map[string][]byte)}
}

func (s *store) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.m[string(key)]
	if !ok {
		return nil, vaultdb.ErrKeyNotFound
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

func (s *store) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.m[string(key)] = cp
	return nil
}

func (s *store) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, string(key))
	return nil
}

func (s *store) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys [][]byte
	for k := range s.m {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, []byte(k))
		}
	}
	return keys, nil
}

func (s *store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = make(map[string][]byte)
	return nil
}
