// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vaultdb_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covault/covault/vaultdb"
	"github.com/covault/covault/vaultdb/ldb"
	"github.com/covault/covault/vaultdb/memdb"
)

// testBackend exercises the vaultdb contract against a backend.
func testBackend(t *testing.T, db vaultdb.DB) {
	t.Helper()

	// Absent keys.
	_, err := db.Get([]byte("missing"))
	require.ErrorIs(t, err, vaultdb.ErrKeyNotFound)

	// Put then get, with overwrite.
	require.NoError(t, db.Put([]byte("wallet:a"), []byte("one")))
	require.NoError(t, db.Put([]byte("wallet:a"), []byte("two")))
	value, err := db.Get([]byte("wallet:a"))
	require.NoError(t, err)
	require.Equal(t, []byte("two"), value)

	// Prefix scans honor namespaces.
	require.NoError(t, db.Put([]byte("wallet:b"), []byte("x")))
	require.NoError(t, db.Put([]byte("tx:1"), []byte("y")))
	keys, err := db.KeysWithPrefix([]byte("wallet:"))
	require.NoError(t, err)
	require.Len(t, keys, 2)
	keys, err = db.KeysWithPrefix([]byte("tx:"))
	require.NoError(t, err)
	require.Len(t, keys, 1)

	// Deleting an absent key is not an error.
	require.NoError(t, db.Delete([]byte("missing")))
	require.NoError(t, db.Delete([]byte("tx:1")))
	_, err = db.Get([]byte("tx:1"))
	require.ErrorIs(t, err, vaultdb.ErrKeyNotFound)
}

func TestMemDB(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	defer db.Close()

	testBackend(t, db)
}

func TestLevelDB(t *testing.T) {
	t.Parallel()

	db, err := ldb.Open(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	defer db.Close()

	testBackend(t, db)
}
