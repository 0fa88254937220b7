// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/covault/covault/vaultdb"
)

// Persisted record keys follow a namespace-per-record-type scheme so
// each namespace can be enumerated with a single prefix scan.
const (
	// walletKeyPrefix namespaces wallet records by wallet id.
	walletKeyPrefix = "wallet:"

	// txKeyPrefix namespaces transaction records by transaction id.
	txKeyPrefix = "tx:"

	// walletTxKeyPrefix namespaces the per-wallet transaction index:
	// wtx:<walletID>:<txID> -> empty.  It exists so a wallet's
	// transactions can be listed without scanning every record.
	walletTxKeyPrefix = "wtx:"
)

func walletKey(walletID string) []byte {
	return []byte(walletKeyPrefix + walletID)
}

func txKey(txID string) []byte {
	return []byte(txKeyPrefix + txID)
}

func walletTxKey(walletID, txID string) []byte {
	return []byte(walletTxKeyPrefix + walletID + ":" + txID)
}

// putWallet serializes and stores a wallet record.
func (m *Manager) putWallet(w *Wallet) error {
	value, err := json.Marshal(w)
	if err != nil {
		return newError(ErrDatabase, "serialize wallet record", err)
	}
	if err := m.db.Put(walletKey(w.WalletID), value); err != nil {
		return newError(ErrDatabase, "store wallet record", err)
	}
	return nil
}

// fetchWallet loads a wallet record by id.
func (m *Manager) fetchWallet(walletID string) (*Wallet, error) {
	value, err := m.db.Get(walletKey(walletID))
	if errors.Is(err, vaultdb.ErrKeyNotFound) {
		return nil, newError(ErrWalletNotFound,
			"unknown wallet "+walletID, nil)
	}
	if err != nil {
		return nil, newError(ErrDatabase, "load wallet record", err)
	}

	var w Wallet
	if err := json.Unmarshal(value, &w); err != nil {
		return nil, newError(ErrDatabase, "decode wallet record", err)
	}
	return &w, nil
}

// putTx serializes and stores a transaction record.
func (m *Manager) putTx(tx *Tx) error {
	value, err := json.Marshal(tx)
	if err != nil {
		return newError(ErrDatabase, "serialize transaction record",
			err)
	}
	if err := m.db.Put(txKey(tx.TxID), value); err != nil {
		return newError(ErrDatabase, "store transaction record", err)
	}
	return nil
}

// fetchTx loads a transaction record by id.
func (m *Manager) fetchTx(txID string) (*Tx, error) {
	value, err := m.db.Get(txKey(txID))
	if errors.Is(err, vaultdb.ErrKeyNotFound) {
		return nil, newError(ErrTxNotFound,
			"unknown transaction "+txID, nil)
	}
	if err != nil {
		return nil, newError(ErrDatabase, "load transaction record",
			err)
	}

	var tx Tx
	if err := json.Unmarshal(value, &tx); err != nil {
		return nil, newError(ErrDatabase,
			"decode transaction record", err)
	}
	return &tx, nil
}

// walletTxIDs returns the transaction ids indexed under a wallet.
func (m *Manager) walletTxIDs(walletID string) ([]string, error) {
	prefix := walletTxKeyPrefix + walletID + ":"
	keys, err := m.db.KeysWithPrefix([]byte(prefix))
	if err != nil {
		return nil, newError(ErrDatabase,
			"scan wallet transaction index", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(string(key), prefix))
	}
	return ids, nil
}
