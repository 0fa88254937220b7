// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vault implements the core of the multisig wallet service: a
// registry of m-of-n wallets with deterministic identities and the
// lifecycle engine that builds, signs, finalizes, broadcasts and tracks
// their transactions.
//
// The engine is stateless between calls; all state lives in persisted
// records.  Concurrent calls touching the same transaction are
// serialized by a per-transaction-id lock, so independent signers may
// submit simultaneously without corrupting signature counts.
package vault

import (
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/covault/covault/chain"
	"github.com/covault/covault/msigscript"
	"github.com/covault/covault/vaultdb"
)

// Manager is the wallet registry and transaction lifecycle engine.  The
// script engine, chain access and storage are injected so every
// collaborator can be substituted.
type Manager struct {
	db     vaultdb.DB
	engine msigscript.Engine
	chain  chain.Interface
	params *chaincfg.Params

	txLocks lockTable
}

// New returns a Manager operating on the given collaborators.
func New(db vaultdb.DB, engine msigscript.Engine, c chain.Interface,
	params *chaincfg.Params) *Manager {

	return &Manager{
		db:     db,
		engine: engine,
		chain:  c,
		params: params,
	}
}
