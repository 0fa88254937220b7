// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain defines the blockchain access contract the vault
// depends on: unspent output lookup for a funding address, fee rate
// estimation, raw transaction broadcast, and confirmation queries.  The
// contract is pull-only; the vault never subscribes to notifications.
package chain

// Utxo describes a spendable output paying to a watched address.
type Utxo struct {
	// TxID is the hex hash of the transaction containing the output.
	TxID string

	// Vout is the index of the output within that transaction.
	Vout uint32

	// Amount is the output value in satoshis.
	Amount int64
}

// FeeRates carries fee rate tiers in satoshis per virtual byte.
type FeeRates struct {
	// Fast targets inclusion within roughly two blocks.
	Fast int64

	// Normal targets inclusion within roughly six blocks.
	Normal int64

	// Slow targets inclusion within roughly a day.
	Slow int64
}

// Interface allows more than one backing blockchain source, such as a
// btcd or bitcoind JSON-RPC node, as long as a backend implements these
// four queries.
type Interface interface {
	// ListUnspent returns the spendable outputs paying to address.
	ListUnspent(address string) ([]Utxo, error)

	// FeeRates returns current fee rate tiers.
	FeeRates() (FeeRates, error)

	// Broadcast submits a fully signed raw transaction to the network
	// and returns its hash.
	Broadcast(rawTx []byte) (string, error)

	// Confirmations returns the number of confirmations of a
	// broadcast transaction.  Zero means the transaction is known but
	// unmined.
	Confirmations(txHash string) (int64, error)
}
