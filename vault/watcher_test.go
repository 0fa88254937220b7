// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"github.com/stretchr/testify/require"
)

// TestConfWatcher drives the watcher with a forced ticker and checks
// that it alone moves a broadcasted transaction to confirmed once the
// chain reports a confirmation.
func TestConfWatcher(t *testing.T) {
	t.Parallel()

	mgr, mock := testManager(t)
	w, signers, participants := setup2of3(t, mgr, mock, 1_000_000)

	tx, err := mgr.Initiate(w.WalletID, testRecipient(t), 100_000, 10, "")
	require.NoError(t, err)
	_, err = submitFor(t, mgr, signers, participants[0], tx.TxID)
	require.NoError(t, err)
	_, err = submitFor(t, mgr, signers, participants[1], tx.TxID)
	require.NoError(t, err)
	receipt, err := mgr.Broadcast(tx.TxID)
	require.NoError(t, err)

	tick := ticker.NewForce(time.Hour)
	watcher := NewConfWatcher(mgr, w.WalletID, tick)
	watcher.Start()
	defer watcher.Stop()

	// A tick before any confirmation must not move the record.
	tick.Force <- time.Now()
	confirmed := StatusConfirmed
	txs, err := mgr.Transactions(w.WalletID, &confirmed)
	require.NoError(t, err)
	require.Empty(t, txs)

	mock.setConfirmations(receipt.TxHash, 3)

	// Keep ticking until the watcher picks the confirmation up.  The
	// listing only reflects the transition after the watcher's own
	// Status call persisted it.
	require.Eventually(t, func() bool {
		select {
		case tick.Force <- time.Now():
		default:
		}
		txs, err := mgr.Transactions(w.WalletID, &confirmed)
		require.NoError(t, err)
		return len(txs) == 1 && txs[0].TxID == tx.TxID
	}, 5*time.Second, 10*time.Millisecond)

	watcher.Stop()

	// Idempotent stop and start-after-stop are harmless.
	watcher.Stop()
	watcher.Start()
}
