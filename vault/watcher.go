// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"sync"

	"github.com/lightningnetwork/lnd/ticker"
)

// ConfWatcher periodically drives Status for a wallet's broadcasted
// transactions so confirmations are picked up without a caller polling
// by hand.  It is purely a convenience on top of the pull-based Status
// call; every poll is idempotent.
type ConfWatcher struct {
	mgr      *Manager
	walletID string
	ticker   ticker.Ticker

	started sync.Once
	stopped sync.Once
	quit    chan struct{}
	wg      sync.WaitGroup
}

// NewConfWatcher returns a watcher polling the given wallet on the
// ticker's cadence.
func NewConfWatcher(mgr *Manager, walletID string,
	t ticker.Ticker) *ConfWatcher {

	return &ConfWatcher{
		mgr:      mgr,
		walletID: walletID,
		ticker:   t,
		quit:     make(chan struct{}),
	}
}

// Start launches the polling loop.
func (w *ConfWatcher) Start() {
	w.started.Do(func() {
		w.wg.Add(1)
		go w.pollLoop()
	})
}

// Stop halts the polling loop and waits for it to exit.
func (w *ConfWatcher) Stop() {
	w.stopped.Do(func() {
		close(w.quit)
		w.wg.Wait()
	})
}

func (w *ConfWatcher) pollLoop() {
	defer w.wg.Done()

	w.ticker.Resume()
	defer w.ticker.Stop()

	for {
		select {
		case <-w.ticker.Ticks():
			w.pollOnce()

		case <-w.quit:
			return
		}
	}
}

// pollOnce queries every broadcasted transaction of the wallet once.
// Failures are logged and retried on the next tick rather than
// propagated; the watcher has no caller to return them to.
func (w *ConfWatcher) pollOnce() {
	status := StatusBroadcasted
	txs, err := w.mgr.Transactions(w.walletID, &status)
	if err != nil {
		log.Errorf("Confirmation poll for wallet %s: %v",
			w.walletID, err)
		return
	}

	for _, tx := range txs {
		summary, err := w.mgr.Status(tx.TxID)
		if err != nil {
			log.Errorf("Confirmation poll for transaction %s: %v",
				tx.TxID, err)
			continue
		}
		if summary.Status == StatusConfirmed {
			log.Infof("Watcher observed confirmation of %s",
				tx.TxID)
		}
	}
}
