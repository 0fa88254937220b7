// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/covault/covault/chain"
	"github.com/covault/covault/msigscript"
	"github.com/covault/covault/signer/memsigner"
	"github.com/covault/covault/vaultdb/memdb"
)

var testParams = &chaincfg.RegressionNetParams

const testFundingTxid = "aa14ab72570f4d2f3a1931bf3757f6d4b935ed4c39e2fe65" +
	"3a0b61ea8dd64977"

// mockChain is a configurable in-memory chain.Interface.
type mockChain struct {
	mu sync.Mutex

	utxos   []chain.Utxo
	listErr error

	rates chain.FeeRates

	broadcastErr error
	broadcasts   [][]byte

	confs   map[string]int64
	confErr error
}

func newMockChain() *mockChain {
	return &mockChain{
		rates: chain.FeeRates{Fast: 20, Normal: 10, Slow: 2},
		confs: make(map[string]int64),
	}
}

func (c *mockChain) ListUnspent(address string) ([]chain.Utxo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listErr != nil {
		return nil, c.listErr
	}
	return append([]chain.Utxo(nil), c.utxos...), nil
}

func (c *mockChain) FeeRates() (chain.FeeRates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rates, nil
}

func (c *mockChain) Broadcast(rawTx []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broadcastErr != nil {
		return "", c.broadcastErr
	}

	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return "", fmt.Errorf("mock broadcast: %w", err)
	}
	c.broadcasts = append(c.broadcasts, rawTx)
	return tx.TxHash().String(), nil
}

func (c *mockChain) Confirmations(txHash string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.confErr != nil {
		return 0, c.confErr
	}
	return c.confs[txHash], nil
}

func (c *mockChain) setUtxo(amount int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.utxos = []chain.Utxo{{TxID: testFundingTxid, Vout: 0, Amount: amount}}
}

func (c *mockChain) setConfirmations(txHash string, confs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confs[txHash] = confs
}

// testManager wires a Manager from the in-memory store, the real P2SH
// engine, and the mock chain.
func testManager(t *testing.T) (*Manager, *mockChain) {
	t.Helper()

	db := memdb.New()
	t.Cleanup(func() { db.Close() })

	mock := newMockChain()
	mgr := New(db, msigscript.NewEngine(testParams), mock, testParams)
	return mgr, mock
}

// testSigners generates n signing credentials and the matching
// participants, named user-0..user-n-1.
func testSigners(t *testing.T, n int) (*memsigner.Signer, []Participant) {
	t.Helper()

	signers := memsigner.New()
	participants := make([]Participant, n)
	for i := range participants {
		cred := fmt.Sprintf("user-%d", i)
		pubKey, err := signers.Generate(cred)
		require.NoError(t, err)
		participants[i] = Participant{
			PubKey: fmt.Sprintf("%x", pubKey),
			UserID: cred,
		}
	}
	return signers, participants
}

// signDigests signs every digest with the given credential.
func signDigests(t *testing.T, signers *memsigner.Signer, cred string,
	digests [][]byte) [][]byte {

	t.Helper()

	sigs := make([][]byte, len(digests))
	for i, digest := range digests {
		sig, err := signers.Sign(digest, cred)
		require.NoError(t, err)
		sigs[i] = sig
	}
	return sigs
}
