// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
)

// Confirmation targets, in blocks, behind the FeeRates tiers.
const (
	fastConfTarget   = 2
	normalConfTarget = 6
	slowConfTarget   = 144
)

// RPCClient implements Interface against a btcd or bitcoind JSON-RPC
// node over HTTP POST.
type RPCClient struct {
	client *rpcclient.Client
	params *chaincfg.Params
}

// Ensure RPCClient satisfies the chain contract.
var _ Interface = (*RPCClient)(nil)

// RPCConfig describes how to reach the JSON-RPC node.
type RPCConfig struct {
	Host string
	User string
	Pass string

	// DisableTLS turns off TLS for the connection.  Typical for
	// localhost bitcoind setups.
	DisableTLS bool
}

// NewRPCClient connects a new RPC-backed chain client.
func NewRPCClient(cfg RPCConfig, params *chaincfg.Params) (*RPCClient, error) {
	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		DisableTLS:   cfg.DisableTLS,
		HTTPPostMode: true,
	}, nil)
	if err != nil {
		return nil, err
	}
	return &RPCClient{client: client, params: params}, nil
}

// Shutdown tears down the underlying RPC connection.
func (c *RPCClient) Shutdown() {
	c.client.Shutdown()
}

// ListUnspent returns the spendable outputs paying to address, requiring
// at least one confirmation so that the vault never builds on top of
// unmined funding.
func (c *RPCClient) ListUnspent(address string) ([]Utxo, error) {
	addr, err := btcutil.DecodeAddress(address, c.params)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", address, err)
	}

	results, err := c.client.ListUnspentMinMaxAddresses(
		1, 9999999, []btcutil.Address{addr},
	)
	if err != nil {
		return nil, err
	}

	utxos := make([]Utxo, 0, len(results))
	for _, result := range results {
		if !result.Spendable {
			continue
		}
		amount, err := btcutil.NewAmount(result.Amount)
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, Utxo{
			TxID:   result.TxID,
			Vout:   result.Vout,
			Amount: int64(amount),
		})
	}

	log.Debugf("Found %d spendable outputs for %s", len(utxos), address)
	return utxos, nil
}

// FeeRates queries estimatesmartfee for each tier.
func (c *RPCClient) FeeRates() (FeeRates, error) {
	fast, err := c.smartFee(fastConfTarget)
	if err != nil {
		return FeeRates{}, err
	}
	normal, err := c.smartFee(normalConfTarget)
	if err != nil {
		return FeeRates{}, err
	}
	slow, err := c.smartFee(slowConfTarget)
	if err != nil {
		return FeeRates{}, err
	}
	return FeeRates{Fast: fast, Normal: normal, Slow: slow}, nil
}

// smartFee converts an estimatesmartfee result from BTC/kvB to
// sat/vB, rounding up so the resulting rate never falls below the
// node's estimate.
func (c *RPCClient) smartFee(confTarget int64) (int64, error) {
	mode := btcjson.EstimateModeConservative
	result, err := c.client.EstimateSmartFee(confTarget, &mode)
	if err != nil {
		return 0, err
	}
	if result.FeeRate == nil || *result.FeeRate <= 0 {
		return 0, fmt.Errorf("no fee estimate for target %d",
			confTarget)
	}

	perKvb, err := btcutil.NewAmount(*result.FeeRate)
	if err != nil {
		return 0, err
	}
	rate := (int64(perKvb) + 999) / 1000
	if rate < 1 {
		rate = 1
	}
	return rate, nil
}

// Broadcast submits the raw transaction to the node.
func (c *RPCClient) Broadcast(rawTx []byte) (string, error) {
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return "", fmt.Errorf("deserialize raw tx: %w", err)
	}

	hash, err := c.client.SendRawTransaction(&tx, false)
	if err != nil {
		return "", err
	}

	log.Infof("Broadcast transaction %v", hash)
	return hash.String(), nil
}

// Confirmations returns the confirmation count of txHash.
func (c *RPCClient) Confirmations(txHash string) (int64, error) {
	hash, err := chainhash.NewHashFromStr(txHash)
	if err != nil {
		return 0, fmt.Errorf("parse tx hash %q: %w", txHash, err)
	}

	result, err := c.client.GetRawTransactionVerbose(hash)
	if err != nil {
		return 0, err
	}
	return int64(result.Confirmations), nil
}
