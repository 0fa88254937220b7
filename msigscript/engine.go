// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package msigscript implements the script and address engine behind
// the vault: deriving P2SH multisig spending scripts and funding
// addresses, building serializable transaction templates, verifying and
// accumulating per-input signatures, and finalizing templates into
// broadcastable raw transactions.
//
// Templates are carried as PSBT packets so the redeem script and every
// collected partial signature survive serialization round trips.
package msigscript

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

var (
	// ErrUnknownPubKey is returned when a signature is supplied for a
	// public key that is not part of the template's redeem script.
	ErrUnknownPubKey = errors.New("public key not in redeem script")

	// ErrDuplicateSignature is returned when a partial signature for
	// the same public key and input has already been applied.
	ErrDuplicateSignature = errors.New("duplicate signature for public key")

	// ErrSignatureVerify is returned when a supplied signature does
	// not verify against the input digest and public key.
	ErrSignatureVerify = errors.New("signature verification failed")

	// ErrIncomplete is returned by Finalize when an input has fewer
	// valid signatures than the redeem script requires.
	ErrIncomplete = errors.New("not enough signatures to finalize")
)

// Template is a partially constructed, serializable transaction that
// accumulates inputs, outputs and signatures before finalization.
type Template interface {
	// AddInput appends a funding outpoint.
	AddInput(txid string, vout uint32) error

	// AddOutput appends an output paying amount satoshis to address.
	AddOutput(address string, amount int64) error

	// InputCount returns the number of funding inputs.
	InputCount() int

	// InputDigest returns the exact bytes a participant must sign for
	// the given input.
	InputDigest(idx int) ([]byte, error)

	// ApplySignature verifies sig (DER encoded, no sighash byte)
	// against the input digest and pubKey and records it.  The
	// template is unchanged when an error is returned.
	ApplySignature(idx int, pubKey, sig []byte) error

	// SignatureCount returns the number of signatures recorded for
	// the given input.
	SignatureCount(idx int) int

	// Finalize assembles the collected signatures into signature
	// scripts and returns the serialized, broadcastable transaction.
	// Every input must hold at least the required number of
	// signatures.
	Finalize() ([]byte, error)

	// Serialize returns the template, including all signing state, as
	// a PSBT packet.
	Serialize() ([]byte, error)
}

// Engine derives multisig spending scripts and addresses and constructs
// the templates that spend them.  It is injected into the vault so the
// script machinery can be swapped without touching lifecycle logic.
type Engine interface {
	// DeriveAddress returns the funding address and redeem script for
	// an m-of-n policy over the given serialized public keys.  The
	// result is a deterministic function of its arguments, including
	// key order.
	DeriveAddress(m int, pubKeys [][]byte) (string, []byte, error)

	// NewTemplate starts an empty template spending outputs of the
	// given policy.
	NewTemplate(m int, pubKeys [][]byte) (Template, error)

	// ParseTemplate reconstructs a template, with all signing state,
	// from its serialized form.
	ParseTemplate(raw []byte) (Template, error)
}

// p2shEngine implements Engine with classic pay-to-script-hash
// multisig.
type p2shEngine struct {
	params *chaincfg.Params
}

// NewEngine returns the P2SH multisig engine for the given network.
func NewEngine(params *chaincfg.Params) Engine {
	return &p2shEngine{params: params}
}

// multiSigScript builds the m-of-n CHECKMULTISIG redeem script.  Key
// order is preserved exactly as supplied.
func (e *p2shEngine) multiSigScript(m int, pubKeys [][]byte) ([]byte, error) {
	if m <= 0 || m > len(pubKeys) {
		return nil, fmt.Errorf("invalid policy %d of %d", m,
			len(pubKeys))
	}

	addrs := make([]*btcutil.AddressPubKey, len(pubKeys))
	for i, pubKey := range pubKeys {
		if _, err := btcec.ParsePubKey(pubKey); err != nil {
			return nil, fmt.Errorf("public key %d: %w", i, err)
		}
		addr, err := btcutil.NewAddressPubKey(pubKey, e.params)
		if err != nil {
			return nil, fmt.Errorf("public key %d: %w", i, err)
		}
		addrs[i] = addr
	}

	return txscript.MultiSigScript(addrs, m)
}

func (e *p2shEngine) DeriveAddress(m int, pubKeys [][]byte) (string, []byte,
	error) {

	script, err := e.multiSigScript(m, pubKeys)
	if err != nil {
		return "", nil, err
	}

	addr, err := btcutil.NewAddressScriptHash(script, e.params)
	if err != nil {
		return "", nil, err
	}

	return addr.EncodeAddress(), script, nil
}

func (e *p2shEngine) NewTemplate(m int, pubKeys [][]byte) (Template, error) {
	script, err := e.multiSigScript(m, pubKeys)
	if err != nil {
		return nil, err
	}

	parsed := make([]*btcec.PublicKey, len(pubKeys))
	for i, pubKey := range pubKeys {
		// Parse errors were already rejected by multiSigScript.
		parsed[i], _ = btcec.ParsePubKey(pubKey)
	}

	return newP2SHTemplate(e.params, m, script, parsed), nil
}

func (e *p2shEngine) ParseTemplate(raw []byte) (Template, error) {
	packet, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	if err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	if len(packet.Inputs) == 0 {
		return nil, errors.New("template has no inputs")
	}

	redeemScript := packet.Inputs[0].RedeemScript
	if len(redeemScript) == 0 {
		return nil, errors.New("template input missing redeem script")
	}

	class, addrs, reqSigs, err := txscript.ExtractPkScriptAddrs(
		redeemScript, e.params,
	)
	if err != nil {
		return nil, fmt.Errorf("parse redeem script: %w", err)
	}
	if class != txscript.MultiSigTy {
		return nil, fmt.Errorf("redeem script is %v, not multisig",
			class)
	}

	pubKeys := make([]*btcec.PublicKey, len(addrs))
	for i, addr := range addrs {
		pubKeyAddr, ok := addr.(*btcutil.AddressPubKey)
		if !ok {
			return nil, errors.New("non-pubkey address in " +
				"redeem script")
		}
		pubKeys[i] = pubKeyAddr.PubKey()
	}

	t := newP2SHTemplate(e.params, reqSigs, redeemScript, pubKeys)
	t.tx = packet.UnsignedTx
	t.partialSigs = make([][]*psbt.PartialSig, len(packet.Inputs))
	for i, input := range packet.Inputs {
		t.partialSigs[i] = input.PartialSigs
	}
	return t, nil
}
