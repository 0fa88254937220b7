// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package msigscript

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// p2shTemplate implements Template for classic P2SH multisig spends.
// The unsigned transaction is kept pristine; collected signatures live
// alongside it as PSBT partial sigs until Finalize assembles them.
type p2shTemplate struct {
	params       *chaincfg.Params
	tx           *wire.MsgTx
	m            int
	redeemScript []byte
	pubKeys      []*btcec.PublicKey
	partialSigs  [][]*psbt.PartialSig
}

func newP2SHTemplate(params *chaincfg.Params, m int, redeemScript []byte,
	pubKeys []*btcec.PublicKey) *p2shTemplate {

	return &p2shTemplate{
		params:       params,
		tx:           wire.NewMsgTx(wire.TxVersion),
		m:            m,
		redeemScript: redeemScript,
		pubKeys:      pubKeys,
	}
}

func (t *p2shTemplate) AddInput(txid string, vout uint32) error {
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return fmt.Errorf("parse funding txid %q: %w", txid, err)
	}

	outPoint := wire.NewOutPoint(hash, vout)
	t.tx.AddTxIn(wire.NewTxIn(outPoint, nil, nil))
	t.partialSigs = append(t.partialSigs, nil)
	return nil
}

func (t *p2shTemplate) AddOutput(address string, amount int64) error {
	addr, err := btcutil.DecodeAddress(address, t.params)
	if err != nil {
		return fmt.Errorf("decode address %q: %w", address, err)
	}
	if !addr.IsForNet(t.params) {
		return fmt.Errorf("address %q is for the wrong network",
			address)
	}

	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return err
	}

	t.tx.AddTxOut(wire.NewTxOut(amount, pkScript))
	return nil
}

func (t *p2shTemplate) InputCount() int {
	return len(t.tx.TxIn)
}

func (t *p2shTemplate) InputDigest(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(t.tx.TxIn) {
		return nil, fmt.Errorf("input index %d out of range", idx)
	}
	return txscript.CalcSignatureHash(
		t.redeemScript, txscript.SigHashAll, t.tx, idx,
	)
}

func (t *p2shTemplate) ApplySignature(idx int, pubKey, sig []byte) error {
	if idx < 0 || idx >= len(t.tx.TxIn) {
		return fmt.Errorf("input index %d out of range", idx)
	}

	parsedKey, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}

	if t.keyIndex(parsedKey) < 0 {
		return ErrUnknownPubKey
	}

	for _, partial := range t.partialSigs[idx] {
		existing, err := btcec.ParsePubKey(partial.PubKey)
		if err == nil && existing.IsEqual(parsedKey) {
			return ErrDuplicateSignature
		}
	}

	parsedSig, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureVerify, err)
	}

	digest, err := t.InputDigest(idx)
	if err != nil {
		return err
	}
	if !parsedSig.Verify(digest, parsedKey) {
		return ErrSignatureVerify
	}

	// Partial sigs carry the sighash byte, matching what ends up in
	// the final signature script.
	full := make([]byte, 0, len(sig)+1)
	full = append(full, sig...)
	full = append(full, byte(txscript.SigHashAll))

	t.partialSigs[idx] = append(t.partialSigs[idx], &psbt.PartialSig{
		PubKey:    pubKey,
		Signature: full,
	})
	return nil
}

func (t *p2shTemplate) SignatureCount(idx int) int {
	if idx < 0 || idx >= len(t.partialSigs) {
		return 0
	}
	return len(t.partialSigs[idx])
}

// keyIndex returns the position of key within the redeem script key
// list, or -1.
func (t *p2shTemplate) keyIndex(key *btcec.PublicKey) int {
	for i, candidate := range t.pubKeys {
		if candidate.IsEqual(key) {
			return i
		}
	}
	return -1
}

func (t *p2shTemplate) Finalize() ([]byte, error) {
	final := t.tx.Copy()

	for idx := range final.TxIn {
		sigScript, err := t.inputSigScript(idx)
		if err != nil {
			return nil, err
		}
		final.TxIn[idx].SignatureScript = sigScript
	}

	// Run every signature script through the script VM against the
	// P2SH output script before handing the transaction out as
	// broadcastable.
	pkScript, err := t.p2shPkScript()
	if err != nil {
		return nil, err
	}
	for idx := range final.TxIn {
		vm, err := txscript.NewEngine(
			pkScript, final, idx, txscript.StandardVerifyFlags,
			nil, nil, 0,
			txscript.NewCannedPrevOutputFetcher(pkScript, 0),
		)
		if err != nil {
			return nil, err
		}
		if err := vm.Execute(); err != nil {
			return nil, fmt.Errorf("input %d script execution: %w",
				idx, err)
		}
	}

	var buf bytes.Buffer
	if err := final.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inputSigScript assembles OP_0 <sigs in redeem script key order>
// <redeemScript> for one input.
func (t *p2shTemplate) inputSigScript(idx int) ([]byte, error) {
	if t.SignatureCount(idx) < t.m {
		return nil, fmt.Errorf("%w: input %d has %d of %d",
			ErrIncomplete, idx, t.SignatureCount(idx), t.m)
	}

	// CHECKMULTISIG requires signatures ordered like the keys they
	// belong to.
	ordered := make([][]byte, 0, t.m)
	for _, key := range t.pubKeys {
		if len(ordered) == t.m {
			break
		}
		for _, partial := range t.partialSigs[idx] {
			parsed, err := btcec.ParsePubKey(partial.PubKey)
			if err != nil {
				continue
			}
			if parsed.IsEqual(key) {
				ordered = append(ordered, partial.Signature)
				break
			}
		}
	}
	if len(ordered) < t.m {
		return nil, fmt.Errorf("%w: input %d", ErrIncomplete, idx)
	}

	builder := txscript.NewScriptBuilder().AddOp(txscript.OP_FALSE)
	for _, sig := range ordered {
		builder.AddData(sig)
	}
	builder.AddData(t.redeemScript)
	return builder.Script()
}

// p2shPkScript returns the pay-to-script-hash output script the
// template's inputs spend.
func (t *p2shTemplate) p2shPkScript() ([]byte, error) {
	addr, err := btcutil.NewAddressScriptHash(t.redeemScript, t.params)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(addr)
}

func (t *p2shTemplate) Serialize() ([]byte, error) {
	packet, err := psbt.NewFromUnsignedTx(t.tx)
	if err != nil {
		return nil, err
	}
	for i := range packet.Inputs {
		packet.Inputs[i].RedeemScript = t.redeemScript
		packet.Inputs[i].SighashType = txscript.SigHashAll
		packet.Inputs[i].PartialSigs = t.partialSigs[i]
	}

	var buf bytes.Buffer
	if err := packet.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
