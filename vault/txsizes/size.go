// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txsizes provides worst-case serialize size estimation for
// transactions spending m-of-n P2SH multisig outputs.  Estimates are
// deliberately conservative: signatures are counted at their maximum
// encoding and a change output slot is always included, so a fee
// computed from these sizes is never too small for relay.
package txsizes

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// Worst case script and input/output size estimates.
const (
	// sigSlotSize is the worst case (largest) serialize size of a
	// single signature inside a multisig signature script.  It is
	// calculated as:
	//
	//   - OP_DATA_73
	//   - 72 bytes DER signature + 1 byte sighash
	sigSlotSize = 1 + 73

	// compressedPubKeySlotSize is the serialize size of a compressed
	// public key inside a redeem script.  It is calculated as:
	//
	//   - OP_DATA_33
	//   - 33 bytes serialized compressed pubkey
	compressedPubKeySlotSize = 1 + 33

	// P2PKHOutputSize is the serialize size of a transaction output
	// with a P2PKH output script.  It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 25
	//   - 25 bytes P2PKH output script
	P2PKHOutputSize = 8 + 1 + 25

	// P2SHOutputSize is the serialize size of a transaction output
	// with a P2SH output script.  It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 23
	//   - 23 bytes P2SH output script
	P2SHOutputSize = 8 + 1 + 23

	// P2WPKHOutputSize is the serialize size of a transaction output
	// with a P2WPKH output script.  It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 22
	//   - 22 bytes P2WPKH output script
	P2WPKHOutputSize = 8 + 1 + 22

	// P2WSHOutputSize is the serialize size of a transaction output
	// with a P2WSH output script.  It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 34
	//   - 34 bytes P2WSH output script
	P2WSHOutputSize = 8 + 1 + 34

	// P2TROutputSize is the serialize size of a transaction output
	// with a P2TR output script.  It is calculated as:
	//
	//   - 8 bytes output value
	//   - 1 byte compact int encoding value 34
	//   - 34 bytes P2TR output script
	P2TROutputSize = 8 + 1 + 34
)

// ScriptKind identifies the script template of a transaction output for
// size estimation purposes.
type ScriptKind int

// The supported output script kinds.
const (
	KindP2PKH ScriptKind = iota
	KindP2SH
	KindP2WPKH
	KindP2WSH
	KindP2TR
)

// OutputSize returns the serialize size of a transaction output paying
// to a script of this kind.
func (k ScriptKind) OutputSize() int {
	switch k {
	case KindP2PKH:
		return P2PKHOutputSize
	case KindP2WPKH:
		return P2WPKHOutputSize
	case KindP2WSH:
		return P2WSHOutputSize
	case KindP2TR:
		return P2TROutputSize
	default:
		return P2SHOutputSize
	}
}

// KindForAddress returns the script kind of the output script paying to
// the given address.  Unrecognized address types fall back to P2SH,
// which costs the same as the common cases and keeps the estimate
// conservative enough.
func KindForAddress(addr btcutil.Address) ScriptKind {
	switch addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return KindP2PKH
	case *btcutil.AddressWitnessPubKeyHash:
		return KindP2WPKH
	case *btcutil.AddressWitnessScriptHash:
		return KindP2WSH
	case *btcutil.AddressTaproot:
		return KindP2TR
	default:
		return KindP2SH
	}
}

// RedeemScriptSize returns the serialize size of an m-of-n multisig
// redeem script built from compressed public keys.  It is calculated
// as:
//
//   - OP_m
//   - n pubkey slots (push opcode + 33 byte compressed pubkey)
//   - OP_n
//   - OP_CHECKMULTISIG
func RedeemScriptSize(n int) int {
	return 1 + n*compressedPubKeySlotSize + 1 + 1
}

// sigScriptSize returns the worst case size of the signature script
// redeeming an m-of-n P2SH multisig output.  It is calculated as:
//
//   - OP_0 (consumed by the off-by-one bug in OP_CHECKMULTISIG)
//   - m signature slots
//   - push of the redeem script
func sigScriptSize(m, n int) int {
	redeemSize := RedeemScriptSize(n)

	// Pushing data longer than 75 bytes requires OP_PUSHDATA1 plus a
	// one byte length, rather than a single direct push opcode.
	pushSize := 1
	if redeemSize > 75 {
		pushSize = 2
	}

	return 1 + m*sigSlotSize + pushSize + redeemSize
}

// RedeemMultiSigInputSize returns the worst case size of a transaction
// input redeeming an m-of-n P2SH multisig output.  It is calculated
// as:
//
//   - 32 bytes previous tx
//   - 4 bytes output index
//   - compact int encoding of the signature script length
//   - signature script
//   - 4 bytes sequence
func RedeemMultiSigInputSize(m, n int) int {
	scriptSize := sigScriptSize(m, n)
	return 32 + 4 + wire.VarIntSerializeSize(uint64(scriptSize)) +
		scriptSize + 4
}

// EstimateVirtualSize returns a worst case virtual size estimate for a
// transaction that spends inputCount m-of-n P2SH multisig outputs and
// pays to one output per entry of outputKinds.  A P2SH change output
// returning the remainder to the multisig address is always counted,
// whether or not one is ultimately added, which keeps the estimate on
// the safe side of relay fee checks.  P2SH spends carry no witness
// data, so the virtual size equals the serialize size.
func EstimateVirtualSize(m, n, inputCount int, outputKinds []ScriptKind) int {
	outputCount := len(outputKinds) + 1

	outputsSize := P2SHOutputSize
	for _, kind := range outputKinds {
		outputsSize += kind.OutputSize()
	}

	// 8 additional bytes are for version and locktime.
	return 8 + wire.VarIntSerializeSize(uint64(inputCount)) +
		wire.VarIntSerializeSize(uint64(outputCount)) +
		inputCount*RedeemMultiSigInputSize(m, n) +
		outputsSize
}
