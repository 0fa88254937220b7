// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txsizes

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

// TestRedeemScriptSize verifies the redeem script arithmetic against
// hand-computed sizes: OP_m + n*(push + 33 byte key) + OP_n +
// OP_CHECKMULTISIG.
func TestRedeemScriptSize(t *testing.T) {
	t.Parallel()

	require.Equal(t, 37, RedeemScriptSize(1))
	require.Equal(t, 105, RedeemScriptSize(3))
	require.Equal(t, 343, RedeemScriptSize(10))
}

// TestRedeemMultiSigInputSize verifies the worst case input sizes for a
// few representative policies.
func TestRedeemMultiSigInputSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m, n int
		want int
	}{
		{
			// Signature script: OP_0 + 1 sig slot (74) + direct
			// push (1) + redeem (37) = 113.  Input: 32 + 4 +
			// 1 byte varint + 113 + 4.
			name: "1-of-1",
			m:    1,
			n:    1,
			want: 154,
		},
		{
			// Signature script: OP_0 + 2 sig slots (148) +
			// OP_PUSHDATA1 push (2) + redeem (105) = 256.
			// Input: 32 + 4 + 3 byte varint + 256 + 4.
			name: "2-of-3",
			m:    2,
			n:    3,
			want: 299,
		},
	}

	for _, test := range tests {
		require.Equal(t, test.want,
			RedeemMultiSigInputSize(test.m, test.n), test.name)
	}
}

// TestEstimateVirtualSize verifies whole-transaction estimates,
// including the always-counted change slot.
func TestEstimateVirtualSize(t *testing.T) {
	t.Parallel()

	// One 2-of-3 input paying a single P2PKH output:
	// 8 overhead + 1 + 1 varints + 299 input + 34 output + 32 change.
	got := EstimateVirtualSize(2, 3, 1, []ScriptKind{KindP2PKH})
	require.Equal(t, 375, got)

	// Adding inputs scales linearly.
	got2 := EstimateVirtualSize(2, 3, 3, []ScriptKind{KindP2PKH})
	require.Equal(t, got+2*299, got2)

	// A larger recipient script costs its own delta.
	gotWSH := EstimateVirtualSize(2, 3, 1, []ScriptKind{KindP2WSH})
	require.Equal(t, got+P2WSHOutputSize-P2PKHOutputSize, gotWSH)
}

// TestKindForAddress checks the address type to script kind mapping.
func TestKindForAddress(t *testing.T) {
	t.Parallel()

	params := &chaincfg.MainNetParams

	pkh, err := btcutil.NewAddressPubKeyHash(make([]byte, 20), params)
	require.NoError(t, err)
	require.Equal(t, KindP2PKH, KindForAddress(pkh))

	sh, err := btcutil.NewAddressScriptHashFromHash(
		make([]byte, 20), params,
	)
	require.NoError(t, err)
	require.Equal(t, KindP2SH, KindForAddress(sh))

	wpkh, err := btcutil.NewAddressWitnessPubKeyHash(
		make([]byte, 20), params,
	)
	require.NoError(t, err)
	require.Equal(t, KindP2WPKH, KindForAddress(wpkh))

	wsh, err := btcutil.NewAddressWitnessScriptHash(
		make([]byte, chainhash.HashSize), params,
	)
	require.NoError(t, err)
	require.Equal(t, KindP2WSH, KindForAddress(wsh))
}
