// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDeterminism checks that equal inputs always derive equal
// fingerprints and that distinct inputs do not collide on trivial
// cases.
func TestDeterminism(t *testing.T) {
	t.Parallel()

	fp1 := New([]byte("covault"))
	fp2 := New([]byte("covault"))
	require.Equal(t, fp1, fp2)

	fp3 := New([]byte("covaulT"))
	require.NotEqual(t, fp1, fp3)
}

// TestAlphabet checks that fingerprints stay within the base58
// alphabet, which keeps them safe for use in URLs and storage keys
// without escaping.
func TestAlphabet(t *testing.T) {
	t.Parallel()

	const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZ" +
		"abcdefghijkmnopqrstuvwxyz"

	fp := New([]byte{0x00, 0xff, 0x10, 0x80})
	require.NotEmpty(t, fp)
	for _, r := range fp {
		require.Contains(t, alphabet, string(r))
	}
}

// TestEmptyInput checks that hashing the empty byte string still
// yields a stable, non-empty identifier.
func TestEmptyInput(t *testing.T) {
	t.Parallel()

	fp := New(nil)
	require.NotEmpty(t, fp)
	require.Equal(t, fp, New([]byte{}))
}
