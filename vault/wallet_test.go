// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCreateWalletValidation exercises the bounds and shape checks on
// wallet creation.
func TestCreateWalletValidation(t *testing.T) {
	t.Parallel()

	mgr, _ := testManager(t)
	_, participants := testSigners(t, 3)

	tests := []struct {
		name         string
		m, n         int
		participants []Participant
	}{
		{"zero threshold", 0, 3, participants},
		{"negative threshold", -1, 3, participants},
		{"threshold above n", 4, 3, participants},
		{"participant count mismatch", 2, 2, participants},
		{"too many participants", 2, 11, participants},
	}

	for _, test := range tests {
		_, err := mgr.CreateWallet(
			test.m, test.n, test.participants, "bad",
		)
		require.Error(t, err, test.name)
		require.True(t, IsError(err, ErrValidation), test.name)
	}

	// Duplicated public key.
	dupe := []Participant{
		participants[0], participants[1], participants[0],
	}
	_, err := mgr.CreateWallet(2, 3, dupe, "dupe")
	require.True(t, IsError(err, ErrValidation))

	// Garbage public key.
	bad := []Participant{
		participants[0], participants[1],
		{PubKey: "not-hex", UserID: "user-x"},
	}
	_, err = mgr.CreateWallet(2, 3, bad, "garbage")
	require.True(t, IsError(err, ErrValidation))
}

// TestCreateWalletDeterminism checks that the same ordered key set
// always derives the same wallet id and address, that re-creation is a
// conflict, and that reordering participants derives a different id.
func TestCreateWalletDeterminism(t *testing.T) {
	t.Parallel()

	mgr, _ := testManager(t)
	mgr2, _ := testManager(t)
	_, participants := testSigners(t, 3)

	w1, err := mgr.CreateWallet(2, 3, participants, "treasury")
	require.NoError(t, err)
	require.Equal(t, 2, w1.M)
	require.Equal(t, 3, w1.N)
	require.Len(t, w1.Participants, 3)
	require.NotEmpty(t, w1.Address)
	require.NotEmpty(t, w1.RedeemScript)

	// An independent manager with fresh storage derives the same
	// identity from the same inputs.
	w2, err := mgr2.CreateWallet(2, 3, participants, "treasury")
	require.NoError(t, err)
	require.Equal(t, w1.WalletID, w2.WalletID)
	require.Equal(t, w1.Address, w2.Address)

	// Re-creating on the same store is a conflict, even with
	// different metadata.
	_, err = mgr.CreateWallet(2, 3, participants, "other name")
	require.True(t, IsError(err, ErrDuplicateWallet))

	// Swapping two participants derives a different wallet.
	swapped := []Participant{
		participants[1], participants[0], participants[2],
	}
	w3, err := mgr.CreateWallet(2, 3, swapped, "treasury")
	require.NoError(t, err)
	require.NotEqual(t, w1.WalletID, w3.WalletID)
	require.NotEqual(t, w1.Address, w3.Address)
}

// TestWalletLookup checks retrieval and the not-found path.
func TestWalletLookup(t *testing.T) {
	t.Parallel()

	mgr, _ := testManager(t)
	_, participants := testSigners(t, 2)

	created, err := mgr.CreateWallet(2, 2, participants, "pair")
	require.NoError(t, err)

	loaded, err := mgr.Wallet(created.WalletID)
	require.NoError(t, err)
	require.Equal(t, created.WalletID, loaded.WalletID)
	require.Equal(t, created.Address, loaded.Address)
	require.Equal(t, created.Participants, loaded.Participants)

	_, err = mgr.Wallet("no-such-wallet")
	require.True(t, IsError(err, ErrWalletNotFound))
}
