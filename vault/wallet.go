// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/covault/covault/internal/fingerprint"
)

// maxParticipants caps the number of cosigners.  Standard multisig
// scripts cannot encode more than 20 keys and anything past 10 is
// operationally unmanageable, so the registry refuses it outright.
const maxParticipants = 10

// walletIDSuffix domain-separates wallet ids from every other
// fingerprint in the system.
const walletIDSuffix = "/wallet/v1"

// Participant binds a cosigner's public key to the user that controls
// its signing credential.
type Participant struct {
	// PubKey is the hex-encoded serialized secp256k1 public key.
	PubKey string `json:"pubKey"`

	// UserID identifies the participant to the host application and
	// its signing service.
	UserID string `json:"userId"`
}

// Wallet is an m-of-n multisig wallet record.  Records are immutable
// after creation and are never deleted, since transactions reference
// them by id indefinitely.  No secret material is ever held.
type Wallet struct {
	// WalletID is derived deterministically from the participant
	// public keys in their supplied order.
	WalletID string `json:"walletId"`

	// Address is the P2SH funding address of the spending script.
	Address string `json:"address"`

	// RedeemScript is the hex-encoded multisig spending script.
	RedeemScript string `json:"redeemScript"`

	// M is the signature threshold; N the number of participants.
	M int `json:"m"`
	N int `json:"n"`

	// Participants holds exactly N entries.  Order is significant: it
	// is part of the identity derivation.
	Participants []Participant `json:"participants"`

	Name         string    `json:"name,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// pubKeyBytes returns the participants' serialized public keys in
// wallet order.
func (w *Wallet) pubKeyBytes() ([][]byte, error) {
	keys := make([][]byte, len(w.Participants))
	for i, p := range w.Participants {
		raw, err := hex.DecodeString(p.PubKey)
		if err != nil {
			return nil, newError(ErrValidation, fmt.Sprintf(
				"participant %d public key is not hex", i),
				err)
		}
		keys[i] = raw
	}
	return keys, nil
}

// deriveWalletID derives the deterministic wallet id: the participant
// public keys are concatenated in supplied order (not sorted) into the
// key fingerprint, which is then hashed again under a fixed domain
// separation suffix.  Reordering the same key set yields a different
// id.
func deriveWalletID(pubKeys []string) string {
	keyFingerprint := fingerprint.New(
		[]byte(strings.Join(pubKeys, ":")),
	)
	return fingerprint.New([]byte(keyFingerprint + walletIDSuffix))
}

// CreateWallet validates the policy, derives the wallet identity and
// funding address, and persists the new record.  Creating a wallet
// whose key set (in order) already exists fails with
// ErrDuplicateWallet; callers must not silently re-create wallets with
// different metadata.
func (m *Manager) CreateWallet(threshold, n int, participants []Participant,
	name string) (*Wallet, error) {

	switch {
	case threshold <= 0 || n <= 0:
		return nil, newError(ErrValidation,
			"m and n must be positive", nil)
	case threshold > n:
		return nil, newError(ErrValidation, fmt.Sprintf(
			"threshold %d exceeds participant count %d",
			threshold, n), nil)
	case n > maxParticipants:
		return nil, newError(ErrValidation, fmt.Sprintf(
			"at most %d participants are supported",
			maxParticipants), nil)
	case len(participants) != n:
		return nil, newError(ErrValidation, fmt.Sprintf(
			"expected %d participants, got %d",
			n, len(participants)), nil)
	}

	pubKeys := make([]string, n)
	seen := make(map[string]struct{}, n)
	for i, p := range participants {
		raw, err := hex.DecodeString(p.PubKey)
		if err != nil || len(raw) == 0 {
			return nil, newError(ErrValidation, fmt.Sprintf(
				"participant %d public key is not hex", i),
				err)
		}
		normalized := hex.EncodeToString(raw)
		if _, ok := seen[normalized]; ok {
			return nil, newError(ErrValidation, fmt.Sprintf(
				"participant %d public key is duplicated", i),
				nil)
		}
		seen[normalized] = struct{}{}
		pubKeys[i] = normalized
	}

	walletID := deriveWalletID(pubKeys)
	if _, err := m.fetchWallet(walletID); err == nil {
		return nil, newError(ErrDuplicateWallet,
			"wallet "+walletID+" already exists for this key set",
			nil)
	} else if !IsError(err, ErrWalletNotFound) {
		return nil, err
	}

	w := &Wallet{
		WalletID:     walletID,
		M:            threshold,
		N:            n,
		Name:         name,
		CreationTime: time.Now().UTC(),
	}
	w.Participants = make([]Participant, n)
	for i, p := range participants {
		w.Participants[i] = Participant{
			PubKey: pubKeys[i],
			UserID: p.UserID,
		}
	}

	keyBytes, err := w.pubKeyBytes()
	if err != nil {
		return nil, err
	}
	address, redeemScript, err := m.engine.DeriveAddress(
		threshold, keyBytes,
	)
	if err != nil {
		return nil, newError(ErrValidation,
			"derive multisig address", err)
	}
	w.Address = address
	w.RedeemScript = hex.EncodeToString(redeemScript)

	if err := m.putWallet(w); err != nil {
		return nil, err
	}

	log.Infof("Created %d-of-%d wallet %s with address %s",
		threshold, n, walletID, address)
	return w, nil
}

// Wallet returns the wallet record for walletID.
func (m *Manager) Wallet(walletID string) (*Wallet, error) {
	return m.fetchWallet(walletID)
}
