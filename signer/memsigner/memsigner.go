// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memsigner keeps secp256k1 keys in process memory and signs
// with them directly.  It stands in for the production signing service
// in tests and operational tooling; it must never hold real funds'
// keys on a shared host.
package memsigner

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/covault/covault/signer"
)

// Signer maps credential identities to private keys.
type Signer struct {
	mu   sync.RWMutex
	keys map[string]*btcec.PrivateKey
}

// Compile-time contract check.
var _ signer.Signer = (*Signer)(nil)

// New returns an empty in-memory signer.
func New() *Signer {
	return &Signer{keys: make(map[string]*btcec.PrivateKey)}
}

// Generate creates a fresh key under credentialID and returns the
// serialized compressed public key.
func (s *Signer) Generate(credentialID string) ([]byte, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.keys[credentialID] = priv
	s.mu.Unlock()

	return priv.PubKey().SerializeCompressed(), nil
}

// Import registers a hex-encoded 32-byte private key under
// credentialID and returns the serialized compressed public key.
func (s *Signer) Import(credentialID, privKeyHex string) ([]byte, error) {
	raw, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("private key must be %d bytes, got %d",
			btcec.PrivKeyBytesLen, len(raw))
	}

	priv, _ := btcec.PrivKeyFromBytes(raw)

	s.mu.Lock()
	s.keys[credentialID] = priv
	s.mu.Unlock()

	return priv.PubKey().SerializeCompressed(), nil
}

// PubKey returns the serialized compressed public key of a registered
// credential.
func (s *Signer) PubKey(credentialID string) ([]byte, error) {
	s.mu.RLock()
	priv, ok := s.keys[credentialID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown credential %q", credentialID)
	}
	return priv.PubKey().SerializeCompressed(), nil
}

// Sign returns a DER-encoded ECDSA signature over digest.
func (s *Signer) Sign(digest []byte, credentialID string) ([]byte, error) {
	s.mu.RLock()
	priv, ok := s.keys[credentialID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown credential %q", credentialID)
	}
	return ecdsa.Sign(priv, digest).Serialize(), nil
}
