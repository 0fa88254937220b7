// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fingerprint derives the short, URL-safe identifiers used for
// wallets and transactions.  An identifier is the base58 encoding of
// the SHA-256 digest of the input bytes, so equal inputs always map to
// equal identifiers and the encoding never needs escaping.
package fingerprint

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// New returns the fingerprint of data.
func New(data []byte) string {
	digest := sha256.Sum256(data)
	return base58.Encode(digest[:])
}
