// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package signer defines the remote signing capability the system
// delegates to.  A signer holds credential material on behalf of a
// participant and, given a digest and a credential identity, returns a
// DER-encoded signature.  Private keys never cross this boundary.
package signer

// Signer produces signatures over raw digests.
type Signer interface {
	// Sign returns a DER-encoded ECDSA signature over digest using
	// the key identified by credentialID.
	Sign(digest []byte, credentialID string) ([]byte, error)
}

// Digester exposes the per-input digests of a transaction template.
// msigscript.Template satisfies it.
type Digester interface {
	InputCount() int
	InputDigest(idx int) ([]byte, error)
}

// SignAll signs every input digest of d with the given credential and
// returns one signature per input, in input order.  This is the glue a
// participant runs between fetching a transaction's digests and
// submitting its signatures.
func SignAll(d Digester, s Signer, credentialID string) ([][]byte, error) {
	sigs := make([][]byte, d.InputCount())
	for idx := range sigs {
		digest, err := d.InputDigest(idx)
		if err != nil {
			return nil, err
		}
		sig, err := s.Sign(digest, credentialID)
		if err != nil {
			return nil, err
		}
		sigs[idx] = sig
	}
	return sigs, nil
}
