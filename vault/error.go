// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import "fmt"

// ErrorCode identifies a kind of error.
type ErrorCode int

const (
	// ErrValidation indicates that a caller-supplied argument is
	// malformed or out of bounds.  These are always the caller's
	// fault and are never logged as faults.
	ErrValidation ErrorCode = iota

	// ErrWalletNotFound indicates an unknown wallet id.
	ErrWalletNotFound

	// ErrTxNotFound indicates an unknown transaction id.
	ErrTxNotFound

	// ErrDuplicateWallet indicates an attempt to create a wallet
	// whose derived id already exists; the same key set in the same
	// order always derives the same wallet.
	ErrDuplicateWallet

	// ErrInvalidState indicates an operation that is illegal in the
	// transaction's current lifecycle state.
	ErrInvalidState

	// ErrDuplicateSigner indicates a signature submission from a
	// public key that already signed the transaction.
	ErrDuplicateSigner

	// ErrInvalidSignature indicates a signature that the script
	// engine rejected: wrong key, malformed encoding, or failed
	// verification.
	ErrInvalidSignature

	// ErrNoFunds indicates that the wallet address has no spendable
	// outputs at all.
	ErrNoFunds

	// ErrInsufficientFunds indicates that the available outputs do
	// not cover the requested amount plus the network fee.
	ErrInsufficientFunds

	// ErrExternalService indicates a failure or timeout in a network
	// or signing collaborator.  The record involved is left
	// unchanged.
	ErrExternalService

	// ErrDatabase indicates an error with the underlying store.
	ErrDatabase

	// ErrScript indicates an error from the script engine while
	// deriving addresses or constructing templates.
	ErrScript

	// lastErr is used by tests to iterate over the error codes and
	// check that they all have a string translation.
	lastErr
)

// Map of ErrorCode values back to their constant names for pretty
// printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrValidation:        "ErrValidation",
	ErrWalletNotFound:    "ErrWalletNotFound",
	ErrTxNotFound:        "ErrTxNotFound",
	ErrDuplicateWallet:   "ErrDuplicateWallet",
	ErrInvalidState:      "ErrInvalidState",
	ErrDuplicateSigner:   "ErrDuplicateSigner",
	ErrInvalidSignature:  "ErrInvalidSignature",
	ErrNoFunds:           "ErrNoFunds",
	ErrInsufficientFunds: "ErrInsufficientFunds",
	ErrExternalService:   "ErrExternalService",
	ErrDatabase:          "ErrDatabase",
	ErrScript:            "ErrScript",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error is a typed error for all errors arising during the operation of
// the vault.  It carries enough structure for a caller to render a
// response without string matching.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e Error) Unwrap() error {
	return e.Err
}

// newError creates a new Error.
func newError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// IsError returns whether the error is an Error with a matching code.
func IsError(err error, code ErrorCode) bool {
	e, ok := err.(Error)
	return ok && e.ErrorCode == code
}
