// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"encoding/json"
	"fmt"
)

// TxStatus is the lifecycle state of a multisig transaction.  The only
// legal transitions are:
//
//	pending     -> all_signed   (threshold reached)
//	pending     -> cancelled
//	all_signed  -> broadcasted
//	broadcasted -> confirmed
//
// confirmed and cancelled are terminal.
type TxStatus int

const (
	// StatusPending collects signatures.
	StatusPending TxStatus = iota

	// StatusAllSigned holds the finalized raw transaction, awaiting
	// broadcast.
	StatusAllSigned

	// StatusBroadcasted has been submitted to the network.
	StatusBroadcasted

	// StatusConfirmed has at least one confirmation.  Terminal.
	StatusConfirmed

	// StatusCancelled was abandoned while pending.  Terminal.
	StatusCancelled
)

var statusStrings = map[TxStatus]string{
	StatusPending:     "pending",
	StatusAllSigned:   "all_signed",
	StatusBroadcasted: "broadcasted",
	StatusConfirmed:   "confirmed",
	StatusCancelled:   "cancelled",
}

// String returns the wire name of the status.
func (s TxStatus) String() string {
	if name, ok := statusStrings[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown status (%d)", int(s))
}

// MarshalJSON encodes the status by its wire name so persisted records
// stay readable and stable across reorderings of the enum.
func (s TxStatus) MarshalJSON() ([]byte, error) {
	name, ok := statusStrings[s]
	if !ok {
		return nil, fmt.Errorf("cannot marshal status %d", int(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a status from its wire name.
func (s *TxStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	status, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseStatus resolves a wire name back to its status.
func ParseStatus(name string) (TxStatus, error) {
	for status, candidate := range statusStrings {
		if candidate == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// canTransition reports whether moving from s to next is legal.
func (s TxStatus) canTransition(next TxStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusAllSigned || next == StatusCancelled
	case StatusAllSigned:
		return next == StatusBroadcasted
	case StatusBroadcasted:
		return next == StatusConfirmed
	default:
		// confirmed and cancelled are terminal.
		return false
	}
}

// stateError builds the ErrInvalidState error naming both the current
// and the requested state.
func stateError(txID string, current, requested TxStatus) Error {
	return newError(ErrInvalidState, fmt.Sprintf(
		"transaction %s is %s, cannot move to %s",
		txID, current, requested), nil)
}
