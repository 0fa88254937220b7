// Copyright (c) 2026 The covault developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestErrorCodeStringsAddition ensures that all error codes have a text
// representation and that the text representation is only added for
// existing error codes.
func TestErrorCodeStringsAddition(t *testing.T) {
	t.Parallel()

	require.Len(t, errorCodeStrings, int(lastErr))
	for code := ErrValidation; code < lastErr; code++ {
		require.NotEmpty(t, errorCodeStrings[code])
		require.Equal(t, errorCodeStrings[code], code.String())
	}

	require.Contains(t, lastErr.String(), "Unknown ErrorCode")
}

// TestErrorWrapping checks the error interface, unwrapping, and the code
// matcher.
func TestErrorWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk on fire")
	err := newError(ErrDatabase, "cannot store wallet", cause)

	require.Equal(t, "cannot store wallet: disk on fire", err.Error())
	require.ErrorIs(t, err, cause)

	require.True(t, IsError(err, ErrDatabase))
	require.False(t, IsError(err, ErrValidation))
	require.False(t, IsError(cause, ErrDatabase))
	require.False(t, IsError(nil, ErrDatabase))

	bare := newError(ErrNoFunds, "address has no spendable outputs", nil)
	require.Equal(t, "address has no spendable outputs", bare.Error())
	require.Nil(t, bare.Unwrap())
}
