package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
		isNil    bool
	}{
		{
			name:     "wraps sentinel with context",
			err:      ErrChecksumMismatch,
			msg:      "downloading package",
			expected: "downloading package: checksum mismatch",
		},
		{
			name:  "nil error stays nil",
			err:   nil,
			msg:   "ignored",
			isNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, tt.msg)
			if tt.isNil {
				assert.NoError(t, wrapped)
				return
			}
			require.Error(t, wrapped)
			assert.Equal(t, tt.expected, wrapped.Error())
			assert.True(t, errors.Is(wrapped, tt.err))
		})
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrVarNotFound, "expanding %q", "${JU_OS}")
	require.Error(t, wrapped)
	assert.Equal(t, `expanding "${JU_OS}": variable not found`, wrapped.Error())
	assert.True(t, errors.Is(wrapped, ErrVarNotFound))

	assert.NoError(t, Wrapf(nil, "expanding %q", "x"))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrMetadataNotFound,
		ErrMetadataParse,
		ErrVendorMismatch,
		ErrDownloadFailed,
		ErrChecksumMismatch,
		ErrInstallationBusy,
		ErrIntegrity,
		ErrVarNotFound,
		ErrUnsupportedVendor,
		ErrAmbiguousResponse,
	}
	seen := make(map[string]bool)
	for _, err := range sentinels {
		msg := fmt.Sprint(err)
		assert.False(t, seen[msg], "duplicate sentinel message: %s", msg)
		seen[msg] = true
	}
}
