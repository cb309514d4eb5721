package radalert

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsComparesOnlyKind(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewError(KindMalformed, "DecodeBLE", cause)

	assert.True(t, errors.Is(err, ErrMalformed), "should match the sentinel with the same Kind")
	assert.False(t, errors.Is(err, ErrOutOfRange), "should not match a sentinel with a different Kind")
}

func TestErrorUnwrapReachesCause(t *testing.T) {
	cause := fmt.Errorf("short read")
	err := NewError(KindFrameShort, "HIDSession.decode", cause)

	assert.Same(t, cause, errors.Unwrap(err), "Unwrap should return the wrapped cause")
}

func TestErrorUnwrapNilCause(t *testing.T) {
	err := NewError(KindNotAvailable, "BLEQuery.SerialNumber", nil)
	assert.Nil(t, errors.Unwrap(err), "Unwrap of a nil cause should be nil")
}

func TestErrorMessageIncludesOpAndKind(t *testing.T) {
	err := NewError(KindSeqJump, "BLESession.decode", fmt.Errorf("id jump"))
	msg := err.Error()

	assert.Contains(t, msg, "BLESession.decode")
	assert.Contains(t, msg, "seq_jump")
	assert.Contains(t, msg, "id jump")
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindTransportOpen:   "transport_open",
		KindTransportIo:     "transport_io",
		KindTransportClosed: "transport_closed",
		KindFrameShort:      "frame_short",
		KindMalformed:       "malformed",
		KindOutOfRange:      "out_of_range",
		KindSeqJump:         "seq_jump",
		KindNotAvailable:    "not_available",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}
