package eurodiag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDS2StatusRecoverable(t *testing.T) {
	assert.True(t, DS2StatusBusy.Recoverable())
	assert.False(t, DS2StatusInvalidParam.Recoverable())
	assert.False(t, DS2StatusNack.Recoverable())
}

func TestNrcDescriptionKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "request correctly received, response pending", NrcDescription(0x78))
	assert.Equal(t, "unknown NRC", NrcDescription(0x00))
}

func TestIsPending(t *testing.T) {
	assert.True(t, IsPending(0x78))
	assert.False(t, IsPending(0x22))
}

func TestErrorMessagesAreStable(t *testing.T) {
	cases := []error{
		&Timeout{Op: "test"},
		&BadChecksum{},
		&ChannelSetupRejected{Opcode: 0xD6},
		&Disconnected{},
		&AckTimeout{Seq: 3},
		&SequenceError{Expected: 1, Got: 2},
		&NegativeResponse{Sid: 0x21, Nrc: 0x22},
		&EchoMismatch{Field: "routine"},
		&DS2Status{Code: DS2StatusBusy},
	}
	for _, err := range cases {
		assert.NotEmpty(t, err.Error())
	}
}
