package memstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oswarriors/ossim/internal/memstate"
)

func TestAllocateWrapsAtSystemMemoryBoundary(t *testing.T) {
	s := memstate.New(1000, 400)
	assert.Equal(t, 0, s.Allocate())
	assert.Equal(t, 400, s.Allocate())
	assert.Equal(t, 0, s.Allocate()) // 800+400 > 1000, wraps
	assert.Equal(t, 400, s.Allocate())
}

func TestFormatAddressIsLowercaseEightHexDigits(t *testing.T) {
	assert.Equal(t, "0x00000190", memstate.FormatAddress(400))
	assert.Equal(t, "0x00000000", memstate.FormatAddress(0))
}
