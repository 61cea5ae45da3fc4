// Package memstate implements the linear-increment memory allocator:
// every allocation hands out the next address and advances by the
// configured block size, wrapping to zero once it would overrun
// system memory.
package memstate

import (
	"fmt"
	"sync"
)

// State tracks the next address to hand out.
type State struct {
	mu           sync.Mutex
	next         int
	blockSize    int
	systemMemory int
}

// New builds allocator state for the given system memory and block
// size, both in the same unit (kB, per the configuration loader).
func New(systemMemory, blockSize int) *State {
	return &State{blockSize: blockSize, systemMemory: systemMemory}
}

// Allocate returns the current address and advances it, wrapping to
// zero when the next block would overrun system memory.
func (s *State) Allocate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := s.next
	s.next += s.blockSize
	if s.next+s.blockSize > s.systemMemory {
		s.next = 0
	}
	return addr
}

// FormatAddress renders an address as the trace's lowercase
// eight-hex-digit form, e.g. 0x00000190.
func FormatAddress(addr int) string {
	return fmt.Sprintf("0x%08x", addr)
}
