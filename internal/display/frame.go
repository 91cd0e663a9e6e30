package display

import "sync"

const (
	// Digits is the number of multiplexed positions, COM included.
	Digits = 7
	// SlotCOM carries the colon, AM/PM and the two indicator lamps.
	SlotCOM = 6
)

// Buffer holds one segment pattern per digit position plus the COM byte.
// Slot 7 is unused.
type Buffer [8]byte

// Frame is a fully composed display state.
type Frame struct {
	Segments Buffer
	Date     bool // a date-family mode produced this frame
}

// FrameStore hands completed frames from the tick loop to the mux loop.
// A reader never observes a partially written frame.
type FrameStore struct {
	mu    sync.RWMutex
	frame Frame
}

// NewFrameStore returns a store holding a dark frame.
func NewFrameStore() *FrameStore {
	s := &FrameStore{}
	for i := range s.frame.Segments {
		s.frame.Segments[i] = Off
	}
	return s
}

// Store publishes f.
func (s *FrameStore) Store(f Frame) {
	s.mu.Lock()
	s.frame = f
	s.mu.Unlock()
}

// Load returns a copy of the latest frame.
func (s *FrameStore) Load() Frame {
	s.mu.RLock()
	f := s.frame
	s.mu.RUnlock()
	return f
}

// COM byte bits.
const (
	ColonMask byte = 0x1E // segments C, D, E, F
	AMMask    byte = 1 << 6
	PMMask    byte = 1 << 7
	Lamp8Mask byte = DotMask
	Lamp7Mask byte = 1 << 0
)
