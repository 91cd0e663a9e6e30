package gpio

import (
	"errors"
	"sync"
)

// FakeReader is a test double that returns scripted button levels.
type FakeReader struct {
	// Samples contains scripted values to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// Sample represents a single button reading (already in logical form).
type Sample struct {
	S1 bool // true = pressed
	S2 bool
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, bool, error) {
	if f.ReadError != nil {
		return false, false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.S1, sample.S2, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeOutput records digit drives. Safe for concurrent use.
type FakeOutput struct {
	mu      sync.Mutex
	drives  []Drive
	lastPat [8]byte

	// DriveError, if set, will be returned by Drive()
	DriveError error
}

// Drive is one recorded FakeOutput call.
type Drive struct {
	Slot    int
	Pattern byte
}

// Drive records the call.
func (f *FakeOutput) Drive(slot int, pattern byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DriveError != nil {
		return f.DriveError
	}
	f.drives = append(f.drives, Drive{Slot: slot, Pattern: pattern})
	if slot >= 0 && slot < len(f.lastPat) {
		f.lastPat[slot] = pattern
	}
	return nil
}

// Drives returns a copy of every recorded call.
func (f *FakeOutput) Drives() []Drive {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Drive(nil), f.drives...)
}

// Last returns the pattern most recently driven on slot.
func (f *FakeOutput) Last(slot int) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPat[slot]
}

// FakeTone records buzzer transitions.
type FakeTone struct {
	mu sync.Mutex
	on bool

	// Changes counts Set calls that changed the state.
	Changes int
}

// Set records the new state.
func (f *FakeTone) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if on != f.on {
		f.Changes++
	}
	f.on = on
	return nil
}

// On reports the current state.
func (f *FakeTone) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}
