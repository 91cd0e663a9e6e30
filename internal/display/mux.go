package display

import "fmt"

// Output drives one digit position with a segment pattern, deselecting all
// other positions.
type Output interface {
	Drive(slot int, pattern byte) error
}

// Multiplexer scans a Frame out one position per Refresh call.
type Multiplexer struct {
	out  Output
	slot int
}

// NewMultiplexer returns a Multiplexer starting at slot 0.
func NewMultiplexer(out Output) *Multiplexer {
	return &Multiplexer{out: out}
}

// Slot returns the position the next Refresh will drive.
func (m *Multiplexer) Slot() int {
	return m.slot
}

// Refresh drives the current slot of f and advances to the next one.
// Date frames get their separator dots on slots 0, 2 and 4.
func (m *Multiplexer) Refresh(f Frame) error {
	slot := m.slot
	m.slot = (m.slot + 1) % Digits

	pattern := f.Segments[slot]
	if f.Date && (slot == 0 || slot == 2 || slot == 4) {
		pattern &^= DotMask
	}
	if err := m.out.Drive(slot, pattern); err != nil {
		return fmt.Errorf("drive slot %d: %w", slot, err)
	}
	return nil
}
