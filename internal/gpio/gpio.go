// Package gpio provides the clock's button inputs, segment/digit outputs,
// buzzer line and RTC heartbeat input with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Reader reads the two buttons.
type Reader interface {
	// Read returns the logical button states (true = pressed).
	// The raw lines are active-low: raw 0 = pressed.
	Read() (s1, s2 bool, err error)

	// Close releases GPIO resources.
	Close() error
}

// Tone switches the buzzer square wave on and off.
type Tone interface {
	Set(on bool) error
}

// ToneHz is the buzzer square-wave frequency.
const ToneHz = 4000

// Pin definitions (BCM numbering)
const (
	DefaultChip      = "gpiochip0"
	DefaultPinS1     = 5
	DefaultPinS2     = 6
	DefaultPinINT    = 4 // RTC /INT, open drain
	DefaultPinBuzzer = 18
)

// DefaultSegmentPins lists the segment lines a, b, c, d, e, f, g, dp by
// pattern bit 0..7.
var DefaultSegmentPins = []int{7, 8, 25, 24, 23, 22, 27, 17}

// DefaultDigitPins lists the digit select lines for slots 0..6.
var DefaultDigitPins = []int{12, 13, 16, 19, 20, 21, 26}
