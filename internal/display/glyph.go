// Package display holds the 7-segment glyph table, the composed segment
// buffer and the multiplex stage that scans it out one digit at a time.
//
// Segment patterns are active-low: a cleared bit lights the segment.
package display

// Blank is the digit value that renders no segments (leading-zero
// suppression).
const Blank = 99

const (
	// Off is the pattern with every segment dark.
	Off byte = 0xFF
	// ErrorPattern is shown for digit values with no glyph.
	ErrorPattern byte = 0xEF
	// DotMask is the decimal point bit.
	DotMask byte = 1 << 5
)

var glyphs = [10]byte{0x21, 0x77, 0x2A, 0x26, 0x74, 0xA4, 0xA0, 0x35, 0x20, 0x24}

// Glyph returns the segment pattern for digit value n.
func Glyph(n int) byte {
	switch {
	case n >= 0 && n < len(glyphs):
		return glyphs[n]
	case n == Blank:
		return Off
	default:
		return ErrorPattern
	}
}
