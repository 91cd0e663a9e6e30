//go:build !linux

package gpio

import (
	"errors"
	"io"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chipName string, pinS1, pinS2 int) (*RealReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (bool, bool, error) {
	return false, false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// SegmentDriver is not available on non-Linux platforms.
type SegmentDriver struct{}

// NewSegmentDriver returns an error on non-Linux platforms.
func NewSegmentDriver(chipName string, segPins, digitPins []int) (*SegmentDriver, error) {
	return nil, errUnsupported
}

// Drive is not implemented on non-Linux platforms.
func (d *SegmentDriver) Drive(slot int, pattern byte) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (d *SegmentDriver) Close() error {
	return nil
}

// ToneLine is not available on non-Linux platforms.
type ToneLine struct{}

// NewToneLine returns an error on non-Linux platforms.
func NewToneLine(chipName string, pin int) (*ToneLine, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (t *ToneLine) Set(on bool) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (t *ToneLine) Close() error {
	return nil
}

// WatchHeartbeat returns an error on non-Linux platforms.
func WatchHeartbeat(chipName string, pin int, fn func()) (io.Closer, error) {
	return nil, errUnsupported
}
