//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the buttons using the Linux GPIO character device.
type RealReader struct {
	chip *gpiocdev.Chip
	s1   *gpiocdev.Line
	s2   *gpiocdev.Line
}

// NewRealReader requests the two button lines as inputs with pull-up.
func NewRealReader(chipName string, pinS1, pinS2 int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Buttons short to ground when pressed.
	s1, err := chip.RequestLine(pinS1, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request S1 pin %d: %w", pinS1, err)
	}

	s2, err := chip.RequestLine(pinS2, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		s1.Close()
		chip.Close()
		return nil, fmt.Errorf("request S2 pin %d: %w", pinS2, err)
	}

	return &RealReader{chip: chip, s1: s1, s2: s2}, nil
}

// Read returns the logical states of S1 and S2.
// Inverts raw GPIO: raw low = pressed.
func (r *RealReader) Read() (bool, bool, error) {
	s1Raw, err := r.s1.Value()
	if err != nil {
		return false, false, fmt.Errorf("read S1 pin: %w", err)
	}

	s2Raw, err := r.s2.Value()
	if err != nil {
		return false, false, fmt.Errorf("read S2 pin: %w", err)
	}

	return s1Raw == 0, s2Raw == 0, nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	for _, l := range []*gpiocdev.Line{r.s1, r.s2} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", l.Offset(), err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SegmentDriver drives the common segment lines and the per-digit select
// lines. Segment lines are active-low like the patterns, digit selects are
// active-high.
type SegmentDriver struct {
	segs   *gpiocdev.Lines
	digits *gpiocdev.Lines

	segVals   []int
	digitVals []int
}

// NewSegmentDriver requests segPins (bit 0..7 of a pattern) and digitPins
// (slot 0..n-1) as outputs with every segment dark and no digit selected.
func NewSegmentDriver(chipName string, segPins, digitPins []int) (*SegmentDriver, error) {
	if len(segPins) != 8 {
		return nil, fmt.Errorf("need 8 segment pins, got %d", len(segPins))
	}

	dark := make([]int, len(segPins))
	for i := range dark {
		dark[i] = 1
	}
	segs, err := gpiocdev.RequestLines(chipName, segPins, gpiocdev.AsOutput(dark...))
	if err != nil {
		return nil, fmt.Errorf("request segment pins: %w", err)
	}

	digits, err := gpiocdev.RequestLines(chipName, digitPins, gpiocdev.AsOutput(make([]int, len(digitPins))...))
	if err != nil {
		segs.Close()
		return nil, fmt.Errorf("request digit pins: %w", err)
	}

	return &SegmentDriver{
		segs:      segs,
		digits:    digits,
		segVals:   make([]int, len(segPins)),
		digitVals: make([]int, len(digitPins)),
	}, nil
}

// Drive blanks the display, sets the segment lines from pattern and selects
// slot.
func (d *SegmentDriver) Drive(slot int, pattern byte) error {
	if slot < 0 || slot >= len(d.digitVals) {
		return fmt.Errorf("slot %d out of range", slot)
	}

	for i := range d.digitVals {
		d.digitVals[i] = 0
	}
	if err := d.digits.SetValues(d.digitVals); err != nil {
		return fmt.Errorf("deselect digits: %w", err)
	}

	for i := range d.segVals {
		d.segVals[i] = int(pattern>>i) & 1
	}
	if err := d.segs.SetValues(d.segVals); err != nil {
		return fmt.Errorf("set segments: %w", err)
	}

	d.digitVals[slot] = 1
	if err := d.digits.SetValues(d.digitVals); err != nil {
		return fmt.Errorf("select digit %d: %w", slot, err)
	}
	return nil
}

// Close turns the display off and releases the lines.
func (d *SegmentDriver) Close() error {
	var errs []error
	for i := range d.digitVals {
		d.digitVals[i] = 0
	}
	if err := d.digits.SetValues(d.digitVals); err != nil {
		errs = append(errs, fmt.Errorf("deselect digits: %w", err))
	}
	if err := d.digits.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close digit pins: %w", err))
	}
	if err := d.segs.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close segment pins: %w", err))
	}
	return errors.Join(errs...)
}

// outputLine is the part of *gpiocdev.Line the tone generator uses.
type outputLine interface {
	SetValue(value int) error
	Close() error
}

// ToneLine drives the buzzer with a ToneHz square wave while on.
type ToneLine struct {
	line outputLine

	mu   sync.Mutex
	on   bool
	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewToneLine requests pin as an output, low, and starts the waveform
// goroutine.
func NewToneLine(chipName string, pin int) (*ToneLine, error) {
	line, err := gpiocdev.RequestLine(chipName, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request buzzer pin %d: %w", pin, err)
	}
	return newToneLine(line), nil
}

func newToneLine(line outputLine) *ToneLine {
	t := &ToneLine{
		line: line,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// Set starts or stops the square wave.
func (t *ToneLine) Set(on bool) error {
	t.mu.Lock()
	t.on = on
	t.mu.Unlock()
	select {
	case t.wake <- struct{}{}:
	default:
	}
	return nil
}

func (t *ToneLine) enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.on
}

func (t *ToneLine) run() {
	defer t.wg.Done()
	var (
		ticker  *time.Ticker
		tick    <-chan time.Time
		level   int
		failing bool
	)
	set := func(v int) {
		level = v
		err := t.line.SetValue(v)
		// Log only the first of a run of failures.
		if err != nil && !failing {
			log.Printf("gpio: buzzer: %v", err)
		}
		failing = err != nil
	}
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if level != 0 {
			set(0)
		}
	}

	for {
		if !t.enabled() {
			stop()
		} else if ticker == nil {
			ticker = time.NewTicker(time.Second / (2 * ToneHz))
			tick = ticker.C
			set(1)
		}
		select {
		case <-t.done:
			stop()
			return
		case <-t.wake:
		case <-tick:
			set(level ^ 1)
		}
	}
}

// Close stops the waveform and releases the line.
func (t *ToneLine) Close() error {
	close(t.done)
	t.wg.Wait()
	return t.line.Close()
}

// WatchHeartbeat calls fn on every falling edge of pin, the RTC /INT
// output. fn runs on the gpiocdev event goroutine and must not block.
func WatchHeartbeat(chipName string, pin int, fn func()) (io.Closer, error) {
	line, err := gpiocdev.RequestLine(chipName, pin,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { fn() }))
	if err != nil {
		return nil, fmt.Errorf("request INT pin %d: %w", pin, err)
	}
	return line, nil
}
