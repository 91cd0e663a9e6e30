// Package rtc implements the register contract of the Epson RTC-8564
// (PCF8563 compatible) real-time clock used as the clock's time reference.
//
// Only whole-register reads and writes are used; the byte-level bus
// protocol is left to the drivers.I2C implementation.
package rtc

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/sweeney/ledclock/internal/logic"
)

// Device is an RTC-8564 on an I2C bus. It implements logic.RTC.
type Device struct {
	bus     drivers.I2C
	Address uint16
}

var _ logic.RTC = (*Device)(nil)

// New returns a Device at the default address.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address}
}

// ReadTime reads seconds, minutes and hours.
func (d *Device) ReadTime() (logic.TimeOfDay, error) {
	var buf [3]byte
	if err := d.read(Seconds, buf[:]); err != nil {
		return logic.TimeOfDay{}, fmt.Errorf("read time: %w", err)
	}
	t := logic.TimeOfDay{
		Second: FromBCD(buf[0] & secondsMask),
		Minute: FromBCD(buf[1] & minutesMask),
		Hour:   FromBCD(buf[2] & hoursMask),
	}
	return t.Clamp(), nil
}

// ReadDate reads day, weekday, month and year. The weekday is ignored.
func (d *Device) ReadDate() (logic.CalendarDate, error) {
	var buf [4]byte
	if err := d.read(Days, buf[:]); err != nil {
		return logic.CalendarDate{}, fmt.Errorf("read date: %w", err)
	}
	date := logic.CalendarDate{
		Day:   FromBCD(buf[0] & daysMask),
		Month: FromBCD(buf[2] & monthsMask),
		Year:  FromBCD(buf[3]),
	}
	return date.Clamp(), nil
}

// WriteTime writes t, clamping out-of-range fields to 0, then reads the
// seconds register back and reports whether VL is still set.
func (d *Device) WriteTime(t logic.TimeOfDay) (bool, error) {
	t = t.Clamp()
	if err := d.write(Seconds, ToBCD(t.Second), ToBCD(t.Minute), ToBCD(t.Hour)); err != nil {
		return false, fmt.Errorf("write time: %w", err)
	}
	lost, err := d.DetectPowerLoss()
	if err != nil {
		return false, fmt.Errorf("verify time: %w", err)
	}
	return lost, nil
}

// WriteDate writes date with a zero weekday. An out-of-range year becomes 0,
// month and day become 1.
func (d *Device) WriteDate(date logic.CalendarDate) error {
	date = date.Clamp()
	if err := d.write(Days, ToBCD(date.Day), 0x00, ToBCD(date.Month), ToBCD(date.Year)); err != nil {
		return fmt.Errorf("write date: %w", err)
	}
	return nil
}

// DetectPowerLoss reports whether the VL bit is set, meaning the time is
// unreliable.
func (d *Device) DetectPowerLoss() (bool, error) {
	var buf [1]byte
	if err := d.read(Seconds, buf[:]); err != nil {
		return false, fmt.Errorf("read seconds: %w", err)
	}
	return buf[0]&VL != 0, nil
}

// Reconcile inspects the CLKOUT register left by the previous run.
//
// FE set with both frequency bits clear is the state of a chip that has
// never been configured: the full initialisation sequence is run. FE with
// 1 Hz selected is reported as StartupAnomaly and left untouched. Anything
// else gets its CLKOUT register reprogrammed to 1 Hz.
//
// A failed read is treated as a zero register.
func (d *Device) Reconcile() (logic.StartupState, error) {
	var buf [1]byte
	readErr := d.read(ClkOut, buf[:])
	if readErr != nil {
		readErr = fmt.Errorf("read clkout: %w", readErr)
	}

	switch buf[0] & clkOutMask {
	case clkOutFE:
		return logic.StartupFirstPower, errors.Join(readErr, d.initFull())
	case clkOut1Hz:
		return logic.StartupAnomaly, readErr
	default:
		var err error
		if werr := d.write(ClkOut, clkOut1Hz); werr != nil {
			err = fmt.Errorf("write clkout: %w", werr)
		}
		return logic.StartupReprogrammed, errors.Join(readErr, err)
	}
}

// initFull stops the clock, enables the interrupts, selects a 1 Hz CLKOUT
// and a 1 s periodic timer, then restarts the clock. A failing step does not
// stop the sequence.
func (d *Device) initFull() error {
	steps := [...]struct{ reg, val byte }{
		{Control1, control1Stop},
		{Control2, control2Ints},
		{ClkOut, clkOut1Hz},
		{TimerControl, timerSrc1Hz},
		{Timer, timerPeriod1s},
		{Control1, control1Run},
	}
	var errs []error
	for _, s := range steps {
		if err := d.write(s.reg, s.val); err != nil {
			errs = append(errs, fmt.Errorf("init register 0x%02X: %w", s.reg, err))
		}
	}
	return errors.Join(errs...)
}

func (d *Device) read(reg byte, buf []byte) error {
	return d.bus.Tx(d.Address, []byte{reg}, buf)
}

func (d *Device) write(reg byte, data ...byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	return d.bus.Tx(d.Address, w, nil)
}
