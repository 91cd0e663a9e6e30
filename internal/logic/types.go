// Package logic contains the pure control logic of the LED clock: the button
// FSM, the mode machine, the display compositor and the buzzer sequencer.
// This package has NO hardware dependencies (no GPIO, I2C, MQTT, OS, or
// time.Sleep). Time is always injectable via Input.Time, and the RTC is
// reached only through the RTC interface.
package logic

import (
	"fmt"
	"time"
)

// Mode is the active configuration/display state.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSetHour
	ModeSetMinute
	ModeSetSecond
	ModeSave
	ModeDateDisplay
	ModeSetYear
	ModeSetMonth
	ModeSetDay
)

var modeNames = [...]string{
	ModeNormal:      "NORMAL",
	ModeSetHour:     "SET_HOUR",
	ModeSetMinute:   "SET_MIN",
	ModeSetSecond:   "SET_SEC",
	ModeSave:        "SAVE",
	ModeDateDisplay: "DATE_DISPLAY",
	ModeSetYear:     "SET_YEAR",
	ModeSetMonth:    "SET_MONTH",
	ModeSetDay:      "SET_DAY",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("MODE(%d)", int(m))
	}
	return modeNames[m]
}

// IsDate reports whether the mode renders the calendar date.
func (m Mode) IsDate() bool {
	return m == ModeDateDisplay || m == ModeSetYear || m == ModeSetMonth || m == ModeSetDay
}

// IsTimeEdit reports whether the mode edits a TimeOfDay field.
func (m Mode) IsTimeEdit() bool {
	return m >= ModeSetHour && m <= ModeSetSecond
}

// IsDateEdit reports whether the mode edits a CalendarDate field.
func (m Mode) IsDateEdit() bool {
	return m >= ModeSetYear && m <= ModeSetDay
}

// TimeOfDay is a wall-clock time with one-second resolution.
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
	Second int // 0-59
}

// Clamp replaces out-of-range fields with 0.
func (t TimeOfDay) Clamp() TimeOfDay {
	if t.Hour < 0 || t.Hour > 23 {
		t.Hour = 0
	}
	if t.Minute < 0 || t.Minute > 59 {
		t.Minute = 0
	}
	if t.Second < 0 || t.Second > 59 {
		t.Second = 0
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// CalendarDate is a two-digit-year date. Day is never validated against Month.
type CalendarDate struct {
	Year  int // 0-99
	Month int // 1-12
	Day   int // 1-31
}

// Clamp replaces out-of-range fields: year with 0, month and day with 1.
func (d CalendarDate) Clamp() CalendarDate {
	if d.Year < 0 || d.Year > 99 {
		d.Year = 0
	}
	if d.Month < 1 || d.Month > 12 {
		d.Month = 1
	}
	if d.Day < 1 || d.Day > 31 {
		d.Day = 1
	}
	return d
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%02d.%02d.%02d", d.Year, d.Month, d.Day)
}

// StartupState classifies the RTC configuration found at boot.
type StartupState string

const (
	StartupFirstPower   StartupState = "FIRST_POWER"
	StartupAnomaly      StartupState = "ANOMALY"
	StartupReprogrammed StartupState = "REPROGRAMMED"
)

// RTC is the register-level contract the clock needs from the RTC chip.
type RTC interface {
	ReadTime() (TimeOfDay, error)
	ReadDate() (CalendarDate, error)
	// WriteTime persists t and reports the validity (VL) bit read back
	// from the seconds register afterwards.
	WriteTime(t TimeOfDay) (bool, error)
	WriteDate(d CalendarDate) error
	DetectPowerLoss() (bool, error)
	Reconcile() (StartupState, error)
}

// EventType identifies something the clock did that is worth reporting.
type EventType string

const (
	EventStartup    EventType = "STARTUP"
	EventPowerLoss  EventType = "POWER_LOSS"
	EventModeChange EventType = "MODE_CHANGE"
	EventHourFormat EventType = "HOUR_FORMAT"
	EventTimeSaved  EventType = "TIME_SAVED"
	EventDateSaved  EventType = "DATE_SAVED"
	EventChime      EventType = "CHIME"
	EventBusError   EventType = "BUS_ERROR"
)

// Event is emitted by Boot, Tick and Refresh.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Mode      Mode
	Time      TimeOfDay
	Date      CalendarDate
	Detail    string // e.g. previous mode, startup state, "12H"
	Err       error  // set for EventBusError
}

// Input is a single 1 ms sample.
type Input struct {
	S1        bool // true = pressed (already inverted from the active-low line)
	S2        bool
	Heartbeat bool // a 1 Hz RTC heartbeat fired since the previous tick
	Time      time.Time
}

// EventCounts tracks the number of persisted edits since startup.
type EventCounts struct {
	TimeSaves int
	DateSaves int
	Chimes    int
	BusErrors int
}

// Snapshot is a copy of the clock state for observers outside the tick loop.
type Snapshot struct {
	Timestamp     time.Time
	Mode          Mode
	Time          TimeOfDay
	Date          CalendarDate
	Hour24        bool
	PowerLossLamp bool
	Counts        EventCounts
}
