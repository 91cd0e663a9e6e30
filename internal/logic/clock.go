package logic

import (
	"fmt"
	"time"

	"github.com/sweeney/ledclock/internal/display"
)

// Indicator durations in ticks.
const (
	BlinkTicks       = 250  // half period of the 2 Hz edit blink
	ColonTicks       = 500  // colon lit after each heartbeat
	Lamp8Ticks       = 50   // lamp 8 pulse after each heartbeat
	Lamp7Ticks       = 2000 // lamp 7 after switching to 12-hour display
	DateDisplayTicks = 2000 // DATE_DISPLAY auto-return
)

// PowerLossDate is the date forced into the RTC after a power loss.
var PowerLossDate = CalendarDate{Year: 25, Month: 1, Day: 1}

// Clock owns every piece of mutable clock state. It is not safe for
// concurrent use: one goroutine calls Boot, Tick and Refresh.
type Clock struct {
	rtc RTC

	mode   Mode
	time   TimeOfDay
	date   CalendarDate
	isAM   bool
	hour24 bool

	sw switches

	blinkCount   int
	blinkOn      bool // false during the dark half of the blink
	blinkEnabled bool
	colonOn      bool
	colonCount   int
	lamp8On      bool
	lamp8Count   int
	lamp7Timer   int
	lamp7Always  bool // RTC time is unreliable
	dateTimer    int

	buzzer Sequencer
	tone   bool

	frame  display.Frame
	counts EventCounts

	now    time.Time
	events []Event
}

// NewClock creates a Clock in NORMAL mode with 24-hour display.
func NewClock(rtc RTC) *Clock {
	c := &Clock{
		rtc:          rtc,
		mode:         ModeNormal,
		time:         TimeOfDay{Hour: 12, Minute: 34, Second: 36},
		date:         CalendarDate{Year: 25, Month: 6, Day: 9},
		hour24:       true,
		blinkEnabled: true,
		blinkOn:      true,
	}
	c.isAM = c.time.Hour < 12
	c.render()
	return c
}

// Boot reconciles the clock with the RTC after power-up. It must run once,
// before the first Tick.
func (c *Clock) Boot(now time.Time) []Event {
	c.begin(now)

	lost, err := c.rtc.DetectPowerLoss()
	if err != nil {
		c.busError("detect power loss", err)
	}
	if lost {
		c.time = TimeOfDay{}
		c.date = PowerLossDate
		if _, err := c.rtc.WriteTime(c.time); err != nil {
			c.busError("write time", err)
		}
		if err := c.rtc.WriteDate(c.date); err != nil {
			c.busError("write date", err)
		}
		c.lamp7Always = true
		c.emit(EventPowerLoss, "")
	}

	state, err := c.rtc.Reconcile()
	if err != nil {
		c.busError("reconcile", err)
	}
	if state == StartupAnomaly {
		c.buzzer.Arm(Chirp)
	} else {
		c.buzzer.Arm(Pulse)
	}
	c.emit(EventStartup, string(state))

	c.readTime()
	c.render()
	return c.events
}

// Tick runs one 1 ms step: heartbeat pulse, timers, the button FSM and
// mode machine, then the display compositor.
func (c *Clock) Tick(in Input) []Event {
	c.begin(in.Time)

	if in.Heartbeat {
		c.heartbeat()
	}
	c.advanceTimers()

	c.sw.sample(in.S1, in.S2)
	if c.step() {
		c.sw.latch()
	}

	c.render()
	return c.events
}

// Refresh re-reads the time from the RTC. The scheduler calls it between
// ticks after a heartbeat while the clock is in NORMAL.
func (c *Clock) Refresh(now time.Time) []Event {
	c.begin(now)
	c.readTime()
	c.render()
	return c.events
}

// Mode returns the active mode.
func (c *Clock) Mode() Mode { return c.mode }

// Time returns the in-memory time of day.
func (c *Clock) Time() TimeOfDay { return c.time }

// Date returns the in-memory calendar date.
func (c *Clock) Date() CalendarDate { return c.date }

// Hour24 reports whether the 24-hour display is selected.
func (c *Clock) Hour24() bool { return c.hour24 }

// PowerLossLamp reports whether the always-on lamp 7 is lit.
func (c *Clock) PowerLossLamp() bool { return c.lamp7Always }

// Frame returns the frame composed by the last Boot, Tick or Refresh.
func (c *Clock) Frame() display.Frame { return c.frame }

// ToneOn reports whether the buzzer should be sounding.
func (c *Clock) ToneOn() bool { return c.tone }

// Counts returns the event counters since startup.
func (c *Clock) Counts() EventCounts { return c.counts }

// Snapshot copies the observable state.
func (c *Clock) Snapshot() Snapshot {
	return Snapshot{
		Timestamp:     c.now,
		Mode:          c.mode,
		Time:          c.time,
		Date:          c.date,
		Hour24:        c.hour24,
		PowerLossLamp: c.lamp7Always,
		Counts:        c.counts,
	}
}

func (c *Clock) begin(now time.Time) {
	c.now = now
	c.events = nil
}

func (c *Clock) heartbeat() {
	c.colonOn, c.colonCount = true, 0
	c.lamp8On, c.lamp8Count = true, 0

	// The next second rolls over to midnight or noon.
	t := c.time
	if (t.Hour == 23 || t.Hour == 11) && t.Minute == 59 && t.Second == 59 {
		c.buzzer.Arm(Chirp)
		c.counts.Chimes++
		c.emit(EventChime, "")
	}
}

func (c *Clock) advanceTimers() {
	if c.blinkCount++; c.blinkCount >= BlinkTicks {
		c.blinkOn = !c.blinkOn
		c.blinkCount = 0
	}
	if c.colonOn {
		if c.colonCount++; c.colonCount >= ColonTicks {
			c.colonOn, c.colonCount = false, 0
		}
	}
	if c.lamp8On {
		if c.lamp8Count++; c.lamp8Count >= Lamp8Ticks {
			c.lamp8On, c.lamp8Count = false, 0
		}
	}
	if c.lamp7Timer > 0 {
		c.lamp7Timer--
	}
	c.tone = c.buzzer.Step()
}

func (c *Clock) readTime() {
	t, err := c.rtc.ReadTime()
	if err != nil {
		c.busError("read time", err)
		return
	}
	c.time = t.Clamp()
	c.isAM = c.time.Hour < 12
}

func (c *Clock) readDate() {
	d, err := c.rtc.ReadDate()
	if err != nil {
		c.busError("read date", err)
		return
	}
	c.date = d.Clamp()
}

// setMode switches mode and reports the change.
func (c *Clock) setMode(m Mode) {
	if m == c.mode {
		return
	}
	prev := c.mode
	c.mode = m
	c.emit(EventModeChange, prev.String())
}

func (c *Clock) emit(typ EventType, detail string) {
	c.events = append(c.events, Event{
		Timestamp: c.now,
		Type:      typ,
		Mode:      c.mode,
		Time:      c.time,
		Date:      c.date,
		Detail:    detail,
	})
}

// busError records an RTC failure. The caller carries on as if the
// operation had succeeded.
func (c *Clock) busError(op string, err error) {
	c.counts.BusErrors++
	c.events = append(c.events, Event{
		Timestamp: c.now,
		Type:      EventBusError,
		Mode:      c.mode,
		Time:      c.time,
		Date:      c.date,
		Detail:    op,
		Err:       fmt.Errorf("%s: %w", op, err),
	})
}
