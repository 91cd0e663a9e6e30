package logic

// step evaluates the mode machine for this tick. It reports whether the
// button levels should be latched as the previous levels.
func (c *Clock) step() bool {
	switch c.mode {
	case ModeNormal:
		c.stepNormal()
	case ModeDateDisplay:
		c.stepDateDisplay()
	default:
		if c.sw.tryOpenGate() {
			return false
		}
		c.stepEdit()
	}
	return true
}

// stepNormal: both buttons long-pressed enter SET_HOUR, an S1 release
// toggles the 12/24-hour display, an S2 release shows the date.
func (c *Clock) stepNormal() {
	sw := &c.sw
	if sw.s1.level && sw.s2.level {
		if sw.combo++; sw.combo >= LongPressTicks {
			sw.combo = 0
			c.readTime()
			c.setMode(ModeSetHour)
			sw.closeGate()
		}
		return
	}
	sw.combo = 0

	sw.detect()
	if sw.s1.fell && !sw.s2.level {
		c.hour24 = !c.hour24
		detail := "24H"
		if !c.hour24 {
			c.lamp7Timer = Lamp7Ticks
			detail = "12H"
		}
		c.emit(EventHourFormat, detail)
	}
	if sw.s2.fell && !sw.s1.level {
		c.readDate()
		c.dateTimer = DateDisplayTicks
		c.setMode(ModeDateDisplay)
	}
}

// stepDateDisplay: an S2 long press enters SET_YEAR, otherwise the date
// returns to NORMAL after DateDisplayTicks with S2 released.
func (c *Clock) stepDateDisplay() {
	sw := &c.sw
	if sw.s2.level {
		if sw.dateHold++; sw.dateHold >= LongPressTicks {
			sw.dateHold = 0
			c.readDate()
			c.setMode(ModeSetYear)
			sw.closeGate()
			return
		}
	} else {
		sw.dateHold = 0
	}

	if !sw.s2.level && !sw.s2.prev {
		if c.dateTimer > 0 {
			c.dateTimer--
		}
		if c.dateTimer == 0 {
			c.setMode(ModeNormal)
		}
	}
}

// stepEdit handles the SET_* modes once the release gate is open: S1
// advances to the next field or saves, S2 increments the field.
func (c *Clock) stepEdit() {
	sw := &c.sw
	sw.detect()

	if sw.s1.fell && !sw.s1.skip {
		switch from := c.mode; from {
		case ModeSetSecond, ModeSetDay:
			c.save(from)
		default:
			c.setMode(from + 1)
			sw.closeGate()
		}
		sw.hold = 0
	}
	if sw.s1.fell {
		sw.s1.skip = false
	}

	if !sw.gate {
		if sw.s2.fell && !sw.s2.skip {
			c.increment()
			sw.hold = 0
		}
		if sw.s2.level {
			sw.hold++
			if sw.hold >= RepeatDelayTicks {
				if sw.repeat++; sw.repeat >= RepeatIntervalTicks {
					c.increment()
					sw.repeat = 0
				}
			}
		} else {
			sw.hold = 0
			sw.repeat = 0
		}
		if sw.s2.fell {
			sw.s2.skip = false
		}
	}

	// Blink only while S2 is up and not in auto-repeat.
	c.blinkEnabled = !sw.s2.level && sw.hold < RepeatDelayTicks
}

// save persists the group that from belongs to and returns to NORMAL.
func (c *Clock) save(from Mode) {
	c.setMode(ModeSave)
	switch {
	case from.IsTimeEdit():
		lost, err := c.rtc.WriteTime(c.time)
		if err != nil {
			c.busError("write time", err)
		} else {
			c.lamp7Always = lost
		}
		c.counts.TimeSaves++
		c.emit(EventTimeSaved, from.String())
	case from.IsDateEdit():
		if err := c.rtc.WriteDate(c.date); err != nil {
			c.busError("write date", err)
		}
		c.counts.DateSaves++
		c.emit(EventDateSaved, from.String())
	}
	c.setMode(ModeNormal)

	c.sw.gate = true
	c.sw.s1.skip = true
	c.sw.s2.skip = true
}

// increment advances the field edited in the current mode, wrapping around.
func (c *Clock) increment() {
	switch c.mode {
	case ModeSetHour:
		c.time.Hour = nextHour(c.time.Hour)
		c.isAM = c.time.Hour < 12
	case ModeSetMinute:
		c.time.Minute = nextSixty(c.time.Minute)
	case ModeSetSecond:
		c.time.Second = nextSixty(c.time.Second)
	case ModeSetYear:
		c.date.Year = nextYear(c.date.Year)
	case ModeSetMonth:
		c.date.Month = nextMonth(c.date.Month)
	case ModeSetDay:
		c.date.Day = nextDay(c.date.Day)
	}
}

func nextHour(h int) int {
	return (h + 1) % 24
}

func nextSixty(v int) int {
	return (v + 1) % 60
}

func nextYear(y int) int {
	return (y + 1) % 100
}

func nextMonth(m int) int {
	return m%12 + 1
}

func nextDay(d int) int {
	return d%31 + 1
}
