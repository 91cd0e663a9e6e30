package logic

import "github.com/sweeney/ledclock/internal/display"

// blinkRanges holds, per mode, the digit slots [start, end) blanked during
// the dark half of the edit blink.
var blinkRanges = [ModeSetDay + 1][2]int{
	ModeNormal:      {0, 6},
	ModeSetHour:     {4, 6},
	ModeSetMinute:   {2, 4},
	ModeSetSecond:   {0, 2},
	ModeSave:        {0, 6},
	ModeDateDisplay: {0, 6},
	ModeSetYear:     {4, 6},
	ModeSetMonth:    {2, 4},
	ModeSetDay:      {0, 2},
}

// DisplayHour converts a 0-23 hour for display. In 12-hour mode morning
// hours stay 0-11, the noon hour shows 12 and afternoon hours drop by 12.
func DisplayHour(hour int, hour24 bool) int {
	if hour24 || hour <= 12 {
		return hour
	}
	return hour - 12
}

// render composes the frame for the current state.
func (c *Clock) render() {
	var b display.Buffer

	if c.mode.IsDate() {
		d := c.date
		b[0] = display.Glyph(d.Day % 10)
		b[1] = display.Glyph(d.Day / 10)
		b[2] = display.Glyph(d.Month%10) &^ display.DotMask
		b[3] = display.Glyph(d.Month / 10)
		b[4] = display.Glyph(d.Year%10) &^ display.DotMask
		b[5] = display.Glyph(d.Year / 10)
	} else {
		t := c.time
		hour := t.Hour
		if c.mode == ModeNormal || c.mode == ModeSave {
			hour = DisplayHour(hour, c.hour24)
		}
		b[0] = display.Glyph(t.Second % 10)
		b[1] = display.Glyph(t.Second / 10)
		b[2] = display.Glyph(t.Minute % 10)
		b[3] = display.Glyph(t.Minute / 10)
		b[4] = display.Glyph(hour % 10)
		b[5] = display.Glyph(tensOrBlank(hour))
	}

	if c.blinkEnabled && !c.blinkOn &&
		c.mode != ModeNormal && c.mode != ModeSave && c.mode != ModeDateDisplay {
		r := blinkRanges[c.mode]
		for i := r[0]; i < r[1]; i++ {
			b[i] = display.Off
		}
	}

	com := display.Off
	if !c.mode.IsDate() {
		if c.mode != ModeNormal || c.colonOn {
			com &^= display.ColonMask
		}
		if c.isAM {
			com &^= display.AMMask
		} else {
			com &^= display.PMMask
		}
	}
	if c.lamp8On {
		com &^= display.Lamp8Mask
	}
	if c.lamp7Timer > 0 || c.lamp7Always {
		com &^= display.Lamp7Mask
	}
	b[display.SlotCOM] = com
	b[7] = display.Off

	c.frame = display.Frame{Segments: b, Date: c.mode.IsDate()}
}

func tensOrBlank(v int) int {
	if v/10 == 0 {
		return display.Blank
	}
	return v / 10
}
