package logic

// Tick counts used by the button FSM. One tick is 1 ms.
const (
	LongPressTicks      = 2000 // combined or single-button long press
	RepeatDelayTicks    = 500  // S2 hold before auto-repeat starts
	RepeatIntervalTicks = 100  // auto-repeat period (10 Hz)
	DebounceTicks       = 5    // edges ignored on a button after an accepted edge
)

// button tracks one active-low input line.
type button struct {
	level    bool // pressed on this tick
	prev     bool // pressed on the last latched tick
	fell     bool // release edge detected on this tick
	skip     bool // absorb the next release edge
	cooldown int
}

// switches is the Switch Input FSM state. Only the Clock touches it.
type switches struct {
	s1, s2 button

	combo    int // NORMAL: ticks with both buttons held
	dateHold int // DATE_DISPLAY: ticks with S2 held
	hold     int // SET_*: ticks with S2 held
	repeat   int // SET_*: ticks since the last auto-repeat increment

	// gate is closed after a mode transition and opens once both lines
	// read released. While closed the prev latches are frozen, so the
	// release that opened it surfaces as an edge afterwards.
	gate bool
}

// sample records this tick's levels and runs down the debounce windows.
func (sw *switches) sample(s1, s2 bool) {
	sw.s1.level, sw.s2.level = s1, s2
	sw.s1.fell, sw.s2.fell = false, false
	if sw.s1.cooldown > 0 {
		sw.s1.cooldown--
	}
	if sw.s2.cooldown > 0 {
		sw.s2.cooldown--
	}
}

// detect derives release edges against the latched levels.
func (sw *switches) detect() {
	sw.s1.detect()
	sw.s2.detect()
}

func (b *button) detect() {
	if !b.level && b.prev && b.cooldown == 0 {
		b.fell = true
		b.cooldown = DebounceTicks
	}
}

// latch stores this tick's levels as the previous levels.
func (sw *switches) latch() {
	sw.s1.prev = sw.s1.level
	sw.s2.prev = sw.s2.level
}

// closeGate blocks edits until both buttons are released and arms the skip
// flag of every button still held, so its release is not replayed as an edit.
func (sw *switches) closeGate() {
	sw.gate = true
	sw.s1.skip = sw.s1.level
	sw.s2.skip = sw.s2.level
	sw.hold = 0
	sw.repeat = 0
}

// tryOpenGate opens the gate if both lines are released and reports
// whether the gate was closed on entry.
func (sw *switches) tryOpenGate() bool {
	if !sw.gate {
		return false
	}
	if !sw.s1.level && !sw.s2.level {
		sw.gate = false
	}
	return true
}
