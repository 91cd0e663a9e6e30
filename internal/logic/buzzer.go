package logic

// Buzzer countdown lengths accepted by Sequencer.Arm.
const (
	Chirp = 100 // two short tones
	Pulse = 20  // one short tone
)

// Countdown values at which the tone toggles. The value is checked before
// it is decremented.
const (
	toneStartFirst  = 100
	toneStopFirst   = 80
	toneStartSecond = 20
	toneStopSecond  = 1
)

// Sequencer drives the buzzer from a single countdown, one Step per tick.
type Sequencer struct {
	count int
	on    bool
}

// Arm restarts the countdown at n.
func (s *Sequencer) Arm(n int) {
	s.count = n
}

// active reports whether a countdown is in progress.
func (s *Sequencer) active() bool {
	return s.count > 0
}

// Step advances the countdown by one tick and returns whether the tone
// should be sounding.
func (s *Sequencer) Step() bool {
	if s.count == 0 {
		return s.on
	}
	t := s.count
	s.count--
	switch t {
	case toneStartFirst, toneStartSecond:
		s.on = true
	case toneStopFirst, toneStopSecond:
		s.on = false
	}
	return s.on
}
