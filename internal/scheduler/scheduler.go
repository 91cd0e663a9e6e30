// Package scheduler drives the clock: a fast tick loop that owns the
// logic.Clock, a multiplex loop that only reads finished frames, and the
// heartbeat entry point called from the RTC interrupt handler.
package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/sweeney/ledclock/internal/display"
	"github.com/sweeney/ledclock/internal/gpio"
	"github.com/sweeney/ledclock/internal/logic"
)

// EventSink receives clock events. Publish must not block; it reports
// whether the event was accepted.
type EventSink interface {
	Publish(ev logic.Event) bool
}

// StateSink receives periodic snapshots of the clock.
type StateSink interface {
	SetClock(s logic.Snapshot)
}

// Config holds scheduler settings.
type Config struct {
	// SnapshotEvery is the number of ticks between state snapshots.
	// Zero uses DefaultSnapshotEvery.
	SnapshotEvery int
}

// DefaultSnapshotEvery publishes the clock state ten times a second at the
// 1 ms tick.
const DefaultSnapshotEvery = 100

// Scheduler runs a Clock against real or fake hardware.
type Scheduler struct {
	clock   *logic.Clock
	cfg     Config
	buttons gpio.Reader
	tone    gpio.Tone
	sink    EventSink
	state   StateSink

	frames *display.FrameStore
	mux    *display.Multiplexer

	refresh atomic.Bool // RTC re-read pending
	pulse   atomic.Bool // heartbeat not yet seen by the tick loop

	s1, s2  bool
	toneOn  bool
	ticks   int
	dropped int
}

// New creates a Scheduler. clock must already be booted. sink may be nil.
func New(clock *logic.Clock, cfg Config, buttons gpio.Reader, tone gpio.Tone, out display.Output, sink EventSink) *Scheduler {
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = DefaultSnapshotEvery
	}
	s := &Scheduler{
		clock:   clock,
		cfg:     cfg,
		buttons: buttons,
		tone:    tone,
		sink:    sink,
		frames:  display.NewFrameStore(),
		mux:     display.NewMultiplexer(out),
	}
	s.frames.Store(clock.Frame())
	return s
}

// SetStateSink installs a receiver for periodic snapshots. It must be called
// before Run.
func (s *Scheduler) SetStateSink(st StateSink) {
	s.state = st
}

// Heartbeat records a 1 Hz RTC interrupt. Safe from any goroutine.
func (s *Scheduler) Heartbeat() {
	s.refresh.Store(true)
	s.pulse.Store(true)
}

// Frames returns the store shared with the multiplex loop.
func (s *Scheduler) Frames() *display.FrameStore {
	return s.frames
}

// Dropped returns the number of events the sink refused.
func (s *Scheduler) Dropped() int {
	return s.dropped
}

// Run executes one clock tick per value received on tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			s.setTone(false)
			return nil
		case t := <-tick:
			s.Step(t)
		}
	}
}

// Step runs a single tick at time t.
func (s *Scheduler) Step(t time.Time) {
	if s1, s2, err := s.buttons.Read(); err != nil {
		log.Printf("button read error: %v", err)
	} else {
		s.s1, s.s2 = s1, s2
	}

	s.deliver(s.clock.Tick(logic.Input{
		S1:        s.s1,
		S2:        s.s2,
		Heartbeat: s.pulse.Swap(false),
		Time:      t,
	}))
	s.setTone(s.clock.ToneOn())

	// The RTC is only re-read while the time is not being edited. A
	// heartbeat seen during an edit stays pending.
	if s.clock.Mode() == logic.ModeNormal && s.refresh.CompareAndSwap(true, false) {
		s.deliver(s.clock.Refresh(t))
	}
	s.frames.Store(s.clock.Frame())

	s.ticks++
	if s.state != nil && s.ticks%s.cfg.SnapshotEvery == 0 {
		s.state.SetClock(s.clock.Snapshot())
	}
}

// RunMux drives one display slot per value received on tick until ctx is
// done.
func (s *Scheduler) RunMux(ctx context.Context, tick <-chan time.Time) error {
	var failing bool
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			err := s.mux.Refresh(s.frames.Load())
			// Log only the first of a run of failures.
			if err != nil && !failing {
				log.Printf("display error: %v", err)
			}
			failing = err != nil
		}
	}
}

func (s *Scheduler) setTone(on bool) {
	if on == s.toneOn {
		return
	}
	if err := s.tone.Set(on); err != nil {
		log.Printf("buzzer error: %v", err)
		return
	}
	s.toneOn = on
}

func (s *Scheduler) deliver(events []logic.Event) {
	for _, ev := range events {
		if ev.Type == logic.EventBusError {
			log.Printf("rtc error: %v", ev.Err)
		}
		if s.sink != nil && !s.sink.Publish(ev) {
			s.dropped++
		}
	}
	if len(events) > 0 && s.state != nil {
		s.state.SetClock(s.clock.Snapshot())
	}
}
