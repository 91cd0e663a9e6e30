package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/ledclock/internal/display"
	"github.com/sweeney/ledclock/internal/gpio"
	"github.com/sweeney/ledclock/internal/logic"
	"github.com/sweeney/ledclock/internal/mqtt"
	"github.com/sweeney/ledclock/internal/rtc"
	"github.com/sweeney/ledclock/internal/scheduler"
	"github.com/sweeney/ledclock/internal/status"
)

func TestParsePins(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		n       int
		want    []int
		wantErr bool
	}{
		{name: "ok", in: "1,2,3", n: 3, want: []int{1, 2, 3}},
		{name: "spaces", in: " 4, 5 ,6", n: 3, want: []int{4, 5, 6}},
		{name: "too few", in: "1,2", n: 3, wantErr: true},
		{name: "not a number", in: "1,x,3", n: 3, wantErr: true},
		{name: "negative", in: "1,-2,3", n: 3, wantErr: true},
		{name: "duplicate", in: "1,2,1", n: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePins(tt.in, tt.n)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("pin %d: got %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDefaultPinsParse(t *testing.T) {
	if _, err := parsePins(joinPins(gpio.DefaultSegmentPins), 8); err != nil {
		t.Errorf("default segment pins: %v", err)
	}
	if _, err := parsePins(joinPins(gpio.DefaultDigitPins), display.Digits); err != nil {
		t.Errorf("default digit pins: %v", err)
	}
}

func TestHeartbeatLabel(t *testing.T) {
	if got := heartbeatLabel(-1); got != "software" {
		t.Errorf("got %q", got)
	}
	if got := heartbeatLabel(4); got != "gpio 4" {
		t.Errorf("got %q", got)
	}
}

func TestSignalName(t *testing.T) {
	if signalName(syscall.SIGINT) != "SIGINT" || signalName(syscall.SIGTERM) != "SIGTERM" {
		t.Error("unexpected signal names")
	}
	if signalName(syscall.SIGHUP) != "UNKNOWN" {
		t.Error("expected UNKNOWN for SIGHUP")
	}
}

func TestPrintTime(t *testing.T) {
	bus := rtc.NewFakeBus()
	bus.SetTime(7, 8, 9, true)
	bus.SetDate(26, 10, 19)

	var out bytes.Buffer
	if err := printTime(rtc.New(bus), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "TIME: 07:08:09, DATE: 26.10.19, VL: POWER_LOSS\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestPrintTimeBusError(t *testing.T) {
	bus := rtc.NewFakeBus()
	bus.Fail = errors.New("nack")

	var out bytes.Buffer
	if err := printTime(rtc.New(bus), &out); err == nil {
		t.Error("expected error")
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed on error, got %q", out.String())
	}
}

func TestEventLogForwarding(t *testing.T) {
	if !(&eventLog{}).Publish(logic.Event{Type: logic.EventChime}) {
		t.Error("log-only sink should accept every event")
	}

	q := mqtt.NewQueue(mqtt.NewFakePublisher(), 1)
	sink := &eventLog{next: q}
	if !sink.Publish(logic.Event{Type: logic.EventChime}) {
		t.Error("first event should be accepted")
	}
	if sink.Publish(logic.Event{Type: logic.EventChime}) {
		t.Error("full queue should refuse")
	}
}

// --- runLoops tests ---

type harness struct {
	bus        *rtc.FakeBus
	pub        *mqtt.FakePublisher
	tracker    *status.Tracker
	tick       chan time.Time
	heartbeat  chan time.Time
	statusTick chan time.Time
	sig        chan os.Signal
	done       chan error
	reason     string
}

func startLoops(t *testing.T, hour, minute, second int) *harness {
	t.Helper()
	h := &harness{
		bus:        rtc.NewFakeBus(),
		pub:        mqtt.NewFakePublisher(),
		tracker:    status.NewTracker(time.Now(), status.Config{}),
		tick:       make(chan time.Time),
		heartbeat:  make(chan time.Time),
		statusTick: make(chan time.Time),
		sig:        make(chan os.Signal, 1),
		done:       make(chan error, 1),
	}
	h.bus.SetTime(hour, minute, second, false)
	h.bus.SetDate(26, 10, 19)
	h.bus.Regs[rtc.ClkOut] = 0x83

	clock := logic.NewClock(rtc.New(h.bus))
	clock.Boot(time.Now())

	queue := mqtt.NewQueue(h.pub, 16)
	sched := scheduler.New(clock, scheduler.Config{}, gpio.NewFakeReader([]gpio.Sample{{}}),
		&gpio.FakeTone{}, &gpio.FakeOutput{}, &eventLog{next: queue})
	sched.SetStateSink(h.tracker)

	go func() {
		reason, err := runLoops(context.Background(), loops{
			sched:      sched,
			queue:      queue,
			tracker:    h.tracker,
			conn:       h.pub,
			tick:       h.tick,
			mux:        nil,
			heartbeat:  h.heartbeat,
			statusTick: h.statusTick,
			sig:        h.sig,
		})
		h.reason = reason
		h.done <- err
	}()
	return h
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	h.sig <- syscall.SIGTERM
	select {
	case err := <-h.done:
		if err != nil {
			t.Fatalf("runLoops returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runLoops did not stop")
	}
}

// tickUntil sends ticks until cond holds or a deadline passes.
func (h *harness) tickUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		h.tick <- time.Now()
		time.Sleep(time.Millisecond)
	}
}

func TestRunLoopsStopsOnSignal(t *testing.T) {
	h := startLoops(t, 10, 0, 0)
	for i := 0; i < 10; i++ {
		h.tick <- time.Now()
	}
	h.stop(t)

	if h.reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", h.reason)
	}
	if h.pub.EventCount() != 0 {
		t.Errorf("expected no events while idle, got %d", h.pub.EventCount())
	}
}

func TestRunLoopsSoftwareHeartbeatChimes(t *testing.T) {
	h := startLoops(t, 23, 59, 59)

	h.heartbeat <- time.Now()
	h.tickUntil(t, func() bool { return h.pub.EventCount() > 0 })
	h.stop(t)

	if h.pub.Events[0].Type != logic.EventChime {
		t.Errorf("expected CHIME, got %s", h.pub.Events[0].Type)
	}
	if h.tracker.Snapshot().Clock.Counts.Chimes != 1 {
		t.Error("tracker should see the chime count")
	}
}

func TestRunLoopsTracksMQTTStatus(t *testing.T) {
	h := startLoops(t, 10, 0, 0)
	h.pub.Connected = true

	h.statusTick <- time.Now()
	deadline := time.Now().Add(2 * time.Second)
	for !h.tracker.Snapshot().MQTTConnected {
		if time.Now().After(deadline) {
			t.Fatal("tracker never saw the connection")
		}
		time.Sleep(time.Millisecond)
	}
	h.stop(t)
}
