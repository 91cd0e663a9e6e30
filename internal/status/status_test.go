package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/ledclock/internal/logic"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func clockSnap() logic.Snapshot {
	return logic.Snapshot{
		Mode:          logic.ModeSetMinute,
		Time:          logic.TimeOfDay{Hour: 13, Minute: 5, Second: 9},
		Date:          logic.CalendarDate{Year: 26, Month: 10, Day: 19},
		Hour24:        false,
		PowerLossLamp: true,
		Counts:        logic.EventCounts{TimeSaves: 2, Chimes: 1, BusErrors: 4},
	}
}

func fixedTracker(cfg Config, now time.Time) *Tracker {
	tr := NewTracker(start, cfg)
	tr.now = func() time.Time { return now }
	return tr
}

func TestNewTracker(t *testing.T) {
	cfg := Config{TickUs: 1000, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config != cfg {
		t.Errorf("Config: got %+v", snap.Config)
	}
	if snap.Ready {
		t.Error("expected Ready=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestSetClock(t *testing.T) {
	tr := NewTracker(start, Config{})
	tr.SetClock(clockSnap())
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if !snap.Ready {
		t.Error("expected Ready after SetClock")
	}
	if snap.Clock != clockSnap() {
		t.Errorf("Clock: got %+v", snap.Clock)
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
}

func TestUptime(t *testing.T) {
	tr := fixedTracker(Config{}, start.Add(90*time.Second+300*time.Millisecond))
	if got := tr.Snapshot().Uptime(); got != 90*time.Second+300*time.Millisecond {
		t.Errorf("Uptime: got %v", got)
	}
}

func TestFormatJSON(t *testing.T) {
	tr := fixedTracker(Config{TickUs: 1000, MuxUs: 1000, I2CBus: "1", Heartbeat: "gpio 4"}, start.Add(65*time.Second))
	tr.SetClock(clockSnap())

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Mode != "SET_MIN" {
		t.Errorf("mode: got %q", s.Mode)
	}
	if s.Time != "13:05:09" || s.Date != "26.10.19" {
		t.Errorf("time/date: got %q %q", s.Time, s.Date)
	}
	if s.HourFormat != "12H" || !s.PowerLoss {
		t.Errorf("format/power loss: got %q %v", s.HourFormat, s.PowerLoss)
	}
	if s.UptimeSeconds != 65 {
		t.Errorf("uptime: got %d", s.UptimeSeconds)
	}
	if s.Counts.TimeSaves != 2 || s.Counts.BusErrors != 4 {
		t.Errorf("counts: got %+v", s.Counts)
	}
	if s.Config.Heartbeat != "gpio 4" {
		t.Errorf("config: got %+v", s.Config)
	}
	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON should not carry event/reason")
	}
}

func TestFormatJSONBeforeFirstSnapshot(t *testing.T) {
	tr := fixedTracker(Config{}, start)

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed)
	if parsed.Status.Ready || parsed.Status.Mode != "UNKNOWN" || parsed.Status.Time != "" {
		t.Errorf("unexpected status before first snapshot: %+v", parsed.Status)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := fixedTracker(Config{Broker: "tcp://b:1883"}, start.Add(time.Hour))
	tr.SetClock(clockSnap())

	var parsed StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGTERM" {
		t.Errorf("event/reason: got %q %q", parsed.Status.Event, parsed.Status.Reason)
	}
	if parsed.Status.MQTT.Broker != "tcp://b:1883" {
		t.Errorf("broker: got %q", parsed.Status.MQTT.Broker)
	}
}

func TestHourFormat(t *testing.T) {
	if HourFormat(true) != "24H" || HourFormat(false) != "12H" {
		t.Error("unexpected hour format names")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(start, Config{})
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s := clockSnap()
			s.Time.Second = i % 60
			tr.SetClock(s)
			tr.SetMQTTConnected(i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			_ = FormatJSON(tr.Snapshot())
		}()
	}
	wg.Wait()
}
