package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/ledclock/internal/logic"
)

var ts = time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Timestamp: ts,
		Type:      logic.EventTimeSaved,
		Mode:      logic.ModeNormal,
		Time:      logic.TimeOfDay{Hour: 7, Minute: 5, Second: 0},
		Date:      logic.CalendarDate{Year: 26, Month: 2, Day: 2},
		Detail:    "SET_SEC",
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"clock":{"timestamp":"2026-02-02T22:18:12Z","event":"TIME_SAVED","mode":"NORMAL","time":"07:05:00","date":"26.02.02","detail":"SET_SEC"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadBusError(t *testing.T) {
	event := logic.Event{
		Timestamp: ts,
		Type:      logic.EventBusError,
		Mode:      logic.ModeSetHour,
		Detail:    "read time",
		Err:       errors.New("read time: nack"),
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Clock.Event != "BUS_ERROR" {
		t.Errorf("unexpected event: %s", parsed.Clock.Event)
	}
	if parsed.Clock.Mode != "SET_HOUR" {
		t.Errorf("unexpected mode: %s", parsed.Clock.Mode)
	}
	if parsed.Clock.Error != "read time: nack" {
		t.Errorf("unexpected error field: %s", parsed.Clock.Error)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 3, 7, 18, 12, 0, loc),
		Type:      logic.EventChime,
	}

	payload, _ := FormatPayload(event)
	var parsed Payload
	json.Unmarshal(payload, &parsed)
	if parsed.Clock.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("timestamp not converted to UTC: %s", parsed.Clock.Timestamp)
	}
	if parsed.Clock.Detail != "" || parsed.Clock.Error != "" {
		t.Errorf("empty detail/error should be omitted: %+v", parsed.Clock)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "home/ledclock/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "home/ledclock/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	tests := []struct {
		name  string
		event SystemEvent
		want  string
	}{
		{
			name:  "shutdown",
			event: SystemEvent{Timestamp: ts, Event: "SHUTDOWN", Reason: "SIGTERM"},
			want:  `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`,
		},
		{
			name:  "no reason",
			event: SystemEvent{Timestamp: ts, Event: "STARTUP"},
			want:  `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"STARTUP"}}`,
		},
		{
			name:  "raw payload wins",
			event: SystemEvent{Timestamp: ts, Event: "STARTUP", RawPayload: []byte(`{"x":1}`)},
			want:  `{"x":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := FormatSystemPayload(tt.event)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(payload) != tt.want {
				t.Errorf("got %s, want %s", payload, tt.want)
			}
		})
	}
}

func TestWillPayloadFormat(t *testing.T) {
	ev := WillEvent(ts)
	if !ev.Retained {
		t.Error("will should be retained")
	}
	payload, _ := FormatSystemPayload(ev)
	expected := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"MQTT_DISCONNECT"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(logic.Event{Timestamp: ts, Type: logic.EventChime})
	f.PublishSystem(SystemEvent{Timestamp: ts, Event: "STARTUP"})

	if f.EventCount() != 1 || len(f.Payloads) != 1 {
		t.Errorf("expected 1 event and payload, got %d/%d", len(f.Events), len(f.Payloads))
	}
	if len(f.SystemEvents) != 1 || len(f.SystemPayloads) != 1 {
		t.Errorf("expected 1 system event, got %d", len(f.SystemEvents))
	}

	f.PublishError = errors.New("broker down")
	if err := f.Publish(logic.Event{}); err == nil {
		t.Error("expected error")
	}
	if f.EventCount() != 1 {
		t.Error("failed publish should not be recorded")
	}
}

func TestQueueDeliversInOrder(t *testing.T) {
	pub := NewFakePublisher()
	q := NewQueue(pub, 8)
	for _, typ := range []logic.EventType{logic.EventModeChange, logic.EventTimeSaved, logic.EventChime} {
		if !q.Publish(logic.Event{Type: typ}) {
			t.Fatalf("enqueue %s refused", typ)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if pub.EventCount() != 3 {
		t.Fatalf("expected 3 events flushed, got %d", pub.EventCount())
	}
	if pub.Events[1].Type != logic.EventTimeSaved {
		t.Errorf("order not preserved: %v", pub.Events)
	}
}

func TestQueueFullDrops(t *testing.T) {
	q := NewQueue(NewFakePublisher(), 1)
	if !q.Publish(logic.Event{}) {
		t.Fatal("first event should be accepted")
	}
	if q.Publish(logic.Event{}) {
		t.Error("second event should be refused when full")
	}
}

func TestQueueSurvivesPublishErrors(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishError = errors.New("broker down")
	q := NewQueue(pub, 4)
	q.Publish(logic.Event{})
	q.Publish(logic.Event{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(q.ch) != 0 {
		t.Error("queue should be drained")
	}
}
