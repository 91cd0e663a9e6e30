// Package mqtt mirrors clock events to an MQTT broker, with abstraction for
// testing. Nothing is ever subscribed: the clock cannot be driven remotely.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/ledclock/internal/logic"
)

// Topic is the MQTT topic for clock events.
const Topic = "home/ledclock/events"

// TopicSystem is the MQTT topic for process lifecycle events.
const TopicSystem = "home/ledclock/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a clock event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a process lifecycle event (STARTUP, SHUTDOWN).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // shutdown only
	RawPayload []byte // pre-formatted JSON, returned as is by FormatSystemPayload
	Retained   bool
}

// Payload is the MQTT message for a clock event.
type Payload struct {
	Clock ClockPayload `json:"clock"`
}

// ClockPayload contains the clock event details.
type ClockPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Mode      string `json:"mode"`
	Time      string `json:"time"`
	Date      string `json:"date"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FormatPayload creates the JSON payload for a clock event.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := ClockPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Mode:      event.Mode.String(),
		Time:      event.Time.String(),
		Date:      event.Date.String(),
		Detail:    event.Detail,
	}
	if event.Err != nil {
		p.Error = event.Err.Error()
	}
	return json.Marshal(Payload{Clock: p})
}

// SystemPayload is the MQTT message for lifecycle events that carry no
// status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
