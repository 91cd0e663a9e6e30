package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Ready         bool       `json:"ready"`
	Mode          string     `json:"mode"`
	Time          string     `json:"time"`
	Date          string     `json:"date"`
	HourFormat    string     `json:"hour_format"`
	PowerLoss     bool       `json:"power_loss"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	TimeSaves int `json:"time_saves"`
	DateSaves int `json:"date_saves"`
	Chimes    int `json:"chimes"`
	BusErrors int `json:"bus_errors"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickUs    int64  `json:"tick_us"`
	MuxUs     int64  `json:"mux_us"`
	I2CBus    string `json:"i2c_bus"`
	Heartbeat string `json:"heartbeat"`
	Broker    string `json:"broker"`
	HTTPAddr  string `json:"http_addr"`
}

// HourFormat names the selected display format.
func HourFormat(hour24 bool) string {
	if hour24 {
		return "24H"
	}
	return "12H"
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Clock
	inner := StatusInner{
		Ready:         snap.Ready,
		Mode:          "UNKNOWN",
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			TimeSaves: c.Counts.TimeSaves,
			DateSaves: c.Counts.DateSaves,
			Chimes:    c.Counts.Chimes,
			BusErrors: c.Counts.BusErrors,
		},
		Config: ConfigJSON(snap.Config),
	}
	if snap.Ready {
		inner.Mode = c.Mode.String()
		inner.Time = c.Time.String()
		inner.Date = c.Date.String()
		inner.HourFormat = HourFormat(c.Hour24)
		inner.PowerLoss = c.PowerLossLamp
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT lifecycle event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
