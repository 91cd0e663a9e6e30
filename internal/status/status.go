// Package status provides a thread-safe view of the running clock for the
// HTTP page and the MQTT lifecycle messages.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/ledclock/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	TickUs    int64
	MuxUs     int64
	I2CBus    string
	Heartbeat string // "gpio N" or "software"
	Broker    string
	HTTPAddr  string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Clock         logic.Snapshot
	Ready         bool // at least one clock snapshot received
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{StartTime: startTime, Config: cfg},
		now:  time.Now,
	}
}

// SetClock stores the latest clock state. Called from the tick loop.
func (t *Tracker) SetClock(s logic.Snapshot) {
	t.mu.Lock()
	t.snap.Clock = s
	t.snap.Ready = true
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
