package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/ledclock/internal/logic"
)

const (
	connectRetryInterval = 5 * time.Second
	publishTimeout       = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are kept in a backlog and sent on reconnect.
type RealPublisher struct {
	client paho.Client

	// mu orders the connected check in send against the drain in
	// onConnect, so nothing is parked after the backlog was replayed.
	mu      sync.Mutex
	backlog *backlog
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is retried in the background; the clock runs whether or not it succeeds.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{backlog: newBacklog(BacklogSize)}

	will, _ := FormatSystemPayload(WillEvent(time.Now()))
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("ledclock").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(connectRetryInterval).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// WillEvent is the lifecycle event the broker publishes if the clock drops
// off the network without a clean shutdown.
func WillEvent(t time.Time) SystemEvent {
	return SystemEvent{Timestamp: t, Event: "SHUTDOWN", Reason: "MQTT_DISCONNECT", Retained: true}
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	msgs := p.backlog.drain()
	p.mu.Unlock()

	log.Printf("mqtt: connected, replaying %d messages", len(msgs))
	for _, m := range msgs {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

// park adds m to the backlog if connected reports false. The check and
// the add happen under mu.
func (p *RealPublisher) park(connected func() bool, m pending) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if connected() {
		return false
	}
	p.backlog.add(m)
	return true
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Publish sends a clock event to the broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.send(pending{topic: Topic, payload: payload})
}

// PublishSystem sends a lifecycle event to the broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(pending{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) send(m pending) error {
	if p.park(p.client.IsConnectionOpen, m) {
		return nil
	}

	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
