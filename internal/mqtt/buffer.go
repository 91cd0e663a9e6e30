package mqtt

import "log"

// BacklogSize is the number of messages kept while the broker is
// unreachable.
const BacklogSize = 64

// pending is a serialized message waiting for the connection to return.
type pending struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog keeps the newest messages, dropping the oldest when full.
// Not safe for concurrent use.
type backlog struct {
	items   []pending
	next    int // slot for the next message once full
	dropped int // since the last drain
}

func newBacklog(size int) *backlog {
	return &backlog{items: make([]pending, 0, size)}
}

func (b *backlog) add(m pending) {
	if len(b.items) < cap(b.items) {
		b.items = append(b.items, m)
		return
	}
	if b.dropped == 0 {
		log.Printf("mqtt: backlog full (%d messages), dropping oldest", cap(b.items))
	}
	b.items[b.next] = m
	b.next = (b.next + 1) % len(b.items)
	b.dropped++
}

// drain returns the kept messages oldest first and empties the backlog.
func (b *backlog) drain() []pending {
	if len(b.items) == 0 {
		return nil
	}
	out := make([]pending, 0, len(b.items))
	out = append(out, b.items[b.next:]...)
	out = append(out, b.items[:b.next]...)

	if b.dropped > 0 {
		log.Printf("mqtt: %d messages were dropped while disconnected", b.dropped)
	}
	b.items = b.items[:0]
	b.next = 0
	b.dropped = 0
	return out
}

func (b *backlog) len() int {
	return len(b.items)
}
