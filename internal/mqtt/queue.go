package mqtt

import (
	"context"
	"log"

	"github.com/sweeney/ledclock/internal/logic"
)

// Queue hands clock events from the tick loop to a Publisher running on its
// own goroutine, so a slow broker never stalls the clock.
type Queue struct {
	pub Publisher
	ch  chan logic.Event
}

// NewQueue creates a Queue holding up to size undelivered events.
func NewQueue(pub Publisher, size int) *Queue {
	return &Queue{pub: pub, ch: make(chan logic.Event, size)}
}

// Publish enqueues ev without blocking. It returns false if the queue is
// full and ev was dropped.
func (q *Queue) Publish(ev logic.Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Run publishes queued events until ctx is done, then flushes whatever is
// still queued.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case ev := <-q.ch:
					q.send(ev)
				default:
					return nil
				}
			}
		case ev := <-q.ch:
			q.send(ev)
		}
	}
}

func (q *Queue) send(ev logic.Event) {
	if err := q.pub.Publish(ev); err != nil {
		log.Printf("publish error: %v", err)
	}
}
