package mqtt

import "testing"

func msg(i int) pending {
	return pending{topic: Topic, payload: []byte{byte(i)}}
}

func payloads(ms []pending) []byte {
	out := make([]byte, len(ms))
	for i, m := range ms {
		out[i] = m.payload[0]
	}
	return out
}

func TestBacklogEmptyDrain(t *testing.T) {
	b := newBacklog(4)
	if got := b.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestBacklogKeepsOrder(t *testing.T) {
	b := newBacklog(4)
	for i := 0; i < 3; i++ {
		b.add(msg(i))
	}
	if b.len() != 3 {
		t.Fatalf("expected len 3, got %d", b.len())
	}

	got := payloads(b.drain())
	if string(got) != string([]byte{0, 1, 2}) {
		t.Errorf("unexpected order: %v", got)
	}
	if b.len() != 0 {
		t.Error("drain should empty the backlog")
	}
}

func TestBacklogDropsOldest(t *testing.T) {
	b := newBacklog(4)
	for i := 0; i < 7; i++ {
		b.add(msg(i))
	}
	if b.dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", b.dropped)
	}

	got := payloads(b.drain())
	if string(got) != string([]byte{3, 4, 5, 6}) {
		t.Errorf("expected newest four, got %v", got)
	}
	if b.dropped != 0 {
		t.Error("drain should reset the drop count")
	}
}

func TestBacklogReusableAfterOverflow(t *testing.T) {
	b := newBacklog(3)
	for i := 0; i < 5; i++ {
		b.add(msg(i))
	}
	b.drain()

	b.add(msg(9))
	b.add(msg(8))
	got := payloads(b.drain())
	if string(got) != string([]byte{9, 8}) {
		t.Errorf("unexpected contents after reuse: %v", got)
	}
}

func TestBacklogDefaultSize(t *testing.T) {
	b := newBacklog(BacklogSize)
	for i := 0; i < BacklogSize+1; i++ {
		b.add(msg(i))
	}
	got := b.drain()
	if len(got) != BacklogSize {
		t.Fatalf("expected %d, got %d", BacklogSize, len(got))
	}
	if got[0].payload[0] != 1 {
		t.Errorf("oldest kept should be message 1, got %d", got[0].payload[0])
	}
}

func TestParkChecksConnectionUnderLock(t *testing.T) {
	p := &RealPublisher{backlog: newBacklog(4)}

	disconnected := func() bool {
		if p.mu.TryLock() {
			p.mu.Unlock()
			t.Error("connection checked without holding the backlog lock")
		}
		return false
	}
	if !p.park(disconnected, msg(1)) {
		t.Fatal("expected message to be parked while disconnected")
	}

	connected := func() bool { return true }
	if p.park(connected, msg(2)) {
		t.Error("expected message to be sent while connected")
	}

	if got := payloads(p.backlog.drain()); len(got) != 1 || got[0] != 1 {
		t.Errorf("backlog: got %v, want [1]", got)
	}
}
