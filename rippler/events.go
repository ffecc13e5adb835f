package rippler

import "sync/atomic"

// EventKind identifies a note event.
type EventKind uint8

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventAllNotesOff
	EventPanic
)

// Event is a note event queued for the audio goroutine.
type Event struct {
	Kind     EventKind
	Note     int
	Velocity int
}

// eventRing is a bounded single-producer/single-consumer queue. Only one
// goroutine may push and only the render goroutine may pop.
type eventRing struct {
	buf  []Event
	mask uint64
	head atomic.Uint64 // next slot to pop
	tail atomic.Uint64 // next slot to push
}

func newEventRing(capacity int) *eventRing {
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &eventRing{buf: make([]Event, n), mask: uint64(n - 1)}
}

func (r *eventRing) push(ev Event) bool {
	t := r.tail.Load()
	if t-r.head.Load() == uint64(len(r.buf)) {
		return false
	}
	r.buf[t&r.mask] = ev
	r.tail.Store(t + 1)
	return true
}

func (r *eventRing) pop() (Event, bool) {
	h := r.head.Load()
	if h == r.tail.Load() {
		return Event{}, false
	}
	ev := r.buf[h&r.mask]
	r.head.Store(h + 1)
	return ev, true
}
