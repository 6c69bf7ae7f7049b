package events

// Buffer keeps the most recent events in publication order. It is not
// synchronized; the hub guards it.
type Buffer struct {
	events   []Event
	capacity int
}

// NewBuffer creates a buffer holding at most capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{events: make([]Event, 0, capacity), capacity: capacity}
}

// Add appends ev, evicting the oldest event when full.
func (b *Buffer) Add(ev Event) {
	if b.capacity == 0 {
		return
	}
	if len(b.events) == b.capacity {
		copy(b.events, b.events[1:])
		b.events = b.events[:len(b.events)-1]
	}
	b.events = append(b.events, ev)
}

// After returns the buffered events with an ID above lastID.
func (b *Buffer) After(lastID int64) []Event {
	var result []Event
	for _, ev := range b.events {
		if ev.ID > lastID {
			result = append(result, ev)
		}
	}
	return result
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}
