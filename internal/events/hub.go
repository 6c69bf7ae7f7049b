// Package events streams evaluation events to HTTP clients as
// server-sent events, with Last-Event-ID resume from a bounded buffer.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/girs-server/girsd/internal/audit"
	"github.com/girs-server/girsd/internal/engine"
)

// Event types.
const (
	TypeReady     = "ready"
	TypeEval      = "eval"
	TypeHeartbeat = "heartbeat"
)

// Event is one SSE message.
type Event struct {
	ID   int64                  `json:"id,omitempty"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type client struct {
	id     string
	events chan Event
}

// Hub fans published events out to subscribers.
type Hub struct {
	mu        sync.Mutex
	clients   map[string]*client
	nextID    int64
	buffer    *Buffer
	heartbeat time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub keeping the last bufferSize events for resume.
// A zero heartbeat disables heartbeats.
func NewHub(bufferSize int, heartbeat time.Duration) *Hub {
	return &Hub{
		clients:   make(map[string]*client),
		buffer:    NewBuffer(bufferSize),
		heartbeat: heartbeat,
		done:      make(chan struct{}),
	}
}

// Publish assigns the next ID to ev, buffers it and delivers it to every
// subscriber. Slow subscribers miss events rather than block the caller.
func (h *Hub) Publish(ev Event) Event {
	h.mu.Lock()
	h.nextID++
	ev.ID = h.nextID
	h.buffer.Add(ev)
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.events <- ev:
		default:
		}
	}
	return ev
}

// Observer returns an engine observer publishing an eval event per line.
func (h *Hub) Observer(session string) engine.Observer {
	return func(ev engine.Event) {
		h.Publish(Event{
			Type: TypeEval,
			Data: map[string]interface{}{
				"session":   session,
				"line":      ev.Line,
				"result":    ev.Result,
				"code":      audit.Code(ev.Err),
				"latencyMs": ev.Elapsed.Milliseconds(),
			},
		})
	}
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP streams events until the client disconnects or the hub is
// closed. A Last-Event-ID header replays buffered events after that ID.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var lastID int64
	if s := r.Header.Get("Last-Event-ID"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			lastID = id
		}
	}

	c, backlog := h.register(lastID)
	defer h.unregister(c.id)

	ready := Event{Type: TypeReady, Data: map[string]interface{}{"client": c.id}}
	if err := writeEvent(w, ready); err != nil {
		return
	}
	for _, ev := range backlog {
		if err := writeEvent(w, ev); err != nil {
			return
		}
	}
	flusher.Flush()

	h.stream(r.Context(), w, flusher, c)
}

func (h *Hub) stream(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, c *client) {
	var tick <-chan time.Time
	if h.heartbeat > 0 {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		var ev Event
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case ev = <-c.events:
		case now := <-tick:
			ev = Event{Type: TypeHeartbeat, Data: map[string]interface{}{"ts": now.UTC().Format(time.RFC3339)}}
		}
		if err := writeEvent(w, ev); err != nil {
			return
		}
		flusher.Flush()
	}
}

// register adds a client and returns the buffered events after lastID.
// Both happen under one lock so no event is missed or repeated.
func (h *Hub) register(lastID int64) (*client, []Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &client{id: uuid.NewString(), events: make(chan Event, 100)}
	h.clients[c.id] = c
	var backlog []Event
	if lastID > 0 {
		backlog = h.buffer.After(lastID)
	}
	return c, backlog
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Close ends every stream. It is idempotent.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.done) })
}

func writeEvent(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if ev.ID > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", ev.ID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
