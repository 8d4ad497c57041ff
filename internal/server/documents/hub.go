package documents

import "sync"

// Hub fans document changes out to watchers. Each Subscription buffers at
// most one pending document: a newer version replaces an undelivered older
// one, and versions at or below the last queued one are dropped.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

type Subscription struct {
	hub    *Hub
	path   string
	ch     chan Document
	last   int64
	closed bool
}

// C yields documents in increasing version order. It is closed by Close.
func (s *Subscription) C() <-chan Document {
	return s.ch
}

func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if set, ok := h.subs[s.path]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.path)
		}
	}
	close(s.ch)
}

func (h *Hub) Subscribe(path string) *Subscription {
	s := &Subscription{hub: h, path: path, ch: make(chan Document, 1), last: -1}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[path]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[path] = set
	}
	set[s] = struct{}{}
	return s
}

func (h *Hub) Publish(d Document) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs[d.Path] {
		s.offer(d)
	}
}

// Offer queues d for a single subscription.
func (h *Hub) Offer(s *Subscription, d Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s.offer(d)
}

// Subscribers reports the number of open subscriptions on path.
func (h *Hub) Subscribers(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[path])
}

// offer must be called with h.mu held.
func (s *Subscription) offer(d Document) {
	if s.closed || d.Version <= s.last {
		return
	}
	s.last = d.Version

	select {
	case <-s.ch:
	default:
	}
	s.ch <- d
}
