package mirror

import (
	"context"
	"sync"
)

// Memory is an in-process mirror. Several devices in one process can share
// a single Memory to observe each other's writes. Subscribers are notified
// synchronously from Set, outside the lock.
type Memory struct {
	mu     sync.Mutex
	docs   map[string][]byte
	subs   map[string]map[int]func([]byte)
	nextID int

	// ProbeErr, when set, is returned by Probe.
	ProbeErr error
	// SetErr, when set, makes every Set fail.
	SetErr error
}

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string][]byte),
		subs: make(map[string]map[int]func([]byte)),
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func (m *Memory) Probe(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ProbeErr
}

func (m *Memory) Set(ctx context.Context, path string, value []byte) error {
	m.mu.Lock()
	if m.SetErr != nil {
		err := m.SetErr
		m.mu.Unlock()
		return err
	}
	m.docs[path] = clone(value)
	fns := make([]func([]byte), 0, len(m.subs[path]))
	for _, fn := range m.subs[path] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(clone(value))
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.docs[path]), nil
}

func (m *Memory) Subscribe(ctx context.Context, path string, fn func([]byte)) error {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	if m.subs[path] == nil {
		m.subs[path] = make(map[int]func([]byte))
	}
	m.subs[path][id] = fn
	current := clone(m.docs[path])
	m.mu.Unlock()

	fn(current)

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs[path], id)
		m.mu.Unlock()
	}()
	return nil
}

// Subscribers returns the number of live subscriptions on path.
func (m *Memory) Subscribers(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[path])
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = make(map[string]map[int]func([]byte))
	return nil
}
