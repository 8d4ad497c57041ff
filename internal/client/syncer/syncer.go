// Package syncer keeps the device store and the remote mirror eventually
// consistent. Every local write is pushed as a whole collection; every remote
// change overwrites the local collection. The last full write wins.
//
// Pushes of one collection leave the device in write order through a single
// worker, and a payload still queued when a newer one arrives is dropped.
// The mirror echoes a device's own pushes back to it; those echoes never
// overwrite the store.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/client/mirror"
	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/store"
	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

// State is the sync state of one collection channel.
type State int

const (
	Uninitialized State = iota
	Subscribing
	Synced
	LocalOnly
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Subscribing:
		return "subscribing"
	case Synced:
		return "synced"
	case LocalOnly:
		return "local-only"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Overwriter is the part of the store the engine reads and writes.
type Overwriter interface {
	Raw(ctx context.Context, c models.Collection) ([]byte, error)
	OverwriteIf(ctx context.Context, c models.Collection, raw []byte, cond func(current []byte) bool) (bool, error)
}

type Options struct {
	ProbeTimeout   time.Duration
	NetworkTimeout time.Duration
}

// maxUnconfirmed bounds the pushes remembered while waiting for their echo.
// Mirrors that coalesce notifications never echo some of them.
const maxUnconfirmed = 32

// channel is the engine's view of one collection. Guarded by Syncer.mu.
type channel struct {
	state State

	// local is the canonical form of what the store holds as far as the
	// engine knows: the last pushed or applied value.
	local string

	pending    []byte
	pendingKey string
	running    bool

	// sent holds canonical forms of pushes not yet echoed, oldest first.
	sent []string
	// foreign is set when another device's value arrived while pushes were
	// in flight; the mirror is read again once the queue drains.
	foreign bool
}

type Syncer struct {
	store  Overwriter
	mirror mirror.Mirror
	log    logging.Logger
	opts   Options

	mu        sync.Mutex
	channels  map[models.Collection]*channel
	listeners map[int]func(models.Collection)
	nextID    int
	subCtx    context.Context
	cancel    context.CancelFunc

	pushes sync.WaitGroup
}

func New(st Overwriter, m mirror.Mirror, log logging.Logger, opts Options) *Syncer {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 5 * time.Second
	}
	if opts.NetworkTimeout <= 0 {
		opts.NetworkTimeout = 10 * time.Second
	}
	channels := make(map[models.Collection]*channel, len(models.Collections))
	for _, c := range models.Collections {
		channels[c] = &channel{state: Uninitialized}
	}
	return &Syncer{
		store:     st,
		mirror:    m,
		log:       log.With("module", "syncer"),
		opts:      opts,
		channels:  channels,
		listeners: make(map[int]func(models.Collection)),
	}
}

// canonical renders a JSON value with sorted keys and no spacing, so the
// same collection compares equal whichever side serialized it. nil maps to
// the empty string.
func canonical(raw []byte) string {
	if raw == nil {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(b)
}

func (s *Syncer) setState(c models.Collection, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[c].state = st
}

// State reports the channel state of c.
func (s *Syncer) State(c models.Collection) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.channels[c]; ok {
		return ch.state
	}
	return Uninitialized
}

// Online reports whether any channel talks to the mirror.
func (s *Syncer) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels {
		if ch.state == Subscribing || ch.state == Synced {
			return true
		}
	}
	return false
}

// OnUpdate registers fn to run after a remote value replaced a local
// collection. The returned function removes the listener.
func (s *Syncer) OnUpdate(fn func(models.Collection)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Syncer) emit(c models.Collection) {
	s.mu.Lock()
	fns := make([]func(models.Collection), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// Start probes the mirror once. When the probe fails every channel becomes
// LocalOnly for the rest of the process. Otherwise both collections are
// pulled and then subscribed to. Start never fails; problems are logged.
func (s *Syncer) Start(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
	err := s.mirror.Probe(probeCtx)
	cancel()
	if err != nil {
		for _, c := range models.Collections {
			s.setState(c, LocalOnly)
		}
		s.log.Warn(ctx, "remote mirror unavailable, working local-only", "error", fmt.Errorf("%w: %w", common.ErrSyncUnavailable, err))
		return
	}

	subCtx, subCancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.subCtx = subCtx
	s.cancel = subCancel
	s.mu.Unlock()

	for _, c := range models.Collections {
		raw, err := s.store.Raw(ctx, c)
		if err != nil {
			s.log.Warn(ctx, "cannot read local collection", "collection", c, "error", err)
		}
		s.mu.Lock()
		s.channels[c].local = canonical(raw)
		s.mu.Unlock()

		s.pull(ctx, c)
		s.subscribe(subCtx, c)
	}
}

func (s *Syncer) pull(ctx context.Context, c models.Collection) {
	getCtx, cancel := context.WithTimeout(ctx, s.opts.NetworkTimeout)
	defer cancel()

	value, err := s.mirror.Get(getCtx, string(c))
	if err != nil {
		s.log.Warn(ctx, "initial pull failed", "collection", c, "error", err)
		return
	}
	if s.receive(ctx, c, value) {
		s.log.Info(ctx, "collection loaded from mirror", "collection", c)
		s.emit(c)
	}
}

func (s *Syncer) subscribe(ctx context.Context, c models.Collection) {
	s.setState(c, Subscribing)

	err := s.mirror.Subscribe(ctx, string(c), func(value []byte) {
		s.setState(c, Synced)
		if s.receive(ctx, c, value) {
			s.log.Info(ctx, "collection updated from another device", "collection", c)
			s.emit(c)
		}
	})
	if err != nil {
		s.setState(c, LocalOnly)
		s.log.Warn(ctx, "subscribe failed, channel stays local-only", "collection", c, "error", err)
	}
}

// receive decides what a value observed on the mirror means for the store
// and reports whether the store was overwritten.
func (s *Syncer) receive(ctx context.Context, c models.Collection, value []byte) bool {
	if value == nil {
		return false
	}
	key := canonical(value)

	s.mu.Lock()
	ch := s.channels[c]
	if i := slices.Index(ch.sent, key); i >= 0 {
		// Our own push, and everything we sent before it, reached the mirror
		// after any foreign value seen so far.
		ch.sent = slices.Clone(ch.sent[i+1:])
		ch.foreign = false
		if ch.running || len(ch.sent) > 0 || key == ch.local {
			s.mu.Unlock()
			return false
		}
	} else if ch.running {
		ch.foreign = true
		s.mu.Unlock()
		return false
	}
	if key == ch.local {
		s.mu.Unlock()
		return false
	}
	expect := ch.local
	s.mu.Unlock()

	if !s.apply(ctx, c, value, expect) {
		return false
	}

	s.mu.Lock()
	if ch.local == expect {
		ch.local = key
	}
	s.mu.Unlock()
	return true
}

// apply overwrites the local collection with a non-empty remote array,
// provided the store still holds expect. Absent, empty and undecodable
// values are ignored.
func (s *Syncer) apply(ctx context.Context, c models.Collection, value []byte, expect string) bool {
	n, err := store.Decode(c, value)
	if err != nil {
		s.log.Warn(ctx, "ignoring undecodable remote value", "collection", c, "error", err)
		return false
	}
	if n == 0 {
		return false
	}
	ok, err := s.store.OverwriteIf(ctx, c, value, func(current []byte) bool {
		return canonical(current) == expect
	})
	if err != nil {
		s.log.Error(ctx, "failed to store remote value", "collection", c, "error", err)
		return false
	}
	if !ok {
		s.log.Debug(ctx, "local write in progress, remote value left for the next push", "collection", c)
	}
	return ok
}

// Push sends the whole collection to the mirror in the background. Failures
// are logged and dropped. Before Start, and on local-only channels, Push
// does nothing.
func (s *Syncer) Push(ctx context.Context, c models.Collection, raw []byte) {
	key := canonical(raw)

	s.mu.Lock()
	ch, ok := s.channels[c]
	if !ok || (ch.state != Subscribing && ch.state != Synced) {
		st := Uninitialized
		if ok {
			st = ch.state
		}
		s.mu.Unlock()
		s.log.Debug(ctx, "push skipped", "collection", c, "state", st.String())
		return
	}

	ch.local = key
	ch.pending = append([]byte(nil), raw...)
	ch.pendingKey = key
	// This push lands on the mirror after anything already observed there.
	ch.foreign = false
	if ch.running {
		s.mu.Unlock()
		return
	}
	ch.running = true
	s.pushes.Add(1)
	s.mu.Unlock()

	go s.drain(context.WithoutCancel(ctx), c)
}

// drain sends queued values of c one at a time until the queue is empty.
func (s *Syncer) drain(ctx context.Context, c models.Collection) {
	defer s.pushes.Done()

	for {
		s.mu.Lock()
		ch := s.channels[c]
		value, key := ch.pending, ch.pendingKey
		ch.pending, ch.pendingKey = nil, ""
		if value == nil {
			ch.running = false
			recheck := ch.foreign
			ch.foreign = false
			subCtx := s.subCtx
			s.mu.Unlock()

			if recheck && subCtx != nil && subCtx.Err() == nil {
				s.pull(subCtx, c)
			}
			return
		}
		ch.sent = append(ch.sent, key)
		if len(ch.sent) > maxUnconfirmed {
			ch.sent = slices.Clone(ch.sent[len(ch.sent)-maxUnconfirmed:])
		}
		s.mu.Unlock()

		pushCtx, cancel := context.WithTimeout(ctx, s.opts.NetworkTimeout)
		err := s.mirror.Set(pushCtx, string(c), value)
		cancel()
		if err != nil {
			s.log.Warn(ctx, "push failed", "collection", c, "error", err)
			s.forget(c, key)
			continue
		}
		s.log.Debug(ctx, "collection pushed", "collection", c, "bytes", len(value))
	}
}

// forget drops a push that never reached the mirror from the echo list.
func (s *Syncer) forget(c models.Collection, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channels[c]
	for i := len(ch.sent) - 1; i >= 0; i-- {
		if ch.sent[i] == key {
			ch.sent = slices.Delete(ch.sent, i, i+1)
			return
		}
	}
}

// Wait blocks until every push queued so far has been sent or dropped.
func (s *Syncer) Wait() {
	s.pushes.Wait()
}

// Close stops the subscriptions and waits for queued pushes.
func (s *Syncer) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.Wait()
}

var _ Overwriter = (*store.Store)(nil)
