package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_CoalescesToLatest(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("sessions")
	defer s.Close()

	for v := int64(1); v <= 5; v++ {
		h.Publish(Document{Path: "sessions", Version: v})
	}

	d := <-s.C()
	assert.Equal(t, int64(5), d.Version)

	select {
	case extra := <-s.C():
		t.Fatalf("unexpected queued document %d", extra.Version)
	default:
	}
}

func TestHub_DropsStaleVersions(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("users")
	defer s.Close()

	h.Publish(Document{Path: "users", Version: 3})
	<-s.C()

	h.Publish(Document{Path: "users", Version: 2})
	h.Offer(s, Document{Path: "users", Version: 3})

	select {
	case d := <-s.C():
		t.Fatalf("stale version %d delivered", d.Version)
	default:
	}
}

func TestHub_OnlyMatchingPath(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("users")
	defer s.Close()

	h.Publish(Document{Path: "sessions", Version: 1})

	select {
	case <-s.C():
		t.Fatal("document for another path delivered")
	default:
	}
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	h := NewHub()
	s := h.Subscribe("users")
	require.Equal(t, 1, h.Subscribers("users"))

	s.Close()
	s.Close()
	assert.Equal(t, 0, h.Subscribers("users"))

	_, ok := <-s.C()
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		h.Publish(Document{Path: "users", Version: 1})
		h.Offer(s, Document{Path: "users", Version: 2})
	})
}
