package httpapi

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/client/mirror"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The device-side HTTP mirror must work against the real handlers.
func TestMirrorClientAgainstServer(t *testing.T) {
	ts := newTestServer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := mirror.NewHTTP(ts.URL, "", logging.NewDiscardLogger())
	b := mirror.NewHTTP(ts.URL, "", logging.NewDiscardLogger())
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })

	require.NoError(t, a.Probe(ctx))
	require.NoError(t, b.Probe(ctx))

	v, err := a.Get(ctx, "sessions")
	require.NoError(t, err)
	assert.Nil(t, v)

	var (
		mu   sync.Mutex
		seen [][]byte
	)
	require.NoError(t, b.Subscribe(ctx, "sessions", func(value []byte) {
		mu.Lock()
		seen = append(seen, value)
		mu.Unlock()
	}))

	require.NoError(t, a.Set(ctx, "sessions", []byte(`[{"id":"from-a"}]`)))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && string(seen[len(seen)-1]) == `[{"id":"from-a"}]`
	}, 5*time.Second, 10*time.Millisecond)

	got, err := b.Get(ctx, "sessions")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"from-a"}]`, string(got))
}
