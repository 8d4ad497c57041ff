package mirror

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against the Firestore emulator.
func TestFirestore_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	f, err := NewFirestore(ctx, "demo-portal", "test-"+uuid.NewString(), "", logging.NewDiscardLogger())
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Probe(ctx))

	v, err := f.Get(ctx, "users")
	require.NoError(t, err)
	assert.Nil(t, v)

	got := make(chan []byte, 4)
	require.NoError(t, f.Subscribe(ctx, "users", func(v []byte) { got <- v }))
	assert.Nil(t, <-got)

	require.NoError(t, f.Set(ctx, "users", []byte(`[{"id":"u1"}]`)))
	assert.Equal(t, `[{"id":"u1"}]`, string(<-got))

	v, err = f.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"u1"}]`, string(v))
}
