package syncer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func idsJSON(t *testing.T, raw []byte) string {
	t.Helper()
	var items []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	b, err := json.Marshal(ids)
	require.NoError(t, err)
	return string(b)
}
