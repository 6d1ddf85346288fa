package diag

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWarnIncludesRankAndOp(t *testing.T) {
	var buf bytes.Buffer
	prev := Root()
	SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetDefault(prev)

	Warn(2, "permutation_manager", "queue underflow, regenerating inline")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "permutation_manager", entry["op"])
	require.Equal(t, float64(2), entry["rank"])
	require.Equal(t, "queue underflow, regenerating inline", entry["msg"])
}

func TestErrorIncludesRankAndOp(t *testing.T) {
	var buf bytes.Buffer
	prev := Root()
	SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetDefault(prev)

	Error(1, "socket_bind", "bind failed twice")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "socket_bind", entry["op"])
	require.Equal(t, float64(1), entry["rank"])
}
