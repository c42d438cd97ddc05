package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records as JSON lines.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:   h.buf,
		level: h.level,
		attrs: make([]slog.Attr, len(h.attrs)+len(attrs)),
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *testHandler) lastRecord() map[string]any {
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(lines[i], &m); err == nil {
			return m
		}
	}
	return nil
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds emission fields", func(t *testing.T) {
		h := newTestHandler()
		enriched := EnrichLogger(slog.New(h), "em-1", "basket:changed", 2)
		enriched.Info("rebuilding")

		record := h.lastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "em-1", record["emission_id"])
		assert.Equal(t, "basket:changed", record["event"])
		assert.Equal(t, float64(2), record["depth"])
		assert.Equal(t, "rebuilding", record["msg"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "em-1", "x", 0))
	})
}

func TestLogEmit(t *testing.T) {
	h := newTestHandler()
	LogEmit(slog.New(h), "em-2", "items:changed", 3, 1.5)

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "event dispatched", record["msg"])
	assert.Equal(t, "items:changed", record["event"])
	assert.Equal(t, float64(3), record["listeners"])
	assert.Equal(t, 1.5, record["duration_ms"])
}

func TestLogListenerError(t *testing.T) {
	h := newTestHandler()
	LogListenerError(slog.New(h), "em-3", "order:submit", "l-1", errors.New("boom"))

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "listener failed", record["msg"])
	assert.Equal(t, "l-1", record["listener_id"])
	assert.Equal(t, "boom", record["error"])
}

func TestLogSubscribeAndUnsubscribe(t *testing.T) {
	h := newTestHandler()
	logger := slog.New(h)

	LogSubscribe(logger, "exact:card:select", "l-9")
	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "listener registered", record["msg"])
	assert.Equal(t, "exact:card:select", record["key"])

	LogUnsubscribe(logger, "exact:card:select", "l-9")
	record = h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "listener removed", record["msg"])
}

func TestLogDeprecated(t *testing.T) {
	h := newTestHandler()
	LogDeprecated(slog.New(h), "card:delete", "use basket item click")

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "use basket item click", record["message"])
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogSubscribe(nil, "k", "l")
		LogUnsubscribe(nil, "k", "l")
		LogEmit(nil, "e", "n", 0, 0)
		LogListenerError(nil, "e", "n", "l", errors.New("x"))
		LogDeprecated(nil, "n", "m")
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	assert.GreaterOrEqual(t, done(), float64(0))
}
