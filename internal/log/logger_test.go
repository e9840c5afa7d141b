package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodjournal/internal/core"
)

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentJournal, Output: &buf})

	l.Info("saved", FieldEntryID, "abc")
	assert.Contains(t, buf.String(), "component=journal")
	assert.Contains(t, buf.String(), "entry_id=abc")

	buf.Reset()
	l.WithComponent(ComponentWorker).Debug("tick")
	assert.Contains(t, buf.String(), "component=worker")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	assert.Empty(t, buf.String())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=app")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestFieldsBuilder(t *testing.T) {
	e := core.NewEntry(core.NewDate(2024, 1, 1), core.Good, core.DefaultRatings, "", "")
	f := NewFields().WithEntry(e).WithOperation(OpUpsert).WithError(errors.New("boom")).WithError(nil)

	assert.Equal(t, e.ID, f[FieldEntryID])
	assert.Equal(t, "2024-01-01", f[FieldEntryDate])
	assert.Equal(t, "good", f[FieldMood])
	assert.Equal(t, "boom", f[FieldError])
	assert.Len(t, f.ToSlice(), 2*len(f))
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Component: ComponentHTTP})

	var got *Logger
	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, got)
	got.Info("hello")
	assert.Contains(t, buf.String(), "request_id=req_1")
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}
