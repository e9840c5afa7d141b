package worker

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodjournal/internal/amqp"
	"moodjournal/internal/core"
	"moodjournal/internal/log"
	"moodjournal/internal/sheets/memory"
	"moodjournal/internal/storage"
)

type fakeReader struct {
	entries []core.MoodEntry
	err     error
}

func (r *fakeReader) GetEntry(_ context.Context, id string) (core.MoodEntry, error) {
	if r.err != nil {
		return core.MoodEntry{}, r.err
	}
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return core.MoodEntry{}, storage.ErrEntryNotFound
}

func (r *fakeReader) ListEntries(context.Context) ([]core.MoodEntry, error) {
	return r.entries, r.err
}

func newWorker(entries ...core.MoodEntry) (*SyncWorker, *fakeReader, *memory.Exporter) {
	reader := &fakeReader{entries: entries}
	exp := memory.New()
	return NewSyncWorker(reader, exp, log.New(log.Config{Output: &bytes.Buffer{}})), reader, exp
}

func TestHandleEvent_UpsertExportsStoredEntry(t *testing.T) {
	e := core.NewEntry(core.NewDate(2024, 1, 1), core.Good, core.DefaultRatings, "", "")
	w, _, exp := newWorker(e)
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, amqp.NewEntryEvent(amqp.ActionUpserted, e.ID, e.Date.String())))
	rows := exp.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Good", rows[0][1])

	require.NoError(t, w.HandleEvent(ctx, amqp.NewEntryEvent(amqp.ActionUpserted, "gone", "2024-01-05")),
		"missing entries are skipped")
	assert.Len(t, exp.Rows(), 1)
}

func TestHandleEvent_StorageErrorIsReturned(t *testing.T) {
	w, reader, _ := newWorker()
	reader.err = errors.New("database is locked")
	err := w.HandleEvent(context.Background(), amqp.NewEntryEvent(amqp.ActionUpserted, "x", "2024-01-01"))
	assert.Error(t, err)
}

func TestHandleEvent_DeleteAndClear(t *testing.T) {
	a := core.NewEntry(core.NewDate(2024, 1, 1), core.Good, core.DefaultRatings, "", "")
	b := core.NewEntry(core.NewDate(2024, 1, 2), core.Bad, core.DefaultRatings, "", "")
	w, _, exp := newWorker(a, b)
	ctx := context.Background()
	require.NoError(t, w.StartupSync(ctx))
	require.Len(t, exp.Rows(), 2)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewEntryEvent(amqp.ActionDeleted, a.ID, a.Date.String())))
	require.Len(t, exp.Rows(), 1)
	assert.Equal(t, "2024-01-02", exp.Rows()[0][0])

	assert.Error(t, w.HandleEvent(ctx, amqp.NewEntryEvent(amqp.ActionDeleted, a.ID, "yesterday")))

	require.NoError(t, w.HandleEvent(ctx, amqp.NewEntryEvent(amqp.ActionCleared, "", "")))
	assert.Empty(t, exp.Rows())

	err := w.HandleEvent(ctx, &amqp.EntryEvent{Action: "renamed"})
	assert.ErrorIs(t, err, amqp.ErrUnknownAction)
}

func TestStartupSync_RewritesSheet(t *testing.T) {
	a := core.NewEntry(core.NewDate(2024, 1, 1), core.Good, core.DefaultRatings, "", "")
	w, reader, exp := newWorker(a)
	ctx := context.Background()

	stale := core.NewEntry(core.NewDate(2023, 12, 31), core.Meh, core.DefaultRatings, "", "")
	require.NoError(t, exp.ExportEntry(ctx, stale))

	require.NoError(t, w.StartupSync(ctx))
	rows := exp.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-01", rows[0][0])

	invalid := a
	invalid.ID = "bad"
	invalid.Date = core.NewDate(2024, 1, 9)
	invalid.Sleep = 99
	reader.entries = append(reader.entries, invalid)
	assert.Error(t, w.StartupSync(ctx))
	assert.Len(t, exp.Rows(), 1)

	reader.err = errors.New("boom")
	assert.Error(t, w.StartupSync(ctx))
}

// clearHook runs onClear the first time the sheet is cleared.
type clearHook struct {
	*memory.Exporter
	once    sync.Once
	onClear func()
}

func (h *clearHook) ClearEntries(ctx context.Context) error {
	err := h.Exporter.ClearEntries(ctx)
	h.once.Do(h.onClear)
	return err
}

func TestStartupSync_DeleteDuringSyncStaysDeleted(t *testing.T) {
	a := core.NewEntry(core.NewDate(2024, 1, 1), core.Good, core.DefaultRatings, "", "")
	b := core.NewEntry(core.NewDate(2024, 1, 2), core.Bad, core.DefaultRatings, "", "")
	reader := &fakeReader{entries: []core.MoodEntry{a, b}}
	exp := &clearHook{Exporter: memory.New()}
	w := NewSyncWorker(reader, exp, log.New(log.Config{Output: &bytes.Buffer{}}))
	ctx := context.Background()

	deleted := make(chan error, 1)
	exp.onClear = func() {
		// the entry is deleted after the sync listed it
		reader.entries = []core.MoodEntry{b}
		go func() {
			deleted <- w.HandleEvent(ctx, amqp.NewEntryEvent(amqp.ActionDeleted, a.ID, a.Date.String()))
		}()
		select {
		case err := <-deleted:
			deleted <- err
			t.Error("delete event was applied in the middle of a sync")
		case <-time.After(50 * time.Millisecond):
		}
	}

	require.NoError(t, w.StartupSync(ctx))
	require.NoError(t, <-deleted)

	rows := exp.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-02", rows[0][0])
}
