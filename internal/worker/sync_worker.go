package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"moodjournal/internal/amqp"
	"moodjournal/internal/core"
	"moodjournal/internal/log"
	"moodjournal/internal/sheets"
	"moodjournal/internal/storage"
)

// EntryReader is the read side of the journal database.
type EntryReader interface {
	GetEntry(ctx context.Context, id string) (core.MoodEntry, error)
	ListEntries(ctx context.Context) ([]core.MoodEntry, error)
}

// SyncWorker mirrors journal changes from SQLite to a spreadsheet.
// Events and full syncs are applied one at a time.
type SyncWorker struct {
	mu       sync.Mutex
	storage  EntryReader
	exporter sheets.EntryExporter
	logger   *log.Logger
}

func NewSyncWorker(storage EntryReader, exporter sheets.EntryExporter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.FromSlog(nil, log.ComponentWorker)
	}
	return &SyncWorker{
		storage:  storage,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent applies a single entry event from AMQP
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.EntryEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.logger.InfoContext(ctx, "Processing entry event",
		log.FieldAction, ev.Action,
		log.FieldEntryID, ev.ID,
		log.FieldEntryDate, ev.Date)

	switch ev.Action {
	case amqp.ActionUpserted:
		return w.exportEntry(ctx, ev.ID)
	case amqp.ActionDeleted:
		date, err := core.ParseDate(ev.Date)
		if err != nil {
			return fmt.Errorf("parse event date %q: %w", ev.Date, err)
		}
		if err := w.exporter.RemoveEntry(ctx, date); err != nil {
			return fmt.Errorf("remove entry from sheet: %w", err)
		}
		return nil
	case amqp.ActionCleared:
		if err := w.exporter.ClearEntries(ctx); err != nil {
			return fmt.Errorf("clear sheet: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", amqp.ErrUnknownAction, ev.Action)
	}
}

func (w *SyncWorker) exportEntry(ctx context.Context, id string) error {
	// Read the current row so a stale event never resurrects old values
	entry, err := w.storage.GetEntry(ctx, id)
	if errors.Is(err, storage.ErrEntryNotFound) {
		w.logger.InfoContext(ctx, "Entry no longer stored, skipping export", log.FieldEntryID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.exporter.ExportEntry(ctx, entry); err != nil {
		return fmt.Errorf("export entry: %w", err)
	}
	return nil
}

// StartupSync rewrites the sheet from the database. It recovers from missed
// AMQP messages or worker downtime.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := w.storage.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("list entries for sync: %w", err)
	}

	if err := w.exporter.ClearEntries(ctx); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	synced, failed := 0, 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.exporter.ExportEntry(ctx, e); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export entry during sync",
				log.NewFields().WithEntry(e).WithError(err).ToSlice()...)
			failed++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Sheet sync completed",
		log.FieldOperation, log.OpSync,
		"total", len(entries),
		"synced", synced,
		"errors", failed)

	if failed > 0 {
		return fmt.Errorf("sync: %d of %d entries failed", failed, len(entries))
	}
	return nil
}
