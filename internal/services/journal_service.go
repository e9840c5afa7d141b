package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"moodjournal/internal/amqp"
	"moodjournal/internal/core"
	"moodjournal/internal/journal"
	"moodjournal/internal/log"
	"moodjournal/internal/report"
)

// ErrInvalidEntry wraps every validation failure returned by Submit.
var ErrInvalidEntry = errors.New("invalid entry")

// Messages shown to the user after a submission.
const (
	MsgSaved    = "Mood entry saved successfully!"
	MsgConflict = "An entry for this date already exists. Do you want to update it?"
)

type (
	// Repository persists entries across restarts.
	Repository interface {
		ListEntries(ctx context.Context) ([]core.MoodEntry, error)
		SaveEntry(ctx context.Context, e core.MoodEntry) error
		DeleteEntry(ctx context.Context, id string) (bool, error)
		ClearEntries(ctx context.Context) error
	}

	// EventPublisher announces journal changes to other processes.
	EventPublisher interface {
		PublishEntryEvent(ctx context.Context, ev *amqp.EntryEvent) error
	}

	// ConfirmFunc decides whether an existing entry for the same date is
	// replaced. It runs while the journal is locked and must not call back
	// into the service.
	ConfirmFunc func() bool
)

// JournalService is the single owner of the entry store. It serialises
// mutations, mirrors them to the repository and publishes change events.
type JournalService struct {
	mu        sync.Mutex
	store     *journal.Store
	repo      Repository
	publisher EventPublisher
	logger    *log.Logger
}

// NewJournalService wires a store to its optional repository and publisher.
func NewJournalService(store *journal.Store, repo Repository, publisher EventPublisher, logger *log.Logger) *JournalService {
	if store == nil {
		store = journal.NewStore()
	}
	if logger == nil {
		logger = log.FromSlog(nil, log.ComponentJournal)
	}
	return &JournalService{
		store:     store,
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentJournal),
	}
}

// Load seeds the store from the repository.
func (s *JournalService) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}

	s.mu.Lock()
	s.store.Restore(entries)
	n := s.store.Count()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Journal loaded", log.FieldOperation, log.OpLoad, log.FieldCount, n)
	return nil
}

// Submit validates entry and upserts it. Nothing is persisted or published
// when the result is journal.Discarded.
func (s *JournalService) Submit(ctx context.Context, entry core.MoodEntry, confirm ConfirmFunc) (journal.UpsertResult, error) {
	if err := entry.Validate(); err != nil {
		return journal.Discarded, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.store.List()
	res := s.store.Upsert(entry, confirm)
	if !res.Changed() {
		s.logger.InfoContext(ctx, "Entry discarded", log.NewFields().WithEntry(entry).
			WithOperation(log.OpUpsert).With(log.FieldResult, res.String()).ToSlice()...)
		return res, nil
	}

	if s.repo != nil {
		if err := s.repo.SaveEntry(ctx, entry); err != nil {
			s.store.Restore(snapshot)
			return journal.Discarded, fmt.Errorf("save entry: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "Entry saved", log.NewFields().WithEntry(entry).
		WithOperation(log.OpUpsert).With(log.FieldResult, res.String()).ToSlice()...)
	s.publish(ctx, amqp.NewEntryEvent(amqp.ActionUpserted, entry.ID, entry.Date.String()))
	return res, nil
}

// Delete removes the entry with the given id. An unknown id returns false.
func (s *JournalService) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.store.Get(id)
	if !ok {
		return false, nil
	}
	snapshot := s.store.List()
	s.store.Delete(id)

	if s.repo != nil {
		if _, err := s.repo.DeleteEntry(ctx, id); err != nil {
			s.store.Restore(snapshot)
			return false, fmt.Errorf("delete entry: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "Entry deleted", log.NewFields().WithEntry(existing).WithOperation(log.OpDelete).ToSlice()...)
	s.publish(ctx, amqp.NewEntryEvent(amqp.ActionDeleted, existing.ID, existing.Date.String()))
	return true, nil
}

// Clear empties the journal.
func (s *JournalService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.store.List()
	s.store.Clear()

	if s.repo != nil {
		if err := s.repo.ClearEntries(ctx); err != nil {
			s.store.Restore(snapshot)
			return fmt.Errorf("clear entries: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "Journal cleared", log.FieldOperation, log.OpClear, log.FieldCount, len(snapshot))
	s.publish(ctx, amqp.NewEntryEvent(amqp.ActionCleared, "", ""))
	return nil
}

// Entries returns a snapshot, newest first.
func (s *JournalService) Entries() []core.MoodEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List()
}

func (s *JournalService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Count()
}

func (s *JournalService) Summary() report.Summary {
	return report.Summarize(s.Entries())
}

func (s *JournalService) RecentSeries(window int) []report.ChartPoint {
	return report.RecentSeries(s.Entries(), window)
}

func (s *JournalService) Distribution() []report.Bucket {
	return report.Distribution(s.Entries())
}

// Reports computes every view from a single snapshot.
func (s *JournalService) Reports(window int) report.Reports {
	return report.Build(s.Entries(), window)
}

func (s *JournalService) publish(ctx context.Context, ev *amqp.EntryEvent) {
	if s.publisher == nil {
		return
	}
	// Don't fail the request, the entry is already stored
	if err := s.publisher.PublishEntryEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish entry event",
			log.FieldAction, ev.Action, log.FieldEntryID, ev.ID, log.FieldError, err)
	}
}
