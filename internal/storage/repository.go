package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"moodjournal/internal/core"

	_ "modernc.org/sqlite"
)

var ErrEntryNotFound = errors.New("entry not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListEntries returns every stored entry, newest first.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.MoodEntry, error) {
	rows, err := r.queries.ListMoodEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]core.MoodEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toCore()
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable entry", "id", row.ID, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetEntry returns ErrEntryNotFound when id is unknown.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.MoodEntry, error) {
	row, err := r.queries.GetMoodEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MoodEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("get entry %s: %w", id, err)
	}
	return row.toCore()
}

// SaveEntry inserts e, replacing any row that holds the same date.
func (r *SQLiteRepository) SaveEntry(ctx context.Context, e core.MoodEntry) error {
	if err := r.queries.UpsertMoodEntry(ctx, fromCore(e)); err != nil {
		return fmt.Errorf("save entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", e.ID,
		"date", e.Date.String(),
		"mood", e.Mood.Key)
	return nil
}

// DeleteEntry reports whether a row was removed.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) (bool, error) {
	n, err := r.queries.DeleteMoodEntry(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete entry %s: %w", id, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ClearEntries(ctx context.Context) error {
	if err := r.queries.ClearMoodEntries(ctx); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	slog.InfoContext(ctx, "All entries removed from SQLite")
	return nil
}

func fromCore(e core.MoodEntry) MoodEntry {
	return MoodEntry{
		ID:          e.ID,
		EntryDate:   e.Date.String(),
		Mood:        e.Mood.Key,
		Sleep:       int64(e.Sleep),
		Stress:      int64(e.Stress),
		Symptoms:    int64(e.Symptoms),
		Engagement:  int64(e.Engagement),
		Medications: e.Medications,
		Notes:       e.Notes,
	}
}

func (m MoodEntry) toCore() (core.MoodEntry, error) {
	date, err := core.ParseDate(m.EntryDate)
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("parse date: %w", err)
	}
	mood, err := core.ParseMood(m.Mood)
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("parse mood %q: %w", m.Mood, err)
	}
	return core.MoodEntry{
		ID:   m.ID,
		Date: date,
		Mood: mood,
		Ratings: core.Ratings{
			Sleep:      int(m.Sleep),
			Stress:     int(m.Stress),
			Symptoms:   int(m.Symptoms),
			Engagement: int(m.Engagement),
		},
		Medications: m.Medications,
		Notes:       m.Notes,
	}, nil
}
