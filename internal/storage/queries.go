package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// MoodEntry is a mood_entries row.
type MoodEntry struct {
	ID          string
	EntryDate   string
	Mood        string
	Sleep       int64
	Stress      int64
	Symptoms    int64
	Engagement  int64
	Medications string
	Notes       string
}

const moodEntryColumns = `id, entry_date, mood, sleep, stress, symptoms, engagement, medications, notes`

const listMoodEntries = `SELECT ` + moodEntryColumns + ` FROM mood_entries ORDER BY entry_date DESC`

func (q *Queries) ListMoodEntries(ctx context.Context) ([]MoodEntry, error) {
	rows, err := q.db.QueryContext(ctx, listMoodEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MoodEntry
	for rows.Next() {
		var i MoodEntry
		if err := scanMoodEntry(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getMoodEntry = `SELECT ` + moodEntryColumns + ` FROM mood_entries WHERE id = ?`

func (q *Queries) GetMoodEntry(ctx context.Context, id string) (MoodEntry, error) {
	row := q.db.QueryRowContext(ctx, getMoodEntry, id)
	var i MoodEntry
	err := scanMoodEntry(row, &i)
	return i, err
}

// A replacement takes over the date row, including its id.
const upsertMoodEntry = `INSERT INTO mood_entries (` + moodEntryColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(entry_date) DO UPDATE SET
    id = excluded.id,
    mood = excluded.mood,
    sleep = excluded.sleep,
    stress = excluded.stress,
    symptoms = excluded.symptoms,
    engagement = excluded.engagement,
    medications = excluded.medications,
    notes = excluded.notes,
    updated_at = CURRENT_TIMESTAMP`

func (q *Queries) UpsertMoodEntry(ctx context.Context, arg MoodEntry) error {
	_, err := q.db.ExecContext(ctx, upsertMoodEntry,
		arg.ID,
		arg.EntryDate,
		arg.Mood,
		arg.Sleep,
		arg.Stress,
		arg.Symptoms,
		arg.Engagement,
		arg.Medications,
		arg.Notes,
	)
	return err
}

const deleteMoodEntry = `DELETE FROM mood_entries WHERE id = ?`

func (q *Queries) DeleteMoodEntry(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteMoodEntry, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const clearMoodEntries = `DELETE FROM mood_entries`

func (q *Queries) ClearMoodEntries(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearMoodEntries)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMoodEntry(s scanner, i *MoodEntry) error {
	return s.Scan(
		&i.ID,
		&i.EntryDate,
		&i.Mood,
		&i.Sleep,
		&i.Stress,
		&i.Symptoms,
		&i.Engagement,
		&i.Medications,
		&i.Notes,
	)
}
