package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinRating = 0
	MaxRating = 10

	maxMedicationsLen = 200
	maxNotesLen       = 2000
)

var (
	ErrInvalidRating   = errors.New("rating out of range")
	ErrEmptyID         = errors.New("empty entry id")
	ErrNotesTooLong    = errors.New("notes too long (max 2000 characters)")
	ErrMedicationsLong = errors.New("medications too long (max 200 characters)")
)

type (
	// Ratings holds the four 0-10 sliders of an entry.
	Ratings struct {
		Sleep      int `json:"sleep"`
		Stress     int `json:"stress"`
		Symptoms   int `json:"symptoms"`
		Engagement int `json:"engagement"`
	}

	// MoodEntry is one day in the journal.
	MoodEntry struct {
		ID   string       `json:"id"`
		Date Date         `json:"date"`
		Mood MoodCategory `json:"mood"`
		Ratings
		Medications string `json:"medications"`
		Notes       string `json:"notes"`
	}
)

// DefaultRatings are the values a fresh form starts with.
var DefaultRatings = Ratings{Sleep: 5, Stress: 5, Symptoms: 1, Engagement: 5}

// NewEntry builds an entry with a freshly assigned ID.
func NewEntry(date Date, mood MoodCategory, r Ratings, medications, notes string) MoodEntry {
	return MoodEntry{
		ID:          uuid.NewString(),
		Date:        date,
		Mood:        mood,
		Ratings:     r,
		Medications: strings.TrimSpace(medications),
		Notes:       strings.TrimSpace(notes),
	}
}

func (r Ratings) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"sleep", r.Sleep},
		{"stress", r.Stress},
		{"symptoms", r.Symptoms},
		{"engagement", r.Engagement},
	}
	for _, f := range fields {
		if f.value < MinRating || f.value > MaxRating {
			return fmt.Errorf("%s=%d: %w", f.name, f.value, ErrInvalidRating)
		}
	}
	return nil
}

func (e MoodEntry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Mood.IsValid() {
		return ErrUnknownMood
	}
	if err := e.Ratings.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(e.Medications) > maxMedicationsLen {
		return ErrMedicationsLong
	}
	if utf8.RuneCountInString(e.Notes) > maxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}
