package sheets

import (
	"context"
	"strconv"

	"moodjournal/internal/core"
)

// Ports for outbound adapters.
type (
	// EntryExporter mirrors the journal into a spreadsheet, one row per date.
	EntryExporter interface {
		// ExportEntry writes e, replacing any row for the same date.
		ExportEntry(ctx context.Context, e core.MoodEntry) error
		// RemoveEntry drops the row for date. A missing row is not an error.
		RemoveEntry(ctx context.Context, date core.Date) error
		ClearEntries(ctx context.Context) error
	}
)

// Header is the column layout of an exported row.
var Header = []string{"Date", "Mood", "Value", "Sleep", "Stress", "Symptoms", "Engagement", "Medications", "Notes"}

// EntryRow formats e in Header order.
func EntryRow(e core.MoodEntry) []string {
	return []string{
		e.Date.String(),
		e.Mood.Name,
		strconv.Itoa(e.Mood.Value),
		strconv.Itoa(e.Sleep),
		strconv.Itoa(e.Stress),
		strconv.Itoa(e.Symptoms),
		strconv.Itoa(e.Engagement),
		e.Medications,
		e.Notes,
	}
}
