package memory

import (
	"context"
	"sort"
	"sync"

	"moodjournal/internal/core"
	"moodjournal/internal/sheets"
)

var _ sheets.EntryExporter = (*Exporter)(nil)

// Exporter keeps exported rows in memory, keyed by date.
type Exporter struct {
	mu   sync.Mutex
	rows map[string][]string
}

func New() *Exporter {
	return &Exporter{rows: map[string][]string{}}
}

func (x *Exporter) ExportEntry(_ context.Context, e core.MoodEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.rows[e.Date.String()] = sheets.EntryRow(e)
	return nil
}

func (x *Exporter) RemoveEntry(_ context.Context, date core.Date) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.rows, date.String())
	return nil
}

func (x *Exporter) ClearEntries(context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.rows = map[string][]string{}
	return nil
}

// Rows returns the exported rows sorted by date, oldest first.
func (x *Exporter) Rows() [][]string {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([][]string, 0, len(x.rows))
	for _, r := range x.rows {
		out = append(out, append([]string(nil), r...))
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
