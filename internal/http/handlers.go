package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"moodjournal/internal/core"
	"moodjournal/internal/journal"
	"moodjournal/internal/log"
	"moodjournal/internal/report"
	"moodjournal/internal/services"
)

type (
	// entryView is an entry as the history list shows it.
	entryView struct {
		core.MoodEntry
		DisplayDate string `json:"display_date"`
	}

	entriesResponse struct {
		Count   int         `json:"count"`
		Entries []entryView `json:"entries"`
	}

	submitResponse struct {
		Result  string     `json:"result"`
		Message string     `json:"message"`
		Entry   *entryView `json:"entry,omitempty"`
	}

	chartPoint struct {
		report.ChartPoint
		Label string `json:"label"`
	}

	chartResponse struct {
		Window  int          `json:"window"`
		HasData bool         `json:"has_data"`
		Points  []chartPoint `json:"points"`
	}

	reportsResponse struct {
		Summary      report.SummaryView `json:"summary"`
		Chart        chartResponse      `json:"chart"`
		Distribution []report.Bucket    `json:"distribution"`
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]any{}
	if s.journal == nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		checks["journal"] = "not_configured"
	} else {
		checks["journal"] = "ok"
		checks["entries"] = s.journal.Count()
	}
	writeJSON(w, r, code, map[string]any{
		"status":   status,
		"checks":   checks,
		"security": s.metrics.snapshot(),
	})
}

func (s *Server) handleMoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, core.Moods())
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries := s.journal.Entries()
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = newEntryView(e)
	}
	writeJSON(w, r, http.StatusOK, entriesResponse{Count: len(views), Entries: views})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	req, err := parseEntryRequest(p)
	switch {
	case errors.Is(err, errMissingMood):
		writeError(w, r, http.StatusUnprocessableEntity, msgMissingMood)
		return
	case err != nil:
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	logger.DebugContext(ctx, "Entry submitted", log.FieldEntryDate, req.Entry.Date.String(), "json", p.IsJSON())

	overwrite := req.Overwrite
	res, err := s.journal.Submit(ctx, req.Entry, func() bool { return overwrite })
	switch {
	case errors.Is(err, services.ErrInvalidEntry):
		writeError(w, r, http.StatusUnprocessableEntity, strings.TrimPrefix(err.Error(), services.ErrInvalidEntry.Error()+": "))
		return
	case err != nil:
		logger.ErrorContext(ctx, "Failed to save entry", log.NewFields().WithEntry(req.Entry).WithError(err).ToSlice()...)
		writeError(w, r, http.StatusInternalServerError, "could not save entry")
		return
	}

	view := newEntryView(req.Entry)
	switch res {
	case journal.Inserted:
		writeJSON(w, r, http.StatusCreated, submitResponse{Result: res.String(), Message: services.MsgSaved, Entry: &view})
	case journal.Replaced:
		writeJSON(w, r, http.StatusOK, submitResponse{Result: res.String(), Message: services.MsgSaved, Entry: &view})
	default:
		writeJSON(w, r, http.StatusConflict, submitResponse{Result: res.String(), Message: services.MsgConflict})
	}
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))

	removed, err := s.journal.Delete(ctx, id)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to delete entry", log.FieldEntryID, id, log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not delete entry")
		return
	}
	if !removed {
		writeError(w, r, http.StatusNotFound, "entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.journal.Clear(ctx); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to clear journal", log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not clear journal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r, s.chartWindow)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rep := s.journal.Reports(window)
	writeJSON(w, r, http.StatusOK, reportsResponse{
		Summary:      rep.Summary.View(),
		Chart:        newChartResponse(window, rep.Chart),
		Distribution: nonNilBuckets(rep.Distribution),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.journal.Summary().View())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r, s.chartWindow)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, newChartResponse(window, s.journal.RecentSeries(window)))
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, nonNilBuckets(s.journal.Distribution()))
}

func newChartResponse(window int, points []report.ChartPoint) chartResponse {
	out := chartResponse{Window: window, HasData: len(points) > 0, Points: make([]chartPoint, len(points))}
	for i, p := range points {
		out.Points[i] = chartPoint{ChartPoint: p, Label: p.Label()}
	}
	return out
}

func newEntryView(e core.MoodEntry) entryView {
	return entryView{MoodEntry: e, DisplayDate: e.Date.Long()}
}

func nonNilBuckets(b []report.Bucket) []report.Bucket {
	if b == nil {
		return []report.Bucket{}
	}
	return b
}
