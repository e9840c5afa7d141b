package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moodjournal/internal/core"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"mood": "good", "sleep": 7, "notes": "walked", "overwrite": true}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if mood := parser.Get("mood"); mood != "good" {
		t.Errorf("Get('mood') = %q, want 'good'", mood)
	}
	if sleep, err := parser.GetInt("sleep", 5); err != nil || sleep != 7 {
		t.Errorf("GetInt('sleep') = %d, %v, want 7", sleep, err)
	}
	if !parser.GetBool("overwrite") {
		t.Error("GetBool('overwrite') = false, want true")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "mood=meh&notes=long+day&overwrite=on"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if notes := parser.Get("notes"); notes != "long day" {
		t.Errorf("Get('notes') = %q, want 'long day'", notes)
	}
	if !parser.GetBool("overwrite") {
		t.Error("checkbox value 'on' should read as true")
	}
	if !parser.Has("mood") || parser.Has("date") {
		t.Error("Has() mismatch")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"mood":`))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if parser.Get("mood") != "" {
		t.Error("no values should be readable after a failed parse")
	}
}

func TestRequestBodyParser_StripsControlCharacters(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"notes":"  a\u0000b\nc  "}`))
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := parser.Get("notes"); got != "ab\nc" {
		t.Errorf("Get('notes') = %q, want %q", got, "ab\nc")
	}
}

func TestParseEntryRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, req entryRequest)
	}{
		{
			name: "full json entry",
			body: `{"date":"2024-01-02","mood":"great","sleep":8,"stress":2,"symptoms":0,"engagement":9,"medications":"none","notes":"ok"}`,
			check: func(t *testing.T, req entryRequest) {
				if !req.Entry.Date.Equal(core.NewDate(2024, 1, 2)) {
					t.Errorf("date = %s", req.Entry.Date)
				}
				if req.Entry.Mood != core.Great {
					t.Errorf("mood = %v", req.Entry.Mood)
				}
				want := core.Ratings{Sleep: 8, Stress: 2, Symptoms: 0, Engagement: 9}
				if req.Entry.Ratings != want {
					t.Errorf("ratings = %+v, want %+v", req.Entry.Ratings, want)
				}
				if req.Entry.ID == "" {
					t.Error("expected an assigned id")
				}
				if req.Overwrite {
					t.Error("overwrite should default to false")
				}
			},
		},
		{
			name: "defaults for missing fields",
			body: "mood=okay",
			check: func(t *testing.T, req entryRequest) {
				if req.Entry.Ratings != core.DefaultRatings {
					t.Errorf("ratings = %+v, want defaults", req.Entry.Ratings)
				}
				if !req.Entry.Date.Equal(core.Today()) {
					t.Errorf("date = %s, want today", req.Entry.Date)
				}
			},
		},
		{name: "missing mood", body: `{"date":"2024-01-02"}`, wantErr: true},
		{name: "unknown mood", body: `{"mood":"ecstatic"}`, wantErr: true},
		{name: "bad date", body: `{"mood":"good","date":"01/02/2024"}`, wantErr: true},
		{name: "fractional rating", body: `{"mood":"good","sleep":7.5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(tt.body))
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			got, err := parseEntryRequest(p)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestParseEntryRequestMissingMood(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader("sleep=3"))
	p := NewRequestBodyParser(req)
	_ = p.Parse()
	if _, err := parseEntryRequest(p); !errors.Is(err, errMissingMood) {
		t.Fatalf("expected errMissingMood, got %v", err)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 14, false},
		{"window=7", 7, false},
		{"window=365", 365, false},
		{"window=0", 0, true},
		{"window=366", 0, true},
		{"window=abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/reports/chart?"+tt.query, nil)
			got, err := parseWindow(req, 14)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseWindow() = %d, want %d", got, tt.want)
			}
		})
	}
}
