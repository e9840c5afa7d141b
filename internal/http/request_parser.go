package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"moodjournal/internal/core"
)

const maxBodyBytes = 64 << 10

// msgMissingMood is shown when an entry is submitted without a mood.
const msgMissingMood = "Please select a mood before submitting."

var errMissingMood = errors.New("mood is required")

// RequestBodyParser reads a JSON or form-encoded body once and exposes its
// fields as strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads up to maxBodyBytes of the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it looks like an object, and as a
// form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(trimmed, "{") || strings.Contains(p.contentType, "application/json") {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("decode json body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Has reports whether key was sent with a non-empty value.
func (p *RequestBodyParser) Has(key string) bool {
	return p.Get(key) != ""
}

// Get returns a sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetInt returns def when key is absent.
func (p *RequestBodyParser) GetInt(key string, def int) (int, error) {
	v := p.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number, got %q", key, v)
	}
	return n, nil
}

// GetBool accepts the strconv.ParseBool spellings plus "on" from checkboxes.
func (p *RequestBodyParser) GetBool(key string) bool {
	v := strings.ToLower(p.Get(key))
	if v == "on" || v == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// entryRequest is a decoded submission.
type entryRequest struct {
	Entry     core.MoodEntry
	Overwrite bool
}

// parseEntryRequest builds an entry from the body. Missing ratings take the
// form defaults and a missing date means today.
func parseEntryRequest(p *RequestBodyParser) (entryRequest, error) {
	if !p.Has("mood") {
		return entryRequest{}, errMissingMood
	}
	moodKey := p.Get("mood")
	mood, err := core.ParseMood(moodKey)
	if err != nil {
		return entryRequest{}, fmt.Errorf("%w: %q", err, moodKey)
	}

	date := core.Today()
	if p.Has("date") {
		v := p.Get("date")
		if date, err = core.ParseDate(v); err != nil {
			return entryRequest{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", v)
		}
	}

	r := core.DefaultRatings
	fields := []struct {
		key string
		dst *int
	}{
		{"sleep", &r.Sleep},
		{"stress", &r.Stress},
		{"symptoms", &r.Symptoms},
		{"engagement", &r.Engagement},
	}
	for _, f := range fields {
		if *f.dst, err = p.GetInt(f.key, *f.dst); err != nil {
			return entryRequest{}, err
		}
	}

	return entryRequest{
		Entry:     core.NewEntry(date, mood, r, p.Get("medications"), p.Get("notes")),
		Overwrite: p.GetBool("overwrite"),
	}, nil
}
