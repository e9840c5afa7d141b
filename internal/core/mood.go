package core

import (
	"errors"
	"strings"
)

// MoodCategory is one of the fixed moods a journal entry can record.
type MoodCategory struct {
	Key   string `json:"key"`
	Icon  string `json:"icon"`
	Value int    `json:"value"`
	Name  string `json:"name"`
}

var ErrUnknownMood = errors.New("unknown mood")

var (
	Excellent = MoodCategory{Key: "excellent", Icon: "😍", Value: 10, Name: "Excellent"}
	Great     = MoodCategory{Key: "great", Icon: "😊", Value: 9, Name: "Great"}
	Good      = MoodCategory{Key: "good", Icon: "🙂", Value: 8, Name: "Good"}
	Okay      = MoodCategory{Key: "okay", Icon: "😐", Value: 7, Name: "Okay"}
	Meh       = MoodCategory{Key: "meh", Icon: "😑", Value: 6, Name: "Meh"}
	NotGreat  = MoodCategory{Key: "not_great", Icon: "😔", Value: 5, Name: "Not Great"}
	Bad       = MoodCategory{Key: "bad", Icon: "😞", Value: 4, Name: "Bad"}
	Terrible  = MoodCategory{Key: "terrible", Icon: "😢", Value: 3, Name: "Terrible"}
)

// moods is the canonical order, best to worst. Reports that list
// categories always follow it.
var moods = [...]MoodCategory{Excellent, Great, Good, Okay, Meh, NotGreat, Bad, Terrible}

// Moods returns the catalog in canonical order.
func Moods() []MoodCategory {
	out := make([]MoodCategory, len(moods))
	copy(out, moods[:])
	return out
}

// ParseMood looks a category up by key.
func ParseMood(key string) (MoodCategory, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, m := range moods {
		if m.Key == key {
			return m, nil
		}
	}
	return MoodCategory{}, ErrUnknownMood
}

// IsValid reports whether m is a catalog member.
func (m MoodCategory) IsValid() bool {
	for _, c := range moods {
		if c == m {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (m MoodCategory) String() string {
	return m.Name
}
