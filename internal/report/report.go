// Package report derives the journal views from an entry snapshot.
//
// Every function is a pure projection of the entries it is given, which
// are expected in store order (newest first). Nothing is cached.
package report

import (
	"fmt"
	"math"

	"moodjournal/internal/core"
)

// DefaultWindow is the number of entries shown by the trend chart.
const DefaultWindow = 14

// NoData is what every derived statistic displays for an empty journal.
const NoData = "-"

type (
	// Summary holds the headline statistics. When HasData is false only
	// TotalCount is meaningful.
	Summary struct {
		TotalCount int
		HasData    bool
		// MostFrequentMood is the modal category. It is shown to users as
		// "average mood".
		MostFrequentMood core.MoodCategory
		BestDay          core.Date
		AverageSleep     float64
	}

	// SummaryView is the display form of a Summary.
	SummaryView struct {
		TotalCount   int    `json:"total_count"`
		HasData      bool   `json:"has_data"`
		AverageMood  string `json:"average_mood"`
		BestDay      string `json:"best_day"`
		BestDayDate  string `json:"best_day_date"`
		AverageSleep string `json:"average_sleep"`
	}

	ChartPoint struct {
		Date             core.Date `json:"date"`
		MoodValue        int       `json:"mood_value"`
		MoodName         string    `json:"mood_name"`
		BarHeightPercent float64   `json:"bar_height_percent"`
	}

	Bucket struct {
		Key        string  `json:"key"`
		Icon       string  `json:"icon"`
		Name       string  `json:"name"`
		Count      int     `json:"count"`
		Percentage float64 `json:"percentage"`
	}

	// Reports bundles the three views computed from one snapshot.
	Reports struct {
		Summary      Summary
		Chart        []ChartPoint
		Distribution []Bucket
	}
)

// Summarize computes the headline statistics.
func Summarize(entries []core.MoodEntry) Summary {
	s := Summary{TotalCount: len(entries)}
	if len(entries) == 0 {
		return s
	}
	s.HasData = true

	best := entries[0]
	sleepSum := 0
	for _, e := range entries {
		if e.Mood.Value > best.Mood.Value {
			best = e
		}
		sleepSum += e.Sleep
	}
	s.BestDay = best.Date
	s.AverageSleep = round1(float64(sleepSum) / float64(len(entries)))
	s.MostFrequentMood = mode(entries)
	return s
}

// mode returns the most frequent category. Ties go to the category seen
// first while scanning entries in order.
func mode(entries []core.MoodEntry) core.MoodCategory {
	counts := make(map[string]int)
	var order []core.MoodCategory
	for _, e := range entries {
		if counts[e.Mood.Key] == 0 {
			order = append(order, e.Mood)
		}
		counts[e.Mood.Key]++
	}

	winner := order[0]
	for _, m := range order[1:] {
		if counts[m.Key] > counts[winner.Key] {
			winner = m
		}
	}
	return winner
}

// View renders the summary for display, using NoData for missing values.
func (s Summary) View() SummaryView {
	v := SummaryView{
		TotalCount:   s.TotalCount,
		HasData:      s.HasData,
		AverageMood:  NoData,
		BestDay:      NoData,
		BestDayDate:  NoData,
		AverageSleep: NoData,
	}
	if !s.HasData {
		return v
	}
	v.AverageMood = s.MostFrequentMood.Name
	v.BestDay = s.BestDay.Short()
	v.BestDayDate = s.BestDay.String()
	v.AverageSleep = fmt.Sprintf("%.1f", s.AverageSleep)
	return v
}

// RecentSeries returns the first window entries oldest first, each scaled
// against the highest mood in the window. A window of zero or less means
// DefaultWindow. An empty journal yields nil.
func RecentSeries(entries []core.MoodEntry, window int) []ChartPoint {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(entries) > window {
		entries = entries[:window]
	}
	if len(entries) == 0 {
		return nil
	}

	maxValue := 0
	for _, e := range entries {
		if e.Mood.Value > maxValue {
			maxValue = e.Mood.Value
		}
	}

	points := make([]ChartPoint, len(entries))
	for i, e := range entries {
		points[len(entries)-1-i] = ChartPoint{
			Date:             e.Date,
			MoodValue:        e.Mood.Value,
			MoodName:         e.Mood.Name,
			BarHeightPercent: float64(e.Mood.Value) / float64(maxValue) * 100,
		}
	}
	return points
}

// Label is the tooltip text of a chart bar, e.g. "Jan 2: Good (8/10)".
func (p ChartPoint) Label() string {
	return fmt.Sprintf("%s: %s (%d/10)", p.Date.Short(), p.MoodName, p.MoodValue)
}

// Distribution counts entries per category over the whole journal. Only
// categories that occur are listed, in canonical catalog order.
func Distribution(entries []core.MoodEntry) []Bucket {
	if len(entries) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Mood.Key]++
	}

	total := float64(len(entries))
	var buckets []Bucket
	for _, m := range core.Moods() {
		n := counts[m.Key]
		if n == 0 {
			continue
		}
		buckets = append(buckets, Bucket{
			Key:        m.Key,
			Icon:       m.Icon,
			Name:       m.Name,
			Count:      n,
			Percentage: round1(float64(n) / total * 100),
		})
	}
	return buckets
}

// Build computes every view from the same snapshot.
func Build(entries []core.MoodEntry, window int) Reports {
	return Reports{
		Summary:      Summarize(entries),
		Chart:        RecentSeries(entries, window),
		Distribution: Distribution(entries),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
