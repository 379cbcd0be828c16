package activity

import (
	"math"
	"onegoodthing/internal/models"
	"sort"
	"time"
)

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"

	trendMargin   = 0.5
	trendMinMoods = 3
)

type WeekdayMood struct {
	Weekday string  `json:"weekday"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type ThemeCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type Aggregates struct {
	From             models.Date  `json:"from"`
	To               models.Date  `json:"to"`
	EntryCount       int          `json:"entryCount"`
	DaysTracked      int          `json:"daysTracked"`
	MoodTrackedCount int          `json:"moodTrackedCount"`
	AverageMood      *float64     `json:"averageMood"`
	HappiestDay      *WeekdayMood `json:"happiestDay"`
	Themes           []ThemeCount `json:"themes"`
	MoodTrend        string       `json:"moodTrend"`
	Positivity       string       `json:"positivity"`
}

// Aggregate summarizes the entries dated inside [from, to]. Duplicate days
// count once everywhere except EntryCount.
func Aggregate(entries []models.JournalEntry, from, to models.Date, topK int) Aggregates {
	window := InRange(entries, from, to)
	days := Dedupe(window)

	agg := Aggregates{
		From:        from,
		To:          to,
		EntryCount:  len(window),
		DaysTracked: len(days),
		AverageMood: AverageMood(days),
		HappiestDay: HappiestWeekday(days),
		Themes:      TopThemes(days, topK),
		MoodTrend:   MoodTrend(days),
	}
	for i := range days {
		if days[i].MoodScore != nil {
			agg.MoodTrackedCount++
		}
	}
	agg.Positivity = PositivityLabel(agg.AverageMood)
	return agg
}

// Dedupe keeps the first entry of every day in input order. When the kept
// entry has no mood, the first tracked mood of that day is carried over.
func Dedupe(entries []models.JournalEntry) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(entries))
	index := make(map[models.Date]int, len(entries))
	for i := range entries {
		e := &entries[i]
		if pos, ok := index[e.EntryDate]; ok {
			if out[pos].MoodScore == nil && e.MoodScore != nil {
				m := *e.MoodScore
				out[pos].MoodScore = &m
			}
			continue
		}
		index[e.EntryDate] = len(out)
		out = append(out, e.Clone())
	}
	return out
}

// InRange filters entries to the inclusive range. A zero bound is open.
func InRange(entries []models.JournalEntry, from, to models.Date) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(entries))
	for i := range entries {
		d := entries[i].EntryDate
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out = append(out, entries[i])
	}
	return out
}

// TrailingWindow is the inclusive range of the last days days ending today.
func TrailingWindow(today models.Date, days int) (from, to models.Date) {
	if days < 1 {
		days = 1
	}
	return today.AddDays(-(days - 1)), today
}

func MonthRange(year int, month time.Month) (from, to models.Date) {
	first := models.NewDate(year, month, 1)
	return first, first.LastOfMonth()
}

// AverageMood is nil when no entry tracks a mood.
func AverageMood(entries []models.JournalEntry) *float64 {
	sum, n := 0, 0
	for i := range entries {
		if !entries[i].HasMood() {
			continue
		}
		sum += *entries[i].MoodScore
		n++
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

// HappiestWeekday ranks weekdays by average tracked mood. Ties go to the
// weekday seen first in input order.
func HappiestWeekday(entries []models.JournalEntry) *WeekdayMood {
	type bucket struct {
		sum, count int
	}
	buckets := make(map[time.Weekday]*bucket, 7)
	order := make([]time.Weekday, 0, 7)
	for i := range entries {
		e := &entries[i]
		if e.MoodScore == nil {
			continue
		}
		wd := e.EntryDate.Weekday()
		b, ok := buckets[wd]
		if !ok {
			b = &bucket{}
			buckets[wd] = b
			order = append(order, wd)
		}
		b.sum += *e.MoodScore
		b.count++
	}

	var best *WeekdayMood
	for _, wd := range order {
		b := buckets[wd]
		avg := float64(b.sum) / float64(b.count)
		if best == nil || avg > best.Average {
			best = &WeekdayMood{Weekday: wd.String(), Average: avg, Count: b.count}
		}
	}
	return best
}

// TopThemes counts tags case-sensitively as stored, most frequent first,
// ties by first appearance. topK <= 0 keeps every tag.
func TopThemes(entries []models.JournalEntry, topK int) []ThemeCount {
	counts := make(map[string]int)
	first := make(map[string]int)
	for i := range entries {
		for _, tag := range entries[i].Tags {
			if tag == "" {
				continue
			}
			if _, ok := counts[tag]; !ok {
				first[tag] = len(first)
			}
			counts[tag]++
		}
	}

	themes := make([]ThemeCount, 0, len(counts))
	for tag, c := range counts {
		themes = append(themes, ThemeCount{Tag: tag, Count: c})
	}
	sort.Slice(themes, func(i, j int) bool {
		if themes[i].Count != themes[j].Count {
			return themes[i].Count > themes[j].Count
		}
		return first[themes[i].Tag] < first[themes[j].Tag]
	})
	if topK > 0 && len(themes) > topK {
		themes = themes[:topK]
	}
	return themes
}

// MoodTrend compares the newer half of the tracked moods with the older half.
func MoodTrend(entries []models.JournalEntry) string {
	tracked := make([]models.JournalEntry, 0, len(entries))
	for i := range entries {
		if entries[i].MoodScore != nil {
			tracked = append(tracked, entries[i])
		}
	}
	if len(tracked) < trendMinMoods {
		return TrendStable
	}
	sort.SliceStable(tracked, func(i, j int) bool {
		return tracked[i].EntryDate.After(tracked[j].EntryDate)
	})

	half := (len(tracked) + 1) / 2
	recent := AverageMood(tracked[:half])
	older := AverageMood(tracked[half:])
	if recent == nil || older == nil {
		return TrendStable
	}
	switch {
	case *recent > *older+trendMargin:
		return TrendImproving
	case *recent < *older-trendMargin:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func PositivityLabel(avg *float64) string {
	switch {
	case avg == nil:
		return ""
	case *avg >= 4:
		return "High"
	case *avg >= 3:
		return "Good"
	default:
		return "Growing"
	}
}

// RoundTo rounds v to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
