package activity

import (
	"onegoodthing/internal/models"
	"sort"
)

const (
	ReasonYearAgo   = "One year ago today"
	ReasonMonthAgo  = "30 days ago"
	ReasonBrightest = "One of your brightest moments"
	ReasonRandom    = "A moment worth remembering"

	yearAgoTolerance  = 3
	monthAgoTolerance = 2
	monthAgoDays      = 30
	oldEntryDays      = 60
)

type Memory struct {
	Entry  models.JournalEntry `json:"entry"`
	Reason string              `json:"reason"`
}

// Resurface picks past entries worth showing again. The choice depends only
// on the entries and today, so it is stable for the whole day.
func Resurface(entries []models.JournalEntry, today models.Date) []Memory {
	memories := make([]Memory, 0, 4)
	if today.IsZero() || len(entries) == 0 {
		return memories
	}

	past := make([]models.JournalEntry, 0, len(entries))
	for _, e := range Dedupe(entries) {
		if e.EntryDate.Before(today) {
			past = append(past, e)
		}
	}
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].EntryDate.After(past[j].EntryDate)
	})

	chosen := make(map[string]struct{}, 4)
	take := func(e models.JournalEntry, reason string) {
		chosen[entryKey(e)] = struct{}{}
		memories = append(memories, Memory{Entry: e, Reason: reason})
	}
	taken := func(e models.JournalEntry) bool {
		_, ok := chosen[entryKey(e)]
		return ok
	}

	yearAgo := today.AddYears(-1)
	for _, e := range past {
		if abs(e.EntryDate.DaysSince(yearAgo)) <= yearAgoTolerance {
			take(e, ReasonYearAgo)
			break
		}
	}

	monthAgo := today.AddDays(-monthAgoDays)
	for _, e := range past {
		if !taken(e) && abs(e.EntryDate.DaysSince(monthAgo)) <= monthAgoTolerance {
			take(e, ReasonMonthAgo)
			break
		}
	}

	for _, e := range past {
		if !taken(e) && e.MoodScore != nil && *e.MoodScore == models.MaxMoodScore {
			take(e, ReasonBrightest)
			break
		}
	}

	old := make([]models.JournalEntry, 0, len(past))
	for _, e := range past {
		if !taken(e) && today.DaysSince(e.EntryDate) > oldEntryDays {
			old = append(old, e)
		}
	}
	if len(old) > 0 {
		take(old[today.Ordinal()%len(old)], ReasonRandom)
	}
	return memories
}

func entryKey(e models.JournalEntry) string {
	if e.ID != "" {
		return e.ID
	}
	return e.EntryDate.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
