package activity

import (
	"onegoodthing/internal/models"
	"time"
)

func day(y int, m time.Month, d int) models.Date {
	return models.NewDate(y, m, d)
}

func mood(v int) *int { return &v }

func entryOn(d models.Date, m *int, tags ...string) models.JournalEntry {
	return models.JournalEntry{
		ID:        "e-" + d.String(),
		OwnerID:   "owner",
		EntryDate: d,
		Text:      "good thing",
		MoodScore: m,
		Tags:      tags,
	}
}

// run creates n consecutive daily entries ending at last.
func run(last models.Date, n int) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, entryOn(last.AddDays(-i), nil))
	}
	return out
}
