package activity

import "onegoodthing/internal/models"

type Streaks struct {
	Current int `json:"currentStreak"`
	Longest int `json:"longestStreak"`
}

func ComputeStreaks(entries []models.JournalEntry, today models.Date) Streaks {
	return NewDaySet(entries).Streaks(today)
}

// Streaks anchors the current run at the most recent day, which must be
// today or yesterday. A most recent day after today breaks the run.
func (s *DaySet) Streaks(today models.Date) Streaks {
	return Streaks{
		Current: s.currentStreak(today),
		Longest: s.longestStreak(),
	}
}

func (s *DaySet) currentStreak(today models.Date) int {
	if today.IsZero() || s.Len() == 0 {
		return 0
	}
	day := s.Latest()
	if day != today && day != today.AddDays(-1) {
		return 0
	}
	n := 0
	for s.Has(day) {
		n++
		day = day.AddDays(-1)
	}
	return n
}

func (s *DaySet) longestStreak() int {
	longest, run := 0, 0
	var prev uint32
	it := s.days.Iterator()
	for it.HasNext() {
		cur := it.Next()
		if run > 0 && cur == prev+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = cur
	}
	return longest
}
