package activity

import "onegoodthing/internal/models"

const MaxSparklinePoints = 30

type DayCell struct {
	Date      models.Date `json:"date"`
	HasEntry  bool        `json:"hasEntry"`
	MoodScore *int        `json:"moodScore,omitempty"`
}

type SparkPoint struct {
	Date      models.Date `json:"date"`
	MoodScore int         `json:"moodScore"`
}

// BuildGrid returns exactly n consecutive cells ending at today, oldest first.
func BuildGrid(entries []models.JournalEntry, today models.Date, n int) []DayCell {
	if n <= 0 || today.IsZero() {
		return []DayCell{}
	}
	return NewDaySet(entries).Grid(today.AddDays(-(n - 1)), today)
}

// Grid returns one cell per day of the inclusive range, empty when the
// range is inverted.
func (s *DaySet) Grid(from, to models.Date) []DayCell {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return []DayCell{}
	}
	cells := make([]DayCell, 0, to.DaysSince(from)+1)
	for day := from; !day.After(to); day = day.AddDays(1) {
		cell := DayCell{Date: day, HasEntry: s.Has(day)}
		if m, ok := s.Mood(day); ok {
			cell.MoodScore = &m
		}
		cells = append(cells, cell)
	}
	return cells
}

// HeatmapRange spans from the first day of the month monthsBack months ago
// through the last day of today's month.
func HeatmapRange(today models.Date, monthsBack int) (from, to models.Date) {
	if today.IsZero() {
		return models.Date{}, models.Date{}
	}
	if monthsBack < 0 {
		monthsBack = 0
	}
	return today.FirstOfMonth().AddMonths(-monthsBack), today.LastOfMonth()
}

// MoodSparkline returns the mood-tracked days of the trailing window, oldest
// first, keeping at most the MaxSparklinePoints most recent.
func MoodSparkline(entries []models.JournalEntry, today models.Date, n int) []SparkPoint {
	points := make([]SparkPoint, 0, MaxSparklinePoints)
	for _, cell := range BuildGrid(entries, today, n) {
		if cell.MoodScore == nil {
			continue
		}
		points = append(points, SparkPoint{Date: cell.Date, MoodScore: *cell.MoodScore})
	}
	if len(points) > MaxSparklinePoints {
		points = points[len(points)-MaxSparklinePoints:]
	}
	return points
}
