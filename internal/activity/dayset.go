package activity

import (
	"github.com/RoaringBitmap/roaring/v2"
	"onegoodthing/internal/models"
)

// DaySet is the deduplicated set of days that carry an entry, keyed by
// day ordinal. The mood of a day is the first tracked mood in input order.
type DaySet struct {
	days  *roaring.Bitmap
	moods map[uint32]int
}

func NewDaySet(entries []models.JournalEntry) *DaySet {
	s := &DaySet{
		days:  roaring.New(),
		moods: make(map[uint32]int),
	}
	for i := range entries {
		e := &entries[i]
		if e.EntryDate.IsZero() {
			continue
		}
		key := uint32(e.EntryDate.Ordinal())
		s.days.Add(key)
		if e.MoodScore == nil {
			continue
		}
		if _, ok := s.moods[key]; !ok {
			s.moods[key] = *e.MoodScore
		}
	}
	return s
}

func (s *DaySet) Has(d models.Date) bool {
	if d.IsZero() {
		return false
	}
	return s.days.Contains(uint32(d.Ordinal()))
}

func (s *DaySet) Mood(d models.Date) (int, bool) {
	if d.IsZero() {
		return 0, false
	}
	m, ok := s.moods[uint32(d.Ordinal())]
	return m, ok
}

func (s *DaySet) Len() int {
	return int(s.days.GetCardinality())
}

// Latest is the most recent day, zero for an empty set.
func (s *DaySet) Latest() models.Date {
	if s.days.IsEmpty() {
		return models.Date{}
	}
	return models.DateFromOrdinal(int(s.days.Maximum()))
}

// Ordinals returns the distinct day ordinals in ascending order.
func (s *DaySet) Ordinals() []uint32 {
	return s.days.ToArray()
}

// CountBetween counts distinct days in the inclusive range.
func (s *DaySet) CountBetween(from, to models.Date) int {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return 0
	}
	return int(s.days.Rank(uint32(to.Ordinal())) - rankBefore(s.days, uint32(from.Ordinal())))
}

func rankBefore(bm *roaring.Bitmap, x uint32) uint64 {
	if x == 0 {
		return 0
	}
	return bm.Rank(x - 1)
}
