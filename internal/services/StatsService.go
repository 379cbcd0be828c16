package services

import (
	"context"
	"fmt"
	"onegoodthing/internal/activity"
	"onegoodthing/internal/models"
	"onegoodthing/internal/storage"
	"onegoodthing/internal/structures"
)

type Overview struct {
	activity.Streaks
	Milestones    []activity.Milestone  `json:"milestones"`
	NextMilestone *activity.Milestone   `json:"nextMilestone"`
	TotalDays     int                   `json:"totalDays"`
	TotalEntries  int                   `json:"totalEntries"`
	DaysThisMonth int                   `json:"daysThisMonth"`
	Today         models.Date           `json:"today"`
	HasEntryToday bool                  `json:"hasEntryToday"`
	Heatmap       []activity.DayCell    `json:"heatmap"`
	Sparkline     []activity.SparkPoint `json:"sparkline"`
}

type Insights struct {
	Unlocked     bool                  `json:"unlocked"`
	TotalEntries int                   `json:"totalEntries"`
	Required     int                   `json:"required"`
	Aggregates   *activity.Aggregates  `json:"aggregates,omitempty"`
	MoodChart    []activity.SparkPoint `json:"moodChart,omitempty"`
}

type StatsServiceInterface interface {
	Overview(ctx context.Context, ownerID string, today models.Date) (*Overview, error)
	Grid(ctx context.Context, ownerID string, today models.Date, days int) ([]activity.DayCell, error)
	Insights(ctx context.Context, ownerID string, today models.Date) (*Insights, error)
	Memories(ctx context.Context, ownerID string, today models.Date) ([]activity.Memory, error)
}

// StatsService loads an owner's entries and runs the analyzer over them.
// It never reads the clock: today is always supplied by the caller.
type StatsService struct {
	store          storage.EntryRepository
	heatmapMonths  int
	insightDays    int
	insightMinimum int
	topThemes      int
	maxGridDays    int
}

func NewStatsService(conf *structures.Config, store storage.Store) StatsServiceInterface {
	app := conf.App
	return &StatsService{
		store:          store,
		heatmapMonths:  positiveOr(app.HeatmapMonths, 2),
		insightDays:    positiveOr(app.InsightDays, 30),
		insightMinimum: positiveOr(app.InsightMinimum, 3),
		topThemes:      positiveOr(app.TopThemes, 5),
		maxGridDays:    positiveOr(app.MaxGridDays, 366),
	}
}

func (ss *StatsService) all(ctx context.Context, ownerID string) ([]models.JournalEntry, error) {
	entries, err := ss.store.ListEntries(ctx, ownerID, models.Date{}, models.Date{})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (ss *StatsService) Overview(ctx context.Context, ownerID string, today models.Date) (*Overview, error) {
	entries, err := ss.all(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	set := activity.NewDaySet(entries)
	streaks := set.Streaks(today)

	out := &Overview{
		Streaks:       streaks,
		Milestones:    activity.Milestones(streaks.Current),
		TotalDays:     set.Len(),
		TotalEntries:  len(entries),
		DaysThisMonth: set.CountBetween(today.FirstOfMonth(), today),
		Today:         today,
		HasEntryToday: set.Has(today),
		Heatmap:       set.Grid(activity.HeatmapRange(today, ss.heatmapMonths)),
		Sparkline:     activity.MoodSparkline(entries, today, activity.MaxSparklinePoints),
	}
	if next, ok := activity.NextMilestone(streaks.Current); ok {
		out.NextMilestone = &next
	}
	return out, nil
}

// Grid caps days at the configured maximum.
func (ss *StatsService) Grid(ctx context.Context, ownerID string, today models.Date, days int) ([]activity.DayCell, error) {
	if days > ss.maxGridDays {
		days = ss.maxGridDays
	}
	if days <= 0 {
		return []activity.DayCell{}, nil
	}
	entries, err := ss.store.ListEntries(ctx, ownerID, today.AddDays(-(days - 1)), today)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return activity.BuildGrid(entries, today, days), nil
}

// Insights stays locked until the owner has written insightMinimum entries.
func (ss *StatsService) Insights(ctx context.Context, ownerID string, today models.Date) (*Insights, error) {
	entries, err := ss.all(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := &Insights{
		TotalEntries: len(entries),
		Required:     ss.insightMinimum,
		Unlocked:     len(entries) >= ss.insightMinimum,
	}
	if !out.Unlocked {
		return out, nil
	}
	from, to := activity.TrailingWindow(today, ss.insightDays)
	agg := activity.Aggregate(entries, from, to, ss.topThemes)
	if agg.AverageMood != nil {
		rounded := activity.RoundTo(*agg.AverageMood, 1)
		agg.AverageMood = &rounded
	}
	if agg.HappiestDay != nil {
		agg.HappiestDay.Average = activity.RoundTo(agg.HappiestDay.Average, 1)
	}
	out.Aggregates = &agg
	out.MoodChart = activity.MoodSparkline(entries, today, ss.insightDays)
	return out, nil
}

func (ss *StatsService) Memories(ctx context.Context, ownerID string, today models.Date) ([]activity.Memory, error) {
	entries, err := ss.all(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return activity.Resurface(entries, today), nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
