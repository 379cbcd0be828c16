package services

import (
	"context"
	"onegoodthing/internal/models"
	"onegoodthing/internal/storage"
	"onegoodthing/internal/structures"
	"onegoodthing/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var alice = models.User{ID: "alice", Email: "alice@example.com"}

func testConfig() *structures.Config {
	return &structures.Config{
		App: structures.AppConfig{
			DefaultTimezone: "UTC",
			HeatmapMonths:   2,
			InsightDays:     30,
			InsightMinimum:  3,
			TopThemes:       5,
			MaxGridDays:     90,
		},
		Mail: structures.MailConfig{AppURL: "https://app.example.com"},
	}
}

type fixture struct {
	store      *storage.MemoryStore
	revisions  *Revisions
	logger     *testutil.MockLogger
	completion *testutil.MockCompletion
	notifier   *testutil.MockNotifier
	metrics    *testutil.MockMetrics
	profiles   ProfileServiceInterface
	insights   InsightServiceInterface
	journal    JournalServiceInterface
	stats      StatsServiceInterface
	reminders  ReminderServiceInterface
}

func newFixture() *fixture {
	conf := testConfig()
	f := &fixture{
		store:      storage.NewMemoryStore(),
		revisions:  NewRevisions(),
		logger:     &testutil.MockLogger{},
		completion: &testutil.MockCompletion{},
		notifier:   &testutil.MockNotifier{},
		metrics:    testutil.NewMockMetrics(),
	}
	f.reminders = NewReminderService(conf, f.store, f.notifier, f.metrics, f.logger)
	f.profiles = NewProfileService(f.store, f.revisions, f.reminders, f.logger)
	f.insights = NewInsightService(conf, f.store, f.completion, f.metrics, f.logger)
	f.journal = NewJournalService(f.store, f.profiles, f.insights, f.revisions, f.metrics, f.logger)
	f.stats = NewStatsService(conf, f.store)
	return f
}

func day(y int, m time.Month, d int) models.Date {
	return models.NewDate(y, m, d)
}

func mood(v int) *int { return &v }

// seed writes entries straight into the store, bypassing the AI.
func (f *fixture) seed(t *testing.T, owner string, entries ...models.JournalEntry) {
	t.Helper()
	for _, e := range entries {
		e.OwnerID = owner
		_, err := f.store.CreateEntry(context.Background(), e)
		require.NoError(t, err)
	}
}

func entry(d models.Date, m *int, tags ...string) models.JournalEntry {
	return models.JournalEntry{EntryDate: d, Text: "good thing on " + d.String(), MoodScore: m, Tags: tags}
}
