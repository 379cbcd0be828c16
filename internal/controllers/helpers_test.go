package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
	"onegoodthing/internal/storage"
	"onegoodthing/internal/structures"
	"onegoodthing/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var alice = models.User{ID: "alice", Email: "alice@example.com"}

// noon UTC on a Saturday
var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	store      *storage.MemoryStore
	completion *testutil.MockCompletion
	cache      *testutil.MockCache
	revisions  *services.Revisions
	days       *services.DayResolver
	entries    *EntryController
	stats      *StatsController
	notifier   *testutil.MockNotifier
	ai         *AIController
	profile    *ProfileController
	reminders  *ReminderController
}

func newHarness(now time.Time) *harness {
	conf := &structures.Config{App: structures.AppConfig{
		DefaultTimezone: "UTC",
		HeatmapMonths:   2,
		InsightDays:     30,
		InsightMinimum:  3,
		TopThemes:       5,
		MaxGridDays:     90,
	}}
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()

	h := &harness{
		store:      storage.NewMemoryStore(),
		completion: &testutil.MockCompletion{},
		cache:      testutil.NewMockCache(),
		revisions:  services.NewRevisions(),
		notifier:   &testutil.MockNotifier{},
		days:       services.NewDayResolver(conf).WithClock(func() time.Time { return now }),
	}
	conf.Mail.AppURL = "https://app.example.com"
	reminders := services.NewReminderService(conf, h.store, h.notifier, metrics, logger)
	profiles := services.NewProfileService(h.store, h.revisions, reminders, logger)
	insights := services.NewInsightService(conf, h.store, h.completion, metrics, logger)
	journal := services.NewJournalService(h.store, profiles, insights, h.revisions, metrics, logger)
	stats := services.NewStatsService(conf, h.store)

	h.entries = NewEntryController(logger, journal, profiles, h.days)
	h.stats = NewStatsController(logger, stats, profiles, h.days, h.cache, h.revisions)
	h.ai = NewAIController(logger, insights, profiles, h.days)
	h.profile = NewProfileController(logger, profiles)
	h.reminders = NewReminderController(logger, reminders, profiles, h.days)
	return h
}

func request(method, target, body string, user *models.User) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if user != nil {
		req = req.WithContext(providers.WithUser(req.Context(), *user, "token"))
	}
	return req
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	decode(t, rr, &resp)
	return resp["error"]
}

func (h *harness) seed(t *testing.T, owner string, dates ...models.Date) {
	t.Helper()
	for _, d := range dates {
		m := 4
		_, err := h.store.CreateEntry(context.Background(), models.JournalEntry{OwnerID: owner, EntryDate: d, Text: "seeded", MoodScore: &m})
		require.NoError(t, err)
	}
}
