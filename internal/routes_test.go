package internal

import (
	"github.com/golang-jwt/jwt/v5"
	"net/http"
	"net/http/httptest"
	"onegoodthing/internal/controllers"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
	"onegoodthing/internal/storage"
	"onegoodthing/internal/structures"
	"onegoodthing/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routeTestSecret = "route-test-secret"

func routeTestConfig() *structures.Config {
	return &structures.Config{
		App: structures.AppConfig{
			DefaultTimezone: "UTC",
			HeatmapMonths:   2,
			InsightDays:     30,
			InsightMinimum:  3,
			TopThemes:       5,
			MaxGridDays:     366,
		},
		Auth:    structures.AuthConfig{JWTSecret: routeTestSecret},
		Metrics: structures.MetricsConfig{Enabled: true},
	}
}

func newRouteTestRouter(conf *structures.Config, store *storage.MemoryStore) (providers.RouterProviderInterface, *controllers.HealthController) {
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	revisions := services.NewRevisions()
	days := services.NewDayResolver(conf)

	reminders := services.NewReminderService(conf, store, &testutil.MockNotifier{Disabled: true}, metrics, logger)
	profiles := services.NewProfileService(store, revisions, reminders, logger)
	insights := services.NewInsightService(conf, store, &testutil.MockCompletion{Disabled: true}, metrics, logger)
	journal := services.NewJournalService(store, profiles, insights, revisions, metrics, logger)
	stats := services.NewStatsService(conf, store)

	router := InitRoutes(
		controllers.NewEntryController(logger, journal, profiles, days),
		controllers.NewStatsController(logger, stats, profiles, days, testutil.NewMockCache(), revisions),
		controllers.NewAIController(logger, insights, profiles, days),
		controllers.NewProfileController(logger, profiles),
		controllers.NewReminderController(logger, reminders, profiles, days),
	)
	return router, controllers.NewHealthController(store, store)
}

func newRouteTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return newInstrumentedHandler(t, testutil.NewMockMetrics())
}

func newInstrumentedHandler(t *testing.T, metrics *testutil.MockMetrics) http.Handler {
	t.Helper()
	conf := routeTestConfig()
	router, health := newRouteTestRouter(conf, storage.NewMemoryStore())
	return NewHandler(conf, router, health, providers.NewAuthProvider(conf), &testutil.MockLogger{}, metrics)
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(routeTestSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestInitRoutes_RegistersApiRoutes(t *testing.T) {
	router, _ := newRouteTestRouter(routeTestConfig(), storage.NewMemoryStore())
	routes := router.GetRoutes()

	methods := make(map[string]string, len(routes))
	for _, r := range routes {
		methods[r.Url] = r.Method
	}

	assert.Equal(t, map[string]string{
		"/api/entries":             "GET, POST",
		"/api/entries/delete":      "POST",
		"/api/entries/export":      "GET",
		"/api/stats":               "GET",
		"/api/stats/grid":          "GET",
		"/api/insights":            "GET",
		"/api/memories":            "GET",
		"/api/reflections":         "POST",
		"/api/reflections/monthly": "POST",
		"/api/insights/life":       "POST",
		"/api/quotes":              "POST",
		"/api/profile":             "GET, POST",
		"/api/reminders/test":      "POST",
	}, methods)
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	router, _ := newRouteTestRouter(routeTestConfig(), storage.NewMemoryStore())

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/stats", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET", rr.Header().Get("Allow"))

	req = httptest.NewRequest(http.MethodDelete, "/api/entries", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, POST", rr.Header().Get("Allow"))
}

func TestHandler_HealthIsPublic(t *testing.T) {
	h := newRouteTestHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"storage":"memory"`)
}

func TestHandler_MetricsEndpoint(t *testing.T) {
	h := newRouteTestHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_ApiRequiresToken(t *testing.T) {
	h := newRouteTestHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_EntryRoundtrip(t *testing.T) {
	h := newRouteTestHandler(t)
	auth := bearer(t, "alice")

	req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(`{"entryText":"fresh bread from the bakery","moodScore":4}`))
	req.Header.Set("Authorization", auth)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", auth)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fresh bread from the bakery")

	// another owner sees nothing
	req = httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", bearer(t, "bob"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "fresh bread")
}

func TestHandler_MetricsLabelIsRoutePattern(t *testing.T) {
	metrics := testutil.NewMockMetrics()
	h := newInstrumentedHandler(t, metrics)

	for _, target := range []string{"/api/stats?days=7", "/api/nope/1", "/api/nope/2"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", bearer(t, "alice"))
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 1, metrics.RequestsFor("/api/stats"))
	assert.Equal(t, 2, metrics.RequestsFor("unmatched"))
	assert.Zero(t, metrics.RequestsFor("/api/nope/1"))
}

func TestHandler_UnknownApiPath(t *testing.T) {
	h := newRouteTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	req.Header.Set("Authorization", bearer(t, "alice"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
