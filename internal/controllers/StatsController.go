package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
	"strconv"
)

const defaultGridDays = 30

type StatsController struct {
	viewer
	logger    providers.Logger
	stats     services.StatsServiceInterface
	cache     providers.CacheProviderInterface
	revisions *services.Revisions
}

func NewStatsController(logger providers.Logger, stats services.StatsServiceInterface, profiles services.ProfileServiceInterface, days *services.DayResolver, cache providers.CacheProviderInterface, revisions *services.Revisions) *StatsController {
	return &StatsController{
		viewer:    viewer{profiles: profiles, days: days},
		logger:    logger,
		stats:     stats,
		cache:     cache,
		revisions: revisions,
	}
}

// serveFromCacheOrCompute keys the cache by owner revision and day, so a
// write or a new day always misses.
func (sc *StatsController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, route string, compute func(user models.User, today models.Date) (any, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	today, err := sc.today(r, user)
	if err != nil {
		handleError(sc.logger, w, r, err, http.StatusInternalServerError)
		return
	}

	cacheKey := fmt.Sprintf("%s:%s:%d:%s", route, user.ID, sc.revisions.Get(user.ID), today)
	if data, ok := sc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute(user, today)
	if err != nil {
		handleError(sc.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	sc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (sc *StatsController) Overview(w http.ResponseWriter, r *http.Request) {
	sc.serveFromCacheOrCompute(w, r, "stats", func(user models.User, today models.Date) (any, error) {
		return sc.stats.Overview(r.Context(), user.ID, today)
	})
}

func (sc *StatsController) Grid(w http.ResponseWriter, r *http.Request) {
	days := defaultGridDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = n
	}
	sc.serveFromCacheOrCompute(w, r, "grid:"+strconv.Itoa(days), func(user models.User, today models.Date) (any, error) {
		return sc.stats.Grid(r.Context(), user.ID, today, days)
	})
}

func (sc *StatsController) Insights(w http.ResponseWriter, r *http.Request) {
	sc.serveFromCacheOrCompute(w, r, "insights", func(user models.User, today models.Date) (any, error) {
		return sc.stats.Insights(r.Context(), user.ID, today)
	})
}

func (sc *StatsController) Memories(w http.ResponseWriter, r *http.Request) {
	sc.serveFromCacheOrCompute(w, r, "memories", func(user models.User, today models.Date) (any, error) {
		return sc.stats.Memories(r.Context(), user.ID, today)
	})
}
