package controllers

import (
	"fmt"
	"net/http"
	"onegoodthing/internal/activity"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
)

type reflectionRequest struct {
	EntryText string `json:"entryText"`
	MoodScore *int   `json:"moodScore"`
}

type quoteRequest struct {
	EntryText string `json:"entryText"`
}

type quoteResponse struct {
	Quote string `json:"quote"`
}

type monthlyRequest struct {
	MonthStart string `json:"monthStart"`
	MonthEnd   string `json:"monthEnd"`
}

type monthlyResponse struct {
	Reflection *services.MonthlyReflection `json:"reflection"`
}

// lifeInsightResponse renders {"insight": null} when there is nothing to read.
type lifeInsightResponse struct {
	Insight     *string  `json:"insight"`
	AverageMood *float64 `json:"averageMood,omitempty"`
	MoodTrend   string   `json:"moodTrend,omitempty"`
	EntryCount  int      `json:"entryCount,omitempty"`
}

// AIController serves the on-demand AI endpoints. Upstream failures that are
// not mapped to a client error surface as 502.
type AIController struct {
	viewer
	logger   providers.Logger
	insights services.InsightServiceInterface
}

func NewAIController(logger providers.Logger, insights services.InsightServiceInterface, profiles services.ProfileServiceInterface, days *services.DayResolver) *AIController {
	return &AIController{
		viewer:   viewer{profiles: profiles, days: days},
		logger:   logger,
		insights: insights,
	}
}

func (ac *AIController) Reflect(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	var req reflectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reflection, err := ac.insights.Reflect(r.Context(), req.EntryText, req.MoodScore)
	if err != nil {
		handleError(ac.logger, w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, reflection)
}

func (ac *AIController) Quote(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	var req quoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	quote, err := ac.insights.Quote(r.Context(), req.EntryText)
	if err != nil {
		handleError(ac.logger, w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{Quote: quote})
}

func (ac *AIController) LifeInsight(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	today, err := ac.today(r, user)
	if err != nil {
		handleError(ac.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	insight, err := ac.insights.LifeInsight(r.Context(), user.ID, today)
	if err != nil {
		handleError(ac.logger, w, r, err, http.StatusBadGateway)
		return
	}
	if insight == nil {
		writeJSON(w, http.StatusOK, lifeInsightResponse{})
		return
	}
	writeJSON(w, http.StatusOK, lifeInsightResponse{
		Insight:     &insight.Insight,
		AverageMood: insight.AverageMood,
		MoodTrend:   insight.MoodTrend,
		EntryCount:  insight.EntryCount,
	})
}

func (ac *AIController) MonthlyReflection(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req monthlyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	from, to, err := ac.monthBounds(r, user, req)
	if err != nil {
		handleError(ac.logger, w, r, err, http.StatusBadRequest)
		return
	}
	reflection, err := ac.insights.MonthlyReflection(r.Context(), user.ID, from, to)
	if err != nil {
		handleError(ac.logger, w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, monthlyResponse{Reflection: reflection})
}

// monthBounds fills a missing monthStart or monthEnd from the viewer's
// current calendar month.
func (ac *AIController) monthBounds(r *http.Request, user models.User, req monthlyRequest) (models.Date, models.Date, error) {
	var from, to models.Date
	if req.MonthStart == "" || req.MonthEnd == "" {
		today, err := ac.today(r, user)
		if err != nil {
			return models.Date{}, models.Date{}, err
		}
		from, to = activity.MonthRange(today.Year, today.Month)
	}
	var err error
	if req.MonthStart != "" {
		if from, err = models.ParseDate(req.MonthStart); err != nil {
			return models.Date{}, models.Date{}, fmt.Errorf("monthStart: %w", err)
		}
	}
	if req.MonthEnd != "" {
		if to, err = models.ParseDate(req.MonthEnd); err != nil {
			return models.Date{}, models.Date{}, fmt.Errorf("monthEnd: %w", err)
		}
	}
	return from, to, nil
}
