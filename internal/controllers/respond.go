package controllers

import (
	"errors"
	json "github.com/goccy/go-json"
	"net/http"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// TimezoneHeader lets a client state the zone its calendar runs in.
const TimezoneHeader = "X-Timezone"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeBody reads a JSON body of at most maxRequestBodySize bytes.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusOf maps a service error to an HTTP status. Unknown errors get fallback.
func statusOf(err error, fallback int) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, services.ErrNotEnoughEntries):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateDay):
		return http.StatusConflict
	case errors.Is(err, providers.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, providers.ErrPaymentRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, providers.ErrAIDisabled), errors.Is(err, providers.ErrMailDisabled):
		return http.StatusServiceUnavailable
	default:
		return fallback
	}
}

func handleError(logger providers.Logger, w http.ResponseWriter, r *http.Request, err error, fallback int) {
	status := statusOf(err, fallback)
	if status >= http.StatusInternalServerError {
		logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %v", r.Method, r.URL.Path, err)
	}
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		msg = "Internal Server Error"
	case http.StatusBadGateway:
		msg = "AI service error"
	}
	writeError(w, status, msg)
}

func currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := providers.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return user, ok
}

// viewer resolves the caller's profile and calendar day once per request.
type viewer struct {
	profiles services.ProfileServiceInterface
	days     *services.DayResolver
}

func (v viewer) today(r *http.Request, user models.User) (models.Date, error) {
	profile, err := v.profiles.GetProfile(r.Context(), user)
	if err != nil {
		return models.Date{}, err
	}
	return v.days.Today(r.Header.Get(TimezoneHeader), profile), nil
}
