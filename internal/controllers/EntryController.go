package controllers

import (
	"bytes"
	"net/http"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
)

type EntryController struct {
	viewer
	logger  providers.Logger
	journal services.JournalServiceInterface
}

func NewEntryController(logger providers.Logger, journal services.JournalServiceInterface, profiles services.ProfileServiceInterface, days *services.DayResolver) *EntryController {
	return &EntryController{
		viewer:  viewer{profiles: profiles, days: days},
		logger:  logger,
		journal: journal,
	}
}

func (ec *EntryController) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in models.EntryInput
	if !decodeBody(w, r, &in) {
		return
	}
	today, err := ec.today(r, user)
	if err != nil {
		handleError(ec.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	created, err := ec.journal.CreateEntry(r.Context(), user, in, today)
	if err != nil {
		handleError(ec.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List accepts optional from and to query dates.
func (ec *EntryController) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	from, err := queryDate(r, "from")
	if err != nil {
		handleError(ec.logger, w, r, err, http.StatusBadRequest)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		handleError(ec.logger, w, r, err, http.StatusBadRequest)
		return
	}
	entries, err := ec.journal.ListEntries(r.Context(), user.ID, from, to)
	if err != nil {
		handleError(ec.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (ec *EntryController) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := ec.journal.DeleteEntry(r.Context(), user.ID, r.URL.Query().Get("id")); err != nil {
		handleError(ec.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ec *EntryController) Export(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	today, err := ec.today(r, user)
	if err != nil {
		handleError(ec.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	// buffered so a storage failure can still become a proper error response
	var buf bytes.Buffer
	if err := ec.journal.Export(r.Context(), user.ID, &buf); err != nil {
		handleError(ec.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="gratitude-journal-`+today.String()+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func queryDate(r *http.Request, name string) (models.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return models.Date{}, nil
	}
	return models.ParseDate(raw)
}
