package controllers

import (
	"net/http"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
)

type testReminderResponse struct {
	Success bool   `json:"success"`
	To      string `json:"to"`
}

type ReminderController struct {
	viewer
	logger    providers.Logger
	reminders services.ReminderServiceInterface
}

func NewReminderController(logger providers.Logger, reminders services.ReminderServiceInterface, profiles services.ProfileServiceInterface, days *services.DayResolver) *ReminderController {
	return &ReminderController{
		viewer:    viewer{profiles: profiles, days: days},
		logger:    logger,
		reminders: reminders,
	}
}

// Test mails the caller's daily reminder now, to the address on the profile.
func (rc *ReminderController) Test(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	profile, err := rc.profiles.GetProfile(r.Context(), user)
	if err != nil {
		handleError(rc.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	today := rc.days.Today(r.Header.Get(TimezoneHeader), profile)
	if err := rc.reminders.SendTest(r.Context(), profile, today); err != nil {
		if statusOf(err, http.StatusBadGateway) != http.StatusBadGateway {
			handleError(rc.logger, w, r, err, http.StatusBadGateway)
			return
		}
		rc.logger.Errorf(providers.TypeMail, "test reminder for %s: %v", user.ID, err)
		writeError(w, http.StatusBadGateway, "Mail service error")
		return
	}
	rc.logger.Infof(providers.TypeMail, "test reminder sent to %s", user.ID)
	writeJSON(w, http.StatusOK, testReminderResponse{Success: true, To: profile.Email})
}
