package controllers

import (
	"net/http"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
)

type ProfileController struct {
	logger   providers.Logger
	profiles services.ProfileServiceInterface
}

func NewProfileController(logger providers.Logger, profiles services.ProfileServiceInterface) *ProfileController {
	return &ProfileController{logger: logger, profiles: profiles}
}

func (pc *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	profile, err := pc.profiles.GetProfile(r.Context(), user)
	if err != nil {
		handleError(pc.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (pc *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in models.ProfileInput
	if !decodeBody(w, r, &in) {
		return
	}
	profile, err := pc.profiles.UpdateProfile(r.Context(), user, in)
	if err != nil {
		handleError(pc.logger, w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
