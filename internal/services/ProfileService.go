package services

import (
	"context"
	"errors"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/storage"
)

type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, user models.User) (models.Profile, error)
	UpdateProfile(ctx context.Context, user models.User, in models.ProfileInput) (models.Profile, error)
}

type ProfileService struct {
	store     storage.ProfileRepository
	revisions *Revisions
	reminders ReminderServiceInterface
	logger    providers.Logger
}

func NewProfileService(store storage.Store, revisions *Revisions, reminders ReminderServiceInterface, logger providers.Logger) ProfileServiceInterface {
	return &ProfileService{store: store, revisions: revisions, reminders: reminders, logger: logger}
}

// GetProfile falls back to the default settings for users that never saved any.
func (ps *ProfileService) GetProfile(ctx context.Context, user models.User) (models.Profile, error) {
	profile, _, err := ps.load(ctx, user)
	return profile, err
}

// load reports whether the profile is already stored.
func (ps *ProfileService) load(ctx context.Context, user models.User) (models.Profile, bool, error) {
	profile, err := ps.store.GetProfile(ctx, user.ID)
	if errors.Is(err, models.ErrNotFound) {
		return models.DefaultProfile(user.ID, user.Email), false, nil
	}
	if err != nil {
		return models.Profile{}, false, err
	}
	if profile.Email == "" {
		profile.Email = user.Email
	}
	return profile, true, nil
}

func (ps *ProfileService) UpdateProfile(ctx context.Context, user models.User, in models.ProfileInput) (models.Profile, error) {
	if err := in.Normalize(); err != nil {
		return models.Profile{}, err
	}
	current, stored, err := ps.load(ctx, user)
	if err != nil {
		return models.Profile{}, err
	}
	saved, err := ps.store.SaveProfile(ctx, current.Apply(in))
	if err != nil {
		return models.Profile{}, err
	}
	// the zone decides which day is today, so cached stats go stale
	ps.revisions.Bump(user.ID)
	ps.logger.Infof(providers.TypePost, "profile %s updated: tz=%s reminder=%d/%t ai=%t",
		user.ID, saved.Timezone, saved.ReminderHour, saved.ReminderEnabled, saved.AIEnabled)

	if !stored {
		// the profile is saved either way
		if err := ps.reminders.SendWelcome(ctx, saved); err != nil && !errors.Is(err, providers.ErrMailDisabled) {
			ps.logger.Warnf(providers.TypeMail, "welcome mail for %s failed: %v", user.ID, err)
		}
	}
	return saved, nil
}
