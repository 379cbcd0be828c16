package services

import (
	"context"
	"errors"
	"fmt"
	"onegoodthing/internal/activity"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/storage"
	"onegoodthing/internal/structures"
	"time"
)

const (
	// ReengagementAfterDays is how long an owner must have been silent.
	ReengagementAfterDays = 30
	// FollowupAfterDays is the account age at which an owner with no entries
	// is nudged once.
	FollowupAfterDays = 7
	recentEntriesLimit = 50
	bestMomentsCount   = 3
)

type ReminderServiceInterface interface {
	// SendDue mails every profile whose local reminder hour is the hour of
	// now and who has not written today. It returns the number sent.
	SendDue(ctx context.Context, now time.Time) (int, error)
	// SendReengagement mails owners whose latest entry is at least
	// ReengagementAfterDays old in their zone.
	SendReengagement(ctx context.Context, now time.Time) (int, error)
	// SendFollowups mails owners who signed up between 8 and 7 days before
	// now and never wrote.
	SendFollowups(ctx context.Context, now time.Time) (int, error)
	SendWelcome(ctx context.Context, profile models.Profile) error
	// SendTest sends the daily reminder right away, marked as a test.
	SendTest(ctx context.Context, profile models.Profile, today models.Date) error
}

type ReminderService struct {
	store    storage.Store
	notifier providers.NotifierInterface
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger
	appURL   string
}

func NewReminderService(conf *structures.Config, store storage.Store, notifier providers.NotifierInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) ReminderServiceInterface {
	return &ReminderService{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		appURL:   conf.Mail.AppURL,
	}
}

func (rs *ReminderService) SendDue(ctx context.Context, now time.Time) (int, error) {
	if !rs.notifier.Enabled() {
		rs.logger.Debugf(providers.TypeMail, "mail disabled, reminders skipped")
		return 0, nil
	}
	profiles, err := rs.store.ListReminderProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list reminder profiles: %w", err)
	}

	sent := 0
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if !p.ReminderEnabled || p.Email == "" {
			continue
		}
		loc, err := p.Location()
		if err != nil {
			rs.logger.Warnf(providers.TypeMail, "profile %s has unknown timezone %q: %v", p.ID, p.Timezone, err)
			continue
		}
		if now.In(loc).Hour() != p.ReminderHour {
			continue
		}
		today := models.DateIn(now, loc)
		ok, err := rs.remind(ctx, p, today)
		if err != nil {
			rs.metrics.IncMailSent(mailReminder, "failed")
			rs.logger.Errorf(providers.TypeMail, "reminder for %s failed: %v", p.ID, err)
			continue
		}
		if !ok {
			rs.metrics.IncMailSent(mailReminder, "skipped")
			continue
		}
		rs.metrics.IncMailSent(mailReminder, "sent")
		sent++
	}
	rs.logger.Infof(providers.TypeMail, "reminders run at %s: %d sent", now.UTC().Format(time.RFC3339), sent)
	return sent, nil
}

// remind reports false when the owner already wrote today.
func (rs *ReminderService) remind(ctx context.Context, p models.Profile, today models.Date) (bool, error) {
	_, err := rs.store.GetEntryByDate(ctx, p.ID, today)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}
	entries, err := rs.store.ListEntries(ctx, p.ID, models.Date{}, today)
	if err != nil {
		return false, err
	}
	set := activity.NewDaySet(entries)
	mail := reminderEmail(p.Email, set.Streaks(today).Current, set.Len(), rs.appURL)
	if err := rs.notifier.Send(ctx, mail); err != nil {
		return false, err
	}
	return true, nil
}

func (rs *ReminderService) SendReengagement(ctx context.Context, now time.Time) (int, error) {
	if !rs.notifier.Enabled() {
		rs.logger.Debugf(providers.TypeMail, "mail disabled, re-engagement skipped")
		return 0, nil
	}
	profiles, err := rs.store.ListProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list profiles: %w", err)
	}

	sent := 0
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		entries, err := rs.store.ListEntries(ctx, p.ID, models.Date{}, models.Date{})
		if err != nil {
			rs.metrics.IncMailSent(mailReengagement, "failed")
			rs.logger.Errorf(providers.TypeMail, "re-engagement entries for %s: %v", p.ID, err)
			continue
		}
		if !inactive(p, entries, now) {
			continue
		}
		if err := rs.deliver(ctx, mailReengagement, reengagementEmail(p.Email, entries, rs.appURL)); err != nil {
			rs.logger.Errorf(providers.TypeMail, "re-engagement for %s failed: %v", p.ID, err)
			continue
		}
		sent++
	}
	rs.logger.Infof(providers.TypeMail, "re-engagement run at %s: %d of %d profiles mailed", now.UTC().Format(time.RFC3339), sent, len(profiles))
	return sent, nil
}

// inactive is true when the newest entry is ReengagementAfterDays or more
// before the owner's local today. Owners without entries qualify once their
// account is that old, so fresh sign-ups are left to the follow-up.
func inactive(p models.Profile, entries []models.JournalEntry, now time.Time) bool {
	if len(entries) == 0 {
		return !p.CreatedAt.IsZero() && now.Sub(p.CreatedAt) >= ReengagementAfterDays*24*time.Hour
	}
	loc, err := p.Location()
	if err != nil {
		loc = time.UTC
	}
	today := models.DateIn(now, loc)
	latest := activity.NewDaySet(entries).Latest()
	return today.DaysSince(latest) >= ReengagementAfterDays
}

func (rs *ReminderService) SendFollowups(ctx context.Context, now time.Time) (int, error) {
	if !rs.notifier.Enabled() {
		rs.logger.Debugf(providers.TypeMail, "mail disabled, follow-ups skipped")
		return 0, nil
	}
	profiles, err := rs.store.ListProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list profiles: %w", err)
	}
	oldest := now.Add(-(FollowupAfterDays + 1) * 24 * time.Hour)
	newest := now.Add(-FollowupAfterDays * 24 * time.Hour)

	sent := 0
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if p.CreatedAt.Before(oldest) || p.CreatedAt.After(newest) {
			continue
		}
		n, err := rs.store.CountEntries(ctx, p.ID)
		if err != nil {
			rs.metrics.IncMailSent(mailFollowup, "failed")
			rs.logger.Errorf(providers.TypeMail, "follow-up count for %s: %v", p.ID, err)
			continue
		}
		if n > 0 {
			continue
		}
		if err := rs.deliver(ctx, mailFollowup, followupEmail(p.Email, rs.appURL)); err != nil {
			rs.logger.Errorf(providers.TypeMail, "follow-up for %s failed: %v", p.ID, err)
			continue
		}
		sent++
	}
	rs.logger.Infof(providers.TypeMail, "follow-up run at %s: %d sent", now.UTC().Format(time.RFC3339), sent)
	return sent, nil
}

// SendWelcome is a no-op for profiles without an email address.
func (rs *ReminderService) SendWelcome(ctx context.Context, p models.Profile) error {
	if p.Email == "" {
		return nil
	}
	return rs.deliver(ctx, mailWelcome, welcomeEmail(p.Email, rs.appURL))
}

func (rs *ReminderService) SendTest(ctx context.Context, p models.Profile, today models.Date) error {
	if p.Email == "" {
		return fmt.Errorf("%w: profile has no email address", models.ErrInvalidInput)
	}
	if !rs.notifier.Enabled() {
		return providers.ErrMailDisabled
	}
	entries, err := rs.store.ListEntries(ctx, p.ID, models.Date{}, today)
	if err != nil {
		return err
	}
	set := activity.NewDaySet(entries)
	mail := reminderEmail(p.Email, set.Streaks(today).Current, set.Len(), rs.appURL)
	mail.Subject = testReminderSubject
	return rs.deliver(ctx, mailTest, mail)
}

// deliver sends one mail and counts the outcome under kind. A disabled
// notifier is not counted.
func (rs *ReminderService) deliver(ctx context.Context, kind string, mail providers.Email) error {
	err := rs.notifier.Send(ctx, mail)
	switch {
	case errors.Is(err, providers.ErrMailDisabled):
		return err
	case err != nil:
		rs.metrics.IncMailSent(kind, "failed")
		return err
	}
	rs.metrics.IncMailSent(kind, "sent")
	return nil
}
