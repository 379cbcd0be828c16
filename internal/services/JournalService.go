package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/storage"
)

var exportHeader = []string{"Date", "Entry", "AI Reflection"}

type JournalServiceInterface interface {
	CreateEntry(ctx context.Context, user models.User, in models.EntryInput, today models.Date) (models.JournalEntry, error)
	ListEntries(ctx context.Context, ownerID string, from, to models.Date) ([]models.JournalEntry, error)
	DeleteEntry(ctx context.Context, ownerID, id string) error
	CountEntries(ctx context.Context, ownerID string) (int, error)
	Export(ctx context.Context, ownerID string, w io.Writer) error
}

type JournalService struct {
	store     storage.EntryRepository
	profiles  ProfileServiceInterface
	insights  InsightServiceInterface
	revisions *Revisions
	metrics   providers.MetricsProviderInterface
	logger    providers.Logger
}

func NewJournalService(store storage.Store, profiles ProfileServiceInterface, insights InsightServiceInterface, revisions *Revisions, metrics providers.MetricsProviderInterface, logger providers.Logger) JournalServiceInterface {
	return &JournalService{
		store:     store,
		profiles:  profiles,
		insights:  insights,
		revisions: revisions,
		metrics:   metrics,
		logger:    logger,
	}
}

// CreateEntry stores the viewer's entry for today, or for the given past
// date. The reflection is best effort: a failing AI call never loses the entry.
func (js *JournalService) CreateEntry(ctx context.Context, user models.User, in models.EntryInput, today models.Date) (models.JournalEntry, error) {
	if err := in.Normalize(); err != nil {
		return models.JournalEntry{}, err
	}
	entry, err := models.NewJournalEntry(user.ID, in, today)
	if err != nil {
		return models.JournalEntry{}, err
	}
	if entry.EntryDate.After(today) {
		return models.JournalEntry{}, fmt.Errorf("%w: entryDate %s is in the future", models.ErrInvalidInput, entry.EntryDate)
	}

	// checked up front so a duplicate never costs an AI call; the store
	// still enforces uniqueness for concurrent submissions
	if _, err := js.store.GetEntryByDate(ctx, user.ID, entry.EntryDate); err == nil {
		return models.JournalEntry{}, models.ErrDuplicateDay
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.JournalEntry{}, fmt.Errorf("lookup entry: %w", err)
	}

	js.reflect(ctx, user, &entry)

	created, err := js.store.CreateEntry(ctx, entry)
	if err != nil {
		return models.JournalEntry{}, err
	}
	js.revisions.Bump(user.ID)
	js.metrics.IncEntriesCreated()
	js.logger.Infof(providers.TypePost, "entry %s created for %s on %s", created.ID, user.ID, created.EntryDate)
	return created, nil
}

func (js *JournalService) reflect(ctx context.Context, user models.User, entry *models.JournalEntry) {
	if !js.insights.Enabled() {
		return
	}
	profile, err := js.profiles.GetProfile(ctx, user)
	if err != nil {
		js.logger.Warnf(providers.TypeAI, "profile lookup for %s failed, skipping reflection: %v", user.ID, err)
		return
	}
	if !profile.AIEnabled {
		return
	}
	reflection, err := js.insights.Reflect(ctx, entry.Text, entry.MoodScore)
	if err != nil {
		js.logger.Infof(providers.TypeAI, "saving entry for %s without reflection: %v", user.ID, err)
		return
	}
	entry.Reflection = reflection.Reflection
	if entry.MoodScore == nil && reflection.MoodScore != nil {
		m := *reflection.MoodScore
		entry.MoodScore = &m
	}
}

func (js *JournalService) ListEntries(ctx context.Context, ownerID string, from, to models.Date) ([]models.JournalEntry, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: from must not be after to", models.ErrInvalidInput)
	}
	return js.store.ListEntries(ctx, ownerID, from, to)
}

func (js *JournalService) DeleteEntry(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", models.ErrInvalidInput)
	}
	if err := js.store.DeleteEntry(ctx, ownerID, id); err != nil {
		return err
	}
	js.revisions.Bump(ownerID)
	js.logger.Infof(providers.TypePost, "entry %s deleted by %s", id, ownerID)
	return nil
}

func (js *JournalService) CountEntries(ctx context.Context, ownerID string) (int, error) {
	return js.store.CountEntries(ctx, ownerID)
}

// Export writes every entry as CSV, newest first.
func (js *JournalService) Export(ctx context.Context, ownerID string, w io.Writer) error {
	entries, err := js.store.ListEntries(ctx, ownerID, models.Date{}, models.Date{})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.EntryDate.String(), e.Text, e.Reflection}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
