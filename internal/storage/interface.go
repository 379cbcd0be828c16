package storage

import (
	"context"
	"onegoodthing/internal/models"
)

// EntryRepository is the entry store. Every driver keeps at most one entry
// per owner and day and reports a second one as models.ErrDuplicateDay.
type EntryRepository interface {
	CreateEntry(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error)
	DeleteEntry(ctx context.Context, ownerID, id string) error
	// ListEntries returns entries dated inside [from, to], newest first.
	// A zero bound is open.
	ListEntries(ctx context.Context, ownerID string, from, to models.Date) ([]models.JournalEntry, error)
	GetEntryByDate(ctx context.Context, ownerID string, date models.Date) (models.JournalEntry, error)
	CountEntries(ctx context.Context, ownerID string) (int, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	SaveProfile(ctx context.Context, profile models.Profile) (models.Profile, error)
	ListReminderProfiles(ctx context.Context) ([]models.Profile, error)
	// ListProfiles returns every profile with an email address, ordered by id.
	ListProfiles(ctx context.Context) ([]models.Profile, error)
}

type Store interface {
	EntryRepository
	ProfileRepository
	Driver() string
	Close() error
}

// Snapshotter is implemented by stores that live in process memory and
// need the file manager to persist them.
type Snapshotter interface {
	Snapshot() *models.Snapshot
	Restore(snapshot *models.Snapshot)
	EntryCount() int
}
