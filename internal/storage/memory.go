package storage

import (
	"context"
	"github.com/google/uuid"
	"onegoodthing/internal/models"
	"sort"
	"sync"
	"time"
)

type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]map[string]models.JournalEntry
	byDate   map[string]map[models.Date]string
	profiles map[string]models.Profile
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]map[string]models.JournalEntry),
		byDate:   make(map[string]map[models.Date]string),
		profiles: make(map[string]models.Profile),
		now:      time.Now,
	}
}

func (s *MemoryStore) Driver() string { return "memory" }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateEntry(_ context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates, ok := s.byDate[entry.OwnerID]
	if !ok {
		dates = make(map[models.Date]string)
		s.byDate[entry.OwnerID] = dates
		s.entries[entry.OwnerID] = make(map[string]models.JournalEntry)
	}
	if _, exists := dates[entry.EntryDate]; exists {
		return models.JournalEntry{}, models.ErrDuplicateDay
	}

	stored := entry.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now().UTC()
	}
	dates[stored.EntryDate] = stored.ID
	s.entries[stored.OwnerID][stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) DeleteEntry(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ownerID][id]
	if !ok {
		return models.ErrNotFound
	}
	delete(s.entries[ownerID], id)
	delete(s.byDate[ownerID], entry.EntryDate)
	return nil
}

func (s *MemoryStore) ListEntries(_ context.Context, ownerID string, from, to models.Date) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.JournalEntry, 0, len(s.entries[ownerID]))
	for _, e := range s.entries[ownerID] {
		if !from.IsZero() && e.EntryDate.Before(from) {
			continue
		}
		if !to.IsZero() && e.EntryDate.After(to) {
			continue
		}
		out = append(out, e.Clone())
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) GetEntryByDate(_ context.Context, ownerID string, date models.Date) (models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byDate[ownerID][date]
	if !ok {
		return models.JournalEntry{}, models.ErrNotFound
	}
	return s.entries[ownerID][id].Clone(), nil
}

func (s *MemoryStore) CountEntries(_ context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[ownerID]), nil
}

func (s *MemoryStore) GetProfile(_ context.Context, id string) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, models.ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, profile models.Profile) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.profiles[profile.ID]; ok {
		profile.CreatedAt = existing.CreatedAt
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = s.now().UTC()
	}
	s.profiles[profile.ID] = profile
	return profile, nil
}

func (s *MemoryStore) ListReminderProfiles(_ context.Context) ([]models.Profile, error) {
	return s.profilesWhere(func(p models.Profile) bool { return p.ReminderEnabled }), nil
}

func (s *MemoryStore) ListProfiles(_ context.Context) ([]models.Profile, error) {
	return s.profilesWhere(func(p models.Profile) bool { return p.Email != "" }), nil
}

func (s *MemoryStore) profilesWhere(keep func(models.Profile) bool) []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.NewSnapshot()
	for owner, byID := range s.entries {
		list := make([]models.JournalEntry, 0, len(byID))
		for _, e := range byID {
			list = append(list, e.Clone())
		}
		sortNewestFirst(list)
		snap.Entries[owner] = list
	}
	for id, p := range s.profiles {
		snap.Profiles[id] = p
	}
	return snap
}

// Restore replaces the whole content. Duplicate days inside the snapshot
// keep the first entry seen.
func (s *MemoryStore) Restore(snapshot *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]map[string]models.JournalEntry, len(snapshot.Entries))
	s.byDate = make(map[string]map[models.Date]string, len(snapshot.Entries))
	s.profiles = make(map[string]models.Profile, len(snapshot.Profiles))

	for owner, list := range snapshot.Entries {
		byID := make(map[string]models.JournalEntry, len(list))
		dates := make(map[models.Date]string, len(list))
		for _, e := range list {
			if e.ID == "" || e.EntryDate.IsZero() {
				continue
			}
			if _, dup := dates[e.EntryDate]; dup {
				continue
			}
			e.OwnerID = owner
			byID[e.ID] = e.Clone()
			dates[e.EntryDate] = e.ID
		}
		s.entries[owner] = byID
		s.byDate[owner] = dates
	}
	for id, p := range snapshot.Profiles {
		s.profiles[id] = p
	}
}

func (s *MemoryStore) EntryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, byID := range s.entries {
		n += len(byID)
	}
	return n
}

func sortNewestFirst(entries []models.JournalEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EntryDate != entries[j].EntryDate {
			return entries[i].EntryDate.After(entries[j].EntryDate)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}
