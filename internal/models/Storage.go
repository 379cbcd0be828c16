package models

const SnapshotVersion = 1

// Snapshot is the persisted form of the in-process entry store.
type Snapshot struct {
	Version  int                       `json:"version"`
	Entries  map[string][]JournalEntry `json:"entries"`
	Profiles map[string]Profile        `json:"profiles"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version:  SnapshotVersion,
		Entries:  make(map[string][]JournalEntry),
		Profiles: make(map[string]Profile),
	}
}

func (s *Snapshot) EntryCount() int {
	n := 0
	for _, entries := range s.Entries {
		n += len(entries)
	}
	return n
}
