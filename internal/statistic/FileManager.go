package statistic

import (
	"fmt"
	json "github.com/goccy/go-json"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/statistic/interfaces"
	"onegoodthing/internal/storage"
	"os"
)

// FileManager persists an in-memory entry store as compressed JSON.
type FileManager struct {
	store      storage.Snapshotter
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store storage.Snapshotter, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

// SaveToFile writes through a temp file and a rename so a crash never
// leaves a half written snapshot behind. Stores without a snapshot are skipped.
func (f *FileManager) SaveToFile(fileName string) error {
	snapshot := f.store.Snapshot()
	if snapshot == nil || fileName == "" {
		return nil
	}

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the store. A missing file is a fresh start.
func (f *FileManager) LoadFromFile(fileName string) error {
	if fileName == "" {
		return nil
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(decompressedData, &snapshot); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", fileName, err)
	}
	if snapshot.Version > models.SnapshotVersion {
		return fmt.Errorf("snapshot %s has version %d, newest supported is %d", fileName, snapshot.Version, models.SnapshotVersion)
	}
	if snapshot.Entries == nil && snapshot.Profiles == nil {
		f.logger.Warnf(providers.TypeApp, "Snapshot %s holds no journal data, starting empty", fileName)
		return nil
	}
	if snapshot.Entries == nil {
		snapshot.Entries = make(map[string][]models.JournalEntry)
	}
	if snapshot.Profiles == nil {
		snapshot.Profiles = make(map[string]models.Profile)
	}

	f.store.Restore(&snapshot)
	f.logger.Infof(providers.TypeApp, "Restored %d entries of %d owners from %s", snapshot.EntryCount(), len(snapshot.Entries), fileName)
	return nil
}
