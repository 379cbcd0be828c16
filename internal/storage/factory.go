package storage

import (
	"context"
	"fmt"
	"onegoodthing/internal/models"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/structures"
	"time"
)

func NewStore(conf *structures.Config, logger providers.Logger) (Store, error) {
	switch conf.Storage.Driver {
	case "", "memory":
		logger.Infof(providers.TypeApp, "Using in-memory entry store, snapshot file %s", conf.Storage.SnapshotFile)
		return NewMemoryStore(), nil
	case "postgres":
		timeout := conf.Storage.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		store, err := OpenPostgres(ctx, conf.Storage.DSN, conf.Storage.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeApp, "Using postgres entry store")
		return store, nil
	case "supabase":
		logger.Infof(providers.TypeApp, "Using supabase entry store at %s", conf.Storage.SupabaseURL)
		return NewSupabaseStore(conf.Storage.SupabaseURL, conf.Storage.SupabaseServiceKey, conf.Storage.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}

// NewSnapshotter exposes the store to the file manager. Stores without
// process memory state get a no-op.
func NewSnapshotter(store Store) Snapshotter {
	if s, ok := store.(Snapshotter); ok {
		return s
	}
	return noopSnapshotter{}
}

type noopSnapshotter struct{}

func (noopSnapshotter) Snapshot() *models.Snapshot { return nil }
func (noopSnapshotter) Restore(_ *models.Snapshot) {}
func (noopSnapshotter) EntryCount() int            { return -1 }
