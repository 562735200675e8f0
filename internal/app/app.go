// Package app builds the ingestion service from configuration for both binaries.
package app

import (
	"fmt"
	"os"

	"eraport-ingestion/internal/config"
	"eraport-ingestion/internal/db"
	"eraport-ingestion/internal/db/memdb"
	"eraport-ingestion/internal/ingest"
	"eraport-ingestion/internal/lock"
	"eraport-ingestion/internal/logger"
	"eraport-ingestion/internal/storage"
)

type App struct {
	Service *ingest.Service
	closers []func() error
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	log := logger.Get()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("Close failed")
		}
	}
}

func New(cfg *config.Config) (*App, error) {
	a := &App{}

	store, err := a.openStore(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var locker lock.Locker
	if cfg.Redis.Enabled {
		client, err := lock.NewRedisClient(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		locker = lock.NewRedisLocker(client, cfg.Redis.LockTTL)
	}

	var archive *storage.Archive
	if cfg.Storage.S3.Enabled {
		s3, err := storage.NewS3Storage(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		archive = storage.NewArchive(s3, cfg.Storage.S3.Prefix)
	}

	a.Service = ingest.NewService(store, locker, archive)
	return a, nil
}

func (a *App) openStore(cfg *config.Config) (db.Store, error) {
	log := logger.Get()

	if cfg.Database.Driver == "memory" {
		store := memdb.New()
		if cfg.Database.SeedFile != "" {
			data, err := os.ReadFile(cfg.Database.SeedFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read seed file: %w", err)
			}
			if err := store.LoadSeed(data); err != nil {
				return nil, err
			}
		}
		log.Warn().Msg("Using in-memory database, data is lost on exit")
		return store, nil
	}

	database, err := db.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, database.Close)

	if cfg.Database.AutoMigrate {
		if err := db.RunMigrations(database); err != nil {
			return nil, err
		}
	}
	return db.NewStore(database), nil
}
