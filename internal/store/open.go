package store

import (
	"errors"
	"fmt"

	"scribble/internal/cache"
	"scribble/internal/config"
	"scribble/internal/database"
)

// Open builds the Store selected by cfg.StoreBackend.
func Open(cfg *config.Config) (*Store, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return New(NewMemoryBackend(), config.StoreMemory), nil
	case config.StoreFile:
		b, err := NewFileBackend(cfg.StoreFilePath)
		if err != nil {
			return nil, err
		}
		return New(b, config.StoreFile), nil
	case config.StoreRedis:
		client := cache.GetClient()
		if client == nil {
			client = cache.NewClient(cfg.RedisURL)
		}
		if client == nil {
			return nil, errors.New("redis store selected but Redis is unreachable")
		}
		return New(NewRedisBackend(client, cfg.StoreNamespace), config.StoreRedis), nil
	case config.StoreSQLite, config.StorePostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		b, err := NewSQLBackend(db)
		if err != nil {
			return nil, err
		}
		return New(b, cfg.StoreBackend), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
