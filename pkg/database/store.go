package database

import (
	"achievements_tracker_backend/internal/config"
	"achievements_tracker_backend/internal/docstore"
	"context"
	"fmt"
	"time"
)

// OpenDocumentStore connects the backend selected by store.driver.
func OpenDocumentStore(cfg *config.Config) (docstore.Store, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return docstore.NewMemoryStore(), nil
	case "mongo":
		client, err := InitMongo(&cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		store := docstore.NewMongoStore(client, cfg.Mongo.Database)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "mysql", "postgres":
		db, err := InitDB(cfg.Store.Driver, &cfg.Database, cfg.Server.Mode == "debug")
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", cfg.Store.Driver, err)
		}
		return docstore.NewSQLStore(db), nil
	case "redis":
		client, err := InitRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return docstore.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
