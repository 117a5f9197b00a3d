package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/odyssey-catalog/internal/platform/db"
	"github.com/odyssey-erp/odyssey-catalog/internal/platform/docstore"
	"github.com/odyssey-erp/odyssey-catalog/internal/products"
	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

// Store holds the collections for the configured backend.
type Store struct {
	Driver   string
	Users    docstore.Collection[users.User]
	Products docstore.Collection[products.Product]
	Pinger   docstore.Pinger

	close func(context.Context) error
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStore connects to the backend named by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case StoreMongo:
		database, err := db.NewMongo(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		userColl := docstore.NewMongoCollection[users.User](database, users.CollectionName)
		return &Store{
			Driver:   cfg.StoreDriver,
			Users:    userColl,
			Products: docstore.NewMongoCollection[products.Product](database, products.CollectionName),
			Pinger:   userColl,
			close:    func(ctx context.Context) error { return database.Client().Disconnect(ctx) },
		}, nil
	case StorePostgres:
		pg, err := db.NewPostgres(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		if err := docstore.EnsurePostgresSchema(ctx, pg.DB); err != nil {
			_ = pg.Close()
			return nil, err
		}
		userColl := docstore.NewPostgresCollection[users.User](pg.DB, users.CollectionName)
		return &Store{
			Driver:   cfg.StoreDriver,
			Users:    userColl,
			Products: docstore.NewPostgresCollection[products.Product](pg.DB, products.CollectionName),
			Pinger:   userColl,
			close:    func(context.Context) error { return pg.Close() },
		}, nil
	case StoreMemory:
		if logger != nil {
			logger.Warn("memory store selected, data is lost on exit")
		}
		userColl := docstore.NewMemoryCollection[users.User]()
		return &Store{
			Driver:   cfg.StoreDriver,
			Users:    userColl,
			Products: docstore.NewMemoryCollection[products.Product](),
			Pinger:   userColl,
		}, nil
	default:
		return nil, fmt.Errorf("app: unknown store driver %q", cfg.StoreDriver)
	}
}
