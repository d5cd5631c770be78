package main

import (
	"context"
	"fmt"

	"github.com/gallery/service/internal/config"
	"github.com/gallery/service/internal/db"
	"github.com/gallery/service/internal/docstore"
	"github.com/gallery/service/internal/storage"
)

// openDocStore returns the configured document store and a function releasing it.
func openDocStore(ctx context.Context, cfg *config.Config) (docstore.Store, func(), error) {
	switch cfg.DocStoreDriver {
	case "postgres":
		if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return docstore.NewPostgres(pool), pool.Close, nil
	case "sqlite":
		s, err := docstore.OpenSQLite(ctx, cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown document store driver %q", cfg.DocStoreDriver)
}

// openBlobStore returns the configured blob store and a function releasing it.
func openBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, func(), error) {
	switch cfg.StorageDriver {
	case "minio":
		s, err := storage.NewMinio(ctx, cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageBucket, cfg.StorageUseSSL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "gcs":
		s, err := storage.NewGCS(ctx, cfg.StorageBucket)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "s3":
		s, err := storage.NewS3(ctx, cfg.StorageRegion, cfg.S3Endpoint, cfg.StorageBucket)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "memory":
		return storage.NewMemory(cfg.StorageBucket), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
