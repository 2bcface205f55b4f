// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface so the snapshot archive can keep
// compressed copies of worksheet tables in S3 or a self-hosted MinIO instance, and so tests can
// replace it with core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: EnsureBucket creates the snapshot bucket on first use.
//   - PutObject: Uploads a snapshot.
//   - GetObject: Retrieves a snapshot as a stream.
//   - ListObjects: Lists the snapshots of a worksheet (prefix listing).
//   - RemoveObjects: Prunes old snapshots in batches.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
