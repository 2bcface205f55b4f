package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"gridsync/core/storage"
	"gridsync/core/table"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	// Prefix is the object prefix under which snapshots are stored.
	Prefix = "snapshots/"
	// Extension is the object suffix of a snapshot.
	Extension = ".json.zst"
	// ContentType is the content type of a snapshot object.
	ContentType = "application/zstd"

	stampLayout = "20060102T150405.000000000Z"
)

// Snapshot describes one archived table.
type Snapshot struct {
	Key       string    `json:"key"`
	Worksheet string    `json:"worksheet"`
	Size      int64     `json:"size"`
	Created   time.Time `json:"created"`
}

// Archive stores zstd compressed JSON copies of worksheet tables in object storage.
type Archive struct {
	client  storage.Client
	bucket  string
	keep    int
	logger  *zap.Logger
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	now     func() time.Time
}

// New creates an archive in bucket. When keep is positive, Save prunes all but the newest keep
// snapshots of a worksheet.
func New(client storage.Client, bucket string, keep int, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Archive{
		client:  client,
		bucket:  bucket,
		keep:    keep,
		logger:  logger,
		encoder: enc,
		decoder: dec,
		now:     time.Now,
	}, nil
}

// Bucket returns the bucket snapshots are stored in.
func (a *Archive) Bucket() string { return a.bucket }

// Save uploads t as a new snapshot of worksheet.
func (a *Archive) Save(ctx context.Context, worksheet string, t *table.Table) (Snapshot, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	compressed := a.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))

	created := a.now().UTC()
	key := worksheetPrefix(worksheet) + created.Format(stampLayout) + "-" + uuid.NewString()[:8] + Extension
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(compressed), int64(len(compressed)), minio.PutObjectOptions{
		ContentType: ContentType,
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}

	a.logger.Info("Saved snapshot",
		zap.String("worksheet", worksheet),
		zap.String("key", key),
		zap.Int("rows", t.Len()),
		zap.Int("bytes", len(compressed)))

	if a.keep > 0 {
		if _, err := a.Prune(ctx, worksheet, a.keep); err != nil {
			a.logger.Warn("Snapshot pruning failed", zap.String("worksheet", worksheet), zap.Error(err))
		}
	}

	return Snapshot{Key: key, Worksheet: worksheet, Size: int64(len(compressed)), Created: created}, nil
}

// List returns the snapshots of worksheet, newest first.
func (a *Archive) List(ctx context.Context, worksheet string) ([]Snapshot, error) {
	var out []Snapshot
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: worksheetPrefix(worksheet), Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, Extension) {
			continue
		}
		snap := Snapshot{Key: obj.Key, Worksheet: worksheet, Size: obj.Size, Created: obj.LastModified}
		if created, ok := parseCreated(obj.Key); ok {
			snap.Created = created
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}

// Load downloads and decodes the snapshot stored under key.
func (a *Archive) Load(ctx context.Context, key string) (*table.Table, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	defer obj.Close()

	compressed, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	data, err := a.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot %s: %w", key, err)
	}

	var t table.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return &t, nil
}

// Latest loads the newest snapshot of worksheet.
func (a *Archive) Latest(ctx context.Context, worksheet string) (*table.Table, Snapshot, error) {
	snaps, err := a.List(ctx, worksheet)
	if err != nil {
		return nil, Snapshot{}, err
	}
	if len(snaps) == 0 {
		return nil, Snapshot{}, fmt.Errorf("no snapshots for worksheet %q", worksheet)
	}
	t, err := a.Load(ctx, snaps[0].Key)
	return t, snaps[0], err
}

// Delete removes a single snapshot.
func (a *Archive) Delete(ctx context.Context, key string) error {
	if err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}
	return nil
}

// Prune removes all but the newest keep snapshots of worksheet and returns how many were removed.
func (a *Archive) Prune(ctx context.Context, worksheet string, keep int) (int, error) {
	snaps, err := a.List(ctx, worksheet)
	if err != nil {
		return 0, err
	}
	if len(snaps) <= keep {
		return 0, nil
	}

	stale := snaps[keep:]
	objects := make(chan minio.ObjectInfo, len(stale))
	for _, s := range stale {
		objects <- minio.ObjectInfo{Key: s.Key}
	}
	close(objects)

	var firstErr error
	for rErr := range a.client.RemoveObjects(ctx, a.bucket, objects, minio.RemoveObjectsOptions{}) {
		if firstErr == nil {
			firstErr = fmt.Errorf("failed to remove snapshot %s: %w", rErr.ObjectName, rErr.Err)
		}
	}
	if firstErr != nil {
		return 0, firstErr
	}

	a.logger.Info("Pruned snapshots", zap.String("worksheet", worksheet), zap.Int("removed", len(stale)))
	return len(stale), nil
}

// worksheetPrefix returns the object prefix of worksheet. An empty name is stored as "_default".
func worksheetPrefix(worksheet string) string {
	if worksheet == "" {
		worksheet = "_default"
	}
	return Prefix + url.PathEscape(worksheet) + "/"
}

func parseCreated(key string) (time.Time, bool) {
	name := key[strings.LastIndex(key, "/")+1:]
	if len(name) < len(stampLayout) {
		return time.Time{}, false
	}
	created, err := time.Parse(stampLayout, name[:len(stampLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return created, true
}
