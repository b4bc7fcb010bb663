package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"dash-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// DefaultKeep is the number of archives retained per workspace.
const DefaultKeep = 20

// Dump is one full cache snapshot.
type Dump struct {
	Workspace   string         `json:"workspace"`
	TakenAt     time.Time      `json:"takenAt"`
	Collections map[string]any `json:"collections"`
}

// Archiver writes dumps to an object storage bucket.
type Archiver struct {
	client storage.Client
	bucket string
	keep   int
	logger *zap.Logger
}

// New creates an archiver retaining DefaultKeep archives per workspace.
func New(client storage.Client, bucket string, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{client: client, bucket: bucket, keep: DefaultKeep, logger: logger}
}

// EnsureBucket creates the archive bucket if it does not exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload writes one dump and returns the object name. Names sort
// lexicographically by capture time, which Prune relies on.
func (a *Archiver) Upload(ctx context.Context, dump Dump) (string, error) {
	name := fmt.Sprintf("%s/%s.json.gz", dump.Workspace, dump.TakenAt.UTC().Format("20060102T150405Z"))

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(dump); err != nil {
		return "", fmt.Errorf("failed to encode dump: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to compress dump: %w", err)
	}

	_, err := a.client.PutObject(ctx, a.bucket, name, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive: %w", err)
	}
	return name, nil
}

// Prune removes the oldest archives of a workspace beyond the retention
// count.
func (a *Archiver) Prune(ctx context.Context, workspace string) error {
	prefix := workspace + "/"
	var names []string
	for info := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if info.Err != nil {
			return fmt.Errorf("failed to list archives: %w", info.Err)
		}
		if strings.HasSuffix(info.Key, ".json.gz") {
			names = append(names, info.Key)
		}
	}
	if len(names) <= a.keep {
		return nil
	}
	sort.Strings(names)
	for _, name := range names[:len(names)-a.keep] {
		if err := a.client.RemoveObject(ctx, a.bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove archive %s: %w", name, err)
		}
	}
	return nil
}

// Run uploads a dump every interval until the context is cancelled. The
// take callback captures the current cache state.
func (a *Archiver) Run(ctx context.Context, interval time.Duration, take func() Dump) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dump := take()
			name, err := a.Upload(ctx, dump)
			if err != nil {
				a.logger.Warn("snapshot archive failed", zap.Error(err))
				continue
			}
			a.logger.Info("snapshot archived", zap.String("object", name))
			if err := a.Prune(ctx, dump.Workspace); err != nil {
				a.logger.Warn("archive prune failed", zap.Error(err))
			}
		}
	}
}
