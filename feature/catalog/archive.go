package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"card-catalog/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archive keeps a copy of every applied snapshot and patch payload in object
// storage so a drifted replica can be replayed or diffed after the fact.
// Uploads are strictly best effort: the local apply never fails because the
// archive is unreachable.
type Archive struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewArchive builds an archive backed by the given object-storage client.
func NewArchive(client storage.Client, bucket string, logger *zap.Logger) *Archive {
	return &Archive{client: client, bucket: bucket, logger: logger}
}

// Store uploads one payload as JSON and returns its URI, or nil when the
// upload failed or the archive is disabled.
func (a *Archive) Store(ctx context.Context, dataset, label string, payload any) *string {
	if a == nil || a.client == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.Warn("archive payload not serializable", zap.Error(err))
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		a.logger.Warn("archive bucket check failed", zap.String("bucket", a.bucket), zap.Error(err))
		return nil
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			a.logger.Warn("archive bucket create failed", zap.String("bucket", a.bucket), zap.Error(err))
			return nil
		}
	}

	objectName := fmt.Sprintf("catalog/%s/%s.json", dataset, label)
	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		a.logger.Warn("archive upload failed",
			zap.String("object", objectName), zap.Error(err))
		return nil
	}

	uri := fmt.Sprintf("s3://%s/%s", a.bucket, objectName)
	a.logger.Debug("archived catalog payload", zap.String("uri", uri))
	return &uri
}

// archivePayload wraps the archive with the apply path's short deadline.
func (s *Service) archivePayload(dataset, label string, payload any) *string {
	if s.archive == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.archive.Store(ctx, dataset, label, payload)
}
