// Package uploads picks the storage backend for user-supplied files, either
// an S3 bucket or a local directory, from the process configuration.
package uploads

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dalemusser/sasquatch/internal/app/system/appenv"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalURLPrefix is the path local uploads are served under.
const LocalURLPrefix = "/uploads"

// FromConfig picks the backend: S3 when BUCKET_NAME is set, otherwise the
// local directory when LOCAL_UPLOAD_DIR is set. With neither it returns a
// nil Store and uploads are disabled.
//
// Local objects get URLs below BACKEND_URL + LocalURLPrefix. S3 credentials
// and region come from the default AWS chain; nothing is sent to AWS here.
func FromConfig(ctx context.Context, cfg appenv.Config, logger *zap.Logger) (storage.Store, error) {
	switch {
	case cfg.BucketName != "":
		s, err := storage.NewS3(ctx, storage.S3Config{Bucket: cfg.BucketName})
		if err != nil {
			return nil, err
		}
		logger.Info("uploads: using S3 bucket", zap.String("bucket", cfg.BucketName))
		return s, nil
	case cfg.LocalUploadDir != "":
		s, err := storage.NewLocal(storage.LocalConfig{
			BasePath: cfg.LocalUploadDir,
			BaseURL:  strings.TrimRight(cfg.BackendURL, "/") + LocalURLPrefix,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("uploads: using local directory", zap.String("dir", cfg.LocalUploadDir))
		return s, nil
	default:
		logger.Warn("uploads disabled: neither BUCKET_NAME nor LOCAL_UPLOAD_DIR is set")
		return nil, nil
	}
}

// NewKey returns a collision-free object key that keeps the extension of
// the client's file name, lowercased.
func NewKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}
