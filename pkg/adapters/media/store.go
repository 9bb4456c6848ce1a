package media

import (
	"context"

	"github.com/juju/errors"

	"github.com/wadjakorntonsri/studio-site/pkg/config"
	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

// NewFromConfig opens the media backend selected by MEDIA_BACKEND.
func NewFromConfig(ctx context.Context, cfg *config.Config) (ports.MediaStore, error) {
	switch cfg.MediaBackend {
	case "", "local":
		return NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return nil, errors.NotValidf("media backend %q", cfg.MediaBackend)
	}
}
