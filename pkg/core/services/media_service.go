package services

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

const defaultMediaFolder = "uploads"

// imageTypes maps accepted content types to the extension used for their keys.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

type MediaService struct {
	store    ports.MediaStore
	maxBytes int64
	newKey   func() string
}

func NewMediaService(store ports.MediaStore, maxBytes int64) *MediaService {
	return &MediaService{
		store:    store,
		maxBytes: maxBytes,
		newKey:   func() string { return uuid.NewString() },
	}
}

// Upload stores an image under folder/<uuid><ext> and returns its public URL.
// The content type is sniffed when the client did not send a usable one.
func (s *MediaService) Upload(ctx context.Context, folder, filename, contentType string, data []byte) (*domain.MediaObject, error) {
	if len(data) == 0 {
		return nil, errors.NewNotValid(nil, "file is empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, errors.NewNotValid(nil, "file exceeds the upload size limit")
	}

	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = defaultMediaFolder
	}
	if !slugPattern.MatchString(folder) {
		return nil, errors.NotValidf("folder %q", folder)
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = strings.SplitN(http.DetectContentType(data), ";", 2)[0]
	}
	ext, ok := imageTypes[contentType]
	if !ok {
		return nil, errors.NewNotValid(nil, "only image uploads are allowed")
	}
	if named := strings.ToLower(path.Ext(filename)); named == ".jpeg" && ext == ".jpg" {
		ext = named
	}

	key := folder + "/" + s.newKey() + ext
	if err := s.store.Upload(ctx, key, data, contentType); err != nil {
		return nil, errors.Annotatef(err, "uploading %s", key)
	}
	logger.Debugf("uploaded %s (%d bytes)", key, len(data))

	return &domain.MediaObject{
		Path:        key,
		URL:         s.store.PublicURL(key),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *MediaService) PublicURL(key string) string {
	return s.store.PublicURL(key)
}

// Remove deletes objects by key. Public URLs owned by the store are accepted too.
func (s *MediaService) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return errors.NewNotValid(nil, "paths is required")
	}

	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		if key, ok := s.store.PathFromURL(p); ok {
			p = key
		}
		p = strings.TrimPrefix(strings.TrimSpace(p), "/")
		if p == "" || path.Clean(p) != p || strings.HasPrefix(p, "../") || p == ".." {
			return errors.NotValidf("media path %q", p)
		}
		keys = append(keys, p)
	}

	if err := s.store.Remove(ctx, keys); err != nil {
		return errors.Annotate(err, "removing media")
	}
	return nil
}
