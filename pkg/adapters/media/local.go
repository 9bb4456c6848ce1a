// Package media holds the file-object stores uploaded images live in.
package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("studio.media")

// LocalStore keeps objects on the local filesystem under Root and serves
// them from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Annotatef(err, "creating media directory %s", root)
	}
	return &LocalStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// resolve maps an object key to a file under Root, refusing keys that escape it.
func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", errors.NotValidf("media path %q", key)
	}
	return filepath.Join(s.Root, clean), nil
}

func (s *LocalStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Annotate(err, "creating media folder")
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Annotatef(err, "writing %s", key)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return errors.Annotatef(err, "writing %s", key)
	}
	return nil
}

func (s *LocalStore) PublicURL(key string) string {
	return s.BaseURL + "/" + strings.TrimPrefix(key, "/")
}

// Remove deletes every key it can; missing files are not an error.
func (s *LocalStore) Remove(_ context.Context, keys []string) error {
	var failed []string
	for _, key := range keys {
		target, err := s.resolve(key)
		if err != nil {
			return err
		}
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			logger.Warningf("removing %s: %v", key, err)
			failed = append(failed, key)
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("could not remove %s", strings.Join(failed, ", "))
	}
	return nil
}

func (s *LocalStore) PathFromURL(url string) (string, bool) {
	return trimBase(s.BaseURL, url)
}

func trimBase(base, url string) (string, bool) {
	if base == "" || !strings.HasPrefix(url, base+"/") {
		return "", false
	}
	key := strings.TrimPrefix(url, base+"/")
	if key == "" {
		return "", false
	}
	return key, true
}
