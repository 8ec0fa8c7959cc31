package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const thumbnailWidth = 320

// LocalStore writes blobs under dir and serves them under baseURL
// (mounted as a static file route).
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	s.writeThumbnail(path, data)
	return s.baseURL + "/" + key, nil
}

// writeThumbnail renders a small preview next to the original. Non-image
// payloads and unsupported formats are skipped silently.
func (s *LocalStore) writeThumbnail(path string, data []byte) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}
	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath(path)); err != nil {
		log.Printf("storage: thumbnail for %s: %v", path, err)
	}
}

func thumbPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_thumb" + ext
}

func (s *LocalStore) Delete(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil {
		return err
	}
	os.Remove(thumbPath(path))
	return nil
}

func (s *LocalStore) keyFromURL(fileURL string) (string, error) {
	decoded, err := url.QueryUnescape(fileURL)
	if err != nil {
		decoded = fileURL
	}
	if !strings.HasPrefix(decoded, s.baseURL+"/") {
		return "", fmt.Errorf("url %q is not under %q", fileURL, s.baseURL)
	}
	return strings.TrimPrefix(decoded, s.baseURL+"/"), nil
}
