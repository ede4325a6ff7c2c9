package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smallbiznis/livescan/internal/config"
	"github.com/smallbiznis/livescan/internal/clock"
)

// LocalStore writes artifacts to disk. Download links point at the
// app's own file route and carry an expiry the handler enforces.
type LocalStore struct {
	root    string
	baseURL string
	ttl     time.Duration
	clock   clock.Clock
}

func NewLocalStore(cfg config.StorageConfig, clk clock.Clock) (*LocalStore, error) {
	root := cfg.LocalPath
	if root == "" {
		root = "./data"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(cfg.LocalURL, "/"),
		ttl:     ttl,
		clock:   clk,
	}, nil
}

func (s *LocalStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	path := s.diskPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *LocalStore) PresignGet(ctx context.Context, key, fileName string) (string, error) {
	if _, err := os.Stat(s.diskPath(key)); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}

	expires := s.clock.Now().Add(s.ttl).Unix()
	q := url.Values{}
	q.Set("expires", fmt.Sprintf("%d", expires))
	q.Set("filename", fileName)
	return fmt.Sprintf("%s/%s?%s", s.baseURL, urlPath(key), q.Encode()), nil
}

// urlPath escapes each key segment separately so the slashes survive
// and the file route can match the path.
func urlPath(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// DiskPath resolves a key to its on-disk location for the file route.
func (s *LocalStore) DiskPath(key string) string {
	return s.diskPath(key)
}

// Expired reports whether a link's expires parameter is in the past.
func (s *LocalStore) Expired(expiresUnix int64) bool {
	return expiresUnix < s.clock.Now().Unix()
}

func (s *LocalStore) diskPath(key string) string {
	clean := filepath.Clean("/" + key)
	return filepath.Join(s.root, clean)
}
