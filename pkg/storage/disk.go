package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/TinoSanchez/app-achatrevente/pkg/config"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
)

// ImageStore persists uploaded image bytes and returns a retrievable URL.
type ImageStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DiskStore is a disk-backed object store. Files are content-addressed so
// re-uploading the same image yields the same URL.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates the media directory if needed and returns a store.
func NewDiskStore(ctx context.Context, cfg config.MediaConfig, logg *logger.Logger) (*DiskStore, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("media dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media dir: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "media store ready")
	}
	return &DiskStore{
		root:    cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Upload drains r to disk and returns the URL the stored image is served from.
func (s *DiskStore) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.root, "upload-*")
	if err != nil {
		return "", fmt.Errorf("creating upload temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing upload: %w", err)
	}

	name := hex.EncodeToString(hasher.Sum(nil))
	if ext := safeExt(filename); ext != "" {
		name += ext
	}

	target := filepath.Join(s.root, name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("committing upload: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// Root returns the directory served under the media base URL.
func (s *DiskStore) Root() string {
	return s.root
}

// Ping verifies the media directory is writable.
func (s *DiskStore) Ping(ctx context.Context) error {
	probe, err := os.CreateTemp(s.root, "ping-*")
	if err != nil {
		return fmt.Errorf("media dir not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return ext
	default:
		return ""
	}
}
