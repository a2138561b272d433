package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Local writes uploads beneath a directory that the HTTP server exposes
// under urlPrefix.
type Local struct {
	dir       string
	urlPrefix string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the root directory uploads are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Save writes body to dir/key and returns urlPrefix/key.
func (l *Local) Save(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, filepath.Clean(l.dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid upload key %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload %s: %w", key, err)
	}
	return l.urlPrefix + "/" + key, nil
}

// ObjectKey returns a new date-partitioned key such as 2026/10/<uuid>.png.
func ObjectKey(now time.Time, ext string) string {
	return fmt.Sprintf("%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
}
