package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/pkg/filesystem"
	"github.com/doeshing/cmdverify/internal/ports"
)

// Watermark is the plain-text last validated commit.
type Watermark struct {
	path string
}

// NewWatermark returns the watermark stored in cacheDir.
func NewWatermark(cacheDir string) *Watermark {
	return &Watermark{path: filepath.Join(cacheDir, domain.WatermarkFile)}
}

// Read returns the recorded commit, or "" when none has been recorded.
func (w *Watermark) Read() (string, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Write records commit atomically.
func (w *Watermark) Write(commit string) error {
	return filesystem.WriteFileAtomic(w.path, []byte(commit+"\n"), domain.FilePermissions)
}

// Remove deletes the watermark.
func (w *Watermark) Remove() error {
	if err := os.Remove(w.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the watermark file location.
func (w *Watermark) Path() string {
	return w.path
}

var _ ports.WatermarkStore = (*Watermark)(nil)
