// Package images stores uploaded recipe images under the media root and
// derives BlurHash placeholders for them.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/recipeapp/recipe-server/internal/id"
)

// ErrUnsupportedFormat is returned when upload data does not decode as a known image format.
var ErrUnsupportedFormat = errors.New("not a supported image")

// ErrImageTooLarge is returned when an image header exceeds MaxDimension or MaxPixels.
var ErrImageTooLarge = errors.New("image dimensions exceed limits")

// extensions maps image.DecodeConfig format names to stored file extensions.
var extensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// Storage manages image files below a media root.
// Thread-safe for concurrent operations.
type Storage struct {
	root   string
	subdir string       // slash-separated, relative to root
	mu     sync.RWMutex // Protects file operations
}

// NewStorageWithSubdir creates a Storage writing to {root}/{subdir}/.
// Example: NewStorageWithSubdir("/data/media", "uploads/recipe").
func NewStorageWithSubdir(root, subdir string) (*Storage, error) {
	if root == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	subdir = path.Clean(filepath.ToSlash(subdir))
	if !filepath.IsLocal(subdir) {
		return nil, fmt.Errorf("subdirectory must be relative: %s", subdir)
	}

	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(subdir)), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{root: root, subdir: subdir}, nil
}

// Root returns the media root directory.
func (s *Storage) Root() string {
	return s.root
}

// Size limits, checked against the header before a full decode.
const (
	MaxDimension = 12000
	MaxPixels    = 40_000_000
)

// DetectFormat returns the stored extension for data. Only the header is
// decoded; images over MaxDimension or MaxPixels give ErrImageTooLarge.
func DetectFormat(data []byte) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrUnsupportedFormat
	}
	ext, ok := extensions[format]
	if !ok || cfg.Width <= 0 || cfg.Height <= 0 {
		return "", ErrUnsupportedFormat
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension || cfg.Width*cfg.Height > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return ext, nil
}

// Decode validates data with DetectFormat and then decodes it fully, so
// truncated or corrupt bodies behind a valid header are rejected.
func Decode(data []byte) (image.Image, string, error) {
	ext, err := DetectFormat(data)
	if err != nil {
		return nil, "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return img, ext, nil
}

// Save decodes data, writes it under a fresh UUID file name and returns its
// path relative to the media root, e.g. "uploads/recipe/0b6c….png", along
// with the decoded image.
func (s *Storage) Save(data []byte) (string, image.Image, error) {
	if len(data) == 0 {
		return "", nil, fmt.Errorf("image data cannot be empty")
	}

	img, ext, err := Decode(data)
	if err != nil {
		return "", nil, err
	}

	rel := path.Join(s.subdir, id.FileName(ext))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(rel), data, 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write image file: %w", err)
	}

	return rel, img, nil
}

// Exists checks if a stored image exists.
func (s *Storage) Exists(rel string) bool {
	if rel == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(rel))
	return err == nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *Storage) Delete(rel string) error {
	if rel == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return fmt.Errorf("image path escapes media root: %s", rel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(rel)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete image file: %w", err)
	}

	return nil
}

// Path returns the filesystem path for a root-relative image path.
func (s *Storage) Path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}
