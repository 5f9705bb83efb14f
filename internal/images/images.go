// Package images finds and decodes the still images of a source directory.
package images

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/smazurov/imgtowebm/internal/logging"
)

// Extensions are matched case-sensitively.
var Extensions = []string{".jpg", ".jpeg", ".png"}

// IsImage reports whether name has one of the recognized Extensions.
func IsImage(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// List returns the paths of the recognized images in dir, sorted by file name.
// An unreadable directory yields the *fs.PathError from os.ReadDir unchanged.
// A directory without images yields an empty slice and no error.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// Decode opens and decodes a single image file.
func Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Load decodes every image found by List, in order.
func Load(dir string, logger logging.Logger) ([]image.Image, error) {
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}

	out := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, decErr := Decode(p)
		if decErr != nil {
			return nil, decErr
		}
		if logger != nil {
			logger.Debug("Added image", "path", p)
		}
		out = append(out, img)
	}
	return out, nil
}
