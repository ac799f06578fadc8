package store

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/tagscan/internal/sheet"
)

// ErrConflict is returned when a sheet would replace a different stored sheet.
var ErrConflict = errors.New("a different sheet is already stored under this name")

// ConflictError names the file that is in the way.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string { return e.Path + ": " + ErrConflict.Error() }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Sink writes recognized sheets and their audit images into Dir.
type Sink struct {
	Dir string

	// ImageWidth and JPEGQuality control the audit images.
	ImageWidth  int
	JPEGQuality int
}

// NewSink returns a sink writing into dir, creating it if needed.
func NewSink(dir string, imageWidth, quality int) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Sink{Dir: dir, ImageWidth: imageWidth, JPEGQuality: quality}, nil
}

// Path returns where a file of the given name is stored.
func (s *Sink) Path(filename string) string {
	return filepath.Join(s.Dir, filename)
}

// Exists reports whether a file of the given name is stored.
func (s *Sink) Exists(filename string) bool {
	_, err := os.Stat(s.Path(filename))
	return err == nil
}

// Remove deletes a stored sheet together with its audit images.
func (s *Sink) Remove(filename string) error {
	for _, name := range []string{filename, OriginalScanName(filename), NormalizedScanName(filename)} {
		if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Clear removes everything stored in the sink.
func (s *Sink) Clear() error {
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("failed to clear output directory: %w", err)
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// Store writes sh under filename. Storing the same content twice is a
// no-op; a file holding a different sheet is left alone and a
// *ConflictError is returned. The file is replaced atomically.
func (s *Sink) Store(sh *sheet.Sheet, filename string) (string, error) {
	path := s.Path(filename)
	data := sh.Bytes()

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, data):
		log.WithField("path", path).Debug("sheet already stored")
		return path, nil
	case err == nil:
		return "", &ConflictError{Path: path}
	case !os.IsNotExist(err):
		return "", fmt.Errorf("failed to check %s: %w", path, err)
	}

	if err := writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	}); err != nil {
		return "", err
	}
	log.WithField("path", path).Info("stored sheet")
	return path, nil
}

// StoreImages writes the audit copies of the region a sheet was read from:
// the region as cut from the scan and the normalized sheet, both scaled to
// the configured width.
func (s *Sink) StoreImages(filename string, original, normalized image.Image) error {
	if err := s.storeJPEG(OriginalScanName(filename), original); err != nil {
		return err
	}
	return s.storeJPEG(NormalizedScanName(filename), normalized)
}

func (s *Sink) storeJPEG(name string, img image.Image) error {
	if s.ImageWidth > 0 && img.Bounds().Dx() != s.ImageWidth {
		img = imaging.Resize(img, s.ImageWidth, 0, imaging.Linear)
	}
	quality := s.JPEGQuality
	if quality <= 0 {
		quality = 80
	}
	return writeAtomic(s.Path(name), func(f *os.File) error {
		return imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(quality))
	})
}

// OriginalScanName is the audit image of the unprocessed region.
func OriginalScanName(filename string) string {
	return filename + "_original_scan.jpg"
}

// NormalizedScanName is the audit image of the normalized sheet.
func NormalizedScanName(filename string) string {
	return filename + "_normalized_scan.jpg"
}

// writeAtomic writes a temporary file next to path and renames it into place.
func writeAtomic(path string, write func(*os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
