package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ProfilePicsDir is the avatar directory relative to the static root.
const ProfilePicsDir = "profile_pics"

// randomNameBytes yields 16 hex characters.
const randomNameBytes = 8

// AvatarStore turns uploads into bounded thumbnails under dir.
type AvatarStore struct {
	dir         string
	size        int
	defaultFile string
}

func NewAvatarStore(dir string, size int, defaultFile string) *AvatarStore {
	return &AvatarStore{dir: dir, size: size, defaultFile: defaultFile}
}

// Ingest decodes r as an image, fits it into a size x size box keeping the
// aspect ratio (never enlarging) and saves it under a random name that
// keeps the original extension. The client-supplied name is used for the
// extension only.
func (s *AvatarStore) Ingest(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", &UnsupportedImageError{Filename: originalName, Err: err}
	}

	name, err := randomName(ext)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create avatar dir %q: %w", s.dir, err)
	}

	thumb := imaging.Fit(img, s.size, s.size, imaging.Lanczos)
	path := filepath.Join(s.dir, name)
	if err := imaging.Save(thumb, path); err != nil {
		_ = os.Remove(path)
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return "", &UnsupportedImageError{Filename: originalName, Err: err}
		}
		return "", fmt.Errorf("save avatar %q: %w", name, err)
	}
	return name, nil
}

// Remove deletes a stored avatar. The placeholder and missing files are
// not errors.
func (s *AvatarStore) Remove(filename string) error {
	if filename == "" || filename == s.defaultFile {
		return nil
	}
	if filepath.Base(filename) != filename {
		return fmt.Errorf("refusing to remove avatar outside %q: %q", s.dir, filename)
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove avatar %q: %w", filename, err)
	}
	return nil
}

func randomName(ext string) (string, error) {
	b := make([]byte, randomNameBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate avatar name: %w", err)
	}
	return hex.EncodeToString(b) + ext, nil
}
