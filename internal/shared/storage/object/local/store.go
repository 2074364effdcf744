package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"referral-intake/internal/shared/storage/object"
)

// maxNameAttempts bounds how many timestamps Save tries when a name is taken.
const maxNameAttempts = 50

// Store implements ObjectStore using a flat local directory.
type Store struct {
	baseDir string
	now     func() time.Time
}

// New creates a new local object store rooted at baseDir. The directory is
// created on first upload.
func New(baseDir string) object.ObjectStore {
	return NewWithClock(baseDir, nil)
}

// NewWithClock is New with an injectable clock.
func NewWithClock(baseDir string, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{baseDir: baseDir, now: now}
}

// Save writes the reader to "<unixMillis>-<fileName>" inside the base directory.
// When the name is already taken the timestamp is bumped by one millisecond.
func (s *Store) Save(ctx context.Context, fileName string, r io.Reader) (string, int64, string, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", 0, "", fmt.Errorf("mkdir: %w", err)
	}

	f, finalName, err := s.create(fileName)
	if err != nil {
		return "", 0, "", err
	}
	fullPath := f.Name()
	defer f.Close()

	size, mimeType, err := writeSniffed(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(fullPath)
		return "", 0, "", err
	}
	return finalName, size, mimeType, nil
}

func (s *Store) create(fileName string) (*os.File, string, error) {
	at := s.now()
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name, err := object.StorageName(at, fileName)
		if err != nil {
			return nil, "", err
		}
		f, err := os.OpenFile(filepath.Join(s.baseDir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("open file: %w", err)
		}
		at = at.Add(time.Millisecond)
	}
	return nil, "", fmt.Errorf("open file: no free name for %q", fileName)
}

func writeSniffed(w io.Writer, r io.Reader) (int64, string, error) {
	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return 0, "", fmt.Errorf("read sniff: %w", readErr)
	}

	mimeType := http.DetectContentType(sniff[:n])

	size := int64(0)
	if n > 0 {
		if _, err := w.Write(sniff[:n]); err != nil {
			return 0, "", fmt.Errorf("write sniff: %w", err)
		}
		size += int64(n)
	}

	written, err := io.Copy(w, r)
	if err != nil {
		return 0, "", fmt.Errorf("write body: %w", err)
	}
	return size + written, mimeType, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored object.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return object.ErrNotFound
		}
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// resolve maps a storage key onto the base directory. Keys written by older
// deployments carry the directory name ("uploads/123-cv.pdf"); that prefix is
// accepted and dropped.
func (s *Store) resolve(storageKey string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(storageKey))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) || clean == "." {
		return "", fmt.Errorf("invalid storage key")
	}
	if dir := filepath.Base(s.baseDir); dir != "" && dir != "." {
		clean = strings.TrimPrefix(clean, dir+string(filepath.Separator))
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
