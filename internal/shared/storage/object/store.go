package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"referral-intake/internal/shared/util"
)

// ErrNotFound is returned when a storage key has no backing object.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving uploaded files.
type ObjectStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// StorageName builds the stored file name "<unixMillis>-<originalName>".
func StorageName(at time.Time, fileName string) (string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return strconv.FormatInt(at.UnixMilli(), 10) + "-" + sanitized, nil
}

// OriginalName strips the upload timestamp prefix from a storage key.
func OriginalName(storageKey string) string {
	base := path.Base(strings.ReplaceAll(storageKey, "\\", "/"))
	prefix, rest, ok := strings.Cut(base, "-")
	if ok && prefix != "" && rest != "" && strings.Trim(prefix, "0123456789") == "" {
		return rest
	}
	return base
}
