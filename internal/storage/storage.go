package storage

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded binaries under caller-chosen filenames.
type Storage interface {
	Save(ctx context.Context, filename string, content io.Reader, contentType string) error
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
	Delete(ctx context.Context, filename string) error
}

var safeExtension = regexp.MustCompile(`^\.[a-zA-Z0-9]{1,8}$`)

// NewFilename generates a unique storage filename, keeping the original
// extension when it looks safe.
func NewFilename(original string) string {
	name := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(original))
	if safeExtension.MatchString(ext) {
		name += ext
	}
	return name
}
