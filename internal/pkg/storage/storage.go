package storage

import (
	"context"
	"io"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(apperror.KindNotFound, "stored object not found")
	ErrInvalidPath = apperror.New(apperror.KindInvalidRequest, "invalid storage path")
)

// Storage defines blob operations keyed by a relative slash-separated path.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	// Get returns ErrNotFound when nothing is stored at path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete succeeds when nothing is stored at path.
	Delete(ctx context.Context, path string) error
}
