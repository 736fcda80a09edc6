package file

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(apperror.KindNotFound, "file not found")
	ErrNoThumbnail     = apperror.New(apperror.KindNotFound, "thumbnail not available for this file")
	ErrFileTooLarge    = apperror.New(apperror.KindInvalidRequest, "file exceeds the maximum upload size")
	ErrUnsupportedType = apperror.New(apperror.KindInvalidRequest, "file type is not allowed")
	ErrNotAnImage      = apperror.New(apperror.KindInvalidRequest, "file is not a decodable image")
	ErrEmptyFile       = apperror.New(apperror.KindInvalidRequest, "file is empty")
)

// File is the metadata of an uploaded object.
type File struct {
	ID            string
	UserID        string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
