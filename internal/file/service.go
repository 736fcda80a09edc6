package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/storage"
)

const (
	maxImageDimension = 1600
	thumbnailSize     = 200
)

// UploadInput describes one upload and the checks it must pass.
type UploadInput struct {
	FileHeader   *multipart.FileHeader
	UserID       string
	MaxSizeBytes int64    // 0 means no limit
	AllowedTypes []string // detected MIME types; empty allows all
	ResizeImage  bool     // require an image and store it as JPEG within maxImageDimension
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewService(repo Repository, store storage.Storage, log logrus.FieldLogger) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
		log:     log.WithField("component", "file_service"),
		now:     time.Now,
	}
}

// readLimited reads the upload, failing once it grows past max bytes.
func readLimited(header *multipart.FileHeader, max int64) ([]byte, error) {
	if max > 0 && header.Size > max {
		return nil, ErrFileTooLarge
	}
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	var r io.Reader = src
	if max > 0 {
		r = io.LimitReader(src, max+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if max > 0 && int64(len(data)) > max {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	data, err := readLimited(in.FileHeader, in.MaxSizeBytes)
	if err != nil {
		return nil, err
	}

	// Trust the bytes, not the client's Content-Type header.
	detected := mimetype.Detect(data)
	contentType := detected.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if len(in.AllowedTypes) > 0 && !slices.Contains(in.AllowedTypes, contentType) {
		return nil, ErrUnsupportedType
	}

	filename := filepath.Base(in.FileHeader.Filename)
	ext := detected.Extension()

	if in.ResizeImage {
		resized, err := s.imgProc.Fit(bytes.NewReader(data), maxImageDimension, maxImageDimension)
		if err != nil {
			return nil, ErrNotAnImage
		}
		data = resized.Bytes()
		contentType = "image/jpeg"
		ext = ".jpg"
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
	}

	fileID := uuid.NewString()
	shard := fileID[:2]
	storagePath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		thumb, err := s.imgProc.Thumbnail(bytes.NewReader(data), thumbnailSize, thumbnailSize)
		if err != nil {
			s.log.WithError(err).WithField("file_id", fileID).Warn("thumbnail generation failed")
		} else {
			tPath := fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID)
			if err := s.storage.Save(ctx, tPath, thumb); err != nil {
				s.log.WithError(err).WithField("file_id", fileID).Warn("thumbnail save failed")
			} else {
				thumbnailPath = &tPath
			}
		}
	}

	f := &File{
		ID:            fileID,
		UserID:        in.UserID,
		Filename:      filename,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(data)),
		CreatedAt:     s.now().UTC(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeObjects(ctx, f)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"file_id":      f.ID,
		"user_id":      f.UserID,
		"content_type": f.ContentType,
		"size":         f.Size,
	}).Info("file uploaded")
	return f, nil
}

// removeObjects deletes the stored blobs of f, logging failures.
func (s *service) removeObjects(ctx context.Context, f *File) {
	paths := []string{f.StoragePath}
	if f.ThumbnailPath != nil {
		paths = append(paths, *f.ThumbnailPath)
	}
	for _, p := range paths {
		if err := s.storage.Delete(ctx, p); err != nil {
			s.log.WithError(err).WithField("path", p).Warn("failed to remove stored object")
		}
	}
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeObjects(ctx, f)
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}
	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.storage.Get(ctx, *f.ThumbnailPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}
	return stream, f, nil
}
