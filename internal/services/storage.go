package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/repositories"
	"github.com/rohits-web03/sharelink/internal/security"
	"github.com/rohits-web03/sharelink/internal/utils"
	"github.com/spf13/afero"
)

const defaultMimeType = "application/octet-stream"

type StorageOptions struct {
	MaxFileSize     int64
	MaxChunkBytes   int64
	Retention       time.Duration
	ChunkSessionTTL time.Duration

	// empty allows every type
	AllowedMimeTypes []string
}

// StorageService owns uploaded bytes and their metadata. Bytes live in a
// BlobStore, metadata in the files table and in-progress chunked uploads in
// a local chunk area.
type StorageService struct {
	files  *repositories.FileRepository
	blobs  repositories.BlobStore
	chunks afero.Fs
	opts   StorageOptions
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*chunkSession
}

func NewStorageService(files *repositories.FileRepository, blobs repositories.BlobStore, chunks afero.Fs, opts StorageOptions, logger *slog.Logger) *StorageService {
	return &StorageService{
		files:    files,
		blobs:    blobs,
		chunks:   chunks,
		opts:     opts,
		logger:   logger.With("component", "storage"),
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*chunkSession),
	}
}

// SaveFile stores the bytes of r under a fresh identifier and records the
// metadata. size is the declared length or -1 when unknown. The name is
// sanitized before the content checks so that they see the stored name.
func (s *StorageService) SaveFile(ctx context.Context, r io.Reader, size int64, originalName, mime string) (*models.File, error) {
	name := security.SanitizeFilename(originalName)
	if err := s.CheckContent(name, mime); err != nil {
		return nil, err
	}
	if size > s.opts.MaxFileSize {
		return nil, common.ErrFileTooLarge
	}
	if size < 0 {
		r = io.LimitReader(r, s.opts.MaxFileSize+1)
	}

	id := utils.NewFileID()
	n, err := s.blobs.Put(ctx, id, r, size)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if n > s.opts.MaxFileSize {
		s.removeBlob(ctx, id)
		return nil, common.ErrFileTooLarge
	}
	return s.commit(ctx, id, n, name, mime)
}

// CheckContent rejects names with an executable extension and MIME types
// outside the allow list.
func (s *StorageService) CheckContent(name, mime string) error {
	if security.IsDangerousExtension(name) {
		return common.ErrDangerousExtension
	}
	if mime == "" {
		mime = defaultMimeType
	}
	if !security.IsAllowedMimeType(mime, s.opts.AllowedMimeTypes) {
		return fmt.Errorf("%w: %s", common.ErrMimeNotAllowed, mime)
	}
	return nil
}

// commit writes the metadata row for a blob already stored under id. name
// must already be sanitized.
func (s *StorageService) commit(ctx context.Context, id string, size int64, name, mime string) (*models.File, error) {
	if mime == "" {
		mime = defaultMimeType
	}
	now := s.now()
	f := &models.File{
		ID:           id,
		OriginalName: name,
		Size:         size,
		MimeType:     mime,
		StorageKey:   id,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.opts.Retention),
	}
	if err := s.files.Create(ctx, f); err != nil {
		s.removeBlob(ctx, id)
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("save metadata: %w", err)
	}
	s.logger.Info("file stored", "file_id", id, "size", size, "mime", mime)
	return f, nil
}

// GetMetadata returns the record for id. Any read failure is reported as
// common.ErrNotFound.
func (s *StorageService) GetMetadata(ctx context.Context, id string) (*models.File, error) {
	f, err := s.files.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("metadata read failed", "file_id", id, "error", err)
		}
		return nil, common.ErrNotFound
	}
	return f, nil
}

// HasBytes reports whether the blob behind f is still present.
func (s *StorageService) HasBytes(ctx context.Context, f *models.File) (bool, error) {
	_, err := s.blobs.Stat(ctx, f.StorageKey)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Open streams length bytes of f from offset; negative length reads to the end.
func (s *StorageService) Open(ctx context.Context, f *models.File, offset, length int64) (io.ReadCloser, error) {
	return s.blobs.Open(ctx, f.StorageKey, offset, length)
}

func (s *StorageService) ListFiles(ctx context.Context) ([]models.File, error) {
	return s.files.List(ctx)
}

func (s *StorageService) Stats(ctx context.Context) (repositories.FileStats, error) {
	return s.files.Stats(ctx)
}

// DeleteFile removes the bytes and the metadata of id, together with the
// links pointing at it. Either half may already be gone. A failure in one
// half is logged and does not stop the other.
func (s *StorageService) DeleteFile(ctx context.Context, id string) error {
	key := id
	if f, err := s.files.Get(ctx, id); err == nil {
		key = f.StorageKey
	}

	var errs []error
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Error("delete file bytes failed", "file_id", id, "error", err)
		errs = append(errs, err)
	}
	if _, err := s.files.Delete(ctx, id); err != nil {
		s.logger.Error("delete file metadata failed", "file_id", id, "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CleanupExpiredFiles deletes every file whose expiry has passed and
// returns how many were removed.
func (s *StorageService) CleanupExpiredFiles(ctx context.Context) (int, error) {
	expired, err := s.files.ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list expired files: %w", err)
	}
	deleted := 0
	for _, f := range expired {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := s.DeleteFile(ctx, f.ID); err != nil {
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (s *StorageService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Error("remove orphaned blob failed", "key", key, "error", err)
	}
}
