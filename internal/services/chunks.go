package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/security"
	"github.com/rohits-web03/sharelink/internal/utils"
	"github.com/spf13/afero"
)

const assembledName = "assembled"

// chunkSession tracks one chunked upload between its first and last chunk.
type chunkSession struct {
	name      string
	mime      string
	total     int
	received  map[int]int64
	createdAt time.Time
}

// ChunkUpload describes one chunk request.
type ChunkUpload struct {
	FileID   string
	Index    int
	Total    int
	Name     string
	MimeType string
}

type ChunkProgress struct {
	FileID      string `json:"fileId"`
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
	Received    int    `json:"received"`
}

// SaveChunk writes one chunk into the chunk area. Chunk 0 opens the session
// and fixes its name, MIME type and chunk count; later chunks must belong to
// an open session.
func (s *StorageService) SaveChunk(ctx context.Context, up ChunkUpload, r io.Reader) (*ChunkProgress, error) {
	if !utils.IsValidFileID(up.FileID) {
		return nil, fmt.Errorf("%w: malformed file id", common.ErrInvalidInput)
	}
	if up.Total < 1 || up.Index < 0 || up.Index >= up.Total {
		return nil, fmt.Errorf("%w: chunk index out of range", common.ErrInvalidInput)
	}

	if up.Index == 0 {
		up.Name = security.SanitizeFilename(up.Name)
		if err := s.CheckContent(up.Name, up.MimeType); err != nil {
			return nil, err
		}
		exists, err := s.files.Exists(ctx, up.FileID)
		if err != nil {
			return nil, fmt.Errorf("check file id: %w", err)
		}
		if exists {
			return nil, common.ErrConflict
		}
	}

	if err := s.openSession(up); err != nil {
		return nil, err
	}

	n, err := s.writeChunk(ctx, up.FileID, up.Index, r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[up.FileID]
	if !ok {
		// swept while the chunk was being written
		return nil, fmt.Errorf("%w: upload session expired", common.ErrInvalidInput)
	}
	sess.received[up.Index] = n
	return &ChunkProgress{
		FileID:      up.FileID,
		ChunkIndex:  up.Index,
		TotalChunks: sess.total,
		Received:    len(sess.received),
	}, nil
}

func (s *StorageService) openSession(up ChunkUpload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[up.FileID]
	switch {
	case !ok && up.Index == 0:
		s.sessions[up.FileID] = &chunkSession{
			name:      up.Name,
			mime:      up.MimeType,
			total:     up.Total,
			received:  make(map[int]int64),
			createdAt: s.now(),
		}
		return nil
	case !ok:
		return fmt.Errorf("%w: unknown upload session", common.ErrInvalidInput)
	case sess.total != up.Total:
		return fmt.Errorf("%w: total chunk count changed", common.ErrInvalidInput)
	}
	return nil
}

func (s *StorageService) writeChunk(ctx context.Context, id string, index int, r io.Reader) (int64, error) {
	if err := s.chunks.MkdirAll(id, 0o750); err != nil {
		return 0, fmt.Errorf("create chunk area: %w", err)
	}
	final := path.Join(id, strconv.Itoa(index))
	tmp := final + ".part"

	f, err := s.chunks.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("create chunk: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, s.opts.MaxChunkBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = s.chunks.Remove(tmp)
		return 0, fmt.Errorf("write chunk: %w", err)
	}
	if n > s.opts.MaxChunkBytes {
		_ = s.chunks.Remove(tmp)
		return 0, common.ErrFileTooLarge
	}
	if err := s.chunks.Rename(tmp, final); err != nil {
		_ = s.chunks.Remove(tmp)
		return 0, fmt.Errorf("commit chunk: %w", err)
	}
	return n, nil
}

// FinalizeChunkedUpload joins chunks 0..total-1 of id into one stored file
// under the same identifier and removes the chunk area. The name and MIME
// type captured by chunk 0 take precedence over the arguments.
func (s *StorageService) FinalizeChunkedUpload(ctx context.Context, id string, total int, name, mime string) (*models.File, error) {
	if !utils.IsValidFileID(id) || total < 1 {
		return nil, common.ErrInvalidInput
	}
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		name, mime, total = sess.name, sess.mime, sess.total
	}
	s.mu.Unlock()
	if !ok {
		// session lost to a restart: the caller's name has not been checked yet
		name = security.SanitizeFilename(name)
		if err := s.CheckContent(name, mime); err != nil {
			s.discardChunks(id)
			return nil, err
		}
	}

	var size int64
	for i := 0; i < total; i++ {
		fi, err := s.chunks.Stat(path.Join(id, strconv.Itoa(i)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: chunk %d missing", common.ErrIncompleteUpload, i)
			}
			return nil, fmt.Errorf("stat chunk: %w", err)
		}
		size += fi.Size()
	}
	if size > s.opts.MaxFileSize {
		s.discardChunks(id)
		return nil, common.ErrFileTooLarge
	}

	assembled := path.Join(id, assembledName)
	if err := s.concatenate(assembled, id, total); err != nil {
		return nil, err
	}

	in, err := s.chunks.Open(assembled)
	if err != nil {
		return nil, fmt.Errorf("open assembled upload: %w", err)
	}
	n, err := s.blobs.Put(ctx, id, in, size)
	in.Close()
	if err != nil {
		return nil, fmt.Errorf("store assembled upload: %w", err)
	}
	s.discardChunks(id)

	return s.commit(ctx, id, n, name, mime)
}

// concatenate streams the chunks in index order into dst, one chunk at a time.
func (s *StorageService) concatenate(dst, id string, total int) error {
	out, err := s.chunks.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("create assembled upload: %w", err)
	}
	defer out.Close()
	for i := 0; i < total; i++ {
		if err := appendChunk(s.chunks, out, path.Join(id, strconv.Itoa(i))); err != nil {
			return fmt.Errorf("append chunk %d: %w", i, err)
		}
	}
	return out.Close()
}

func appendChunk(fs afero.Fs, out io.Writer, name string) error {
	in, err := fs.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(out, in)
	return err
}

func (s *StorageService) discardChunks(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if err := s.chunks.RemoveAll(id); err != nil {
		s.logger.Error("remove chunk area failed", "file_id", id, "error", err)
	}
}

// CleanupAbandonedChunks removes chunk sessions older than the configured
// TTL. Directories without an in-memory session (left over from a restart)
// are aged by their modification time.
func (s *StorageService) CleanupAbandonedChunks(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.opts.ChunkSessionTTL)

	s.mu.Lock()
	var stale []string
	live := make(map[string]bool, len(s.sessions))
	for id, sess := range s.sessions {
		if sess.createdAt.Before(cutoff) {
			stale = append(stale, id)
			delete(s.sessions, id)
			continue
		}
		live[id] = true
	}
	s.mu.Unlock()

	// stale sessions are still removed when the listing fails
	entries, listErr := afero.ReadDir(s.chunks, ".")
	if errors.Is(listErr, os.ErrNotExist) {
		listErr = nil
	}
	if listErr != nil {
		listErr = fmt.Errorf("list chunk area: %w", listErr)
	}
	seen := make(map[string]bool, len(stale))
	for _, id := range stale {
		seen[id] = true
	}
	for _, e := range entries {
		if !e.IsDir() || live[e.Name()] || seen[e.Name()] {
			continue
		}
		if e.ModTime().Before(cutoff) {
			stale = append(stale, e.Name())
		}
	}

	removed := 0
	for _, id := range stale {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.chunks.RemoveAll(id); err != nil {
			s.logger.Error("remove abandoned chunks failed", "file_id", id, "error", err)
			continue
		}
		removed++
	}
	return removed, listErr
}
