package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/spf13/afero"
)

// BlobStore holds upload bytes keyed by file id.
type BlobStore interface {
	// Put stores r under key and returns the number of bytes written.
	// size is the expected length, or -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64) (int64, error)
	// Open streams length bytes starting at offset; a negative length reads to the end.
	Open(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error)
	// Stat returns the stored size or common.ErrNotFound.
	Stat(ctx context.Context, key string) (int64, error)
	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// LocalBlobStore keeps blobs as files at the root of an afero filesystem,
// normally a base-path view of STORAGE_PATH.
type LocalBlobStore struct {
	fs afero.Fs
}

func NewLocalBlobStore(fs afero.Fs) *LocalBlobStore {
	return &LocalBlobStore{fs: fs}
}

func (s *LocalBlobStore) Put(ctx context.Context, key string, r io.Reader, _ int64) (int64, error) {
	tmp := key + ".part"
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("create blob: %w", err)
	}
	n, err := io.Copy(f, contextReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return n, fmt.Errorf("write blob: %w", err)
	}
	if err := s.fs.Rename(tmp, key); err != nil {
		_ = s.fs.Remove(tmp)
		return n, fmt.Errorf("commit blob: %w", err)
	}
	return n, nil
}

func (s *LocalBlobStore) Open(_ context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	f, err := s.fs.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
	}
	if length < 0 {
		return f, nil
	}
	return LimitReadCloser(f, length), nil
}

func (s *LocalBlobStore) Stat(_ context.Context, key string) (int64, error) {
	fi, err := s.fs.Stat(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, common.ErrNotFound
		}
		return 0, err
	}
	return fi.Size(), nil
}

func (s *LocalBlobStore) Delete(_ context.Context, key string) error {
	err := s.fs.Remove(key)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LimitReadCloser reads at most n bytes from rc and closes rc when closed.
func LimitReadCloser(rc io.ReadCloser, n int64) io.ReadCloser {
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(rc, n), rc}
}

// contextReader stops a long copy once the request is gone.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
