package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/config"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/repositories"
	"github.com/rohits-web03/sharelink/internal/security"
	"github.com/spf13/afero"
)

const directoryMimeType = "inode/directory"

var sharedMimeTypes = map[string]string{
	".txt":  "text/plain",
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".zip":  "application/zip",
	".json": "application/json",
}

// SharedVolumeService is a read-only view of an operator-provided directory.
// Every call re-validates the path and re-reads the filesystem.
type SharedVolumeService struct {
	enabled  bool
	base     string
	maxDepth int
	fs       afero.Fs
}

func NewSharedVolumeService(cfg config.SharedVolumeConfig) *SharedVolumeService {
	return &SharedVolumeService{
		enabled:  cfg.Enabled,
		base:     cfg.Path,
		maxDepth: cfg.MaxDepth,
		// nothing in this service writes, whatever the read-only flag says
		fs: afero.NewReadOnlyFs(afero.NewOsFs()),
	}
}

func (s *SharedVolumeService) Enabled() bool { return s.enabled && s.base != "" }

// ListFiles returns the visible children of rel, directories first, then by name.
func (s *SharedVolumeService) ListFiles(_ context.Context, rel string) ([]models.SharedEntry, error) {
	abs, rel, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	fi, err := s.fs.Stat(abs)
	if err != nil {
		return nil, statError(err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: not a directory", common.ErrInvalidInput)
	}

	infos, err := afero.ReadDir(s.fs, abs)
	if err != nil {
		return nil, fmt.Errorf("read shared directory: %w", err)
	}
	entries := make([]models.SharedEntry, 0, len(infos))
	for _, info := range infos {
		if strings.HasPrefix(info.Name(), ".") {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			// report the target; links escaping the volume are rejected on access
			if target, err := s.fs.Stat(filepath.Join(abs, info.Name())); err == nil {
				info = target
			}
		}
		entries = append(entries, entryFor(info, path.Join(rel, info.Name())))
	}
	slices.SortFunc(entries, func(a, b models.SharedEntry) int {
		if a.IsDirectory != b.IsDirectory {
			if a.IsDirectory {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}

// GetFileInfo describes the single entry at rel.
func (s *SharedVolumeService) GetFileInfo(_ context.Context, rel string) (*models.SharedEntry, error) {
	abs, rel, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	fi, err := s.fs.Stat(abs)
	if err != nil {
		return nil, statError(err)
	}
	e := entryFor(fi, rel)
	return &e, nil
}

// Open streams length bytes of the file at rel from offset; negative length
// reads to the end.
func (s *SharedVolumeService) Open(_ context.Context, rel string, offset, length int64) (io.ReadCloser, error) {
	abs, _, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(abs)
	if err != nil {
		return nil, statError(err)
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
	return repositories.LimitReadCloser(f, length), nil
}

// resolve checks depth and containment and returns the absolute path plus
// the cleaned slash-separated relative path.
func (s *SharedVolumeService) resolve(rel string) (string, string, error) {
	if !s.Enabled() {
		return "", "", common.ErrNotFound
	}
	if security.RelativeDepth(rel) > s.maxDepth {
		return "", "", common.ErrMaxDepth
	}
	abs, err := security.ValidateSharedPath(s.base, rel)
	if err != nil {
		return "", "", err
	}
	clean := strings.Trim(path.Clean("/"+filepath.ToSlash(rel)), "/")
	return abs, clean, nil
}

func entryFor(fi os.FileInfo, rel string) models.SharedEntry {
	e := models.SharedEntry{
		Name:         fi.Name(),
		RelativePath: rel,
		IsDirectory:  fi.IsDir(),
		ModifiedAt:   fi.ModTime().UTC(),
	}
	if e.IsDirectory {
		e.MimeType = directoryMimeType
	} else {
		e.Size = fi.Size()
		e.MimeType = mimeForName(fi.Name())
	}
	return e
}

func mimeForName(name string) string {
	if m, ok := sharedMimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return m
	}
	return defaultMimeType
}

func statError(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return common.ErrNotFound
	}
	return fmt.Errorf("stat shared path: %w", err)
}
