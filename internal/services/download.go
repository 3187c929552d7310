package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
)

// ByteRange is an inclusive span of a resource.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 { return r.End - r.Start + 1 }

// ContentRange formats the Content-Range value for a resource of size bytes.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// RangeError reports a range that does not fit a resource of Size bytes.
type RangeError struct {
	Size int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range not satisfiable for size %d", e.Size)
}

func (e *RangeError) Is(target error) bool { return target == common.ErrRangeNotSatisfiable }

// ParseRange interprets a Range header against size. A nil range with a nil
// error means the whole resource should be served: no header, another unit,
// a suffix range, several ranges or a malformed value.
func ParseRange(header string, size int64) (*ByteRange, error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return nil, nil
	}
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok || startStr == "" {
		return nil, nil
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, nil
	}
	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return nil, nil
		}
	}
	if start >= size || end >= size || start > end {
		return nil, &RangeError{Size: size}
	}
	return &ByteRange{Start: start, End: end}, nil
}

// DownloadRequest is what a redeemer supplies besides the token.
type DownloadRequest struct {
	ClientIP string
	Password string
	PIN      string
	Range    string
}

// Download is a counted redemption. Body streams the requested span, or the
// whole resource when no range applies, and must be closed by the caller.
type Download struct {
	Link     *models.ShareLink
	FileName string
	MimeType string
	Size     int64
	Range    *ByteRange
	Body     io.ReadCloser

	open func(ctx context.Context, offset, length int64) (io.ReadCloser, error)
}

func (d *Download) openBody(ctx context.Context) (io.ReadCloser, error) {
	if d.Range == nil {
		return d.open(ctx, 0, -1)
	}
	return d.open(ctx, d.Range.Start, d.Range.Length())
}

// ContentLength is the number of bytes Open will produce.
func (d *Download) ContentLength() int64 {
	if d.Range == nil {
		return d.Size
	}
	return d.Range.Length()
}

// DownloadService turns tokens into byte streams.
type DownloadService struct {
	links   *LinkService
	storage *StorageService
	shared  *SharedVolumeService
	logger  *slog.Logger
}

func NewDownloadService(links *LinkService, storage *StorageService, shared *SharedVolumeService, logger *slog.Logger) *DownloadService {
	return &DownloadService{
		links:   links,
		storage: storage,
		shared:  shared,
		logger:  logger.With("component", "download"),
	}
}

// Resolve validates token for req, opens the bytes and counts the redemption.
// The counter is only advanced once every check has passed and the stream is
// open, so a rejected or unreadable request never consumes a download.
func (s *DownloadService) Resolve(ctx context.Context, token string, req DownloadRequest) (*Download, error) {
	link, err := s.links.GetLink(ctx, token)
	if err != nil {
		return nil, err
	}
	if !s.links.IsValid(link, RequestContext{ClientIP: req.ClientIP}) {
		return nil, common.ErrGone
	}
	if err := s.links.CheckSecrets(link, req.Password, req.PIN); err != nil {
		return nil, err
	}

	d, err := s.source(ctx, link)
	if err != nil {
		return nil, err
	}
	if d.Range, err = ParseRange(req.Range, d.Size); err != nil {
		return nil, err
	}

	body, err := d.openBody(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("download source vanished", "token", link.Token)
		}
		return nil, fmt.Errorf("open download: %w", err)
	}

	ok, err := s.links.Redeem(ctx, link.Token)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("count download: %w", err)
	}
	if !ok {
		body.Close()
		// another request took the last download
		return nil, common.ErrGone
	}
	link.DownloadCount++
	d.Body = body
	return d, nil
}

func (s *DownloadService) source(ctx context.Context, link *models.ShareLink) (*Download, error) {
	src := link.Source()
	switch src.Kind {
	case models.SourceUpload:
		f, err := s.storage.GetMetadata(ctx, src.FileID)
		if err != nil {
			return nil, err
		}
		present, err := s.storage.HasBytes(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("check file bytes: %w", err)
		}
		if !present {
			s.logger.Warn("file bytes missing", "file_id", f.ID)
			return nil, common.ErrNotFound
		}
		return &Download{
			Link:     link,
			FileName: f.OriginalName,
			MimeType: f.MimeType,
			Size:     f.Size,
			open: func(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
				return s.storage.Open(ctx, f, offset, length)
			},
		}, nil

	case models.SourceShared:
		e, err := s.shared.GetFileInfo(ctx, src.Path)
		if err != nil {
			if errors.Is(err, common.ErrPathTraversal) {
				s.logger.Warn("shared link path rejected", "path", src.Path)
				return nil, common.ErrNotFound
			}
			return nil, err
		}
		if e.IsDirectory {
			return nil, common.ErrNotFound
		}
		path := src.Path
		return &Download{
			Link:     link,
			FileName: e.Name,
			MimeType: e.MimeType,
			Size:     e.Size,
			open: func(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
				return s.shared.Open(ctx, path, offset, length)
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown source kind %q", common.ErrInvalidInput, src.Kind)
}
