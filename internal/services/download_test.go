package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		header  string
		size    int64
		want    *ByteRange
		wantErr bool
	}{
		{"", 1000, nil, false},
		{"bytes=0-99", 1000, &ByteRange{0, 99}, false},
		{"bytes=900-999", 1000, &ByteRange{900, 999}, false},
		{"bytes=500-", 1000, &ByteRange{500, 999}, false},
		{"bytes=0-0", 1, &ByteRange{0, 0}, false},
		{"bytes=1000-1005", 1000, nil, true},
		{"bytes=10-1000", 1000, nil, true},
		{"bytes=50-10", 1000, nil, true},
		{"bytes=0-", 0, nil, true},
		{"bytes=-100", 1000, nil, false},
		{"bytes=0-1,5-9", 1000, nil, false},
		{"items=0-9", 1000, nil, false},
		{"bytes=abc-def", 1000, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ParseRange(tt.header, tt.size)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrRangeNotSatisfiable)
				var re *RangeError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, tt.size, re.Size)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByteRange_ContentRange(t *testing.T) {
	r := ByteRange{Start: 0, End: 99}
	assert.Equal(t, int64(100), r.Length())
	assert.Equal(t, "bytes 0-99/1000", r.ContentRange(1000))
}

func TestResolve_MaxDownloadsRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f := h.upload(t, "a.txt", "payload")
	link, _, err := h.links.CreateLink(ctx, models.UploadSource(f.ID), LinkOptions{MaxDownloads: int64Ptr(2)})
	require.NoError(t, err)

	for want := int64(1); want <= 2; want++ {
		d, err := h.downloads.Resolve(ctx, link.Token, DownloadRequest{})
		require.NoError(t, err)
		assert.Equal(t, want, d.Link.DownloadCount)
		assert.Equal(t, "payload", readAll(t, d))
	}

	_, err = h.downloads.Resolve(ctx, link.Token, DownloadRequest{})
	assert.ErrorIs(t, err, common.ErrGone)
}

func TestResolve_Range(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	body := strings.Repeat("0123456789", 100)
	f := h.upload(t, "digits.txt", body)
	link, _, err := h.links.CreateLink(ctx, models.UploadSource(f.ID), LinkOptions{})
	require.NoError(t, err)

	d, err := h.downloads.Resolve(ctx, link.Token, DownloadRequest{Range: "bytes=900-999"})
	require.NoError(t, err)
	require.NotNil(t, d.Range)
	assert.Equal(t, int64(100), d.ContentLength())
	assert.Equal(t, body[900:], readAll(t, d))

	_, err = h.downloads.Resolve(ctx, link.Token, DownloadRequest{Range: "bytes=1000-1005"})
	assert.ErrorIs(t, err, common.ErrRangeNotSatisfiable)

	got, err := h.links.GetLink(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.DownloadCount, "unsatisfiable range must not count")
}

func TestResolve_Failures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.downloads.Resolve(ctx, "missing", DownloadRequest{})
	assert.ErrorIs(t, err, common.ErrNotFound)

	f := h.upload(t, "a.txt", "x")
	locked, _, err := h.links.CreateLink(ctx, models.UploadSource(f.ID), LinkOptions{
		Password:   "pw",
		AllowedIPs: []string{"10.0.0.0/8"},
	})
	require.NoError(t, err)

	_, err = h.downloads.Resolve(ctx, locked.Token, DownloadRequest{ClientIP: "8.8.8.8", Password: "pw"})
	assert.ErrorIs(t, err, common.ErrGone)

	_, err = h.downloads.Resolve(ctx, locked.Token, DownloadRequest{ClientIP: "10.0.0.1"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	d, err := h.downloads.Resolve(ctx, locked.Token, DownloadRequest{ClientIP: "10.0.0.1", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Link.DownloadCount, "failed attempts must not count")

	plain, _, err := h.links.CreateLink(ctx, models.UploadSource(f.ID), LinkOptions{})
	require.NoError(t, err)
	require.NoError(t, h.blobs.Remove(f.StorageKey))
	_, err = h.downloads.Resolve(ctx, plain.Token, DownloadRequest{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResolve_SharedRevalidates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.writeShared(t, "docs/readme.txt", "shared bytes")
	link, _, err := h.links.CreateLink(ctx, models.SharedSource("docs/readme.txt"), LinkOptions{})
	require.NoError(t, err)

	d, err := h.downloads.Resolve(ctx, link.Token, DownloadRequest{Range: "bytes=7-"})
	require.NoError(t, err)
	assert.Equal(t, "readme.txt", d.FileName)
	assert.Equal(t, "text/plain", d.MimeType)
	assert.Equal(t, "bytes", readAll(t, d))

	require.NoError(t, os.Remove(filepath.Join(h.sharedDir, "docs", "readme.txt")))
	_, err = h.downloads.Resolve(ctx, link.Token, DownloadRequest{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

// brokenReads stats fine but cannot open, like a blob removed mid-request.
type brokenReads struct {
	repositories.BlobStore
}

func (brokenReads) Open(context.Context, string, int64, int64) (io.ReadCloser, error) {
	return nil, errors.New("read failed")
}

func TestResolve_UnreadableSourceDoesNotCount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f := h.upload(t, "a.txt", "payload")
	link, _, err := h.links.CreateLink(ctx, models.UploadSource(f.ID), LinkOptions{MaxDownloads: int64Ptr(1)})
	require.NoError(t, err)

	healthy := h.storage.blobs
	h.storage.blobs = brokenReads{BlobStore: healthy}
	_, err = h.downloads.Resolve(ctx, link.Token, DownloadRequest{})
	require.Error(t, err)

	got, err := h.links.GetLink(ctx, link.Token)
	require.NoError(t, err)
	assert.Zero(t, got.DownloadCount)

	h.storage.blobs = healthy
	d, err := h.downloads.Resolve(ctx, link.Token, DownloadRequest{})
	require.NoError(t, err)
	assert.Equal(t, "payload", readAll(t, d))
}

func TestResolve_ConcurrentRedemptionsRespectCap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f := h.upload(t, "a.txt", "payload")
	const limit, callers = 3, 12
	link, _, err := h.links.CreateLink(ctx, models.UploadSource(f.ID), LinkOptions{MaxDownloads: int64Ptr(limit)})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		ok   atomic.Int32
		gone atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := h.downloads.Resolve(ctx, link.Token, DownloadRequest{})
			switch {
			case err == nil:
				d.Body.Close()
				ok.Add(1)
			case errors.Is(err, common.ErrGone):
				gone.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(limit), ok.Load())
	assert.Equal(t, int32(callers-limit), gone.Load())
	got, err := h.links.GetLink(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(limit), got.DownloadCount)
}
