package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveFile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	f, err := h.storage.SaveFile(ctx, strings.NewReader("hello"), 5, "../../etc/report.txt", "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.Size)
	assert.Equal(t, "application/octet-stream", f.MimeType)
	assert.NotContains(t, f.OriginalName, "/")
	assert.NotContains(t, f.OriginalName, "..")
	assert.WithinDuration(t, f.CreatedAt.Add(24*time.Hour), f.ExpiresAt, time.Second)

	stored, err := afero.ReadFile(h.blobs, f.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(stored))

	got, err := h.storage.GetMetadata(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.OriginalName, got.OriginalName)
}

func TestSaveFile_Rejections(t *testing.T) {
	h := newHarness(t)
	h.storage.opts.AllowedMimeTypes = []string{"text/*"}
	ctx := context.Background()

	_, err := h.storage.SaveFile(ctx, strings.NewReader("x"), 1, "setup.EXE", "text/plain")
	assert.ErrorIs(t, err, common.ErrDangerousExtension)

	_, err = h.storage.SaveFile(ctx, strings.NewReader("x"), 1, "a.pdf", "application/pdf")
	assert.ErrorIs(t, err, common.ErrMimeNotAllowed)

	_, err = h.storage.SaveFile(ctx, strings.NewReader("x"), h.storage.opts.MaxFileSize+1, "a.txt", "text/plain")
	assert.ErrorIs(t, err, common.ErrFileTooLarge)

	big := strings.NewReader(strings.Repeat("a", int(h.storage.opts.MaxFileSize)+1))
	_, err = h.storage.SaveFile(ctx, big, -1, "a.txt", "text/plain")
	assert.ErrorIs(t, err, common.ErrFileTooLarge)

	entries, err := afero.ReadDir(h.blobs, ".")
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not leave bytes behind")
}

func TestSaveFile_ChecksSanitizedName(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, name := range []string{"payload.e..xe", "run.s..h", "x.p..s1", "dir/tool.b..at"} {
		t.Run(name, func(t *testing.T) {
			_, err := h.storage.SaveFile(ctx, strings.NewReader("x"), 1, name, "text/plain")
			assert.ErrorIs(t, err, common.ErrDangerousExtension)
		})
	}

	files, err := h.storage.ListFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	f, err := h.storage.SaveFile(ctx, strings.NewReader("x"), 1, "notes..txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "notestxt", f.OriginalName)
}

func TestGetMetadata_Unknown(t *testing.T) {
	h := newHarness(t)
	_, err := h.storage.GetMetadata(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteFile_CascadesLinks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f := h.upload(t, "a.txt", "abc")
	link, _, err := h.links.CreateLink(ctx, models.UploadSource(f.ID), LinkOptions{})
	require.NoError(t, err)

	require.NoError(t, h.storage.DeleteFile(ctx, f.ID))

	_, err = h.links.GetLink(ctx, link.Token)
	assert.ErrorIs(t, err, common.ErrNotFound)
	exists, err := afero.Exists(h.blobs, f.StorageKey)
	require.NoError(t, err)
	assert.False(t, exists)

	// a second delete finds nothing and still succeeds
	assert.NoError(t, h.storage.DeleteFile(ctx, f.ID))
}

func TestCleanupExpiredFiles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	old := h.upload(t, "old.txt", "old")
	fresh := h.upload(t, "new.txt", "new")
	_, err := h.storage.files.Delete(ctx, fresh.ID)
	require.NoError(t, err)
	fresh.ExpiresAt = time.Now().UTC().Add(72 * time.Hour)
	require.NoError(t, h.storage.files.Create(ctx, fresh))

	h.storage.now = func() time.Time { return time.Now().UTC().Add(48 * time.Hour) }
	n, err := h.storage.CleanupExpiredFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = h.storage.GetMetadata(ctx, old.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = h.storage.GetMetadata(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestHasBytes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f := h.upload(t, "a.txt", "abc")

	ok, err := h.storage.HasBytes(ctx, f)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, h.blobs.Remove(f.StorageKey))
	ok, err = h.storage.HasBytes(ctx, f)
	require.NoError(t, err)
	assert.False(t, ok)
}
