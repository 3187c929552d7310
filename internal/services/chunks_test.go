package services

import (
	"context"
	"crypto/sha256"
	"strings"
	"testing"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chunkFileID = "upload-0001"

func sendChunks(t *testing.T, h *harness, id string, parts []string, order []int) {
	t.Helper()
	for _, i := range order {
		_, err := h.storage.SaveChunk(context.Background(), ChunkUpload{
			FileID:   id,
			Index:    i,
			Total:    len(parts),
			Name:     "video.txt",
			MimeType: "text/plain",
		}, strings.NewReader(parts[i]))
		require.NoError(t, err, "chunk %d", i)
	}
}

func TestChunkedUpload_Reassembles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	parts := []string{strings.Repeat("a", 1000), strings.Repeat("b", 1000), "tail"}
	whole := strings.Join(parts, "")

	// chunk 0 opens the session, the rest may arrive in any order
	sendChunks(t, h, chunkFileID, parts, []int{0, 2, 1})

	f, err := h.storage.FinalizeChunkedUpload(ctx, chunkFileID, len(parts), "ignored.bin", "")
	require.NoError(t, err)
	assert.Equal(t, chunkFileID, f.ID)
	assert.Equal(t, "video.txt", f.OriginalName)
	assert.Equal(t, "text/plain", f.MimeType)
	assert.Equal(t, int64(len(whole)), f.Size)

	stored, err := afero.ReadFile(h.blobs, f.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256([]byte(whole)), sha256.Sum256(stored))

	exists, err := afero.DirExists(h.chunks, chunkFileID)
	require.NoError(t, err)
	assert.False(t, exists, "chunk area must be removed after finalize")
}

func TestChunkedUpload_MissingChunk(t *testing.T) {
	h := newHarness(t)
	sendChunks(t, h, chunkFileID, []string{"a", "b", "c"}, []int{0, 2})

	_, err := h.storage.FinalizeChunkedUpload(context.Background(), chunkFileID, 3, "x.txt", "text/plain")
	assert.ErrorIs(t, err, common.ErrIncompleteUpload)
}

func TestSaveChunk_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		up   ChunkUpload
		body string
		want error
	}{
		{"bad id", ChunkUpload{FileID: "../etc", Index: 0, Total: 1, Name: "a.txt"}, "x", common.ErrInvalidInput},
		{"index past total", ChunkUpload{FileID: chunkFileID, Index: 2, Total: 2, Name: "a.txt"}, "x", common.ErrInvalidInput},
		{"no session", ChunkUpload{FileID: chunkFileID, Index: 1, Total: 2, Name: "a.txt"}, "x", common.ErrInvalidInput},
		{"dangerous name", ChunkUpload{FileID: chunkFileID, Index: 0, Total: 2, Name: "run.sh"}, "x", common.ErrDangerousExtension},
		{"dangerous name split by dots", ChunkUpload{FileID: chunkFileID, Index: 0, Total: 2, Name: "payload.e..xe"}, "x", common.ErrDangerousExtension},
		{"script split by dots", ChunkUpload{FileID: chunkFileID, Index: 0, Total: 2, Name: "run.s..h"}, "x", common.ErrDangerousExtension},
		{"oversized chunk", ChunkUpload{FileID: chunkFileID, Index: 0, Total: 2, Name: "a.txt"}, strings.Repeat("z", 1101), common.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.storage.SaveChunk(ctx, tt.up, strings.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFinalize_WithoutSessionChecksName(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sendChunks(t, h, chunkFileID, []string{"a", "b"}, []int{0, 1})

	// as after a restart
	h.storage.mu.Lock()
	delete(h.storage.sessions, chunkFileID)
	h.storage.mu.Unlock()

	_, err := h.storage.FinalizeChunkedUpload(ctx, chunkFileID, 2, "payload.e..xe", "text/plain")
	assert.ErrorIs(t, err, common.ErrDangerousExtension)
	_, err = h.storage.GetMetadata(ctx, chunkFileID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveChunk_ExistingFileID(t *testing.T) {
	h := newHarness(t)
	f := h.upload(t, "a.txt", "abc")

	_, err := h.storage.SaveChunk(context.Background(), ChunkUpload{
		FileID: f.ID, Index: 0, Total: 1, Name: "b.txt",
	}, strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestFinalize_TooLarge(t *testing.T) {
	h := newHarness(t)
	h.storage.opts.MaxFileSize = 5
	sendChunks(t, h, chunkFileID, []string{"abc", "def"}, []int{0, 1})

	_, err := h.storage.FinalizeChunkedUpload(context.Background(), chunkFileID, 2, "a.txt", "text/plain")
	assert.ErrorIs(t, err, common.ErrFileTooLarge)

	exists, err := afero.DirExists(h.chunks, chunkFileID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCleanupAbandonedChunks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sendChunks(t, h, chunkFileID, []string{"a", "b"}, []int{0})

	n, err := h.storage.CleanupAbandonedChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.storage.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	n, err = h.storage.CleanupAbandonedChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	exists, err := afero.DirExists(h.chunks, chunkFileID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = h.storage.SaveChunk(ctx, ChunkUpload{FileID: chunkFileID, Index: 1, Total: 2, Name: "a.txt"}, strings.NewReader("b"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
