package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/logging"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetentionSweeper_RunOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	f := h.upload(t, "a.txt", "x")
	_, _, err := h.links.CreateLink(ctx, models.UploadSource(f.ID), LinkOptions{ExpiresIn: time.Minute})
	require.NoError(t, err)
	h.writeShared(t, "s.txt", "y")
	_, _, err = h.links.CreateLink(ctx, models.SharedSource("s.txt"), LinkOptions{ExpiresIn: time.Minute})
	require.NoError(t, err)
	_, err = h.storage.SaveChunk(ctx, ChunkUpload{FileID: chunkFileID, Index: 0, Total: 2, Name: "c.txt"}, strings.NewReader("c"))
	require.NoError(t, err)

	later := func() time.Time { return time.Now().UTC().Add(48 * time.Hour) }
	h.storage.now = later
	h.links.now = later

	sweeper := NewRetentionSweeper(h.storage, h.links, h.audit, time.Hour, logging.Discard())
	rep, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Files)
	assert.Equal(t, 1, rep.Chunks)
	// the upload link may already be gone with its file
	assert.GreaterOrEqual(t, rep.Links, int64(1))

	_, err = h.storage.GetMetadata(ctx, f.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	stats, err := h.links.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)

	rep, err = sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{}, rep)
}

func TestRetentionSweeper_RejectsBadInterval(t *testing.T) {
	h := newHarness(t)
	sweeper := NewRetentionSweeper(h.storage, h.links, h.audit, 0, logging.Discard())
	assert.Error(t, sweeper.Start(context.Background()))
}

func TestRetentionSweeper_RunStopsWithContext(t *testing.T) {
	h := newHarness(t)
	sweeper := NewRetentionSweeper(h.storage, h.links, h.audit, time.Hour, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

// unreadableFs fails every open, so the chunk area cannot be listed.
type unreadableFs struct {
	afero.Fs
}

func (unreadableFs) Open(string) (afero.File, error) {
	return nil, errors.New("chunk area unreadable")
}

func TestRetentionSweeper_PhaseFailureDoesNotStopOthers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f := h.upload(t, fmt.Sprintf("f%d.txt", i), "x")
		_, _, err := h.links.CreateLink(ctx, models.UploadSource(f.ID), LinkOptions{ExpiresIn: time.Minute})
		require.NoError(t, err)
	}
	h.writeShared(t, "s.txt", "y")
	_, _, err := h.links.CreateLink(ctx, models.SharedSource("s.txt"), LinkOptions{ExpiresIn: time.Minute})
	require.NoError(t, err)

	h.storage.chunks = unreadableFs{Fs: h.chunks}
	later := func() time.Time { return time.Now().UTC().Add(48 * time.Hour) }
	h.storage.now = later
	h.links.now = later

	sweeper := NewRetentionSweeper(h.storage, h.links, nil, time.Hour, logging.Discard())
	rep, err := sweeper.RunOnce(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abandoned chunks")
	assert.Equal(t, 5, rep.Files)
	assert.GreaterOrEqual(t, rep.Links, int64(1))

	files, err := h.storage.ListFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
	stats, err := h.links.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestRetentionSweeper_AuditPhase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.audit.Record(ctx, AuditEvent{Type: EventDownload, Actor: "public", Action: "read", Success: true})
	h.audit.now = func() time.Time { return time.Now().UTC().Add(100 * 24 * time.Hour) }

	sweeper := NewRetentionSweeper(h.storage, h.links, h.audit, time.Hour, logging.Discard())
	rep, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.AuditLogs)
}
