package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rohits-web03/sharelink/internal/config"
	"github.com/rohits-web03/sharelink/internal/logging"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/repositories"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type harness struct {
	storage   *StorageService
	shared    *SharedVolumeService
	links     *LinkService
	downloads *DownloadService
	audit     *AuditService
	blobs     afero.Fs
	chunks    afero.Fs
	sharedDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := repositories.Open(config.DatabaseConfig{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "test.db"),
	}, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	h := &harness{
		blobs:     afero.NewMemMapFs(),
		chunks:    afero.NewMemMapFs(),
		sharedDir: t.TempDir(),
	}
	h.storage = NewStorageService(
		repositories.NewFileRepository(db),
		repositories.NewLocalBlobStore(h.blobs),
		h.chunks,
		StorageOptions{
			MaxFileSize:     1 << 20,
			MaxChunkBytes:   1100,
			Retention:       24 * time.Hour,
			ChunkSessionTTL: time.Hour,
		},
		logging.Discard(),
	)
	h.shared = NewSharedVolumeService(config.SharedVolumeConfig{
		Enabled:  true,
		Path:     h.sharedDir,
		ReadOnly: true,
		MaxDepth: 3,
	})
	h.links = NewLinkService(repositories.NewLinkRepository(db), h.storage, h.shared, 32, 7*24*time.Hour, logging.Discard())
	h.downloads = NewDownloadService(h.links, h.storage, h.shared, logging.Discard())
	h.audit = NewAuditService(repositories.NewAuditRepository(db), 90*24*time.Hour, logging.Discard())
	return h
}

func (h *harness) upload(t *testing.T, name, body string) *models.File {
	t.Helper()
	f, err := h.storage.SaveFile(context.Background(), strings.NewReader(body), int64(len(body)), name, "text/plain")
	require.NoError(t, err)
	return f
}

func (h *harness) writeShared(t *testing.T, rel, body string) {
	t.Helper()
	p := filepath.Join(h.sharedDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func readAll(t *testing.T, d *Download) string {
	t.Helper()
	defer d.Body.Close()
	var buf bytes.Buffer
	_, err := io.Copy(&buf, d.Body)
	require.NoError(t, err)
	return buf.String()
}

func int64Ptr(v int64) *int64 { return &v }
