package handlers

import (
	"fmt"
	"net/http"

	"github.com/rohits-web03/sharelink/internal/utils"
)

const serviceName = "sharelink"

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

type publicConfig struct {
	UploadEnabled         bool     `json:"uploadEnabled"`
	SharedVolumeEnabled   bool     `json:"sharedVolumeEnabled"`
	AuthEnabled           bool     `json:"authEnabled"`
	MaxFileSize           int64    `json:"maxFileSize"`
	ChunkSize             int64    `json:"chunkSize"`
	AllowedMimeTypes      []string `json:"allowedMimeTypes"`
	DefaultExpirationDays int      `json:"defaultExpirationDays"`
	LinkExpirationDays    int      `json:"linkExpirationDays"`
}

// GET /api/v1/config
// PublicConfig godoc
// @Summary Client-facing settings
// @Description Upload limits, the MIME allow-list and feature flags.
// @Tags System
// @Produce json
// @Success 200 {object} utils.Payload "Configuration"
// @Router /api/v1/config [get]
func (h *Handler) PublicConfig(w http.ResponseWriter, r *http.Request) {
	allowed := h.cfg.Storage.AllowedMimeTypes
	if allowed == nil {
		allowed = []string{}
	}
	utils.OK(w, http.StatusOK, "Configuration", publicConfig{
		UploadEnabled:         h.cfg.UploadEnabled,
		SharedVolumeEnabled:   h.shared.Enabled(),
		AuthEnabled:           h.sessions.Enabled(),
		MaxFileSize:           h.cfg.Storage.MaxFileSize,
		ChunkSize:             h.cfg.Storage.ChunkSize,
		AllowedMimeTypes:      allowed,
		DefaultExpirationDays: h.cfg.Retention.DefaultExpirationDays,
		LinkExpirationDays:    h.cfg.Links.DefaultExpirationDays,
	})
}

// GET /api/v1/version
// Version godoc
// @Summary Service version
// @Tags System
// @Produce json
// @Success 200 {object} utils.Payload "Version"
// @Router /api/v1/version [get]
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	utils.OK(w, http.StatusOK, "Version", map[string]string{
		"name":    serviceName,
		"version": h.version,
	})
}
