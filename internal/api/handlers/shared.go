package handlers

import (
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/services"
	"github.com/rohits-web03/sharelink/internal/utils"
)

type browseResponse struct {
	Path    string               `json:"path"`
	Parent  *string              `json:"parent"`
	Entries []models.SharedEntry `json:"entries"`
}

// GET /api/v1/shared/browse
// BrowseShared godoc
// @Summary List a shared directory
// @Description Lists the visible entries of a directory in the shared volume, directories first.
// @Tags Shared
// @Produce json
// @Param path query string false "Relative directory, root when empty"
// @Success 200 {object} utils.Payload "Directory listed"
// @Failure 400 {object} utils.Payload "Invalid path"
// @Failure 404 {object} utils.Payload "Not found or shared volume disabled"
// @Router /api/v1/shared/browse [get]
func (h *Handler) BrowseShared(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	entries, err := h.shared.ListFiles(r.Context(), rel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	clean := strings.Trim(path.Clean("/"+rel), "/")
	resp := browseResponse{Path: clean, Entries: entries}
	if clean != "" {
		parent := strings.Trim(path.Dir("/"+clean), "/")
		resp.Parent = &parent
	}
	h.audit(r, services.AuditEvent{
		Type: services.EventBrowse, Actor: "admin", Action: "read", Success: true,
		Details: map[string]any{"path": clean},
	})
	utils.OK(w, http.StatusOK, "Directory listed", resp)
}

type sharedLinkRequest struct {
	RelativePath string `json:"relativePath" validate:"required,max=4096"`
	linkOptionsRequest
}

// POST /api/v1/shared/link
// CreateSharedLink godoc
// @Summary Create a share link for a shared file
// @Description Issues a new token for a file in the shared volume. Existing links for the same path stay valid.
// @Tags Shared
// @Accept json
// @Produce json
// @Param body body sharedLinkRequest true "Path and link options"
// @Success 201 {object} utils.Payload "Link created"
// @Failure 400 {object} utils.Payload "Invalid path or a directory"
// @Failure 404 {object} utils.Payload "Not found or shared volume disabled"
// @Router /api/v1/shared/link [post]
func (h *Handler) CreateSharedLink(w http.ResponseWriter, r *http.Request) {
	var req sharedLinkRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.createLink(w, r, models.SharedSource(req.RelativePath), req.linkOptionsRequest)
}

type checkLinkResponse struct {
	HasLink bool           `json:"hasLink"`
	Valid   bool           `json:"valid,omitempty"`
	Link    *checkLinkView `json:"link,omitempty"`
}

type checkLinkView struct {
	Token         string    `json:"token"`
	URL           string    `json:"url"`
	ExpiresAt     time.Time `json:"expiresAt"`
	DownloadCount int64     `json:"downloadCount"`
	MaxDownloads  *int64    `json:"maxDownloads"`
}

// GET /api/v1/shared/check-link
// CheckSharedLink godoc
// @Summary Find the current link of a shared file
// @Description Returns the most recently created link for the path and whether it is still valid.
// @Tags Shared
// @Produce json
// @Param path query string true "Relative file path"
// @Success 200 {object} utils.Payload "Link status"
// @Failure 400 {object} utils.Payload "Invalid path"
// @Router /api/v1/shared/check-link [get]
func (h *Handler) CheckSharedLink(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		h.writeError(w, r, badRequest("Missing path"))
		return
	}
	if _, err := h.shared.GetFileInfo(r.Context(), rel); err != nil {
		h.writeError(w, r, err)
		return
	}

	link, err := h.links.CurrentLink(r.Context(), models.SharedSource(rel))
	if errors.Is(err, common.ErrNotFound) {
		utils.OK(w, http.StatusOK, "No link", checkLinkResponse{})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Link found", checkLinkResponse{
		HasLink: true,
		Valid:   h.links.IsValid(link, services.RequestContext{ClientIP: clientIP(r)}),
		Link: &checkLinkView{
			Token:         link.Token,
			URL:           h.linkURL(r, link.Token),
			ExpiresAt:     link.ExpiresAt,
			DownloadCount: link.DownloadCount,
			MaxDownloads:  link.MaxDownloads,
		},
	})
}
