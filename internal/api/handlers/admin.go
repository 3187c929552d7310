package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/repositories"
	"github.com/rohits-web03/sharelink/internal/services"
	"github.com/rohits-web03/sharelink/internal/utils"
	"github.com/samber/lo"
)

type adminFileView struct {
	ID        string     `json:"id"`
	Name      string     `json:"fileName"`
	Size      int64      `json:"fileSize"`
	MimeType  string     `json:"mimeType"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Links     []linkView `json:"links"`
}

// GET /api/v1/admin/files
// ListFiles godoc
// @Summary List stored files
// @Description Lists every uploaded file, newest first, with its share links.
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.Payload "Files listed"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Router /api/v1/admin/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.storage.ListFiles(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ids := lo.Map(files, func(f models.File, _ int) string { return f.ID })
	byFile, err := h.links.LinksForFiles(r.Context(), ids)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	views := lo.Map(files, func(f models.File, _ int) adminFileView {
		return adminFileView{
			ID:        f.ID,
			Name:      f.OriginalName,
			Size:      f.Size,
			MimeType:  f.MimeType,
			CreatedAt: f.CreatedAt,
			ExpiresAt: f.ExpiresAt,
			Links: lo.Map(byFile[f.ID], func(l models.ShareLink, _ int) linkView {
				return h.viewLink(r, &l, nil)
			}),
		}
	})
	utils.OK(w, http.StatusOK, "Files listed", views)
}

// DELETE /api/v1/admin/files/{id}
// DeleteFile godoc
// @Summary Delete a stored file
// @Description Removes the file bytes, its metadata and every link pointing at it.
// @Tags Admin
// @Produce json
// @Param id path string true "File id"
// @Success 200 {object} utils.Payload "File deleted"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Failure 404 {object} utils.Payload "File not found"
// @Router /api/v1/admin/files/{id} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.storage.GetMetadata(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.storage.DeleteFile(r.Context(), id); err != nil {
		h.audit(r, services.AuditEvent{
			Type: services.EventUpload, Actor: "admin", ResourceType: "file", ResourceID: id, Action: "delete",
			Details: map[string]any{"error": err.Error()},
		})
		h.writeError(w, r, err)
		return
	}
	h.audit(r, services.AuditEvent{
		Type: services.EventUpload, Actor: "admin", ResourceType: "file", ResourceID: id, Action: "delete", Success: true,
	})
	utils.OK(w, http.StatusOK, "File deleted", nil)
}

// GET /api/v1/admin/stats
// Stats godoc
// @Summary Storage and link statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.Payload "Statistics"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Router /api/v1/admin/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	files, err := h.storage.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	links, err := h.links.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Statistics", map[string]any{
		"files": map[string]int64{
			"count": files.Count,
			"bytes": files.Bytes,
		},
		"links": map[string]int64{
			"total":     links.Total,
			"uploads":   links.Uploads,
			"shared":    links.Shared,
			"downloads": links.Downloads,
		},
	})
}

// GET /api/v1/admin/audit
// AuditLogs godoc
// @Summary List audit records
// @Description Returns stored security events, newest first, optionally filtered by event type, client IP or resource.
// @Tags Admin
// @Produce json
// @Param type query string false "Event type (authentication, upload, link_creation, download, browse)"
// @Param ip query string false "Client IP"
// @Param resourceType query string false "Resource type (file, link, session)"
// @Param resourceId query string false "Resource id"
// @Param limit query int false "Maximum records, 100 by default, at most 1000"
// @Success 200 {object} utils.Payload "Audit records"
// @Failure 400 {object} utils.Payload "Invalid limit"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Router /api/v1/admin/audit [get]
func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.AuditFilter{
		EventType:    q.Get("type"),
		IPAddress:    q.Get("ip"),
		ResourceType: q.Get("resourceType"),
		ResourceID:   q.Get("resourceId"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, r, badRequest("Invalid limit"))
			return
		}
		filter.Limit = n
	}
	if h.auditLog == nil {
		utils.OK(w, http.StatusOK, "Audit records", map[string]any{"logs": []models.AuditLog{}})
		return
	}

	logs, err := h.auditLog.Logs(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Audit records", map[string]any{"logs": logs})
}
