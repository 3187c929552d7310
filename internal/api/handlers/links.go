package handlers

import (
	"net/http"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/services"
	"github.com/rohits-web03/sharelink/internal/utils"
)

// linkOptionsRequest holds the link constraints shared by both creation routes.
type linkOptionsRequest struct {
	ExpirationDays int      `json:"expirationDays" validate:"omitempty,min=1,max=365"`
	MaxDownloads   int64    `json:"maxDownloads" validate:"omitempty,min=1,max=1000000"`
	Password       string   `json:"password" validate:"omitempty,max=128"`
	Pin            string   `json:"pin" validate:"omitempty,numeric,min=4,max=8"`
	AllowedIPs     []string `json:"allowedIps" validate:"omitempty,max=64,dive,ip|cidr"`
}

func (o linkOptionsRequest) options() services.LinkOptions {
	opts := services.LinkOptions{
		ExpiresIn:  time.Duration(o.ExpirationDays) * 24 * time.Hour,
		Password:   o.Password,
		PIN:        o.Pin,
		AllowedIPs: o.AllowedIPs,
	}
	if o.MaxDownloads > 0 {
		limit := o.MaxDownloads
		opts.MaxDownloads = &limit
	}
	return opts
}

type createLinkRequest struct {
	FileID string `json:"fileId" validate:"required,max=128"`
	linkOptionsRequest
}

// POST /api/v1/links
// CreateLink godoc
// @Summary Create a share link for an uploaded file
// @Description Issues a new token for a stored file with optional expiry, download cap, password, PIN and IP allowlist.
// @Tags Links
// @Accept json
// @Produce json
// @Param body body createLinkRequest true "Link options"
// @Success 201 {object} utils.Payload "Link created"
// @Failure 400 {object} utils.Payload "Invalid input"
// @Failure 404 {object} utils.Payload "File not found"
// @Router /api/v1/links [post]
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.createLink(w, r, models.UploadSource(req.FileID), req.linkOptionsRequest)
}

func (h *Handler) createLink(w http.ResponseWriter, r *http.Request, src models.Source, o linkOptionsRequest) {
	link, target, err := h.links.CreateLink(r.Context(), src, o.options())
	if err != nil {
		h.audit(r, services.AuditEvent{
			Type: services.EventLinkCreation, Actor: "admin", ResourceType: "link", Action: "create",
			Details: map[string]any{"sourceType": src.Kind, "source": src.Ref(), "error": err.Error()},
		})
		h.writeError(w, r, err)
		return
	}
	h.audit(r, services.AuditEvent{
		Type: services.EventLinkCreation, Actor: "admin", ResourceType: "link", ResourceID: link.Token,
		Action: "create", Success: true,
		Details: map[string]any{"sourceType": src.Kind, "source": src.Ref()},
	})
	utils.OK(w, http.StatusCreated, "Link created", h.viewLink(r, link, target))
}

// GET /api/v1/links/{token}
// GetLink godoc
// @Summary Look up a share link
// @Description Returns the link and the metadata of the file behind it.
// @Tags Links
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} utils.Payload "Link found"
// @Failure 404 {object} utils.Payload "Unknown link"
// @Failure 410 {object} utils.Payload "Link expired or download limit reached"
// @Router /api/v1/links/{token} [get]
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetLink(r.Context(), r.PathValue("token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !h.links.IsValid(link, services.RequestContext{ClientIP: clientIP(r)}) {
		h.writeError(w, r, common.ErrGone)
		return
	}
	target, err := h.links.Describe(r.Context(), link.Source())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.OK(w, http.StatusOK, "Link found", h.viewLink(r, link, target))
}
