package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rohits-web03/sharelink/internal/config"
	"github.com/rohits-web03/sharelink/internal/logging"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/ratelimit"
	"github.com/rohits-web03/sharelink/internal/services"
)

const maxJSONBody = 1 << 20

// Deps are the services the HTTP handlers call into.
type Deps struct {
	Config    config.Config
	Storage   *services.StorageService
	Shared    *services.SharedVolumeService
	Links     *services.LinkService
	Downloads *services.DownloadService
	Sessions  *services.SessionManager
	Audit     *services.AuditService
	Logger    *slog.Logger
	Version   string
}

type Handler struct {
	cfg       config.Config
	storage   *services.StorageService
	shared    *services.SharedVolumeService
	links     *services.LinkService
	downloads *services.DownloadService
	sessions  *services.SessionManager
	auditLog  *services.AuditService
	validate  *validator.Validate
	logger    *slog.Logger
	version   string
}

func New(d Deps) *Handler {
	return &Handler{
		cfg:       d.Config,
		storage:   d.Storage,
		shared:    d.Shared,
		links:     d.Links,
		downloads: d.Downloads,
		sessions:  d.Sessions,
		auditLog:  d.Audit,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    d.Logger.With("component", "http"),
		version:   d.Version,
	}
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("Invalid input")
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return badRequest(fmt.Sprintf("Invalid value for %s", verrs[0].Field()))
		}
		return badRequest("Invalid input")
	}
	return nil
}

// linkURL builds the public download URL of token. BASE_URL wins; otherwise
// the URL is derived from the request.
func (h *Handler) linkURL(r *http.Request, token string) string {
	base := strings.TrimRight(h.cfg.BaseURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
			scheme = p
		}
		base = scheme + "://" + r.Host
	}
	return base + "/download/" + token
}

func clientIP(r *http.Request) string {
	return ratelimit.ClientID(r)
}

// audit stamps e with the caller's address and agent and records it.
func (h *Handler) audit(r *http.Request, e services.AuditEvent) {
	e.IP = clientIP(r)
	e.UserAgent = r.UserAgent()
	if h.auditLog == nil {
		logging.Audit(h.logger, e.Type, e.IP, e.ResourceID, e.Success, "action", e.Action)
		return
	}
	h.auditLog.Record(r.Context(), e)
}

// linkView is the client representation of a share link.
type linkView struct {
	Token         string    `json:"token"`
	URL           string    `json:"url"`
	SourceType    string    `json:"sourceType"`
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize,omitempty"`
	MimeType      string    `json:"mimeType,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	DownloadCount int64     `json:"downloadCount"`
	MaxDownloads  *int64    `json:"maxDownloads"`
	HasPassword   bool      `json:"requiresPassword"`
	HasPin        bool      `json:"requiresPin"`
}

func (h *Handler) viewLink(r *http.Request, l *models.ShareLink, t *services.Target) linkView {
	v := linkView{
		Token:         l.Token,
		URL:           h.linkURL(r, l.Token),
		SourceType:    string(l.SourceKind),
		FileName:      l.FileName,
		CreatedAt:     l.CreatedAt,
		ExpiresAt:     l.ExpiresAt,
		DownloadCount: l.DownloadCount,
		MaxDownloads:  l.MaxDownloads,
		HasPassword:   l.HasPassword(),
		HasPin:        l.HasPin(),
	}
	if t != nil {
		v.FileName = t.Name
		v.FileSize = t.Size
		v.MimeType = t.MimeType
	}
	return v
}
