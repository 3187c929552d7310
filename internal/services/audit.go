package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rohits-web03/sharelink/internal/logging"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/repositories"
)

const (
	EventAuthentication = "authentication"
	EventUpload         = "upload"
	EventLinkCreation   = "link_creation"
	EventDownload       = "download"
	EventBrowse         = "browse"

	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// AuditEvent is what callers report; AuditService stamps and stores it.
type AuditEvent struct {
	Type         string
	Actor        string // admin or public
	IP           string
	UserAgent    string
	ResourceType string // file, link or session
	ResourceID   string
	Action       string // create, read, delete, login or logout
	Success      bool
	Details      map[string]any
}

// AuditService writes audit events to the log stream and to the audit table.
type AuditService struct {
	repo      *repositories.AuditRepository
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuditService(repo *repositories.AuditRepository, retention time.Duration, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:      repo,
		retention: retention,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record logs e and persists it. A storage failure is only logged.
func (s *AuditService) Record(ctx context.Context, e AuditEvent) {
	attrs := []any{"action", e.Action}
	if len(e.Details) > 0 {
		attrs = append(attrs, "details", e.Details)
	}
	logging.Audit(s.logger, e.Type, e.IP, e.ResourceID, e.Success, attrs...)

	status := models.AuditSuccess
	if !e.Success {
		status = models.AuditFailure
	}
	entry := &models.AuditLog{
		CreatedAt:    s.now(),
		EventType:    e.Type,
		Actor:        e.Actor,
		IPAddress:    e.IP,
		UserAgent:    e.UserAgent,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Action:       e.Action,
		Status:       status,
	}
	if len(e.Details) > 0 {
		if b, err := json.Marshal(e.Details); err == nil {
			entry.Details = string(b)
		}
	}
	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("persist audit record failed", "event", e.Type, "error", err)
	}
}

// Logs returns stored events, newest first. The limit defaults to 100 and is
// capped at 1000.
func (s *AuditService) Logs(ctx context.Context, f repositories.AuditFilter) ([]models.AuditLog, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = defaultAuditLimit
	case f.Limit > maxAuditLimit:
		f.Limit = maxAuditLimit
	}
	return s.repo.Find(ctx, f)
}

// CleanupOldLogs drops events older than the retention period.
func (s *AuditService) CleanupOldLogs(ctx context.Context) (int64, error) {
	return s.repo.DeleteBefore(ctx, s.now().Add(-s.retention))
}
