package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
	"github.com/rohits-web03/sharelink/internal/repositories"
	"github.com/rohits-web03/sharelink/internal/security"
	"github.com/rohits-web03/sharelink/internal/utils"
	"github.com/samber/lo"
)

const tokenAttempts = 3

// LinkOptions are the optional constraints of a new link.
type LinkOptions struct {
	ExpiresIn    time.Duration // zero means the configured default
	MaxDownloads *int64        // nil or non-positive means unlimited
	Password     string
	PIN          string
	AllowedIPs   []string
}

// Target describes the bytes behind a link.
type Target struct {
	Name     string `json:"fileName"`
	Size     int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
}

// RequestContext carries what link validity depends on besides the link itself.
type RequestContext struct {
	ClientIP string
	Now      time.Time
}

// LinkService creates, validates and redeems share links.
type LinkService struct {
	links         *repositories.LinkRepository
	storage       *StorageService
	shared        *SharedVolumeService
	tokenLength   int
	defaultExpiry time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

func NewLinkService(links *repositories.LinkRepository, storage *StorageService, shared *SharedVolumeService, tokenLength int, defaultExpiry time.Duration, logger *slog.Logger) *LinkService {
	return &LinkService{
		links:         links,
		storage:       storage,
		shared:        shared,
		tokenLength:   tokenLength,
		defaultExpiry: defaultExpiry,
		logger:        logger.With("component", "links"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateLink issues a new token for src after checking that the source
// exists. Shared directories cannot be linked.
func (s *LinkService) CreateLink(ctx context.Context, src models.Source, opts LinkOptions) (*models.ShareLink, *Target, error) {
	target, err := s.Describe(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	src = canonicalSource(src)

	link := &models.ShareLink{
		SourceKind: src.Kind,
		SourceRef:  src.Ref(),
		FileName:   target.Name,
	}
	if err := applyOptions(link, opts); err != nil {
		return nil, nil, err
	}

	expiresIn := opts.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = s.defaultExpiry
	}

	for attempt := 1; ; attempt++ {
		token, err := utils.GenerateSecureToken(s.tokenLength)
		if err != nil {
			return nil, nil, fmt.Errorf("generate token: %w", err)
		}
		now := s.now()
		link.Token = token
		link.CreatedAt = now
		link.ExpiresAt = now.Add(expiresIn)
		err = s.links.Create(ctx, link)
		if err == nil {
			break
		}
		if !errors.Is(err, common.ErrConflict) || attempt == tokenAttempts {
			return nil, nil, fmt.Errorf("create link: %w", err)
		}
		link.ID = 0
	}

	s.logger.Info("link created", "source_kind", src.Kind, "expires_at", link.ExpiresAt)
	return link, target, nil
}

func applyOptions(link *models.ShareLink, opts LinkOptions) error {
	if opts.MaxDownloads != nil && *opts.MaxDownloads > 0 {
		limit := *opts.MaxDownloads
		link.MaxDownloads = &limit
	}
	if opts.Password != "" {
		hash, err := security.HashSecret(opts.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		link.PasswordHash = &hash
	}
	if opts.PIN != "" {
		hash, err := security.HashSecret(opts.PIN)
		if err != nil {
			return fmt.Errorf("hash pin: %w", err)
		}
		link.PinHash = &hash
	}
	if len(opts.AllowedIPs) > 0 {
		entries := lo.Uniq(lo.FilterMap(opts.AllowedIPs, func(e string, _ int) (string, bool) {
			e = strings.TrimSpace(e)
			return e, e != ""
		}))
		for _, e := range entries {
			if _, err := parseCIDRorIP(e); err != nil {
				return fmt.Errorf("%w: allowed ip %q", common.ErrInvalidInput, e)
			}
		}
		link.AllowedIPs = strings.Join(entries, ",")
	}
	return nil
}

// Describe resolves the name, size and MIME type of a source.
func (s *LinkService) Describe(ctx context.Context, src models.Source) (*Target, error) {
	switch src.Kind {
	case models.SourceUpload:
		f, err := s.storage.GetMetadata(ctx, src.FileID)
		if err != nil {
			return nil, err
		}
		return &Target{Name: f.OriginalName, Size: f.Size, MimeType: f.MimeType}, nil
	case models.SourceShared:
		e, err := s.shared.GetFileInfo(ctx, src.Path)
		if err != nil {
			return nil, err
		}
		if e.IsDirectory {
			return nil, common.ErrDirectoryNotShareable
		}
		return &Target{Name: e.Name, Size: e.Size, MimeType: e.MimeType}, nil
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", common.ErrInvalidInput, src.Kind)
	}
}

func (s *LinkService) GetLink(ctx context.Context, token string) (*models.ShareLink, error) {
	if token == "" {
		return nil, common.ErrNotFound
	}
	return s.links.GetByToken(ctx, token)
}

// IsValid reports whether link is unexpired, under its download cap and
// open to the requesting IP. Secrets are checked separately by CheckSecrets.
func (s *LinkService) IsValid(link *models.ShareLink, rc RequestContext) bool {
	now := rc.Now
	if now.IsZero() {
		now = s.now()
	}
	if !now.Before(link.ExpiresAt) {
		return false
	}
	if link.MaxDownloads != nil && link.DownloadCount >= *link.MaxDownloads {
		return false
	}
	if allow := link.AllowList(); len(allow) > 0 && !ipAllowed(rc.ClientIP, allow) {
		return false
	}
	return true
}

// CheckSecrets verifies the password and PIN a link was created with.
func (s *LinkService) CheckSecrets(link *models.ShareLink, password, pin string) error {
	if link.HasPassword() && !security.VerifySecret(*link.PasswordHash, password) {
		return fmt.Errorf("%w: password required", common.ErrUnauthorized)
	}
	if link.HasPin() && !security.VerifySecret(*link.PinHash, pin) {
		return fmt.Errorf("%w: pin required", common.ErrUnauthorized)
	}
	return nil
}

// IncrementDownloadCount adds one to the counter of token. It returns false
// when the token is unknown.
func (s *LinkService) IncrementDownloadCount(ctx context.Context, token string) (bool, error) {
	return s.links.Increment(ctx, token)
}

// Redeem counts one download against token unless its cap is already
// reached. It returns false when nothing was counted.
func (s *LinkService) Redeem(ctx context.Context, token string) (bool, error) {
	return s.links.Claim(ctx, token)
}

func (s *LinkService) DeleteLink(ctx context.Context, token string) (bool, error) {
	return s.links.Delete(ctx, token)
}

func (s *LinkService) DeleteLinksForSource(ctx context.Context, src models.Source) (int64, error) {
	return s.links.DeleteBySource(ctx, canonicalSource(src))
}

// CleanupExpiredLinks deletes links whose expiry has passed.
func (s *LinkService) CleanupExpiredLinks(ctx context.Context) (int64, error) {
	return s.links.DeleteExpired(ctx, s.now())
}

// CurrentLink returns the most recently created link for src. Older links
// stay redeemable until they expire on their own.
func (s *LinkService) CurrentLink(ctx context.Context, src models.Source) (*models.ShareLink, error) {
	return s.links.LatestBySource(ctx, canonicalSource(src))
}

// LinksForFiles groups the upload links of the given file ids by id.
func (s *LinkService) LinksForFiles(ctx context.Context, ids []string) (map[string][]models.ShareLink, error) {
	links, err := s.links.ListBySources(ctx, models.SourceUpload, ids)
	if err != nil {
		return nil, err
	}
	return lo.GroupBy(links, func(l models.ShareLink) string { return l.SourceRef }), nil
}

func (s *LinkService) Stats(ctx context.Context) (repositories.LinkStats, error) {
	return s.links.Stats(ctx)
}

// canonicalSource gives equivalent spellings of a shared path one stored form.
func canonicalSource(src models.Source) models.Source {
	if src.Kind != models.SourceShared {
		return src
	}
	return models.SharedSource(strings.Trim(path.Clean("/"+filepath.ToSlash(src.Path)), "/"))
}

func ipAllowed(clientIP string, allow []string) bool {
	ip := net.ParseIP(strings.TrimSpace(clientIP))
	if ip == nil {
		return false
	}
	return lo.ContainsBy(allow, func(e string) bool {
		n, err := parseCIDRorIP(e)
		return err == nil && n.Contains(ip)
	})
}

// parseCIDRorIP parses either a CIDR string or a single IP address.
func parseCIDRorIP(s string) (*net.IPNet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty")
	}
	if strings.Contains(s, "/") {
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, errors.New("invalid ip")
	}
	bits := 128
	if ip.To4() != nil {
		bits = 32
		ip = ip.To4()
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}
