package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
	"gorm.io/gorm"
)

// LinkRepository persists share links.
type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts l. A token collision is reported as common.ErrConflict.
func (r *LinkRepository) Create(ctx context.Context, l *models.ShareLink) error {
	err := r.db.WithContext(ctx).Create(l).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrConflict
	}
	return err
}

func (r *LinkRepository) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	var l models.ShareLink
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Increment adds one to the download counter in a single statement.
// It returns false when the token does not exist.
func (r *LinkRepository) Increment(ctx context.Context, token string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ShareLink{}).
		Where("token = ?", token).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	return res.RowsAffected > 0, res.Error
}

// Claim increments the counter only while the cap has not been reached, so
// concurrent redemptions can never push the count past max_downloads.
// It returns false when the token is unknown or exhausted.
func (r *LinkRepository) Claim(ctx context.Context, token string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ShareLink{}).
		Where("token = ? AND (max_downloads IS NULL OR download_count < max_downloads)", token).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	return res.RowsAffected > 0, res.Error
}

func (r *LinkRepository) Delete(ctx context.Context, token string) (bool, error) {
	res := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.ShareLink{})
	return res.RowsAffected > 0, res.Error
}

func (r *LinkRepository) DeleteBySource(ctx context.Context, src models.Source) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("source_kind = ? AND source_ref = ?", src.Kind, src.Ref()).
		Delete(&models.ShareLink{})
	return res.RowsAffected, res.Error
}

// DeleteExpired removes links whose expiry is at or before now.
func (r *LinkRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.ShareLink{})
	return res.RowsAffected, res.Error
}

// LatestBySource returns the most recently created link for src.
func (r *LinkRepository) LatestBySource(ctx context.Context, src models.Source) (*models.ShareLink, error) {
	var l models.ShareLink
	err := r.db.WithContext(ctx).
		Where("source_kind = ? AND source_ref = ?", src.Kind, src.Ref()).
		Order("created_at DESC").Order("id DESC").
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListBySources returns the links of the given kind for any of refs, newest first.
func (r *LinkRepository) ListBySources(ctx context.Context, kind models.SourceKind, refs []string) ([]models.ShareLink, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	var links []models.ShareLink
	err := r.db.WithContext(ctx).
		Where("source_kind = ? AND source_ref IN ?", kind, refs).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

type LinkStats struct {
	Total     int64
	Uploads   int64
	Shared    int64
	Downloads int64
}

func (r *LinkRepository) Stats(ctx context.Context) (LinkStats, error) {
	var s LinkStats
	err := r.db.WithContext(ctx).Model(&models.ShareLink{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN source_kind = ? THEN 1 ELSE 0 END), 0) AS uploads,
			COALESCE(SUM(CASE WHEN source_kind = ? THEN 1 ELSE 0 END), 0) AS shared,
			COALESCE(SUM(download_count), 0) AS downloads`,
			models.SourceUpload, models.SourceShared).
		Scan(&s).Error
	return s, err
}
