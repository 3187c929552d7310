package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/rohits-web03/sharelink/internal/common"
	"github.com/rohits-web03/sharelink/internal/models"
	"gorm.io/gorm"
)

// FileRepository persists upload metadata.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, f *models.File) error {
	err := r.db.WithContext(ctx).Create(f).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrConflict
	}
	return err
}

func (r *FileRepository) Get(ctx context.Context, id string) (*models.File, error) {
	var f models.File
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FileRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.File{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// List returns every file, newest first.
func (r *FileRepository) List(ctx context.Context) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&files).Error
	return files, err
}

// ListExpired returns files whose expiry is at or before now.
func (r *FileRepository) ListExpired(ctx context.Context, now time.Time) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).Where("expires_at <= ?", now).Find(&files).Error
	return files, err
}

// Delete removes the metadata row and every link pointing at it in one
// transaction. It reports whether the row existed.
func (r *FileRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_kind = ? AND source_ref = ?", models.SourceUpload, id).
			Delete(&models.ShareLink{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.File{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

type FileStats struct {
	Count int64
	Bytes int64
}

func (r *FileRepository) Stats(ctx context.Context) (FileStats, error) {
	var s FileStats
	err := r.db.WithContext(ctx).Model(&models.File{}).
		Select("COUNT(*) AS count, COALESCE(SUM(size), 0) AS bytes").
		Scan(&s).Error
	return s, err
}
