package uploadhistory

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	DB() *gorm.DB

	Create(ctx context.Context, h *UploadHistory) error
	MarkCompleted(ctx context.Context, batchID string, count int64) error
	MarkFailed(ctx context.Context, batchID string) error
	List(ctx context.Context) ([]UploadHistory, error)
	ListPaged(ctx context.Context, offset, limit int) ([]UploadHistory, int64, error)
	GetByBatchID(ctx context.Context, batchID string) (*UploadHistory, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository { return &repository{db: tx} }

func (r *repository) DB() *gorm.DB { return r.db }

func (r *repository) Create(ctx context.Context, h *UploadHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// MarkCompleted sets the final count and status. It returns
// gorm.ErrRecordNotFound when no row has batchID.
func (r *repository) MarkCompleted(ctx context.Context, batchID string, count int64) error {
	return r.finish(ctx, batchID, map[string]interface{}{
		"ideas_count": count,
		"status":      StatusCompleted,
	})
}

func (r *repository) MarkFailed(ctx context.Context, batchID string) error {
	return r.finish(ctx, batchID, map[string]interface{}{"status": StatusFailed})
}

func (r *repository) finish(ctx context.Context, batchID string, cols map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&UploadHistory{}).
		Where("batch_id = ?", batchID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]UploadHistory, error) {
	var rows []UploadHistory
	err := r.db.WithContext(ctx).Order("upload_timestamp DESC, id DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListPaged(ctx context.Context, offset, limit int) ([]UploadHistory, int64, error) {
	var (
		rows  []UploadHistory
		total int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&UploadHistory{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("upload_timestamp DESC, id DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (r *repository) GetByBatchID(ctx context.Context, batchID string) (*UploadHistory, error) {
	var h UploadHistory
	if err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&UploadHistory{}, id).Error
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := r.db.WithContext(ctx).Model(&UploadHistory{}).
		Select("COUNT(*) AS total_uploads, COALESCE(SUM(ideas_count), 0) AS total_ideas_uploaded").
		Scan(&st).Error
	return st, err
}
