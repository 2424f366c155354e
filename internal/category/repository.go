package category

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	MainCategories(ctx context.Context) ([]string, error)
	SubCategories(ctx context.Context, main string) ([]string, error)
	ListActive(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, c *Category) error
	CreateBatch(ctx context.Context, cs []Category) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) MainCategories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).
		Model(&Category{}).
		Where("active = ?", true).
		Distinct().
		Order("main_category ASC").
		Pluck("main_category", &out).Error
	return out, err
}

func (r *repository) SubCategories(ctx context.Context, main string) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).
		Model(&Category{}).
		Where("active = ? AND main_category = ?", true, main).
		Distinct().
		Order("sub_category ASC").
		Pluck("sub_category", &out).Error
	return out, err
}

func (r *repository) ListActive(ctx context.Context) ([]Category, error) {
	var out []Category
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("main_category ASC, sub_category ASC").
		Find(&out).Error
	return out, err
}

func (r *repository) Create(ctx context.Context, c *Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) CreateBatch(ctx context.Context, cs []Category) error {
	if len(cs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(cs, 100).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Category{}).Count(&n).Error
	return n, err
}
