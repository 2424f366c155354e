package review

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, r *IdeaReview) error
	GetByID(ctx context.Context, id uint) (*IdeaReview, error)
	Approve(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	IncrementVote(ctx context.Context, id uint, helpful bool) error

	ListApproved(ctx context.Context, ideaID uint) ([]IdeaReview, error)
	ListPending(ctx context.Context) ([]IdeaReview, error)
	CountPending(ctx context.Context) (int64, error)
	RatingCounts(ctx context.Context, ideaID uint) (map[int]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rv *IdeaReview) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*IdeaReview, error) {
	var rv IdeaReview
	if err := r.db.WithContext(ctx).First(&rv, id).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

// Approve returns gorm.ErrRecordNotFound when no review has id.
func (r *repository) Approve(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&IdeaReview{}).Where("id = ?", id).Update("is_approved", true)
	return affected(res)
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&IdeaReview{}, id))
}

// IncrementVote bumps one counter in a single UPDATE so concurrent votes
// are never lost.
func (r *repository) IncrementVote(ctx context.Context, id uint, helpful bool) error {
	col := "unhelpful_votes"
	if helpful {
		col = "helpful_votes"
	}
	res := r.db.WithContext(ctx).Model(&IdeaReview{}).
		Where("id = ?", id).
		UpdateColumn(col, gorm.Expr(col+" + ?", 1))
	return affected(res)
}

func (r *repository) ListApproved(ctx context.Context, ideaID uint) ([]IdeaReview, error) {
	var out []IdeaReview
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND is_approved = ?", ideaID, true).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) ListPending(ctx context.Context) ([]IdeaReview, error) {
	var out []IdeaReview
	err := r.db.WithContext(ctx).
		Where("is_approved = ?", false).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&IdeaReview{}).Where("is_approved = ?", false).Count(&n).Error
	return n, err
}

// RatingCounts returns approved review counts keyed by rating.
func (r *repository) RatingCounts(ctx context.Context, ideaID uint) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&IdeaReview{}).
		Select("rating, COUNT(*) AS total").
		Where("idea_id = ? AND is_approved = ?", ideaID, true).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int]int64, len(rows))
	for _, row := range rows {
		out[row.Rating] = row.Total
	}
	return out, nil
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
