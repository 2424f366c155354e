package userprofile

import (
	"context"

	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/auth"
)

type Repository interface {
	GetUser(ctx context.Context, userID uint) (*auth.User, error)
	UpdateFields(ctx context.Context, userID uint, fields map[string]interface{}) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetUser(ctx context.Context, userID uint) (*auth.User, error) {
	var u auth.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateFields writes the given columns; gorm.ErrRecordNotFound when the
// user does not exist.
func (r *repository) UpdateFields(ctx context.Context, userID uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&auth.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
