package auth

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Transaction(ctx context.Context, fn func(r Repository) error) error

	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)
	FindByVerificationToken(ctx context.Context, token string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
	ConsumeResetToken(ctx context.Context, userID uint, token, passwordHash string, now time.Time) (bool, error)
	ConsumeVerificationToken(ctx context.Context, userID uint, token string, now time.Time) (bool, error)
	ClearResetToken(ctx context.Context, userID uint, token string) error
	ClearVerificationToken(ctx context.Context, userID uint, token string) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CountAdmins(ctx context.Context) (int64, error)
	ListActiveAdmins(ctx context.Context) ([]User, error)
	TouchLastLogin(ctx context.Context, userID uint, at time.Time) error
	LockUser(ctx context.Context, userID uint) error

	CreateSession(ctx context.Context, s *AdminSession) error
	DeactivateSessions(ctx context.Context, userID uint) (int64, error)
	DeactivateSession(ctx context.Context, sessionID string) (int64, error)
	FindSession(ctx context.Context, sessionID string) (*AdminSession, error)
}

type repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{tx}
}

func (r *repository) Transaction(ctx context.Context, fn func(r Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func (r *repository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) Update(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByIdentifier matches either the username or the email.
func (r *repository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = LOWER(?)", identifier, identifier).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByGoogleID(ctx context.Context, googleID string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByVerificationToken(ctx context.Context, token string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("verification_token = ?", token).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByResetToken(ctx context.Context, token string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("reset_token = ?", token).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ConsumeResetToken swaps the password and clears the token in one
// conditional update. It reports false when the token was already used,
// replaced or expired.
func (r *repository) ConsumeResetToken(ctx context.Context, userID uint, token, passwordHash string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND reset_token = ? AND reset_token_expires_at > ?", userID, token, now).
		Updates(map[string]interface{}{
			"password_hash":          passwordHash,
			"reset_token":            nil,
			"reset_token_expires_at": nil,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) ConsumeVerificationToken(ctx context.Context, userID uint, token string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND verification_token = ? AND verification_expires_at > ?", userID, token, now).
		Updates(map[string]interface{}{
			"email_verified":          true,
			"verification_token":      nil,
			"verification_expires_at": nil,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) ClearResetToken(ctx context.Context, userID uint, token string) error {
	return r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND reset_token = ?", userID, token).
		Updates(map[string]interface{}{"reset_token": nil, "reset_token_expires_at": nil}).Error
}

func (r *repository) ClearVerificationToken(ctx context.Context, userID uint, token string) error {
	return r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND verification_token = ?", userID, token).
		Updates(map[string]interface{}{"verification_token": nil, "verification_expires_at": nil}).Error
}

func (r *repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("LOWER(email) = LOWER(?)", email).Count(&n).Error
	return n > 0, err
}

func (r *repository) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("role = ?", RoleAdmin).Count(&n).Error
	return n, err
}

func (r *repository) ListActiveAdmins(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("role = ? AND active = ?", RoleAdmin, true).
		Order("id").
		Find(&users).Error
	return users, err
}

func (r *repository) TouchLastLogin(ctx context.Context, userID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).
		UpdateColumn("last_login", at).Error
}

// LockUser takes a row lock on the user for the rest of the transaction.
// sqlite has no row locks and serializes writers instead.
func (r *repository) LockUser(ctx context.Context, userID uint) error {
	var u User
	return r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").First(&u, userID).Error
}

// ========================
// Admin sessions
// ========================

func (r *repository) CreateSession(ctx context.Context, s *AdminSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) DeactivateSessions(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&AdminSession{}).
		Where("user_id = ? AND active = ?", userID, true).
		Update("active", false)
	return res.RowsAffected, res.Error
}

func (r *repository) DeactivateSession(ctx context.Context, sessionID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&AdminSession{}).
		Where("session_id = ? AND active = ?", sessionID, true).
		Update("active", false)
	return res.RowsAffected, res.Error
}

func (r *repository) FindSession(ctx context.Context, sessionID string) (*AdminSession, error) {
	var s AdminSession
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
