package auth

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	ProviderEmail  = "EMAIL"
	ProviderGoogle = "GOOGLE"
)

type User struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Username              string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	FullName              string     `gorm:"size:100" json:"fullName"`
	Email                 string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash          string     `gorm:"size:255" json:"-"`
	GoogleID              *string    `gorm:"size:128;uniqueIndex" json:"-"`
	Role                  string     `gorm:"size:20;not null;default:USER" json:"role"`
	ProfileImageURL       string     `gorm:"size:500" json:"profileImageUrl"`
	Bio                   string     `gorm:"size:500" json:"bio"`
	PhoneNumber           string     `gorm:"size:20" json:"phoneNumber"`
	Location              string     `gorm:"size:100" json:"location"`
	Active                bool       `gorm:"not null;default:true" json:"active"`
	EmailVerified         bool       `gorm:"not null;default:false" json:"emailVerified"`
	AuthProvider          string     `gorm:"size:20;not null;default:EMAIL" json:"authProvider"`
	VerificationToken     *string    `gorm:"size:64;index" json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	ResetToken            *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiresAt   *time.Time `json:"-"`
	LastLogin             *time.Time `json:"lastLogin"`
	LastAdminLogin        *time.Time `json:"lastAdminLogin,omitempty"`
	AdminSessionID        *string    `gorm:"size:64" json:"-"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// AdminSession is one admin login. At most one row per user is active.
type AdminSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	SessionID string    `gorm:"size:64;uniqueIndex;not null" json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
}

func (AdminSession) TableName() string { return "admin_sessions" }

// ========================
// Requests / responses
// ========================

type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginRequest accepts either a username or an email in Identifier.
type AdminLoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password" binding:"required"`
}

func (r AdminLoginRequest) login() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Username != "":
		return r.Username
	default:
		return r.Email
	}
}

type GoogleLoginRequest struct {
	IDToken  string `json:"idToken"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	GoogleID string `json:"googleId"`
	ImageURL string `json:"imageUrl"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	TokenPair
	User *User `json:"user"`
}

type AdminAuthResponse struct {
	TokenPair
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
