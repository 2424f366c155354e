package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/config"
	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/utils"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	minPasswordLength = 6
	maxUsernameLength = 20
	verificationTTL   = 24 * time.Hour
	resetTTL          = time.Hour
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgUserNotFound       = "User not found. Please sign up first!"
	msgAdminOnly          = "Access denied. Admin privileges required."
	msgInvalidToken       = "Invalid or expired token"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Claims are carried by both access and refresh tokens. SessionID is set
// only for admin logins.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"sid,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Mailer delivers account emails.
type Mailer interface {
	SendVerificationLink(toEmail, fullName, token string) error
	SendResetLink(toEmail, token string) error
}

// GoogleVerifier checks Google sign-in ID tokens.
type GoogleVerifier interface {
	VerifyGoogleToken(ctx context.Context, idToken string) (*utils.GoogleIdentity, error)
}

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error

	AdminLogin(ctx context.Context, req AdminLoginRequest, clientIP string) (*AdminAuthResponse, error)
	ValidateSession(ctx context.Context, sessionID string) (bool, error)
	AdminLogout(ctx context.Context, sessionID string) error

	ParseAccessToken(token string) (*Claims, error)
	Authenticate(ctx context.Context, token string) (*Claims, *User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	SeedDefaultAdmin(ctx context.Context) error
}

type service struct {
	repo          Repository
	mailer        Mailer
	google        GoogleVerifier
	audit         auditlog.Service
	log           *utils.Logger
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	sessionTTL    time.Duration
	admin         defaultAdmin
	production    bool
	hashCost      int
	now           func() time.Time
}

type defaultAdmin struct {
	email    string
	username string
	password string
}

// NewService wires the auth service. google may be nil, in which case
// Google sign-in trusts the payload fields sent by the client.
func NewService(repo Repository, cfg *config.Config, mailer Mailer, google GoogleVerifier, audit auditlog.Service, log *utils.Logger) Service {
	return &service{
		repo:          repo,
		mailer:        mailer,
		google:        google,
		audit:         audit,
		log:           log,
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		refreshTTL:    time.Duration(cfg.JWTRefreshTTLHours) * time.Hour,
		sessionTTL:    time.Duration(cfg.AdminSessionTTLHours) * time.Hour,
		admin: defaultAdmin{
			email:    cfg.DefaultAdminEmail,
			username: cfg.DefaultAdminUsername,
			password: cfg.DefaultAdminPassword,
		},
		production: cfg.IsProduction(),
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// =============================
// Signup / Login
// =============================

func (s *service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if fullName == "" {
		return nil, apperr.Validation("fullName is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	taken, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperr.Internal("signup failed", err)
	}
	if taken {
		return nil, apperr.Conflict("Email already registered")
	}

	username, err := s.uniqueUsername(ctx, usernameFromFullName(fullName))
	if err != nil {
		return nil, apperr.Internal("signup failed", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, apperr.Internal("signup failed", err)
	}

	now := s.now()
	token := uuid.NewString()
	expires := now.Add(verificationTTL)
	user := &User{
		Username:              username,
		FullName:              fullName,
		Email:                 email,
		PasswordHash:          string(hash),
		Role:                  RoleUser,
		Active:                true,
		AuthProvider:          ProviderEmail,
		VerificationToken:     &token,
		VerificationExpiresAt: &expires,
		LastLogin:             &now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperr.Internal("signup failed", err)
	}

	if err := s.mailer.SendVerificationLink(user.Email, user.FullName, token); err != nil {
		s.log.Warn("verification email failed", "user_id", user.ID, "error", err)
	}
	s.log.Info("user signed up", "user_id", user.ID, "username", user.Username)
	return s.authResponse(user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized(msgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("login failed", err)
	}
	if !user.Active {
		return nil, apperr.Unauthorized(msgUserNotFound)
	}
	if !checkPassword(user, req.Password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("last login update failed", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now
	return s.authResponse(user)
}

// GoogleLogin signs in with a Google identity. An existing Google account
// logs in; an email already registered through another provider is a
// conflict; otherwise a verified GOOGLE account is created.
func (s *service) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*AuthResponse, error) {
	ident, err := s.googleIdentity(ctx, req)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByGoogleID(ctx, ident.UID)
	switch {
	case err == nil:
		if !user.Active {
			return nil, apperr.Unauthorized("account is inactive")
		}
		now := s.now()
		if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
			s.log.Warn("last login update failed", "user_id", user.ID, "error", err)
		}
		user.LastLogin = &now
		return s.authResponse(user)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Internal("google login failed", err)
	}

	taken, err := s.repo.EmailExists(ctx, ident.Email)
	if err != nil {
		return nil, apperr.Internal("google login failed", err)
	}
	if taken {
		return nil, apperr.Conflict("Email already registered with different authentication method")
	}

	local := ident.Email
	if at := strings.IndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}
	username, err := s.uniqueUsername(ctx, sanitizeUsername(local))
	if err != nil {
		return nil, apperr.Internal("google login failed", err)
	}

	now := s.now()
	googleID := ident.UID
	user = &User{
		Username:        username,
		FullName:        ident.Name,
		Email:           strings.ToLower(ident.Email),
		GoogleID:        &googleID,
		Role:            RoleUser,
		ProfileImageURL: ident.Picture,
		Bio:             "Google user",
		Active:          true,
		EmailVerified:   true,
		AuthProvider:    ProviderGoogle,
		LastLogin:       &now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperr.Internal("google login failed", err)
	}
	s.log.Info("google user created", "user_id", user.ID, "username", user.Username)
	return s.authResponse(user)
}

func (s *service) googleIdentity(ctx context.Context, req GoogleLoginRequest) (*utils.GoogleIdentity, error) {
	if s.google != nil {
		if req.IDToken == "" {
			return nil, apperr.Validation("idToken is required")
		}
		ident, err := s.google.VerifyGoogleToken(ctx, req.IDToken)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid Google token", err)
		}
		if ident.Email == "" {
			return nil, apperr.Unauthorized("Google token carries no email")
		}
		return ident, nil
	}

	if strings.TrimSpace(req.GoogleID) == "" || !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		return nil, apperr.Validation("googleId and a valid email are required")
	}
	return &utils.GoogleIdentity{
		UID:     strings.TrimSpace(req.GoogleID),
		Email:   strings.TrimSpace(req.Email),
		Name:    strings.TrimSpace(req.Name),
		Picture: req.ImageURL,
	}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken, s.refreshSecret, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil || !user.Active {
		return nil, apperr.Unauthorized("user not found")
	}
	if claims.SessionID != "" {
		ok, err := s.ValidateSession(ctx, claims.SessionID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Unauthorized("admin session expired")
		}
	}

	access, err := s.sign(user, claims.SessionID, TokenTypeAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, apperr.Internal("token signing failed", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// =============================
// Password reset / verification
// =============================

// ForgotPassword never reveals whether the email is registered.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return apperr.Internal("password reset failed", err)
	}

	token := uuid.NewString()
	expires := s.now().Add(resetTTL)
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expires
	if err := s.repo.Update(ctx, user); err != nil {
		return apperr.Internal("password reset failed", err)
	}
	if err := s.mailer.SendResetLink(user.Email, token); err != nil {
		s.log.Warn("reset email failed", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return apperr.Validation("token is required")
	}
	if len(newPassword) < minPasswordLength {
		return apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	user, err := s.repo.FindByResetToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation(msgInvalidToken)
	}
	if err != nil {
		return apperr.Internal("password reset failed", err)
	}
	now := s.now()
	if user.ResetTokenExpiresAt == nil || !now.Before(*user.ResetTokenExpiresAt) {
		if err := s.repo.ClearResetToken(ctx, user.ID, token); err != nil {
			s.log.Warn("expired reset token cleanup failed", "user_id", user.ID, "error", err)
		}
		return apperr.Validation(msgInvalidToken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return apperr.Internal("password reset failed", err)
	}
	consumed, err := s.repo.ConsumeResetToken(ctx, user.ID, token, string(hash), now)
	if err != nil {
		return apperr.Internal("password reset failed", err)
	}
	if !consumed {
		return apperr.Validation(msgInvalidToken)
	}
	s.log.Info("password reset", "user_id", user.ID)
	return nil
}

func (s *service) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperr.Validation("token is required")
	}
	user, err := s.repo.FindByVerificationToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation(msgInvalidToken)
	}
	if err != nil {
		return apperr.Internal("email verification failed", err)
	}

	now := s.now()
	if user.VerificationExpiresAt == nil || !now.Before(*user.VerificationExpiresAt) {
		if err := s.repo.ClearVerificationToken(ctx, user.ID, token); err != nil {
			return apperr.Internal("email verification failed", err)
		}
		return apperr.Validation(msgInvalidToken)
	}
	consumed, err := s.repo.ConsumeVerificationToken(ctx, user.ID, token, now)
	if err != nil {
		return apperr.Internal("email verification failed", err)
	}
	if !consumed {
		return apperr.Validation(msgInvalidToken)
	}
	return nil
}

// =============================
// Admin sessions
// =============================

// AdminLogin authenticates an admin and opens a new session, deactivating
// every other session of that admin in the same transaction.
func (s *service) AdminLogin(ctx context.Context, req AdminLoginRequest, clientIP string) (*AdminAuthResponse, error) {
	identifier := strings.TrimSpace(req.login())
	if identifier == "" {
		return nil, apperr.Validation("username or email is required")
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal("admin login failed", err)
	}
	if !user.Active || !checkPassword(user, req.Password) {
		s.audit.LogAction(ctx, auditlog.Actor{UserID: &user.ID, IP: clientIP}, auditlog.ActionAdminLogin,
			"user", fmt.Sprint(user.ID), map[string]interface{}{"reason": "bad credentials"}, auditlog.StatusFailure)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !user.IsAdmin() {
		return nil, apperr.Forbidden(msgAdminOnly)
	}

	now := s.now()
	session := &AdminSession{
		UserID:    user.ID,
		SessionID: uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
		Active:    true,
	}
	var revoked int64
	err = s.repo.Transaction(ctx, func(r Repository) error {
		// Concurrent logins by the same admin queue on this lock.
		if err := r.LockUser(ctx, user.ID); err != nil {
			return err
		}
		n, err := r.DeactivateSessions(ctx, user.ID)
		if err != nil {
			return err
		}
		revoked = n
		if err := r.CreateSession(ctx, session); err != nil {
			return err
		}
		user.LastLogin = &now
		user.LastAdminLogin = &now
		user.AdminSessionID = &session.SessionID
		return r.Update(ctx, user)
	})
	if err != nil {
		return nil, apperr.Internal("admin login failed", err)
	}

	pair, err := s.tokens(user, session.SessionID)
	if err != nil {
		return nil, apperr.Internal("token signing failed", err)
	}

	s.audit.LogAction(ctx, auditlog.Actor{UserID: &user.ID, IP: clientIP}, auditlog.ActionAdminLogin,
		"user", fmt.Sprint(user.ID), map[string]interface{}{"revokedSessions": revoked}, auditlog.StatusSuccess)
	s.log.Info("admin logged in", "user_id", user.ID, "revoked_sessions", revoked)

	return &AdminAuthResponse{
		TokenPair: *pair,
		SessionID: session.SessionID,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

// ValidateSession reports whether the session is active and unexpired.
// Expired rows are treated as inactive without being swept.
func (s *service) ValidateSession(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	sess, err := s.repo.FindSession(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Internal("session lookup failed", err)
	}
	return sess.Active && sess.ExpiresAt.After(s.now()), nil
}

func (s *service) AdminLogout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if _, err := s.repo.DeactivateSession(ctx, sessionID); err != nil {
		return apperr.Internal("logout failed", err)
	}
	return nil
}

// =============================
// Tokens
// =============================

func (s *service) ParseAccessToken(token string) (*Claims, error) {
	return s.parse(token, s.accessSecret, TokenTypeAccess)
}

// Authenticate resolves a bearer access token to its user. Tokens issued
// for an admin session stop working once that session is replaced, logged
// out or expired.
func (s *service) Authenticate(ctx context.Context, token string) (*Claims, *User, error) {
	claims, err := s.ParseAccessToken(token)
	if err != nil {
		return nil, nil, err
	}
	if claims.SessionID != "" {
		ok, err := s.ValidateSession(ctx, claims.SessionID)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, apperr.Unauthorized("admin session is no longer active")
		}
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.Unauthorized("user not found")
	}
	if err != nil {
		return nil, nil, apperr.Internal("user lookup failed", err)
	}
	if !user.Active {
		return nil, nil, apperr.Unauthorized("account is inactive")
	}
	return claims, user, nil
}

func (s *service) parse(raw string, secret []byte, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	if claims.TokenType != typ || claims.UserID == 0 {
		return nil, apperr.Unauthorized("invalid token claims")
	}
	return claims, nil
}

func (s *service) sign(user *User, sessionID, typ string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role,
		SessionID: sessionID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *service) tokens(user *User, sessionID string) (*TokenPair, error) {
	access, err := s.sign(user, sessionID, TokenTypeAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, sessionID, TokenTypeRefresh, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) authResponse(user *User) (*AuthResponse, error) {
	pair, err := s.tokens(user, "")
	if err != nil {
		return nil, apperr.Internal("token signing failed", err)
	}
	return &AuthResponse{TokenPair: *pair, User: user}, nil
}

// =============================
// Users
// =============================

func (s *service) GetUserByID(ctx context.Context, id uint) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("user lookup failed", err)
	}
	return user, nil
}

// SeedDefaultAdmin creates the configured admin account when no admin exists.
func (s *service) SeedDefaultAdmin(ctx context.Context) error {
	n, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	taken, err := s.repo.EmailExists(ctx, s.admin.email)
	if err != nil {
		return err
	}
	if taken {
		s.log.Warn("default admin email already used by a non-admin account, skipping seed", "email", s.admin.email)
		return nil
	}
	if s.production && s.admin.password == "admin123" {
		s.log.Warn("seeding default admin with the built-in password; set DEFAULT_ADMIN_PASSWORD")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.admin.password), s.hashCost)
	if err != nil {
		return err
	}
	admin := &User{
		Username:      s.admin.username,
		FullName:      "Administrator",
		Email:         strings.ToLower(s.admin.email),
		PasswordHash:  string(hash),
		Role:          RoleAdmin,
		Active:        true,
		EmailVerified: true,
		AuthProvider:  ProviderEmail,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return err
	}
	s.log.Info("default admin created", "user_id", admin.ID, "username", admin.Username)
	return nil
}

// =============================
// Helpers
// =============================

func checkPassword(user *User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

var nonUsernameChars = regexp.MustCompile(`[^a-z0-9._]`)

// usernameFromFullName lowercases the name and joins its words with dots.
func usernameFromFullName(fullName string) string {
	return sanitizeUsername(strings.Join(strings.Fields(strings.ToLower(fullName)), "."))
}

func sanitizeUsername(s string) string {
	s = nonUsernameChars.ReplaceAllString(strings.ToLower(s), "")
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		s = "user." + s
	}
	if len(s) > maxUsernameLength {
		s = s[:maxUsernameLength]
	}
	return strings.TrimRight(s, ".")
}

// uniqueUsername appends 1, 2, ... to base until the name is free, keeping
// the result within the length limit.
func (s *service) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		taken, err := s.repo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprint(i)
		stem := base
		if len(stem)+len(suffix) > maxUsernameLength {
			stem = stem[:maxUsernameLength-len(suffix)]
		}
		candidate = stem + suffix
	}
}
