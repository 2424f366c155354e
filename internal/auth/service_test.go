package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"pgregory.net/rapid"

	"github.com/sharath018/idea-factory-backend/config"
	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/testutil"
	"github.com/sharath018/idea-factory-backend/utils"
)

type fakeMailer struct {
	mu           sync.Mutex
	verification map[string]string
	reset        map[string]string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{verification: map[string]string{}, reset: map[string]string{}}
}

func (m *fakeMailer) SendVerificationLink(to, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verification[to] = token
	return nil
}

func (m *fakeMailer) SendResetLink(to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[to] = token
	return nil
}

type fakeGoogle struct {
	identities map[string]*utils.GoogleIdentity
}

func (g fakeGoogle) VerifyGoogleToken(_ context.Context, idToken string) (*utils.GoogleIdentity, error) {
	if id, ok := g.identities[idToken]; ok {
		return id, nil
	}
	return nil, errors.New("token rejected")
}

type fixture struct {
	svc    *service
	db     *gorm.DB
	mailer *fakeMailer
	clock  *time.Time
}

func newFixture(t *testing.T, google GoogleVerifier) *fixture {
	t.Helper()
	db := testutil.DB(t, &User{}, &AdminSession{}, &auditlog.AuditLog{})
	log := utils.NopLogger()
	cfg := &config.Config{
		JWTAccessSecret:      "access-secret",
		JWTRefreshSecret:     "refresh-secret",
		JWTAccessTTLHours:    1,
		JWTRefreshTTLHours:   24,
		AdminSessionTTLHours: 2,
		DefaultAdminEmail:    "admin@10000ideas.com",
		DefaultAdminUsername: "admin",
		DefaultAdminPassword: "admin123",
	}
	mailer := newFakeMailer()
	audit := auditlog.NewService(auditlog.NewRepository(db), log)
	svc := NewService(NewRepository(db), cfg, mailer, google, audit, log).(*service)

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	svc.hashCost = bcrypt.MinCost
	return &fixture{svc: svc, db: db, mailer: mailer, clock: &clock}
}

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func TestUsernameFromFullName(t *testing.T) {
	cases := map[string]string{
		"John Doe":                     "john.doe",
		"  Mary  Ann   Smith ":         "mary.ann.smith",
		"123 Go":                       "user.123.go",
		"O'Neil-Brown":                 "oneilbrown",
		"A Very Long Full Name Indeed": "a.very.long.full.nam",
		"abcdefghijklmnopqrs t":        "abcdefghijklmnopqrs",
		"!!!":                          "user",
	}
	for in, want := range cases {
		assert.Equal(t, want, usernameFromFullName(in), in)
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	first, err := f.svc.Signup(ctx, SignupRequest{FullName: "John Doe", Email: "John@Example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "john.doe", first.User.Username)
	require.Equal(t, "john@example.com", first.User.Email)
	require.Equal(t, RoleUser, first.User.Role)
	require.False(t, first.User.EmailVerified)
	require.NotEmpty(t, first.AccessToken)
	require.NotEmpty(t, f.mailer.verification["john@example.com"])

	second, err := f.svc.Signup(ctx, SignupRequest{FullName: "John Doe", Email: "john2@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "john.doe1", second.User.Username)

	_, err = f.svc.Signup(ctx, SignupRequest{FullName: "Other", Email: "JOHN@example.com", Password: "secret1"})
	require.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.svc.Signup(ctx, SignupRequest{FullName: "Short", Email: "short@example.com", Password: "12345"})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Signup(ctx, SignupRequest{FullName: "Bad Mail", Email: "not-an-email", Password: "secret1"})
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.Signup(ctx, SignupRequest{FullName: "Jane Roe", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "secret1"})
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))
	require.Equal(t, msgUserNotFound, apperr.PublicMessage(err))

	_, err = f.svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "wrong-pass"})
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))

	res, err := f.svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := f.svc.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.UserID)
	require.Equal(t, RoleUser, claims.Role)
	require.Empty(t, claims.SessionID)

	// a refresh token is not accepted as an access token
	_, err = f.svc.ParseAccessToken(res.RefreshToken)
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))

	require.NoError(t, f.db.Model(&User{}).Where("id = ?", res.User.ID).Update("active", false).Error)
	_, err = f.svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "secret1"})
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestSeedDefaultAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	require.NoError(t, f.svc.SeedDefaultAdmin(ctx))
	require.NoError(t, f.svc.SeedDefaultAdmin(ctx))

	var n int64
	require.NoError(t, f.db.Model(&User{}).Where("role = ?", RoleAdmin).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestAdminLoginReplacesEarlierSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.svc.SeedDefaultAdmin(ctx))

	first, err := f.svc.AdminLogin(ctx, AdminLoginRequest{Identifier: "admin", Password: "admin123"}, "10.0.0.1")
	require.NoError(t, err)
	ok, err := f.svc.ValidateSession(ctx, first.SessionID)
	require.NoError(t, err)
	require.True(t, ok)

	second, err := f.svc.AdminLogin(ctx, AdminLoginRequest{Email: "admin@10000ideas.com", Password: "admin123"}, "10.0.0.2")
	require.NoError(t, err)

	ok, _ = f.svc.ValidateSession(ctx, first.SessionID)
	require.False(t, ok)
	ok, _ = f.svc.ValidateSession(ctx, second.SessionID)
	require.True(t, ok)

	_, _, err = f.svc.Authenticate(ctx, first.AccessToken)
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))
	claims, user, err := f.svc.Authenticate(ctx, second.AccessToken)
	require.NoError(t, err)
	require.Equal(t, second.SessionID, claims.SessionID)
	require.Equal(t, RoleAdmin, user.Role)

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))
	pair, err := f.svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	refreshed, err := f.svc.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, second.SessionID, refreshed.SessionID)

	var logins int64
	require.NoError(t, f.db.Model(&auditlog.AuditLog{}).
		Where("action = ? AND status = ?", auditlog.ActionAdminLogin, auditlog.StatusSuccess).Count(&logins).Error)
	require.EqualValues(t, 2, logins)

	require.NoError(t, f.svc.AdminLogout(ctx, second.SessionID))
	ok, _ = f.svc.ValidateSession(ctx, second.SessionID)
	require.False(t, ok)
}

func TestAdminSessionsAtMostOneActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.svc.SeedDefaultAdmin(ctx))

	var sessions []string
	rapid.Check(t, func(rt *rapid.T) {
		logins := rapid.IntRange(1, 4).Draw(rt, "logins")
		for i := 0; i < logins; i++ {
			res, err := f.svc.AdminLogin(ctx, AdminLoginRequest{Identifier: "admin", Password: "admin123"}, "")
			if err != nil {
				rt.Fatalf("admin login: %v", err)
			}
			sessions = append(sessions, res.SessionID)
		}

		latest := sessions[len(sessions)-1]
		for _, sid := range sessions {
			ok, err := f.svc.ValidateSession(ctx, sid)
			if err != nil {
				rt.Fatalf("validate: %v", err)
			}
			if ok != (sid == latest) {
				rt.Fatalf("session %s valid=%v, latest=%s", sid, ok, latest)
			}
		}

		var active int64
		f.db.Model(&AdminSession{}).Where("active = ?", true).Count(&active)
		if active != 1 {
			rt.Fatalf("expected one active session, got %d", active)
		}
	})
}

func TestConcurrentAdminLoginsLeaveOneActiveSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.svc.SeedDefaultAdmin(ctx))

	const logins = 5
	errs := make(chan error, logins)
	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AdminLogin(ctx, AdminLoginRequest{Identifier: "admin", Password: "admin123"}, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var sessions []AdminSession
	require.NoError(t, f.db.Find(&sessions).Error)
	require.Len(t, sessions, logins)

	var active []AdminSession
	require.NoError(t, f.db.Where("active = ?", true).Find(&active).Error)
	require.Len(t, active, 1)

	var admin User
	require.NoError(t, f.db.Where("username = ?", "admin").First(&admin).Error)
	require.NotNil(t, admin.AdminSessionID)
	require.Equal(t, active[0].SessionID, *admin.AdminSessionID)
}

func TestAdminSessionExpiresLazily(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.svc.SeedDefaultAdmin(ctx))

	res, err := f.svc.AdminLogin(ctx, AdminLoginRequest{Identifier: "admin", Password: "admin123"}, "")
	require.NoError(t, err)

	f.advance(3 * time.Hour)
	ok, err := f.svc.ValidateSession(ctx, res.SessionID)
	require.NoError(t, err)
	require.False(t, ok)

	var sess AdminSession
	require.NoError(t, f.db.Where("session_id = ?", res.SessionID).First(&sess).Error)
	require.True(t, sess.Active, "expired sessions are not swept")
}

func TestAdminLoginRejectsNonAdmins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.Signup(ctx, SignupRequest{FullName: "Plain User", Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.AdminLogin(ctx, AdminLoginRequest{Identifier: "plain.user", Password: "secret1"}, "")
	require.True(t, apperr.Is(err, apperr.KindForbidden))
	require.Equal(t, msgAdminOnly, apperr.PublicMessage(err))

	_, err = f.svc.AdminLogin(ctx, AdminLoginRequest{Identifier: "plain.user", Password: "nope"}, "")
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = f.svc.AdminLogin(ctx, AdminLoginRequest{Password: "secret1"}, "")
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestResetTokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.Signup(ctx, SignupRequest{FullName: "Reset Me", Email: "reset@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, "nobody@example.com"))
	require.Empty(t, f.mailer.reset["nobody@example.com"])

	require.NoError(t, f.svc.ForgotPassword(ctx, "reset@example.com"))
	token := f.mailer.reset["reset@example.com"]
	require.NotEmpty(t, token)

	require.NoError(t, f.svc.ResetPassword(ctx, token, "brand-new"))
	err = f.svc.ResetPassword(ctx, token, "another-one")
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Login(ctx, LoginRequest{Email: "reset@example.com", Password: "brand-new"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, "reset@example.com"))
	expired := f.mailer.reset["reset@example.com"]
	f.advance(61 * time.Minute)
	err = f.svc.ResetPassword(ctx, expired, "too-late-1")
	require.True(t, apperr.Is(err, apperr.KindValidation))

	var u User
	require.NoError(t, f.db.Where("email = ?", "reset@example.com").First(&u).Error)
	require.Nil(t, u.ResetToken)
}

func TestResetTokenRacesConsumeOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.Signup(ctx, SignupRequest{FullName: "Race Me", Email: "race@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.svc.ForgotPassword(ctx, "race@example.com"))
	token := f.mailer.reset["race@example.com"]

	passwords := []string{"first-pass", "second-pass", "third-pass", "fourth-pass"}
	errs := make(chan error, len(passwords))
	var wg sync.WaitGroup
	for _, pw := range passwords {
		wg.Add(1)
		go func(pw string) {
			defer wg.Done()
			errs <- f.svc.ResetPassword(ctx, token, pw)
		}(pw)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
	}
	require.Equal(t, 1, succeeded)

	logins := 0
	for _, pw := range passwords {
		if _, err := f.svc.Login(ctx, LoginRequest{Email: "race@example.com", Password: pw}); err == nil {
			logins++
		}
	}
	require.Equal(t, 1, logins, "exactly the winning password is stored")
}

func TestVerificationTokenRacesConsumeOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	res, err := f.svc.Signup(ctx, SignupRequest{FullName: "Twice Clicked", Email: "twice@example.com", Password: "secret1"})
	require.NoError(t, err)
	token := f.mailer.verification["twice@example.com"]

	errs := make(chan error, 3)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.svc.VerifyEmail(ctx, token)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	require.Equal(t, 1, succeeded)

	u, err := f.svc.GetUserByID(ctx, res.User.ID)
	require.NoError(t, err)
	require.True(t, u.EmailVerified)
	require.Nil(t, u.VerificationToken)
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	res, err := f.svc.Signup(ctx, SignupRequest{FullName: "Verify Me", Email: "verify@example.com", Password: "secret1"})
	require.NoError(t, err)
	token := f.mailer.verification["verify@example.com"]

	require.NoError(t, f.svc.VerifyEmail(ctx, token))
	err = f.svc.VerifyEmail(ctx, token)
	require.True(t, apperr.Is(err, apperr.KindValidation))

	u, err := f.svc.GetUserByID(ctx, res.User.ID)
	require.NoError(t, err)
	require.True(t, u.EmailVerified)
	require.Nil(t, u.VerificationToken)

	_, err = f.svc.GetUserByID(ctx, 9999)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestVerifyEmailExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	res, err := f.svc.Signup(ctx, SignupRequest{FullName: "Late Comer", Email: "late@example.com", Password: "secret1"})
	require.NoError(t, err)

	f.advance(25 * time.Hour)
	err = f.svc.VerifyEmail(ctx, f.mailer.verification["late@example.com"])
	require.True(t, apperr.Is(err, apperr.KindValidation))

	u, err := f.svc.GetUserByID(ctx, res.User.ID)
	require.NoError(t, err)
	require.False(t, u.EmailVerified)
}

func TestGoogleLoginWithPayload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	req := GoogleLoginRequest{Email: "g.user@gmail.com", Name: "G User", GoogleID: "google-123", ImageURL: "https://img/x.png"}
	first, err := f.svc.GoogleLogin(ctx, req)
	require.NoError(t, err)
	require.Equal(t, ProviderGoogle, first.User.AuthProvider)
	require.True(t, first.User.EmailVerified)
	require.Equal(t, "g.user", first.User.Username)
	require.Equal(t, "Google user", first.User.Bio)

	again, err := f.svc.GoogleLogin(ctx, req)
	require.NoError(t, err)
	require.Equal(t, first.User.ID, again.User.ID)

	_, err = f.svc.Signup(ctx, SignupRequest{FullName: "Email User", Email: "taken@gmail.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = f.svc.GoogleLogin(ctx, GoogleLoginRequest{Email: "taken@gmail.com", GoogleID: "google-456"})
	require.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.svc.GoogleLogin(ctx, GoogleLoginRequest{Email: "missing-id@gmail.com"})
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGoogleLoginWithVerifier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fakeGoogle{identities: map[string]*utils.GoogleIdentity{
		"good-token": {UID: "uid-1", Email: "verified@gmail.com", Name: "Verified"},
	}})

	res, err := f.svc.GoogleLogin(ctx, GoogleLoginRequest{IDToken: "good-token", Email: "spoofed@gmail.com", GoogleID: "spoof"})
	require.NoError(t, err)
	require.Equal(t, "verified@gmail.com", res.User.Email)

	_, err = f.svc.GoogleLogin(ctx, GoogleLoginRequest{IDToken: "bad-token"})
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = f.svc.GoogleLogin(ctx, GoogleLoginRequest{Email: "x@gmail.com", GoogleID: "x"})
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("abc"))
}
