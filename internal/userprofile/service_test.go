package userprofile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/auth"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/testutil"
	"github.com/sharath018/idea-factory-backend/internal/uploadhistory"
	"github.com/sharath018/idea-factory-backend/utils"
)

type stubIdeas struct{ stats idea.Stats }

func (s stubIdeas) Stats(context.Context) (idea.Stats, error) { return s.stats, nil }

type stubUploads struct{ rows []uploadhistory.UploadHistory }

func (s stubUploads) Stats(context.Context) (uploadhistory.Stats, error) {
	return uploadhistory.Stats{TotalUploads: int64(len(s.rows))}, nil
}

func (s stubUploads) ListPaged(_ context.Context, _, limit int) (*uploadhistory.Page, error) {
	rows := s.rows
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return &uploadhistory.Page{Data: rows, Total: int64(len(s.rows))}, nil
}

type stubReviews int64

func (s stubReviews) CountPending(context.Context) (int64, error) { return int64(s), nil }

func newTestService(t *testing.T) (Service, *gorm.DB, uint) {
	t.Helper()
	db := testutil.DB(t, &auth.User{}, &auditlog.AuditLog{})
	log := utils.NopLogger()
	u := &auth.User{Username: "asha", FullName: "Asha Rao", Email: "asha@example.com", Role: auth.RoleUser, Active: true}
	require.NoError(t, db.Create(u).Error)

	uploads := stubUploads{}
	for i := 0; i < 7; i++ {
		uploads.rows = append(uploads.rows, uploadhistory.UploadHistory{BatchID: string(rune('a' + i))})
	}
	svc := NewService(NewRepository(db), stubIdeas{idea.Stats{TotalIdeas: 12, ActiveIdeas: 10}}, uploads, stubReviews(3),
		auditlog.NewService(auditlog.NewRepository(db), log), log)
	return svc, db, u.ID
}

func TestProfileCompletion(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	p, err := svc.Profile(ctx, id)
	require.NoError(t, err)
	require.Equal(t, auth.RoleUser, p.Role)
	require.Equal(t, 20, p.CompletionPercentage)

	bio, phone := "Builds small farms", "+91 98450 12345"
	p, err = svc.UpdateProfile(ctx, id, UpdateRequest{Bio: &bio, PhoneNumber: &phone}, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, bio, p.User.Bio)
	require.Equal(t, phone, p.User.PhoneNumber)
	require.Equal(t, 60, p.CompletionPercentage)
}

func TestUpdateProfileValidation(t *testing.T) {
	ctx := context.Background()
	svc, db, id := newTestService(t)

	long := strings.Repeat("9", 21)
	_, err := svc.UpdateProfile(ctx, id, UpdateRequest{PhoneNumber: &long}, "")
	require.True(t, apperr.Is(err, apperr.KindValidation))

	blank := "  "
	_, err = svc.UpdateProfile(ctx, id, UpdateRequest{FullName: &blank}, "")
	require.True(t, apperr.Is(err, apperr.KindValidation))

	var u auth.User
	require.NoError(t, db.First(&u, id).Error)
	require.Empty(t, u.PhoneNumber)
	require.Equal(t, "Asha Rao", u.FullName)

	loc := "Mysuru"
	_, err = svc.UpdateProfile(ctx, id+99, UpdateRequest{Location: &loc}, "")
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDashboardAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, db, id := newTestService(t)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return fixed }

	d, err := svc.Dashboard(ctx, id)
	require.NoError(t, err)
	require.Equal(t, fixed.UnixMilli(), d.Timestamp)
	require.Equal(t, "asha", d.User.Username)

	svc.Logout(ctx, id, "10.0.0.2")
	var n int64
	require.NoError(t, db.Model(&auditlog.AuditLog{}).Where("action = ?", auditlog.ActionUserLogout).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestAdminDashboard(t *testing.T) {
	svc, _, _ := newTestService(t)

	d, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 10, d.Ideas.ActiveIdeas)
	require.EqualValues(t, 7, d.Uploads.TotalUploads)
	require.EqualValues(t, 3, d.PendingReviews)
	require.Len(t, d.RecentUploads, recentUploadsOnDashboard)
}
