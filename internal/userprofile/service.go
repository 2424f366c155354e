package userprofile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/uploadhistory"
	"github.com/sharath018/idea-factory-backend/utils"
)

const recentUploadsOnDashboard = 5

type IdeaStats interface {
	Stats(ctx context.Context) (idea.Stats, error)
}

type UploadStats interface {
	Stats(ctx context.Context) (uploadhistory.Stats, error)
	ListPaged(ctx context.Context, page, limit int) (*uploadhistory.Page, error)
}

type PendingReviews interface {
	CountPending(ctx context.Context) (int64, error)
}

type Service interface {
	Dashboard(ctx context.Context, userID uint) (*Dashboard, error)
	Profile(ctx context.Context, userID uint) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uint, req UpdateRequest, ip string) (*Profile, error)
	Logout(ctx context.Context, userID uint, ip string)
	AdminDashboard(ctx context.Context) (*AdminDashboard, error)
}

type service struct {
	repo    Repository
	ideas   IdeaStats
	uploads UploadStats
	reviews PendingReviews
	audit   auditlog.Service
	log     *utils.Logger
	now     func() time.Time
}

func NewService(repo Repository, ideas IdeaStats, uploads UploadStats, reviews PendingReviews, audit auditlog.Service, log *utils.Logger) Service {
	return &service{
		repo:    repo,
		ideas:   ideas,
		uploads: uploads,
		reviews: reviews,
		audit:   audit,
		log:     log,
		now:     time.Now,
	}
}

func (s *service) Profile(ctx context.Context, userID uint) (*Profile, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return &Profile{Role: u.Role, User: u, CompletionPercentage: completionPercentage(u.FullName, u.Bio, u.PhoneNumber, u.Location, u.ProfileImageURL)}, nil
}

func (s *service) Dashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Message: "User dashboard data", Profile: *p, Timestamp: s.now().UnixMilli()}, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, req UpdateRequest, ip string) (*Profile, error) {
	fields := map[string]interface{}{}
	checks := []struct {
		val    *string
		column string
		field  string
		max    int
	}{
		{req.FullName, "full_name", "fullName", 100},
		{req.Bio, "bio", "bio", maxBioLength},
		{req.PhoneNumber, "phone_number", "phoneNumber", maxPhoneLength},
		{req.Location, "location", "location", maxLocationLength},
		{req.ProfileImageURL, "profile_image_url", "profileImageUrl", maxImageURLLength},
	}
	for _, ch := range checks {
		if ch.val == nil {
			continue
		}
		v := strings.TrimSpace(*ch.val)
		if len([]rune(v)) > ch.max {
			return nil, apperr.Validation(fmt.Sprintf("%s must be at most %d characters", ch.field, ch.max))
		}
		fields[ch.column] = v
	}
	if v, ok := fields["full_name"]; ok && v == "" {
		return nil, apperr.Validation("fullName must not be blank")
	}

	if len(fields) > 0 {
		err := s.repo.UpdateFields(ctx, userID, fields)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		if err != nil {
			return nil, apperr.Internal("failed to update profile", err)
		}
		s.audit.LogAction(ctx, auditlog.Actor{UserID: &userID, IP: ip}, auditlog.ActionProfileUpdated, "user",
			strconv.FormatUint(uint64(userID), 10), nil, auditlog.StatusSuccess)
	}
	return s.Profile(ctx, userID)
}

// Logout only records the event; user tokens are stateless.
func (s *service) Logout(ctx context.Context, userID uint, ip string) {
	s.audit.LogAction(ctx, auditlog.Actor{UserID: &userID, IP: ip}, auditlog.ActionUserLogout, "user",
		strconv.FormatUint(uint64(userID), 10), nil, auditlog.StatusSuccess)
}

func (s *service) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	out := &AdminDashboard{}
	var err error
	if out.Ideas, err = s.ideas.Stats(ctx); err != nil {
		return nil, err
	}
	if out.Uploads, err = s.uploads.Stats(ctx); err != nil {
		return nil, err
	}
	if out.PendingReviews, err = s.reviews.CountPending(ctx); err != nil {
		return nil, err
	}
	recent, err := s.uploads.ListPaged(ctx, 1, recentUploadsOnDashboard)
	if err != nil {
		return nil, err
	}
	out.RecentUploads = recent.Data
	return out, nil
}

// completionPercentage is the share of non-blank optional profile fields.
func completionPercentage(fields ...string) int {
	if len(fields) == 0 {
		return 0
	}
	filled := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			filled++
		}
	}
	return int(float64(filled) / float64(len(fields)) * 100)
}
