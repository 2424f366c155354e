package review

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/utils"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IdeaLookup reports whether an idea exists.
type IdeaLookup interface {
	GetByID(ctx context.Context, id uint) (*idea.Idea, error)
}

type Service interface {
	Submit(ctx context.Context, ideaID uint, req SubmitRequest, userID *uint) (*IdeaReview, error)
	Approve(ctx context.Context, id uint, actor auditlog.Actor) error
	Reject(ctx context.Context, id uint, actor auditlog.Actor) error
	Vote(ctx context.Context, id uint, helpful bool) error

	ListApproved(ctx context.Context, ideaID uint) ([]IdeaReview, error)
	ListPending(ctx context.Context) ([]IdeaReview, error)
	CountPending(ctx context.Context) (int64, error)
	RatingSummary(ctx context.Context, ideaID uint) (*RatingSummary, error)
}

type service struct {
	repo      Repository
	ideas     IdeaLookup
	publisher notification.Publisher
	audit     auditlog.Service
	log       *utils.Logger
}

func NewService(repo Repository, ideas IdeaLookup, publisher notification.Publisher, audit auditlog.Service, log *utils.Logger) Service {
	return &service{repo: repo, ideas: ideas, publisher: publisher, audit: audit, log: log}
}

func validate(req *SubmitRequest) error {
	req.ReviewerName = strings.TrimSpace(req.ReviewerName)
	req.ReviewerEmail = strings.TrimSpace(req.ReviewerEmail)
	req.ReviewerWebsite = strings.TrimSpace(req.ReviewerWebsite)
	req.Comment = strings.TrimSpace(req.Comment)

	switch {
	case req.ReviewerName == "":
		return apperr.Validation("reviewerName is required")
	case len([]rune(req.ReviewerName)) > MaxReviewerNameLength:
		return apperr.Validation(fmt.Sprintf("reviewerName must be at most %d characters", MaxReviewerNameLength))
	case req.Comment == "":
		return apperr.Validation("comment is required")
	case len([]rune(req.Comment)) > MaxCommentLength:
		return apperr.Validation(fmt.Sprintf("comment must be at most %d characters", MaxCommentLength))
	case req.Rating < MinRating || req.Rating > MaxRating:
		return apperr.Validation(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	case len([]rune(req.ReviewerEmail)) > MaxReviewerEmailLength:
		return apperr.Validation(fmt.Sprintf("reviewerEmail must be at most %d characters", MaxReviewerEmailLength))
	case req.ReviewerEmail != "" && !emailPattern.MatchString(req.ReviewerEmail):
		return apperr.Validation("reviewerEmail is not a valid email address")
	case len([]rune(req.ReviewerWebsite)) > MaxReviewerWebsiteLength:
		return apperr.Validation(fmt.Sprintf("reviewerWebsite must be at most %d characters", MaxReviewerWebsiteLength))
	}
	return nil
}

// Submit stores a new, unapproved review after every check has passed.
func (s *service) Submit(ctx context.Context, ideaID uint, req SubmitRequest, userID *uint) (*IdeaReview, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if _, err := s.ideas.GetByID(ctx, ideaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("idea not found")
		}
		return nil, apperr.Internal("failed to load idea", err)
	}

	rv := &IdeaReview{
		IdeaID:          ideaID,
		UserID:          userID,
		ReviewerName:    req.ReviewerName,
		ReviewerEmail:   req.ReviewerEmail,
		ReviewerWebsite: req.ReviewerWebsite,
		Comment:         req.Comment,
		Rating:          req.Rating,
		Recommended:     req.Recommended,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, apperr.Internal("failed to save review", err)
	}

	if err := s.publisher.Publish(ctx, notification.CatalogEvent{
		Type:     notification.EventReviewSubmitted,
		ReviewID: rv.ID,
		IdeaID:   ideaID,
		ActorID:  userID,
	}); err != nil {
		s.log.Warn("review.submitted publish failed", "review_id", rv.ID, "error", err)
	}
	return rv, nil
}

func (s *service) Approve(ctx context.Context, id uint, actor auditlog.Actor) error {
	err := s.repo.Approve(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("review not found")
	}
	if err != nil {
		return apperr.Internal("failed to approve review", err)
	}
	s.audit.LogAction(ctx, actor, auditlog.ActionReviewApproved, "review", strconv.FormatUint(uint64(id), 10), nil, auditlog.StatusSuccess)
	return nil
}

// Reject deletes the review outright.
func (s *service) Reject(ctx context.Context, id uint, actor auditlog.Actor) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("review not found")
	}
	if err != nil {
		return apperr.Internal("failed to reject review", err)
	}
	s.audit.LogAction(ctx, actor, auditlog.ActionReviewRejected, "review", strconv.FormatUint(uint64(id), 10), nil, auditlog.StatusSuccess)
	return nil
}

func (s *service) Vote(ctx context.Context, id uint, helpful bool) error {
	err := s.repo.IncrementVote(ctx, id, helpful)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("review not found")
	}
	if err != nil {
		return apperr.Internal("failed to record vote", err)
	}
	return nil
}

func (s *service) ListApproved(ctx context.Context, ideaID uint) ([]IdeaReview, error) {
	out, err := s.repo.ListApproved(ctx, ideaID)
	if err != nil {
		return nil, apperr.Internal("failed to list reviews", err)
	}
	return out, nil
}

func (s *service) ListPending(ctx context.Context) ([]IdeaReview, error) {
	out, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list pending reviews", err)
	}
	return out, nil
}

func (s *service) CountPending(ctx context.Context) (int64, error) {
	n, err := s.repo.CountPending(ctx)
	if err != nil {
		return 0, apperr.Internal("failed to count pending reviews", err)
	}
	return n, nil
}

func (s *service) RatingSummary(ctx context.Context, ideaID uint) (*RatingSummary, error) {
	counts, err := s.repo.RatingCounts(ctx, ideaID)
	if err != nil {
		return nil, apperr.Internal("failed to load rating summary", err)
	}
	return summarize(counts), nil
}

// summarize fills every rating bucket and rounds the average to two places.
func summarize(counts map[int]int64) *RatingSummary {
	out := &RatingSummary{RatingDistribution: make(map[int]int64, MaxRating)}
	var sum int64
	for r := MinRating; r <= MaxRating; r++ {
		n := counts[r]
		out.RatingDistribution[r] = n
		out.TotalReviews += n
		sum += int64(r) * n
	}
	if out.TotalReviews > 0 {
		avg := float64(sum) / float64(out.TotalReviews)
		out.AverageRating = math.Round(avg*100) / 100
	}
	return out
}
