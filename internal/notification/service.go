package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auth"
	"github.com/sharath018/idea-factory-backend/utils"
)

// AdminDirectory lists the users who receive catalog notifications.
type AdminDirectory interface {
	ListActiveAdmins(ctx context.Context) ([]auth.User, error)
}

// Mailer fans a message out to several recipients.
type Mailer interface {
	Enabled() bool
	SendBulk(recipients []string, subject, body string)
}

type Service interface {
	HandleEvent(ctx context.Context, evt CatalogEvent) error
	Inbox(ctx context.Context, userID uint, limit int) (*InboxResponse, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type service struct {
	repo   Repository
	admins AdminDirectory
	mailer Mailer
	log    *utils.Logger
}

func NewService(repo Repository, admins AdminDirectory, mailer Mailer, log *utils.Logger) Service {
	return &service{repo: repo, admins: admins, mailer: mailer, log: log}
}

// HandleEvent notifies every active admin about a catalog event: one in-app
// notification each, plus one email fan-out when SMTP is configured.
func (s *service) HandleEvent(ctx context.Context, evt CatalogEvent) error {
	title, message, category, ok := describe(evt)
	if !ok {
		s.log.Warn("ignoring unknown catalog event", "type", evt.Type)
		return nil
	}

	admins, err := s.admins.ListActiveAdmins(ctx)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	if len(admins) == 0 {
		return nil
	}

	items := make([]InAppNotification, 0, len(admins))
	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		items = append(items, InAppNotification{
			UserID:   a.ID,
			Title:    title,
			Message:  message,
			Category: category,
		})
		if a.Email != "" {
			emails = append(emails, a.Email)
		}
	}
	if err := s.repo.CreateInAppBatch(ctx, items); err != nil {
		return fmt.Errorf("store notifications: %w", err)
	}

	if s.mailer != nil && s.mailer.Enabled() && len(emails) > 0 {
		s.mailer.SendBulk(emails, title, message)
		recipients, _ := json.Marshal(emails)
		entry := &NotificationLog{
			EventType:  evt.Type,
			Channel:    "email",
			Subject:    title,
			Body:       message,
			Recipients: recipients,
			Status:     "sent",
		}
		if err := s.repo.CreateLog(ctx, entry); err != nil {
			s.log.Warn("notification log write failed", "event", evt.Type, "error", err)
		}
	}

	s.log.Info("catalog event delivered", "type", evt.Type, "admins", len(admins))
	return nil
}

func describe(evt CatalogEvent) (title, message, category string, ok bool) {
	switch evt.Type {
	case EventBatchIngested:
		return "Upload completed",
			fmt.Sprintf("%d ideas were imported from %s (batch %s).", evt.IdeaCount, evt.Filename, evt.BatchID),
			CategoryUpload, true
	case EventBatchDeleted:
		return "Upload batch deleted",
			fmt.Sprintf("Batch %s (%s) was deleted together with %d ideas.", evt.BatchID, evt.Filename, evt.IdeaCount),
			CategoryUpload, true
	case EventReviewSubmitted:
		return "New review awaiting approval",
			fmt.Sprintf("Review #%d was submitted for idea #%d.", evt.ReviewID, evt.IdeaID),
			CategoryReview, true
	}
	return "", "", "", false
}

func (s *service) Inbox(ctx context.Context, userID uint, limit int) (*InboxResponse, error) {
	items, err := s.repo.ListInAppByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal("failed to fetch notifications", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to count notifications", err)
	}
	return &InboxResponse{Data: items, Unread: unread}, nil
}

func (s *service) MarkRead(ctx context.Context, id, userID uint) error {
	err := s.repo.MarkInAppAsRead(ctx, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("notification not found")
	}
	if err != nil {
		return apperr.Internal("failed to mark as read", err)
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("failed to mark as read", err)
	}
	return n, nil
}
