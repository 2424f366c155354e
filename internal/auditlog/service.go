package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/utils"
)

type Service interface {
	LogAction(ctx context.Context, actor Actor, action, resourceType, resourceID string, details map[string]interface{}, status string)
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error)
	GetAuditLogByID(ctx context.Context, id uint) (*AuditLogResponse, error)
}

type service struct {
	repo Repository
	log  *utils.Logger
}

func NewService(repo Repository, log *utils.Logger) Service {
	return &service{repo: repo, log: log}
}

// LogAction records an audit entry. Failures are logged, never returned:
// the audited operation has already happened.
func (s *service) LogAction(ctx context.Context, actor Actor, action, resourceType, resourceID string, details map[string]interface{}, status string) {
	if details == nil {
		details = map[string]interface{}{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		raw = []byte("{}")
	}

	entry := &AuditLog{
		UserID:       actor.UserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      raw,
		IPAddress:    actor.IP,
		Status:       status,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Error("audit log write failed", "action", action, "resource_id", resourceID, "error", err)
	}
}

func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("failed to retrieve audit logs", err)
	}
	if logs == nil {
		logs = []AuditLogResponse{}
	}

	return &PaginatedAuditLogs{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *service) GetAuditLogByID(ctx context.Context, id uint) (*AuditLogResponse, error) {
	log, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("audit log not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to retrieve audit log", err)
	}
	return log, nil
}
