package auditlog

import (
	"time"

	"gorm.io/datatypes"
)

// Actions recorded in the audit trail.
const (
	ActionIdeaCreated        = "IDEA_CREATED"
	ActionIdeaUpdated        = "IDEA_UPDATED"
	ActionIdeaDeleted        = "IDEA_DELETED"
	ActionIdeaStatusToggled  = "IDEA_STATUS_TOGGLED"
	ActionBatchUploaded      = "BATCH_UPLOADED"
	ActionBatchDeleted       = "BATCH_DELETED"
	ActionReviewApproved     = "REVIEW_APPROVED"
	ActionReviewRejected     = "REVIEW_REJECTED"
	ActionAdminLogin         = "ADMIN_LOGIN"
	ActionCategoryCreated    = "CATEGORY_CREATED"
	ActionIdeaDetailModified = "IDEA_DETAIL_MODIFIED"
	ActionProfileUpdated     = "PROFILE_UPDATED"
	ActionUserLogout         = "USER_LOGOUT"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// AuditLog represents the audit_logs table
type AuditLog struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       *uint          `gorm:"index" json:"userId"` // nullable (failed login)
	Action       string         `gorm:"size:100;not null;index" json:"action"`
	ResourceType string         `gorm:"size:50;index" json:"resourceType"`
	ResourceID   string         `gorm:"size:64;index" json:"resourceId"`
	Details      datatypes.JSON `json:"details"`
	IPAddress    string         `gorm:"size:45" json:"ipAddress"`
	Status       string         `gorm:"size:20;not null;index" json:"status"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Actor identifies who triggered an audited action.
type Actor struct {
	UserID *uint
	IP     string
}

// AuditLogResponse adds the actor's display name.
type AuditLogResponse struct {
	ID           uint           `json:"id"`
	UserID       *uint          `json:"userId"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resourceType"`
	ResourceID   string         `json:"resourceId"`
	Details      datatypes.JSON `json:"details"`
	IPAddress    string         `json:"ipAddress"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	UserName     *string        `json:"userName,omitempty"`
}

type AuditLogFilter struct {
	UserID       *uint
	Action       string
	ResourceType string
	Status       string
	FromDate     *time.Time
	ToDate       *time.Time
	Page         int
	Limit        int
}

type PaginatedAuditLogs struct {
	Data       []AuditLogResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}
