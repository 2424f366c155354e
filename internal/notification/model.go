package notification

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// Catalog event types carried on the catalog topic.
const (
	EventBatchIngested   = "batch.ingested"
	EventBatchDeleted    = "batch.deleted"
	EventReviewSubmitted = "review.submitted"
)

const (
	CategoryUpload = "upload"
	CategoryReview = "review"
	CategorySystem = "system"
)

// CatalogEvent is published by the ingestion pipeline, the upload ledger and
// the review aggregator. Fields not relevant to Type are left zero.
type CatalogEvent struct {
	Type       string    `json:"type"`
	BatchID    string    `json:"batchId,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	IdeaCount  int64     `json:"ideaCount,omitempty"`
	ReviewID   uint      `json:"reviewId,omitempty"`
	IdeaID     uint      `json:"ideaId,omitempty"`
	ActorID    *uint     `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Key partitions events so one batch or idea stays ordered.
func (e CatalogEvent) Key() string {
	switch {
	case e.BatchID != "":
		return "batch:" + e.BatchID
	case e.IdeaID != 0:
		return "idea:" + strconv.FormatUint(uint64(e.IdeaID), 10)
	default:
		return e.Type
	}
}

// InAppNotification is a per-user bell notification.
type InAppNotification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Title     string    `gorm:"size:150;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Category  string    `gorm:"size:30;not null" json:"category"` // upload, review, system
	IsRead    bool      `gorm:"default:false" json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (InAppNotification) TableName() string { return "in_app_notifications" }

// NotificationLog records each email fan-out.
type NotificationLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EventType  string         `gorm:"size:40;not null;index" json:"eventType"`
	Channel    string         `gorm:"size:20;not null" json:"channel"`
	Subject    string         `gorm:"size:255" json:"subject,omitempty"`
	Body       string         `gorm:"type:text;not null" json:"body"`
	Recipients datatypes.JSON `gorm:"not null" json:"recipients"`
	Status     string         `gorm:"size:20;default:'pending'" json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (NotificationLog) TableName() string { return "notification_logs" }

type InboxResponse struct {
	Data   []InAppNotification `json:"data"`
	Unread int64               `json:"unread"`
}
