package uploadhistory

import "time"

const (
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// UploadHistory is one ingestion batch. The row is written before the file
// is parsed and updated once when the batch finishes.
type UploadHistory struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Filename        string    `gorm:"size:255;not null" json:"filename"`
	BatchID         string    `gorm:"size:64;uniqueIndex;not null" json:"batchId"`
	UploadTimestamp time.Time `gorm:"not null;index" json:"uploadTimestamp"`
	IdeasCount      int64     `gorm:"not null;default:0" json:"ideasCount"`
	FileSize        int64     `json:"fileSize"`
	ContentType     string    `gorm:"size:150" json:"contentType"`
	UploadedBy      string    `gorm:"size:100" json:"uploadedBy"`
	Status          string    `gorm:"size:20;not null;default:PROCESSING;index" json:"status"`
}

func (UploadHistory) TableName() string { return "upload_history" }

type Stats struct {
	TotalUploads       int64 `json:"totalUploads"`
	TotalIdeasUploaded int64 `json:"totalIdeasUploaded"`
}

type Page struct {
	Data       []UploadHistory `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

type DeleteResult struct {
	BatchID      string `json:"batchId"`
	DeletedIdeas int64  `json:"deletedIdeas"`
}
