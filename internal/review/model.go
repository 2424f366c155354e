package review

import "time"

const (
	MaxReviewerNameLength    = 100
	MaxReviewerEmailLength   = 100
	MaxReviewerWebsiteLength = 100
	MaxCommentLength         = 500
	MinRating                = 1
	MaxRating                = 5
)

// IdeaReview is a visitor review. It stays hidden until an admin approves it.
type IdeaReview struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	IdeaID          uint      `gorm:"not null;index" json:"ideaId"`
	UserID          *uint     `gorm:"index" json:"userId,omitempty"`
	ReviewerName    string    `gorm:"size:100;not null" json:"reviewerName"`
	ReviewerEmail   string    `gorm:"size:100" json:"reviewerEmail,omitempty"`
	ReviewerWebsite string    `gorm:"size:100" json:"reviewerWebsite,omitempty"`
	Comment         string    `gorm:"size:500;not null" json:"comment"`
	Rating          int       `gorm:"not null" json:"rating"`
	HelpfulVotes    int       `gorm:"not null;default:0" json:"helpfulVotes"`
	UnhelpfulVotes  int       `gorm:"not null;default:0" json:"unhelpfulVotes"`
	Recommended     bool      `gorm:"column:is_recommended;not null;default:false" json:"isRecommended"`
	Approved        bool      `gorm:"column:is_approved;not null;default:false;index" json:"isApproved"`
	CreatedAt       time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (IdeaReview) TableName() string {
	return "idea_reviews"
}

type SubmitRequest struct {
	ReviewerName    string `json:"reviewerName" example:"Asha"`
	ReviewerEmail   string `json:"reviewerEmail" example:"asha@example.com"`
	ReviewerWebsite string `json:"reviewerWebsite"`
	Comment         string `json:"comment" example:"Clear plan, realistic budget."`
	Rating          int    `json:"rating" example:"4"`
	Recommended     bool   `json:"isRecommended"`
}

type VoteRequest struct {
	Helpful *bool `json:"helpful" binding:"required"`
}

// RatingSummary aggregates approved reviews only.
type RatingSummary struct {
	AverageRating      float64       `json:"averageRating"`
	TotalReviews       int64         `json:"totalReviews"`
	RatingDistribution map[int]int64 `json:"ratingDistribution"`
}
