package userprofile

import (
	"github.com/sharath018/idea-factory-backend/internal/auth"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/uploadhistory"
)

const (
	maxBioLength      = 500
	maxPhoneLength    = 20
	maxLocationLength = 100
	maxImageURLLength = 500
)

// UpdateRequest changes only the fields that are present.
type UpdateRequest struct {
	FullName        *string `json:"fullName"`
	Bio             *string `json:"bio"`
	PhoneNumber     *string `json:"phoneNumber" example:"+91 98450 12345"`
	Location        *string `json:"location" example:"Bengaluru"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

type Profile struct {
	Role                 string     `json:"role"`
	User                 *auth.User `json:"user"`
	CompletionPercentage int        `json:"profileCompletionPercentage"`
}

type Dashboard struct {
	Message   string `json:"message"`
	Profile
	Timestamp int64 `json:"timestamp"`
}

// AdminDashboard is the landing summary for admins.
type AdminDashboard struct {
	Ideas          idea.Stats                    `json:"ideas"`
	Uploads        uploadhistory.Stats           `json:"uploads"`
	PendingReviews int64                         `json:"pendingReviews"`
	RecentUploads  []uploadhistory.UploadHistory `json:"recentUploads"`
}
