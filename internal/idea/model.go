package idea

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"

	LocationUrban = "Urban"
	LocationRural = "Rural"
	LocationBoth  = "Both"
)

// Idea is one catalog listing.
type Idea struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	Title               string                      `gorm:"size:255;not null" json:"title"`
	Description         string                      `gorm:"type:text" json:"description"`
	Category            string                      `gorm:"size:100;index" json:"category"`
	Sector              string                      `gorm:"size:150;index" json:"sector"`
	InvestmentNeeded    decimal.Decimal             `gorm:"type:numeric(15,2);not null;default:0" json:"investmentNeeded"`
	ExpertiseNeeded     string                      `gorm:"type:text" json:"expertiseNeeded"`
	TrainingNeeded      string                      `gorm:"type:text" json:"trainingNeeded"`
	Resources           string                      `gorm:"type:text" json:"resources"`
	SuccessExamples     string                      `gorm:"type:text" json:"successExamples"`
	VideoURL            string                      `gorm:"size:500" json:"videoUrl"`
	GovernmentSubsidies string                      `gorm:"type:text" json:"governmentSubsidies"`
	FundingOptions      string                      `gorm:"type:text" json:"fundingOptions"`
	BankAssistance      string                      `gorm:"type:text" json:"bankAssistance"`
	TargetAudience      datatypes.JSONSlice[string] `json:"targetAudience"`
	SpecialAdvantages   datatypes.JSONSlice[string] `json:"specialAdvantages"`
	DifficultyLevel     string                      `gorm:"size:20;index" json:"difficultyLevel"`
	TimeToMarket        string                      `gorm:"size:50" json:"timeToMarket"`
	Location            string                      `gorm:"size:20;index" json:"location"`
	ImageURL            string                      `gorm:"size:500" json:"imageUrl"`
	Active              bool                        `gorm:"not null;default:true;index" json:"active"`
	UploadBatchID       *string                     `gorm:"size:64;index" json:"uploadBatchId"`
	CreatedAt           time.Time                   `json:"createdAt"`
	UpdatedAt           time.Time                   `json:"updatedAt"`
}

func (Idea) TableName() string {
	return "ideas"
}

// Request is the full mutable field set of an Idea; updates replace every field.
type Request struct {
	Title               string          `json:"title" binding:"required" example:"Organic Vegetable Farm"`
	Description         string          `json:"description"`
	Category            string          `json:"category" example:"Agriculture"`
	Sector              string          `json:"sector" example:"Organic Farming"`
	InvestmentNeeded    decimal.Decimal `json:"investmentNeeded" swaggertype:"number" example:"50000"`
	ExpertiseNeeded     string          `json:"expertiseNeeded"`
	TrainingNeeded      string          `json:"trainingNeeded"`
	Resources           string          `json:"resources"`
	SuccessExamples     string          `json:"successExamples"`
	VideoURL            string          `json:"videoUrl"`
	GovernmentSubsidies string          `json:"governmentSubsidies"`
	FundingOptions      string          `json:"fundingOptions"`
	BankAssistance      string          `json:"bankAssistance"`
	TargetAudience      []string        `json:"targetAudience"`
	SpecialAdvantages   []string        `json:"specialAdvantages"`
	DifficultyLevel     string          `json:"difficultyLevel" example:"Medium"`
	TimeToMarket        string          `json:"timeToMarket" example:"3-6 months"`
	Location            string          `json:"location" example:"Rural"`
	ImageURL            string          `json:"imageUrl"`
}

// Apply copies every mutable field of the request onto i.
func (r Request) Apply(i *Idea) {
	i.Title = r.Title
	i.Description = r.Description
	i.Category = r.Category
	i.Sector = r.Sector
	i.InvestmentNeeded = r.InvestmentNeeded
	i.ExpertiseNeeded = r.ExpertiseNeeded
	i.TrainingNeeded = r.TrainingNeeded
	i.Resources = r.Resources
	i.SuccessExamples = r.SuccessExamples
	i.VideoURL = r.VideoURL
	i.GovernmentSubsidies = r.GovernmentSubsidies
	i.FundingOptions = r.FundingOptions
	i.BankAssistance = r.BankAssistance
	i.TargetAudience = NormalizeTags(r.TargetAudience)
	i.SpecialAdvantages = NormalizeTags(r.SpecialAdvantages)
	i.DifficultyLevel = r.DifficultyLevel
	i.TimeToMarket = r.TimeToMarket
	i.Location = r.Location
	i.ImageURL = r.ImageURL
}

// Filter holds the optional, conjunctive listing predicates. Empty values
// are ignored.
type Filter struct {
	Category         string
	Sector           string
	DifficultyLevel  string
	Location         string
	MaxInvestment    *decimal.Decimal
	TargetAudience   string
	SpecialAdvantage string
	Search           string
	Active           *bool
}

type PageRequest struct {
	Page    int
	Limit   int
	SortBy  string
	SortDir string
}

type Page struct {
	Data       []Idea `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

type Stats struct {
	TotalIdeas  int64 `json:"totalIdeas"`
	ActiveIdeas int64 `json:"activeIdeas"`
}
