package ideadetail

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/review"
)

// SWOT groups for internal factors.
const (
	FactorStrengths     = "STRENGTHS"
	FactorWeaknesses    = "WEAKNESSES"
	FactorOpportunities = "OPPORTUNITIES"
	FactorThreats       = "THREATS"
)

type InternalFactors struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	IdeaID     uint                        `gorm:"not null;index" json:"ideaId"`
	FactorType string                      `gorm:"size:30;not null" json:"factorType"`
	Factors    datatypes.JSONSlice[string] `json:"factors"`
	ColorCode  string                      `gorm:"size:30" json:"colorCode,omitempty"`
	IconCode   string                      `gorm:"size:50" json:"iconCode,omitempty"`
}

func (InternalFactors) TableName() string { return "idea_internal_factors" }

type Investment struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	IdeaID             uint            `gorm:"not null;index" json:"ideaId"`
	InvestmentCategory string          `gorm:"size:100;not null" json:"investmentCategory"`
	Amount             decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"amount"`
	Description        string          `gorm:"type:text" json:"description,omitempty"`
	PriorityLevel      string          `gorm:"size:20" json:"priorityLevel,omitempty"`
	Optional           bool            `gorm:"column:is_optional;not null;default:false" json:"isOptional"`
	PaymentTerms       string          `gorm:"size:100" json:"paymentTerms,omitempty"`
	SupplierInfo       string          `gorm:"size:255" json:"supplierInfo,omitempty"`
}

func (Investment) TableName() string { return "idea_investments" }

type Scheme struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	IdeaID              uint             `gorm:"not null;index" json:"ideaId"`
	SchemeName          string           `gorm:"size:255;not null" json:"schemeName"`
	SchemeType          string           `gorm:"size:30;index" json:"schemeType"`
	SchemeCategory      string           `gorm:"size:30" json:"schemeCategory,omitempty"`
	RegionState         string           `gorm:"size:100" json:"regionState,omitempty"`
	Description         string           `gorm:"type:text" json:"description,omitempty"`
	EligibilityCriteria string           `gorm:"type:text" json:"eligibilityCriteria,omitempty"`
	MaximumAmount       *decimal.Decimal `gorm:"type:numeric(15,2)" json:"maximumAmount,omitempty"`
	InterestRate        *decimal.Decimal `gorm:"type:numeric(5,2)" json:"interestRate,omitempty"`
	RepaymentPeriod     string           `gorm:"size:100" json:"repaymentPeriod,omitempty"`
	ApplicationDeadline *time.Time       `json:"applicationDeadline,omitempty"`
	ContactInfo         string           `gorm:"size:255" json:"contactInfo,omitempty"`
	WebsiteURL          string           `gorm:"size:500" json:"websiteUrl,omitempty"`
	Active              bool             `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

func (Scheme) TableName() string { return "idea_schemes" }

type BankLoan struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	IdeaID              uint             `gorm:"not null;index" json:"ideaId"`
	BankName            string           `gorm:"size:255;not null" json:"bankName"`
	LoanType            string           `gorm:"size:50;index" json:"loanType"`
	LoanName            string           `gorm:"size:255" json:"loanName,omitempty"`
	Description         string           `gorm:"type:text" json:"description,omitempty"`
	MinimumAmount       *decimal.Decimal `gorm:"type:numeric(15,2)" json:"minimumAmount,omitempty"`
	MaximumAmount       *decimal.Decimal `gorm:"type:numeric(15,2)" json:"maximumAmount,omitempty"`
	InterestRateMin     *decimal.Decimal `gorm:"type:numeric(5,2)" json:"interestRateMin,omitempty"`
	InterestRateMax     *decimal.Decimal `gorm:"type:numeric(5,2)" json:"interestRateMax,omitempty"`
	LoanTenureMin       string           `gorm:"size:50" json:"loanTenureMin,omitempty"`
	LoanTenureMax       string           `gorm:"size:50" json:"loanTenureMax,omitempty"`
	ProcessingFee       *decimal.Decimal `gorm:"type:numeric(15,2)" json:"processingFee,omitempty"`
	EligibilityCriteria string           `gorm:"type:text" json:"eligibilityCriteria,omitempty"`
	RequiredDocuments   string           `gorm:"type:text" json:"requiredDocuments,omitempty"`
	ContactInfo         string           `gorm:"size:255" json:"contactInfo,omitempty"`
	WebsiteURL          string           `gorm:"size:500" json:"websiteUrl,omitempty"`
	Active              bool             `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

func (BankLoan) TableName() string { return "idea_bank_loans" }

type InvestmentSummary struct {
	Investments     []Investment    `json:"investments"`
	TotalInvestment decimal.Decimal `json:"totalInvestment"`
	InvestmentCount int             `json:"investmentCount"`
}

// Complete is everything the idea detail page renders.
type Complete struct {
	Idea            *idea.Idea            `json:"idea"`
	InternalFactors []InternalFactors     `json:"internalFactors"`
	Investments     *InvestmentSummary    `json:"investments"`
	Schemes         []Scheme              `json:"schemes"`
	BankLoans       []BankLoan            `json:"bankLoans"`
	RatingSummary   *review.RatingSummary `json:"ratingSummary"`
	Reviews         []review.IdeaReview   `json:"reviews"`
}
