package ideadetail

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/review"
	"github.com/sharath018/idea-factory-backend/utils"
)

// IdeaReader loads an idea; public reads hide inactive ones.
type IdeaReader interface {
	Get(ctx context.Context, id uint, public bool) (*idea.Idea, error)
}

// Reviews supplies the review half of the detail page.
type Reviews interface {
	ListApproved(ctx context.Context, ideaID uint) ([]review.IdeaReview, error)
	RatingSummary(ctx context.Context, ideaID uint) (*review.RatingSummary, error)
}

type Service interface {
	InternalFactors(ctx context.Context, ideaID uint) ([]InternalFactors, error)
	CreateInternalFactors(ctx context.Context, ideaID uint, in InternalFactors, actor auditlog.Actor) (*InternalFactors, error)
	DeleteInternalFactors(ctx context.Context, id uint, actor auditlog.Actor) error

	Investments(ctx context.Context, ideaID uint) ([]Investment, error)
	InvestmentSummary(ctx context.Context, ideaID uint) (*InvestmentSummary, error)
	CreateInvestment(ctx context.Context, ideaID uint, in Investment, actor auditlog.Actor) (*Investment, error)
	DeleteInvestment(ctx context.Context, id uint, actor auditlog.Actor) error

	Schemes(ctx context.Context, ideaID uint) ([]Scheme, error)
	SchemesByType(ctx context.Context, ideaID uint, schemeType string) ([]Scheme, error)
	CreateScheme(ctx context.Context, ideaID uint, in Scheme, actor auditlog.Actor) (*Scheme, error)
	DeleteScheme(ctx context.Context, id uint, actor auditlog.Actor) error

	BankLoans(ctx context.Context, ideaID uint) ([]BankLoan, error)
	BankLoansByType(ctx context.Context, ideaID uint, loanType string) ([]BankLoan, error)
	CreateBankLoan(ctx context.Context, ideaID uint, in BankLoan, actor auditlog.Actor) (*BankLoan, error)
	DeleteBankLoan(ctx context.Context, id uint, actor auditlog.Actor) error

	Complete(ctx context.Context, ideaID uint) (*Complete, error)
}

type service struct {
	repo    Repository
	ideas   IdeaReader
	reviews Reviews
	audit   auditlog.Service
	log     *utils.Logger
}

func NewService(repo Repository, ideas IdeaReader, reviews Reviews, audit auditlog.Service, log *utils.Logger) Service {
	return &service{repo: repo, ideas: ideas, reviews: reviews, audit: audit, log: log}
}

// =============================
// Internal factors
// =============================

func (s *service) InternalFactors(ctx context.Context, ideaID uint) ([]InternalFactors, error) {
	out, err := s.repo.InternalFactors(ctx, ideaID)
	if err != nil {
		return nil, apperr.Internal("failed to load internal factors", err)
	}
	return out, nil
}

func (s *service) CreateInternalFactors(ctx context.Context, ideaID uint, in InternalFactors, actor auditlog.Actor) (*InternalFactors, error) {
	in.FactorType = strings.ToUpper(strings.TrimSpace(in.FactorType))
	switch in.FactorType {
	case FactorStrengths, FactorWeaknesses, FactorOpportunities, FactorThreats:
	default:
		return nil, apperr.Validation("factorType must be one of STRENGTHS, WEAKNESSES, OPPORTUNITIES, THREATS")
	}
	in.Factors = idea.NormalizeTags(in.Factors)
	in.ID, in.IdeaID = 0, ideaID
	if err := s.create(ctx, ideaID, &in, "internal_factors", actor); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *service) DeleteInternalFactors(ctx context.Context, id uint, actor auditlog.Actor) error {
	return s.delete(ctx, &InternalFactors{}, id, "internal_factors", actor)
}

// =============================
// Investments
// =============================

func (s *service) Investments(ctx context.Context, ideaID uint) ([]Investment, error) {
	out, err := s.repo.Investments(ctx, ideaID)
	if err != nil {
		return nil, apperr.Internal("failed to load investments", err)
	}
	return out, nil
}

func (s *service) InvestmentSummary(ctx context.Context, ideaID uint) (*InvestmentSummary, error) {
	rows, err := s.Investments(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	if rows == nil {
		rows = []Investment{}
	}
	return &InvestmentSummary{Investments: rows, TotalInvestment: total, InvestmentCount: len(rows)}, nil
}

func (s *service) CreateInvestment(ctx context.Context, ideaID uint, in Investment, actor auditlog.Actor) (*Investment, error) {
	in.InvestmentCategory = strings.TrimSpace(in.InvestmentCategory)
	if in.InvestmentCategory == "" {
		return nil, apperr.Validation("investmentCategory is required")
	}
	if in.Amount.IsNegative() {
		return nil, apperr.Validation("amount must not be negative")
	}
	in.PriorityLevel = strings.ToUpper(strings.TrimSpace(in.PriorityLevel))
	in.ID, in.IdeaID = 0, ideaID
	if err := s.create(ctx, ideaID, &in, "investment", actor); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *service) DeleteInvestment(ctx context.Context, id uint, actor auditlog.Actor) error {
	return s.delete(ctx, &Investment{}, id, "investment", actor)
}

// =============================
// Schemes
// =============================

func (s *service) Schemes(ctx context.Context, ideaID uint) ([]Scheme, error) {
	out, err := s.repo.ActiveSchemes(ctx, ideaID)
	if err != nil {
		return nil, apperr.Internal("failed to load schemes", err)
	}
	return out, nil
}

func (s *service) SchemesByType(ctx context.Context, ideaID uint, schemeType string) ([]Scheme, error) {
	out, err := s.repo.SchemesByType(ctx, ideaID, strings.ToUpper(strings.TrimSpace(schemeType)))
	if err != nil {
		return nil, apperr.Internal("failed to load schemes", err)
	}
	return out, nil
}

func (s *service) CreateScheme(ctx context.Context, ideaID uint, in Scheme, actor auditlog.Actor) (*Scheme, error) {
	in.SchemeName = strings.TrimSpace(in.SchemeName)
	if in.SchemeName == "" {
		return nil, apperr.Validation("schemeName is required")
	}
	if in.MaximumAmount != nil && in.MaximumAmount.IsNegative() {
		return nil, apperr.Validation("maximumAmount must not be negative")
	}
	in.SchemeType = strings.ToUpper(strings.TrimSpace(in.SchemeType))
	in.SchemeCategory = strings.ToUpper(strings.TrimSpace(in.SchemeCategory))
	in.ID, in.IdeaID, in.Active = 0, ideaID, true
	if err := s.create(ctx, ideaID, &in, "scheme", actor); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *service) DeleteScheme(ctx context.Context, id uint, actor auditlog.Actor) error {
	return s.delete(ctx, &Scheme{}, id, "scheme", actor)
}

// =============================
// Bank loans
// =============================

func (s *service) BankLoans(ctx context.Context, ideaID uint) ([]BankLoan, error) {
	out, err := s.repo.ActiveBankLoans(ctx, ideaID)
	if err != nil {
		return nil, apperr.Internal("failed to load bank loans", err)
	}
	return out, nil
}

func (s *service) BankLoansByType(ctx context.Context, ideaID uint, loanType string) ([]BankLoan, error) {
	out, err := s.repo.BankLoansByType(ctx, ideaID, strings.ToUpper(strings.TrimSpace(loanType)))
	if err != nil {
		return nil, apperr.Internal("failed to load bank loans", err)
	}
	return out, nil
}

func (s *service) CreateBankLoan(ctx context.Context, ideaID uint, in BankLoan, actor auditlog.Actor) (*BankLoan, error) {
	in.BankName = strings.TrimSpace(in.BankName)
	if in.BankName == "" {
		return nil, apperr.Validation("bankName is required")
	}
	if in.MinimumAmount != nil && in.MaximumAmount != nil && in.MinimumAmount.GreaterThan(*in.MaximumAmount) {
		return nil, apperr.Validation("minimumAmount must not exceed maximumAmount")
	}
	in.LoanType = strings.ToUpper(strings.TrimSpace(in.LoanType))
	in.ID, in.IdeaID, in.Active = 0, ideaID, true
	if err := s.create(ctx, ideaID, &in, "bank_loan", actor); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *service) DeleteBankLoan(ctx context.Context, id uint, actor auditlog.Actor) error {
	return s.delete(ctx, &BankLoan{}, id, "bank_loan", actor)
}

// =============================
// Detail page
// =============================

func (s *service) Complete(ctx context.Context, ideaID uint) (*Complete, error) {
	i, err := s.ideas.Get(ctx, ideaID, true)
	if err != nil {
		return nil, err
	}
	out := &Complete{Idea: i}
	if out.InternalFactors, err = s.InternalFactors(ctx, ideaID); err != nil {
		return nil, err
	}
	if out.Investments, err = s.InvestmentSummary(ctx, ideaID); err != nil {
		return nil, err
	}
	if out.Schemes, err = s.Schemes(ctx, ideaID); err != nil {
		return nil, err
	}
	if out.BankLoans, err = s.BankLoans(ctx, ideaID); err != nil {
		return nil, err
	}
	if out.RatingSummary, err = s.reviews.RatingSummary(ctx, ideaID); err != nil {
		return nil, err
	}
	if out.Reviews, err = s.reviews.ListApproved(ctx, ideaID); err != nil {
		return nil, err
	}
	return out, nil
}

// =============================
// helpers
// =============================

func (s *service) create(ctx context.Context, ideaID uint, row interface{}, kind string, actor auditlog.Actor) error {
	if _, err := s.ideas.Get(ctx, ideaID, false); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return apperr.Internal("failed to save "+kind, err)
	}
	s.audit.LogAction(ctx, actor, auditlog.ActionIdeaDetailModified, kind, strconv.FormatUint(uint64(ideaID), 10),
		map[string]interface{}{"op": "create"}, auditlog.StatusSuccess)
	return nil
}

func (s *service) delete(ctx context.Context, model interface{}, id uint, kind string, actor auditlog.Actor) error {
	err := s.repo.Delete(ctx, model, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(strings.ReplaceAll(kind, "_", " ") + " not found")
	}
	if err != nil {
		return apperr.Internal("failed to delete "+kind, err)
	}
	s.audit.LogAction(ctx, actor, auditlog.ActionIdeaDetailModified, kind, strconv.FormatUint(uint64(id), 10),
		map[string]interface{}{"op": "delete"}, auditlog.StatusSuccess)
	return nil
}
