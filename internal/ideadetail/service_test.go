package ideadetail

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/idea"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/internal/review"
	"github.com/sharath018/idea-factory-backend/internal/testutil"
	"github.com/sharath018/idea-factory-backend/utils"
)

type fixture struct {
	svc     Service
	reviews review.Service
	db      *gorm.DB
	ideaID  uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t, &idea.Idea{}, &review.IdeaReview{}, &auditlog.AuditLog{},
		&InternalFactors{}, &Investment{}, &Scheme{}, &BankLoan{})
	log := utils.NopLogger()
	audit := auditlog.NewService(auditlog.NewRepository(db), log)
	ideaRepo := idea.NewRepository(db)
	ideas := idea.NewService(ideaRepo, utils.NewMemoryCache(), time.Minute, audit, log)
	reviews := review.NewService(review.NewRepository(db), ideaRepo, notification.NopPublisher{}, audit, log)

	i := &idea.Idea{Title: "Mushroom farm", Active: true}
	require.NoError(t, db.Create(i).Error)
	return &fixture{
		svc:     NewService(NewRepository(db), ideas, reviews, audit, log),
		reviews: reviews,
		db:      db,
		ideaID:  i.ID,
	}
}

func TestInvestmentSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	empty, err := f.svc.InvestmentSummary(ctx, f.ideaID)
	require.NoError(t, err)
	require.True(t, empty.TotalInvestment.IsZero())
	require.NotNil(t, empty.Investments)

	for _, amt := range []string{"1200.50", "30000", "0"} {
		_, err := f.svc.CreateInvestment(ctx, f.ideaID, Investment{InvestmentCategory: "Machinery", Amount: decimal.RequireFromString(amt)}, auditlog.Actor{})
		require.NoError(t, err)
	}

	sum, err := f.svc.InvestmentSummary(ctx, f.ideaID)
	require.NoError(t, err)
	require.Equal(t, 3, sum.InvestmentCount)
	require.True(t, sum.TotalInvestment.Equal(decimal.RequireFromString("31200.50")))
	require.True(t, sum.Investments[0].Amount.Equal(decimal.NewFromInt(30000)), "largest first")
}

func TestCreateInvestmentValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateInvestment(ctx, f.ideaID, Investment{InvestmentCategory: "Land", Amount: decimal.NewFromInt(-1)}, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.CreateInvestment(ctx, f.ideaID, Investment{Amount: decimal.NewFromInt(5)}, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.CreateInvestment(ctx, f.ideaID+50, Investment{InvestmentCategory: "Land"}, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSchemesAndLoansByType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	gov, err := f.svc.CreateScheme(ctx, f.ideaID, Scheme{SchemeName: "PMEGP", SchemeType: "government"}, auditlog.Actor{})
	require.NoError(t, err)
	require.Equal(t, "GOVERNMENT", gov.SchemeType)
	_, err = f.svc.CreateScheme(ctx, f.ideaID, Scheme{SchemeName: "Seed grant", SchemeType: "NGO"}, auditlog.Actor{})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&Scheme{}).Where("scheme_name = ?", "Seed grant").Update("is_active", false).Error)

	active, err := f.svc.Schemes(ctx, f.ideaID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	ngo, err := f.svc.SchemesByType(ctx, f.ideaID, "ngo")
	require.NoError(t, err)
	require.Len(t, ngo, 1)

	_, err = f.svc.CreateBankLoan(ctx, f.ideaID, BankLoan{BankName: "SBI", LoanType: "msme_loan"}, auditlog.Actor{})
	require.NoError(t, err)
	loans, err := f.svc.BankLoansByType(ctx, f.ideaID, "MSME_LOAN")
	require.NoError(t, err)
	require.Len(t, loans, 1)

	lo, hi := decimal.NewFromInt(10), decimal.NewFromInt(5)
	_, err = f.svc.CreateBankLoan(ctx, f.ideaID, BankLoan{BankName: "X", MinimumAmount: &lo, MaximumAmount: &hi}, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestInternalFactorsAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateInternalFactors(ctx, f.ideaID, InternalFactors{FactorType: "luck"}, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	created, err := f.svc.CreateInternalFactors(ctx, f.ideaID,
		InternalFactors{FactorType: "strengths", Factors: []string{"Low cost", " "}}, auditlog.Actor{})
	require.NoError(t, err)
	require.Equal(t, FactorStrengths, created.FactorType)
	require.Equal(t, []string{"Low cost"}, []string(created.Factors))

	require.NoError(t, f.svc.DeleteInternalFactors(ctx, created.ID, auditlog.Actor{}))
	err = f.svc.DeleteInternalFactors(ctx, created.ID, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	var audits int64
	require.NoError(t, f.db.Model(&auditlog.AuditLog{}).Where("action = ?", auditlog.ActionIdeaDetailModified).Count(&audits).Error)
	require.EqualValues(t, 2, audits)
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateInvestment(ctx, f.ideaID, Investment{InvestmentCategory: "Land", Amount: decimal.NewFromInt(100)}, auditlog.Actor{})
	require.NoError(t, err)
	rv, err := f.reviews.Submit(ctx, f.ideaID, review.SubmitRequest{ReviewerName: "Ravi", Comment: "Good", Rating: 4}, nil)
	require.NoError(t, err)
	require.NoError(t, f.reviews.Approve(ctx, rv.ID, auditlog.Actor{}))

	out, err := f.svc.Complete(ctx, f.ideaID)
	require.NoError(t, err)
	require.Equal(t, "Mushroom farm", out.Idea.Title)
	require.Equal(t, 1, out.Investments.InvestmentCount)
	require.Len(t, out.Reviews, 1)
	require.Equal(t, 4.0, out.RatingSummary.AverageRating)

	_, err = f.svc.Complete(ctx, f.ideaID+1)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, f.db.Model(&idea.Idea{}).Where("id = ?", f.ideaID).Update("active", false).Error)
	_, err = f.svc.Complete(ctx, f.ideaID)
	require.True(t, apperr.Is(err, apperr.KindNotFound), "inactive ideas are hidden")
}
