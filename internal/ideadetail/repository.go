package ideadetail

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, row interface{}) error
	// Delete removes the row of model's table with id; gorm.ErrRecordNotFound
	// when there is none.
	Delete(ctx context.Context, model interface{}, id uint) error

	InternalFactors(ctx context.Context, ideaID uint) ([]InternalFactors, error)
	Investments(ctx context.Context, ideaID uint) ([]Investment, error)
	ActiveSchemes(ctx context.Context, ideaID uint) ([]Scheme, error)
	SchemesByType(ctx context.Context, ideaID uint, schemeType string) ([]Scheme, error)
	ActiveBankLoans(ctx context.Context, ideaID uint) ([]BankLoan, error)
	BankLoansByType(ctx context.Context, ideaID uint, loanType string) ([]BankLoan, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, row interface{}) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) Delete(ctx context.Context, model interface{}, id uint) error {
	res := r.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) InternalFactors(ctx context.Context, ideaID uint) ([]InternalFactors, error) {
	var out []InternalFactors
	err := r.db.WithContext(ctx).Where("idea_id = ?", ideaID).Order("id").Find(&out).Error
	return out, err
}

func (r *repository) Investments(ctx context.Context, ideaID uint) ([]Investment, error) {
	var out []Investment
	err := r.db.WithContext(ctx).Where("idea_id = ?", ideaID).Order("amount DESC, id").Find(&out).Error
	return out, err
}

func (r *repository) ActiveSchemes(ctx context.Context, ideaID uint) ([]Scheme, error) {
	var out []Scheme
	err := r.db.WithContext(ctx).Where("idea_id = ? AND is_active = ?", ideaID, true).Order("id").Find(&out).Error
	return out, err
}

func (r *repository) SchemesByType(ctx context.Context, ideaID uint, schemeType string) ([]Scheme, error) {
	var out []Scheme
	err := r.db.WithContext(ctx).Where("idea_id = ? AND scheme_type = ?", ideaID, schemeType).Order("id").Find(&out).Error
	return out, err
}

func (r *repository) ActiveBankLoans(ctx context.Context, ideaID uint) ([]BankLoan, error) {
	var out []BankLoan
	err := r.db.WithContext(ctx).Where("idea_id = ? AND is_active = ?", ideaID, true).Order("id").Find(&out).Error
	return out, err
}

func (r *repository) BankLoansByType(ctx context.Context, ideaID uint, loanType string) ([]BankLoan, error) {
	var out []BankLoan
	err := r.db.WithContext(ctx).Where("idea_id = ? AND loan_type = ?", ideaID, loanType).Order("id").Find(&out).Error
	return out, err
}
