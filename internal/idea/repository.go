package idea

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/gorm"
)

// ChildTables hold rows owned by an idea; they are removed before the idea.
var ChildTables = []string{
	"idea_reviews",
	"idea_investments",
	"idea_schemes",
	"idea_bank_loans",
	"idea_internal_factors",
}

// sortColumns whitelists the sortable fields by their API name.
var sortColumns = map[string]string{
	"id":               "id",
	"title":            "title",
	"category":         "category",
	"sector":           "sector",
	"investmentNeeded": "investment_needed",
	"difficultyLevel":  "difficulty_level",
	"location":         "location",
	"createdAt":        "created_at",
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, i *Idea) error
	Save(ctx context.Context, i *Idea) error
	GetByID(ctx context.Context, id uint) (*Idea, error)
	Delete(ctx context.Context, id uint) error
	SetActive(ctx context.Context, id uint, active bool) error

	List(ctx context.Context, f Filter, p PageRequest) ([]Idea, int64, error)
	ListActive(ctx context.Context) ([]Idea, error)
	DistinctValues(ctx context.Context, column string) ([]string, error)
	Stats(ctx context.Context) (Stats, error)

	CountByBatch(ctx context.Context, batchID string) (int64, error)
	DeleteByBatch(ctx context.Context, batchID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, i *Idea) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *repository) Save(ctx context.Context, i *Idea) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Idea, error) {
	var i Idea
	if err := r.db.WithContext(ctx).First(&i, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

// Delete removes the idea and its child rows in one transaction.
func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteChildren(tx, "idea_id = ?", id); err != nil {
			return err
		}
		res := tx.Delete(&Idea{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *repository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&Idea{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, f Filter, p PageRequest) ([]Idea, int64, error) {
	var (
		out   []Idea
		total int64
	)

	q := applyFilter(r.db.WithContext(ctx).Model(&Idea{}), f)
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order(orderClause(p.SortBy, p.SortDir)).
		Limit(p.Limit).
		Offset((p.Page - 1) * p.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Idea, error) {
	var out []Idea
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id DESC").
		Find(&out).Error
	return out, err
}

// DistinctValues lists the non-empty values of column over active ideas.
func (r *repository) DistinctValues(ctx context.Context, column string) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).
		Model(&Idea{}).
		Where("active = ?", true).
		Where(column+" IS NOT NULL AND "+column+" <> ''").
		Distinct().
		Order(column+" ASC").
		Pluck(column, &out).Error
	return out, err
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&Idea{}).Count(&s.TotalIdeas).Error; err != nil {
		return s, err
	}
	err := db.Model(&Idea{}).Where("active = ?", true).Count(&s.ActiveIdeas).Error
	return s, err
}

func (r *repository) CountByBatch(ctx context.Context, batchID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Idea{}).Where("upload_batch_id = ?", batchID).Count(&n).Error
	return n, err
}

// DeleteByBatch removes every idea carrying batchID, children first. Callers
// run it inside their own transaction.
func (r *repository) DeleteByBatch(ctx context.Context, batchID string) (int64, error) {
	db := r.db.WithContext(ctx)
	sub := db.Model(&Idea{}).Select("id").Where("upload_batch_id = ?", batchID)
	if err := deleteChildren(db, "idea_id IN (?)", sub); err != nil {
		return 0, err
	}
	res := db.Where("upload_batch_id = ?", batchID).Delete(&Idea{})
	return res.RowsAffected, res.Error
}

func deleteChildren(tx *gorm.DB, cond string, arg interface{}) error {
	for _, table := range ChildTables {
		if !tx.Migrator().HasTable(table) {
			continue
		}
		if err := tx.Exec("DELETE FROM "+table+" WHERE "+cond, arg).Error; err != nil {
			return err
		}
	}
	return nil
}

func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if v := strings.TrimSpace(f.Category); v != "" {
		q = q.Where("category = ?", v)
	}
	if v := strings.TrimSpace(f.Sector); v != "" {
		q = q.Where("sector = ?", v)
	}
	if v := strings.TrimSpace(f.DifficultyLevel); v != "" {
		q = q.Where("difficulty_level = ?", v)
	}
	if v := strings.TrimSpace(f.Location); v != "" {
		q = q.Where("location = ?", v)
	}
	if f.MaxInvestment != nil {
		q = q.Where("investment_needed <= ?", *f.MaxInvestment)
	}
	if v := strings.TrimSpace(f.TargetAudience); v != "" {
		q = whereTagged(q, "target_audience", v)
	}
	if v := strings.TrimSpace(f.SpecialAdvantage); v != "" {
		q = whereTagged(q, "special_advantages", v)
	}
	if v := strings.TrimSpace(f.Search); v != "" {
		like := "%" + strings.ToLower(v) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	return q
}

// whereTagged matches a JSON array column containing tag, case-insensitively.
// The text form of the array differs by driver (sqlite keeps Go's HTML
// escaping, jsonb re-renders it), so both encodings are tried.
func whereTagged(q *gorm.DB, column, tag string) *gorm.DB {
	lower := strings.ToLower(tag)
	escaped, _ := json.Marshal(lower)

	var raw strings.Builder
	enc := json.NewEncoder(&raw)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(lower)
	plain := strings.TrimSpace(raw.String())

	expr := "LOWER(CAST(" + column + " AS TEXT)) LIKE ?"
	return q.Where("("+expr+" OR "+expr+")", "%"+string(escaped)+"%", "%"+plain+"%")
}

func orderClause(sortBy, sortDir string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "id"
	}
	dir := "DESC"
	if strings.EqualFold(sortDir, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}
