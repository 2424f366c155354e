package idea

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/utils"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// facet name -> column
var facetColumns = map[string]string{
	"categories":       "category",
	"sectors":          "sector",
	"difficultyLevels": "difficulty_level",
	"locations":        "location",
}

type Service interface {
	List(ctx context.Context, f Filter, p PageRequest, public bool) (*Page, error)
	ListActive(ctx context.Context) ([]Idea, error)
	Get(ctx context.Context, id uint, public bool) (*Idea, error)
	Create(ctx context.Context, req Request, actor auditlog.Actor) (*Idea, error)
	Update(ctx context.Context, id uint, req Request, actor auditlog.Actor) (*Idea, error)
	Delete(ctx context.Context, id uint, actor auditlog.Actor) error
	ToggleStatus(ctx context.Context, id uint, actor auditlog.Actor) (*Idea, error)
	SetStatus(ctx context.Context, id uint, active bool, actor auditlog.Actor) (*Idea, error)

	Facet(ctx context.Context, name string) ([]string, error)
	Stats(ctx context.Context) (Stats, error)
	InvalidateFacets(ctx context.Context)
}

type service struct {
	repo  Repository
	cache utils.Cache
	ttl   time.Duration
	audit auditlog.Service
	log   *utils.Logger
}

func NewService(repo Repository, cache utils.Cache, ttl time.Duration, audit auditlog.Service, log *utils.Logger) Service {
	return &service{repo: repo, cache: cache, ttl: ttl, audit: audit, log: log}
}

// Validate checks the invariants every stored idea must satisfy.
func Validate(i *Idea) error {
	if strings.TrimSpace(i.Title) == "" {
		return apperr.Validation("title is required")
	}
	if len([]rune(i.Title)) > 255 {
		return apperr.Validation("title must be at most 255 characters")
	}
	if i.InvestmentNeeded.IsNegative() {
		return apperr.Validation("investmentNeeded must not be negative")
	}
	switch i.DifficultyLevel {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return apperr.Validation(fmt.Sprintf("difficultyLevel must be one of %s, %s, %s", DifficultyEasy, DifficultyMedium, DifficultyHard))
	}
	switch i.Location {
	case "", LocationUrban, LocationRural, LocationBoth:
	default:
		return apperr.Validation(fmt.Sprintf("location must be one of %s, %s, %s", LocationUrban, LocationRural, LocationBoth))
	}
	return nil
}

// NormalizeTags trims tags and drops empty ones.
func NormalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NormalizePage applies the default and maximum page size and validates sorting.
func NormalizePage(p PageRequest) (PageRequest, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.SortBy == "" {
		p.SortBy = "id"
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		return p, apperr.Validation("unsupported sort field: " + p.SortBy)
	}
	switch strings.ToLower(p.SortDir) {
	case "":
		p.SortDir = "desc"
	case "asc", "desc":
		p.SortDir = strings.ToLower(p.SortDir)
	default:
		return p, apperr.Validation("sort direction must be asc or desc")
	}
	return p, nil
}

func (s *service) List(ctx context.Context, f Filter, p PageRequest, public bool) (*Page, error) {
	p, err := NormalizePage(p)
	if err != nil {
		return nil, err
	}
	if public {
		active := true
		f.Active = &active
	}

	ideas, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, apperr.Internal("failed to list ideas", err)
	}
	if ideas == nil {
		ideas = []Idea{}
	}
	return &Page{
		Data:       ideas,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}, nil
}

func (s *service) ListActive(ctx context.Context) ([]Idea, error) {
	ideas, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list ideas", err)
	}
	if ideas == nil {
		ideas = []Idea{}
	}
	return ideas, nil
}

func (s *service) Get(ctx context.Context, id uint, public bool) (*Idea, error) {
	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if public && !i.Active {
		return nil, apperr.NotFound("idea not found")
	}
	return i, nil
}

func (s *service) Create(ctx context.Context, req Request, actor auditlog.Actor) (*Idea, error) {
	i := &Idea{Active: true}
	req.Apply(i)
	if err := Validate(i); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, i); err != nil {
		return nil, apperr.Internal("failed to create idea", err)
	}
	s.InvalidateFacets(ctx)
	s.audit.LogAction(ctx, actor, auditlog.ActionIdeaCreated, "idea", fmt.Sprint(i.ID),
		map[string]interface{}{"title": i.Title}, auditlog.StatusSuccess)
	return i, nil
}

// Update replaces every mutable field; the active flag and batch id are kept.
func (s *service) Update(ctx context.Context, id uint, req Request, actor auditlog.Actor) (*Idea, error) {
	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(i)
	if err := Validate(i); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, i); err != nil {
		return nil, apperr.Internal("failed to update idea", err)
	}
	s.InvalidateFacets(ctx)
	s.audit.LogAction(ctx, actor, auditlog.ActionIdeaUpdated, "idea", fmt.Sprint(id),
		map[string]interface{}{"title": i.Title}, auditlog.StatusSuccess)
	return i, nil
}

func (s *service) Delete(ctx context.Context, id uint, actor auditlog.Actor) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("idea not found")
	}
	if err != nil {
		return apperr.Internal("failed to delete idea", err)
	}
	s.InvalidateFacets(ctx)
	s.audit.LogAction(ctx, actor, auditlog.ActionIdeaDeleted, "idea", fmt.Sprint(id), nil, auditlog.StatusSuccess)
	return nil
}

func (s *service) ToggleStatus(ctx context.Context, id uint, actor auditlog.Actor) (*Idea, error) {
	i, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetStatus(ctx, id, !i.Active, actor)
}

func (s *service) SetStatus(ctx context.Context, id uint, active bool, actor auditlog.Actor) (*Idea, error) {
	err := s.repo.SetActive(ctx, id, active)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("idea not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to update idea status", err)
	}
	s.InvalidateFacets(ctx)
	s.audit.LogAction(ctx, actor, auditlog.ActionIdeaStatusToggled, "idea", fmt.Sprint(id),
		map[string]interface{}{"active": active}, auditlog.StatusSuccess)
	return s.load(ctx, id)
}

// Facet returns the distinct values of one classification field over active
// ideas, served from cache when possible.
func (s *service) Facet(ctx context.Context, name string) ([]string, error) {
	column, ok := facetColumns[name]
	if !ok {
		return nil, apperr.Validation("unknown facet: " + name)
	}

	key := "idea:facet:" + name
	var out []string
	hit, err := s.cache.GetJSON(ctx, key, &out)
	if err != nil {
		s.log.Warn("facet cache read failed", "key", key, "error", err)
	}
	if hit {
		return out, nil
	}

	out, err = s.repo.DistinctValues(ctx, column)
	if err != nil {
		return nil, apperr.Internal("failed to load "+name, err)
	}
	if out == nil {
		out = []string{}
	}
	if err := s.cache.SetJSON(ctx, key, out, s.ttl); err != nil {
		s.log.Warn("facet cache write failed", "key", key, "error", err)
	}
	return out, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return st, apperr.Internal("failed to load idea stats", err)
	}
	return st, nil
}

func (s *service) InvalidateFacets(ctx context.Context) {
	keys := make([]string, 0, len(facetColumns))
	for name := range facetColumns {
		keys = append(keys, "idea:facet:"+name)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("facet cache invalidation failed", "error", err)
	}
}

func (s *service) load(ctx context.Context, id uint) (*Idea, error) {
	i, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("idea not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load idea", err)
	}
	return i, nil
}
