package category

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/utils"
)

const (
	cacheKeyMain      = "category:main"
	cacheKeyHierarchy = "category:hierarchy"
	cacheKeySubPrefix = "category:sub:"
)

type Service interface {
	MainCategories(ctx context.Context) ([]string, error)
	SubCategories(ctx context.Context, main string) ([]string, error)
	Hierarchy(ctx context.Context) (map[string][]string, error)
	Create(ctx context.Context, req CreateRequest) (*Category, error)
	SeedDefaults(ctx context.Context) error
}

type service struct {
	repo  Repository
	cache utils.Cache
	ttl   time.Duration
	log   *utils.Logger
}

func NewService(repo Repository, cache utils.Cache, ttl time.Duration, log *utils.Logger) Service {
	return &service{repo: repo, cache: cache, ttl: ttl, log: log}
}

func (s *service) MainCategories(ctx context.Context) ([]string, error) {
	return s.cached(ctx, cacheKeyMain, func() ([]string, error) {
		return s.repo.MainCategories(ctx)
	})
}

func (s *service) SubCategories(ctx context.Context, main string) ([]string, error) {
	main = strings.TrimSpace(main)
	if main == "" {
		return nil, apperr.Validation("mainCategory is required")
	}
	return s.cached(ctx, cacheKeySubPrefix+main, func() ([]string, error) {
		return s.repo.SubCategories(ctx, main)
	})
}

func (s *service) Hierarchy(ctx context.Context) (map[string][]string, error) {
	out := map[string][]string{}
	if hit, err := s.cache.GetJSON(ctx, cacheKeyHierarchy, &out); err == nil && hit {
		return out, nil
	} else if err != nil {
		s.log.Warn("category cache read failed", "key", cacheKeyHierarchy, "error", err)
	}

	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to load categories", err)
	}
	out = buildHierarchy(rows)

	if err := s.cache.SetJSON(ctx, cacheKeyHierarchy, out, s.ttl); err != nil {
		s.log.Warn("category cache write failed", "key", cacheKeyHierarchy, "error", err)
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Category, error) {
	main := strings.TrimSpace(req.MainCategory)
	sub := strings.TrimSpace(req.SubCategory)
	if main == "" || sub == "" {
		return nil, apperr.Validation("mainCategory and subCategory are required")
	}

	c := &Category{MainCategory: main, SubCategory: sub, Active: true}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperr.Internal("failed to create category", err)
	}

	if err := s.cache.Delete(ctx, cacheKeyMain, cacheKeyHierarchy, cacheKeySubPrefix+main); err != nil {
		s.log.Warn("category cache invalidation failed", "error", err)
	}
	return c, nil
}

// SeedDefaults loads the default taxonomy into an empty directory.
func (s *service) SeedDefaults(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	mains := make([]string, 0, len(defaultTaxonomy))
	for main := range defaultTaxonomy {
		mains = append(mains, main)
	}
	sort.Strings(mains)

	var rows []Category
	for _, main := range mains {
		for _, sub := range defaultTaxonomy[main] {
			rows = append(rows, Category{MainCategory: main, SubCategory: sub, Active: true})
		}
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}
	s.log.Info("categories seeded", "count", len(rows))
	return nil
}

func (s *service) cached(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	var out []string
	hit, err := s.cache.GetJSON(ctx, key, &out)
	if err != nil {
		s.log.Warn("category cache read failed", "key", key, "error", err)
	}
	if hit {
		return out, nil
	}

	out, err = load()
	if err != nil {
		return nil, apperr.Internal("failed to load categories", err)
	}
	if out == nil {
		out = []string{}
	}
	if err := s.cache.SetJSON(ctx, key, out, s.ttl); err != nil {
		s.log.Warn("category cache write failed", "key", key, "error", err)
	}
	return out, nil
}

// buildHierarchy groups rows by main category; duplicate pairs collapse.
func buildHierarchy(rows []Category) map[string][]string {
	seen := map[string]map[string]bool{}
	out := map[string][]string{}
	for _, c := range rows {
		if seen[c.MainCategory] == nil {
			seen[c.MainCategory] = map[string]bool{}
			out[c.MainCategory] = []string{}
		}
		if seen[c.MainCategory][c.SubCategory] {
			continue
		}
		seen[c.MainCategory][c.SubCategory] = true
		out[c.MainCategory] = append(out[c.MainCategory], c.SubCategory)
	}
	for main := range out {
		sort.Strings(out[main])
	}
	return out
}
