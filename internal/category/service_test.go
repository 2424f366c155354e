package category

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/testutil"
	"github.com/sharath018/idea-factory-backend/utils"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	db := testutil.DB(t, &Category{})
	repo := NewRepository(db)
	return NewService(repo, utils.NewMemoryCache(), time.Minute, utils.NopLogger()), repo
}

func testDB(r Repository) *gorm.DB {
	return r.(*repository).db
}

func TestDirectoryReads(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	require.NoError(t, repo.CreateBatch(ctx, []Category{
		{MainCategory: "Technology", SubCategory: "Saas", Active: true},
		{MainCategory: "Technology", SubCategory: "Fintech", Active: true},
		{MainCategory: "Technology", SubCategory: "Fintech", Active: true},
		{MainCategory: "Agriculture", SubCategory: "Organic Farming", Active: true},
		{MainCategory: "Retired", SubCategory: "Old", Active: true},
	}))
	// gorm skips zero-value bools on insert, so deactivate explicitly
	require.NoError(t, testDB(repo).Model(&Category{}).Where("main_category = ?", "Retired").Update("active", false).Error)

	mains, err := svc.MainCategories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Agriculture", "Technology"}, mains)

	subs, err := svc.SubCategories(ctx, "Technology")
	require.NoError(t, err)
	require.Equal(t, []string{"Fintech", "Saas"}, subs)

	h, err := svc.Hierarchy(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string][]string{
		"Agriculture": {"Organic Farming"},
		"Technology":  {"Fintech", "Saas"},
	}, h)

	_, err = svc.SubCategories(ctx, "  ")
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	mains, err := svc.MainCategories(ctx)
	require.NoError(t, err)
	require.Empty(t, mains)

	_, err = svc.Create(ctx, CreateRequest{MainCategory: "Sports", SubCategory: "Sports Nutrition"})
	require.NoError(t, err)

	mains, err = svc.MainCategories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Sports"}, mains)

	_, err = svc.Create(ctx, CreateRequest{MainCategory: "Sports"})
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	require.NoError(t, svc.SeedDefaults(ctx))
	first, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Positive(t, first)

	require.NoError(t, svc.SeedDefaults(ctx))
	second, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
