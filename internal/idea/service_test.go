package idea

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"pgregory.net/rapid"

	"github.com/sharath018/idea-factory-backend/internal/apperr"
	"github.com/sharath018/idea-factory-backend/internal/auditlog"
	"github.com/sharath018/idea-factory-backend/internal/testutil"
	"github.com/sharath018/idea-factory-backend/utils"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t, &Idea{}, &auditlog.AuditLog{})
	log := utils.NopLogger()
	audit := auditlog.NewService(auditlog.NewRepository(db), log)
	return NewService(NewRepository(db), utils.NewMemoryCache(), time.Minute, audit, log), db
}

func seedIdeas(t *testing.T, db *gorm.DB) []Idea {
	t.Helper()
	ideas := []Idea{
		{Title: "Organic Farm", Description: "Grow vegetables", Category: "Agriculture", Sector: "Organic Farming",
			InvestmentNeeded: decimal.NewFromInt(50000), DifficultyLevel: DifficultyMedium, Location: LocationRural,
			TargetAudience: []string{"Farmers", "Women"}, SpecialAdvantages: []string{"Low Risk"}, Active: true},
		{Title: "Fintech App", Description: "Payments for SMEs", Category: "Technology", Sector: "Fintech",
			InvestmentNeeded: decimal.NewFromInt(200000), DifficultyLevel: DifficultyHard, Location: LocationUrban,
			TargetAudience: []string{"Students"}, SpecialAdvantages: []string{"Scalable"}, Active: true},
		{Title: "Home Bakery", Description: "Cakes and ORGANIC bread", Category: "Food & Beverage", Sector: "Restaurant",
			InvestmentNeeded: decimal.NewFromInt(15000), DifficultyLevel: DifficultyEasy, Location: LocationBoth,
			TargetAudience: []string{"Women", "Home Makers"}, Active: true},
		{Title: "Hidden Listing", Category: "Technology", Sector: "Saas",
			InvestmentNeeded: decimal.NewFromInt(1000), DifficultyLevel: DifficultyEasy, Location: LocationUrban, Active: true},
	}
	require.NoError(t, db.Create(&ideas).Error)
	require.NoError(t, db.Model(&Idea{}).Where("title = ?", "Hidden Listing").Update("active", false).Error)
	return ideas
}

func titles(p *Page) []string {
	out := make([]string, 0, len(p.Data))
	for _, i := range p.Data {
		out = append(out, i.Title)
	}
	return out
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	seedIdeas(t, db)

	max := decimal.NewFromInt(50000)
	cases := []struct {
		name   string
		filter Filter
		public bool
		want   []string
	}{
		{"public hides inactive", Filter{}, true, []string{"Home Bakery", "Fintech App", "Organic Farm"}},
		{"admin sees inactive", Filter{}, false, []string{"Hidden Listing", "Home Bakery", "Fintech App", "Organic Farm"}},
		{"category", Filter{Category: "Technology"}, true, []string{"Fintech App"}},
		{"max investment inclusive", Filter{MaxInvestment: &max}, true, []string{"Home Bakery", "Organic Farm"}},
		{"audience tag", Filter{TargetAudience: "women"}, true, []string{"Home Bakery", "Organic Farm"}},
		{"advantage tag", Filter{SpecialAdvantage: "Scalable"}, true, []string{"Fintech App"}},
		{"search title or description", Filter{Search: "organic"}, true, []string{"Home Bakery", "Organic Farm"}},
		{"conjunctive", Filter{TargetAudience: "Women", Location: LocationRural}, true, []string{"Organic Farm"}},
		{"tag is not a substring match", Filter{TargetAudience: "Wom"}, true, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.List(ctx, tc.filter, PageRequest{}, tc.public)
			require.NoError(t, err)
			require.Equal(t, tc.want, titles(page))
			require.EqualValues(t, len(tc.want), page.Total)
		})
	}
}

func TestListPagingAndSorting(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	seedIdeas(t, db)

	page, err := svc.List(ctx, Filter{}, PageRequest{Page: 2, Limit: 2, SortBy: "investmentNeeded", SortDir: "asc"}, false)
	require.NoError(t, err)
	require.Equal(t, []string{"Organic Farm", "Fintech App"}, titles(page))
	require.EqualValues(t, 4, page.Total)
	require.Equal(t, 2, page.TotalPages)

	_, err = svc.List(ctx, Filter{}, PageRequest{SortBy: "password"}, false)
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.List(ctx, Filter{}, PageRequest{SortDir: "sideways"}, false)
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestEmptyFilterValuesAreNoOps(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	seedIdeas(t, db)

	omitted, err := svc.List(ctx, Filter{}, PageRequest{Limit: 100}, true)
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		blank := rapid.SampledFrom([]string{"", " ", "\t", "   "})
		f := Filter{
			Category:         blank.Draw(rt, "category"),
			Sector:           blank.Draw(rt, "sector"),
			DifficultyLevel:  blank.Draw(rt, "difficulty"),
			Location:         blank.Draw(rt, "location"),
			TargetAudience:   blank.Draw(rt, "audience"),
			SpecialAdvantage: blank.Draw(rt, "advantage"),
			Search:           blank.Draw(rt, "search"),
		}
		got, err := svc.List(ctx, f, PageRequest{Limit: 100}, true)
		if err != nil {
			rt.Fatalf("List: %v", err)
		}
		if got.Total != omitted.Total || len(got.Data) != len(omitted.Data) {
			rt.Fatalf("blank filter changed result: %d vs %d", got.Total, omitted.Total)
		}
		for i := range got.Data {
			if got.Data[i].ID != omitted.Data[i].ID {
				rt.Fatalf("row %d differs", i)
			}
		}
	})
}

func TestToggleTwiceRestoresVisibility(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	seeded := seedIdeas(t, db)

	rapid.Check(t, func(rt *rapid.T) {
		target := rapid.SampledFrom(seeded).Draw(rt, "idea")
		before, err := svc.Get(ctx, target.ID, false)
		if err != nil {
			rt.Fatalf("Get: %v", err)
		}
		once, err := svc.ToggleStatus(ctx, target.ID, auditlog.Actor{})
		if err != nil {
			rt.Fatalf("Toggle: %v", err)
		}
		if once.Active == before.Active {
			rt.Fatalf("toggle did not flip active")
		}
		twice, err := svc.ToggleStatus(ctx, target.ID, auditlog.Actor{})
		if err != nil {
			rt.Fatalf("Toggle: %v", err)
		}
		if twice.Active != before.Active {
			rt.Fatalf("double toggle changed visibility")
		}
	})
}

func TestPublicGetHidesInactive(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	seedIdeas(t, db)

	var hidden Idea
	require.NoError(t, db.Where("title = ?", "Hidden Listing").First(&hidden).Error)

	_, err := svc.Get(ctx, hidden.ID, true)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := svc.Get(ctx, hidden.ID, false)
	require.NoError(t, err)
	require.False(t, got.Active)
}

func TestCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)

	_, err := svc.Create(ctx, Request{Title: "  "}, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(ctx, Request{Title: "Negative", InvestmentNeeded: decimal.NewFromInt(-1)}, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(ctx, Request{Title: "Bad level", DifficultyLevel: "Extreme"}, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	created, err := svc.Create(ctx, Request{
		Title: "Food Truck", Category: "Food & Beverage", Sector: "Food Truck",
		InvestmentNeeded: decimal.NewFromInt(80000), TargetAudience: []string{" Youth ", ""},
		ImageURL: "https://img/truck.png",
	}, auditlog.Actor{})
	require.NoError(t, err)
	require.True(t, created.Active)
	require.Nil(t, created.UploadBatchID)
	require.Equal(t, []string{"Youth"}, []string(created.TargetAudience))

	// full replace: fields absent from the payload are cleared
	updated, err := svc.Update(ctx, created.ID, Request{Title: "Food Truck v2", InvestmentNeeded: decimal.NewFromInt(90000)}, auditlog.Actor{})
	require.NoError(t, err)
	require.Equal(t, "Food Truck v2", updated.Title)
	require.Empty(t, updated.Category)
	require.Empty(t, updated.ImageURL)
	require.Empty(t, updated.TargetAudience)
	require.True(t, updated.Active)

	_, err = svc.Update(ctx, 9999, Request{Title: "x"}, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, db.Exec("CREATE TABLE idea_reviews (id integer primary key, idea_id integer)").Error)
	require.NoError(t, db.Exec("INSERT INTO idea_reviews (idea_id) VALUES (?), (?)", created.ID, created.ID+100).Error)

	require.NoError(t, svc.Delete(ctx, created.ID, auditlog.Actor{}))
	var remaining int64
	require.NoError(t, db.Table("idea_reviews").Count(&remaining).Error)
	require.EqualValues(t, 1, remaining)

	err = svc.Delete(ctx, created.ID, auditlog.Actor{})
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	var audits int64
	require.NoError(t, db.Model(&auditlog.AuditLog{}).Count(&audits).Error)
	require.EqualValues(t, 3, audits)
}

func TestFacetsAreCachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	seedIdeas(t, db)

	cats, err := svc.Facet(ctx, "categories")
	require.NoError(t, err)
	require.Equal(t, []string{"Agriculture", "Food & Beverage", "Technology"}, cats)

	// a direct write is invisible until the cache is invalidated
	require.NoError(t, db.Create(&Idea{Title: "Gym", Category: "Sports", Active: true}).Error)
	cats, err = svc.Facet(ctx, "categories")
	require.NoError(t, err)
	require.NotContains(t, cats, "Sports")

	svc.InvalidateFacets(ctx)
	cats, err = svc.Facet(ctx, "categories")
	require.NoError(t, err)
	require.Contains(t, cats, "Sports")

	levels, err := svc.Facet(ctx, "difficultyLevels")
	require.NoError(t, err)
	require.Equal(t, []string{DifficultyEasy, DifficultyHard, DifficultyMedium}, levels)

	_, err = svc.Facet(ctx, "owners")
	require.True(t, apperr.Is(err, apperr.KindValidation))
}
