package ads

import (
	"context"
	"fmt"
	"testing"

	"admarket/internal/domain"
	"admarket/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Registers the cgo-free "sqlite" database/sql driver used below.
	_ "modernc.org/sqlite"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:ads_test_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Ad{}, &domain.AdSelection{}, &domain.Website{}, &domain.Category{}))

	svc := NewService(
		repository.NewAdRepository(db),
		repository.NewWebsiteRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewSelectionRepository(db),
	)
	return svc, db
}

func seedInventory(t *testing.T, svc *Service) (ad *domain.Ad, site *domain.Website, category *domain.Category) {
	t.Helper()
	ctx := context.Background()

	ad, err := svc.CreateAd(ctx, 1, CreateAdRequest{
		BusinessName: "Roastery", ImageURL: "https://cdn.example.com/a.png", TargetURL: "https://roastery.example.com",
	})
	require.NoError(t, err)

	site, err = svc.CreateWebsite(ctx, 2, CreateWebsiteRequest{Name: "Coffee Blog", URL: "https://blog.example.com"})
	require.NoError(t, err)

	category, err = svc.CreateCategory(ctx, site.ID, CreateCategoryRequest{Name: "sidebar", UserCount: 3})
	require.NoError(t, err)
	return ad, site, category
}

func TestCreateAdStartsUnconfirmed(t *testing.T) {
	svc, _ := setupTestService(t)
	ad, _, _ := seedInventory(t, svc)

	assert.False(t, ad.Confirmed)
	assert.Zero(t, ad.Views)
	assert.Zero(t, ad.Clicks)
}

func TestPlaceAdCreatesUnapprovedSelection(t *testing.T) {
	svc, db := setupTestService(t)
	ad, site, category := seedInventory(t, svc)

	sel, err := svc.PlaceAd(context.Background(), 1, ad.ID, PlaceAdRequest{
		WebsiteID: site.ID, CategoryIDs: []int64{category.ID},
	})
	require.NoError(t, err)
	assert.False(t, sel.Approved)
	assert.Equal(t, []int64{category.ID}, sel.CategoryIDs())

	// Placement must also land in the category join table for the resolver.
	var count int64
	require.NoError(t, db.Table("category_ads").Where("category_id = ? AND ad_id = ?", category.ID, ad.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPlaceAdRejectsForeignAd(t *testing.T) {
	svc, _ := setupTestService(t)
	ad, site, category := seedInventory(t, svc)

	_, err := svc.PlaceAd(context.Background(), 99, ad.ID, PlaceAdRequest{
		WebsiteID: site.ID, CategoryIDs: []int64{category.ID},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPlaceAdRejectsCategoryFromAnotherWebsite(t *testing.T) {
	svc, _ := setupTestService(t)
	ad, site, _ := seedInventory(t, svc)

	otherSite, err := svc.CreateWebsite(context.Background(), 3, CreateWebsiteRequest{Name: "Other", URL: "https://other.example.com"})
	require.NoError(t, err)
	foreignCategory, err := svc.CreateCategory(context.Background(), otherSite.ID, CreateCategoryRequest{Name: "footer"})
	require.NoError(t, err)

	_, err = svc.PlaceAd(context.Background(), 1, ad.ID, PlaceAdRequest{
		WebsiteID: site.ID, CategoryIDs: []int64{foreignCategory.ID},
	})
	assert.ErrorIs(t, err, ErrCategoryMismatch)
}

func TestPlaceAdTwiceOnSameWebsite(t *testing.T) {
	svc, _ := setupTestService(t)
	ad, site, category := seedInventory(t, svc)

	req := PlaceAdRequest{WebsiteID: site.ID, CategoryIDs: []int64{category.ID}}
	_, err := svc.PlaceAd(context.Background(), 1, ad.ID, req)
	require.NoError(t, err)

	_, err = svc.PlaceAd(context.Background(), 1, ad.ID, req)
	assert.ErrorIs(t, err, ErrAlreadyPlaced)
}

func TestPlaceAdUnknownWebsite(t *testing.T) {
	svc, _ := setupTestService(t)
	ad, _, _ := seedInventory(t, svc)

	_, err := svc.PlaceAd(context.Background(), 1, ad.ID, PlaceAdRequest{WebsiteID: 404, CategoryIDs: []int64{1}})
	assert.ErrorIs(t, err, ErrNotFound)
}
