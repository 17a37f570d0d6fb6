package serve

import (
	"context"
	"errors"
	"testing"

	"admarket/internal/domain"

	"github.com/stretchr/testify/assert"
)

type stubCategories struct {
	category *domain.Category
	err      error
}

func (s *stubCategories) GetWithAds(ctx context.Context, id int64) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.category, nil
}

func approvedSelection(websiteID int64, categoryIDs ...int64) domain.AdSelection {
	sel := domain.AdSelection{WebsiteID: websiteID, Approved: true}
	sel.SetCategoryIDs(categoryIDs)
	return sel
}

func goodAd(id int64, selections ...domain.AdSelection) domain.Ad {
	return domain.Ad{
		ID:           id,
		BusinessName: "Shop",
		ImageURL:     "https://cdn.example.com/banner.png",
		TargetURL:    "https://shop.example.com",
		Confirmed:    true,
		Selections:   selections,
	}
}

func TestResolveFiltersByApprovalAndConfirmation(t *testing.T) {
	const website, category = int64(7), int64(3)

	unconfirmed := goodAd(1, approvedSelection(website, category))
	unconfirmed.Confirmed = false

	unapproved := goodAd(2)
	sel := approvedSelection(website, category)
	sel.Approved = false
	unapproved.Selections = []domain.AdSelection{sel}

	wrongCategory := goodAd(3, approvedSelection(website, 99))
	wrongWebsite := goodAd(4, approvedSelection(42, category))
	servable := goodAd(5, approvedSelection(website, category))

	svc := NewService(&stubCategories{category: &domain.Category{
		ID:          category,
		WebsiteID:   website,
		SelectedAds: []domain.Ad{unconfirmed, unapproved, wrongCategory, wrongWebsite, servable},
	}}, "https://ads.example.com", nil)

	got := svc.Resolve(context.Background(), category)
	if assert.Len(t, got, 1) {
		assert.Equal(t, int64(5), got[0].AdID)
		assert.Equal(t, "https://ads.example.com/ads/5/go", got[0].ClickURL)
	}
}

func TestResolveCapsAtUserCount(t *testing.T) {
	const website, category = int64(7), int64(3)
	ads := []domain.Ad{
		goodAd(1, approvedSelection(website, category)),
		goodAd(2, approvedSelection(website, category)),
		goodAd(3, approvedSelection(website, category)),
	}

	svc := NewService(&stubCategories{category: &domain.Category{
		ID: category, WebsiteID: website, UserCount: 2, SelectedAds: ads,
	}}, "https://ads.example.com", nil)

	got := svc.Resolve(context.Background(), category)
	if assert.Len(t, got, 2) {
		assert.Equal(t, int64(1), got[0].AdID)
		assert.Equal(t, int64(2), got[1].AdID)
	}
}

func TestResolveZeroUserCountMeansNoCap(t *testing.T) {
	const website, category = int64(7), int64(3)
	ads := []domain.Ad{
		goodAd(1, approvedSelection(website, category)),
		goodAd(2, approvedSelection(website, category)),
	}

	svc := NewService(&stubCategories{category: &domain.Category{
		ID: category, WebsiteID: website, UserCount: 0, SelectedAds: ads,
	}}, "https://ads.example.com", nil)

	assert.Len(t, svc.Resolve(context.Background(), category), 2)
}

func TestResolveSkipsBrokenCreatives(t *testing.T) {
	const website, category = int64(7), int64(3)

	noImage := goodAd(1, approvedSelection(website, category))
	noImage.ImageURL = "not a url"

	badScheme := goodAd(2, approvedSelection(website, category))
	badScheme.TargetURL = "javascript:alert(1)"

	noName := goodAd(3, approvedSelection(website, category))
	noName.BusinessName = ""

	fine := goodAd(4, approvedSelection(website, category))

	svc := NewService(&stubCategories{category: &domain.Category{
		ID: category, WebsiteID: website, SelectedAds: []domain.Ad{noImage, badScheme, noName, fine},
	}}, "https://ads.example.com", nil)

	got := svc.Resolve(context.Background(), category)
	if assert.Len(t, got, 1) {
		assert.Equal(t, int64(4), got[0].AdID)
	}
}

func TestResolveDegradesToEmpty(t *testing.T) {
	svc := NewService(&stubCategories{err: errors.New("down")}, "https://ads.example.com", nil)

	assert.Empty(t, svc.Resolve(context.Background(), 1))
	assert.Empty(t, svc.Resolve(context.Background(), 0))
	assert.Empty(t, svc.Resolve(context.Background(), -4))
}
