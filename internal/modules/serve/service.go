package serve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"admarket/internal/domain"
)

type categoryReader interface {
	GetWithAds(ctx context.Context, id int64) (*domain.Category, error)
}

// Service resolves which ads may be shown in a category slot. Resolution is
// read-only and best-effort: a missing category, a storage error, or a broken
// ad must never break the page embedding the slot, so failures collapse into
// an empty result.
type Service struct {
	categories    categoryReader
	publicBaseURL string
	loggerf       func(format string, args ...interface{})
}

func NewService(categories categoryReader, publicBaseURL string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Service{
		categories:    categories,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		loggerf:       loggerf,
	}
}

// Resolve returns the servable ads for a category, capped at the category's
// user_count (0 means no cap). An ad is servable when it is confirmed, has an
// approved selection for the category's website, and that selection targets
// this category. Ads with unusable creatives are skipped.
func (s *Service) Resolve(ctx context.Context, categoryID int64) []ServableAd {
	ads := []ServableAd{}
	if categoryID <= 0 {
		return ads
	}

	category, err := s.categories.GetWithAds(ctx, categoryID)
	if err != nil {
		s.loggerf("level=info msg=category_resolve_miss category_id=%d err=%v", categoryID, err)
		return ads
	}

	limit := category.UserCount
	for _, ad := range category.SelectedAds {
		if limit > 0 && len(ads) >= limit {
			break
		}
		if !ad.Confirmed {
			continue
		}
		if !selectionApproved(ad.Selections, category.WebsiteID, categoryID) {
			continue
		}
		if !usableCreative(&ad) {
			s.loggerf("level=warn msg=ad_skipped reason=bad_creative ad_id=%d", ad.ID)
			continue
		}
		ads = append(ads, ServableAd{
			AdID:         ad.ID,
			BusinessName: ad.BusinessName,
			ImageURL:     ad.ImageURL,
			ClickURL:     fmt.Sprintf("%s/ads/%d/go", s.publicBaseURL, ad.ID),
		})
	}
	return ads
}

func selectionApproved(selections []domain.AdSelection, websiteID, categoryID int64) bool {
	for i := range selections {
		sel := &selections[i]
		if sel.WebsiteID == websiteID && sel.Approved && sel.HasCategory(categoryID) {
			return true
		}
	}
	return false
}

func usableCreative(ad *domain.Ad) bool {
	if ad.BusinessName == "" {
		return false
	}
	return validHTTPURL(ad.ImageURL) && validHTTPURL(ad.TargetURL)
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
