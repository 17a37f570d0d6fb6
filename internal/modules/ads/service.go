package ads

import (
	"context"
	"errors"
	"strings"

	"admarket/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type adRepo interface {
	Create(ctx context.Context, ad *domain.Ad) error
	GetByID(ctx context.Context, id int64) (*domain.Ad, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Ad, error)
}

type websiteRepo interface {
	Create(ctx context.Context, w *domain.Website) error
	GetByID(ctx context.Context, id int64) (*domain.Website, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Website, error)
}

type categoryRepo interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	AddAd(ctx context.Context, categoryID int64, ad *domain.Ad) error
	ListByWebsite(ctx context.Context, websiteID int64) ([]domain.Category, error)
}

type selectionRepo interface {
	Create(ctx context.Context, s *domain.AdSelection) error
}

// Service covers the inventory side of the marketplace: advertisers create
// ads and place them on publisher websites; publishers carve their sites into
// categories. Serving, approval and billing live in their own modules.
type Service struct {
	ads        adRepo
	websites   websiteRepo
	categories categoryRepo
	selections selectionRepo
}

func NewService(ads adRepo, websites websiteRepo, categories categoryRepo, selections selectionRepo) *Service {
	return &Service{ads: ads, websites: websites, categories: categories, selections: selections}
}

// CreateAd registers a new unconfirmed ad. It only becomes servable after
// the funding payment completes and a publisher approves the placement.
func (s *Service) CreateAd(ctx context.Context, userID int64, req CreateAdRequest) (*domain.Ad, error) {
	ad := &domain.Ad{
		UserID:       userID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		ImageURL:     req.ImageURL,
		TargetURL:    req.TargetURL,
	}
	if err := s.ads.Create(ctx, ad); err != nil {
		return nil, err
	}
	return ad, nil
}

func (s *Service) ListMyAds(ctx context.Context, userID int64) ([]domain.Ad, error) {
	return s.ads.ListByUser(ctx, userID)
}

func (s *Service) CreateWebsite(ctx context.Context, ownerID int64, req CreateWebsiteRequest) (*domain.Website, error) {
	w := &domain.Website{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(req.Name),
		Domain:  req.URL,
	}
	if err := s.websites.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) ListMyWebsites(ctx context.Context, ownerID int64) ([]domain.Website, error) {
	return s.websites.ListByOwner(ctx, ownerID)
}

func (s *Service) CreateCategory(ctx context.Context, websiteID int64, req CreateCategoryRequest) (*domain.Category, error) {
	c := &domain.Category{
		WebsiteID: websiteID,
		Name:      strings.TrimSpace(req.Name),
		UserCount: req.UserCount,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context, websiteID int64) ([]domain.Category, error) {
	return s.categories.ListByWebsite(ctx, websiteID)
}

// PlaceAd records the advertiser's choice of website and categories. Every
// requested category must belong to the target website; the placement starts
// unapproved and waits for the publisher. One placement per (ad, website):
// the unique index backs that up, a second attempt reports ErrAlreadyPlaced.
func (s *Service) PlaceAd(ctx context.Context, userID, adID int64, req PlaceAdRequest) (*domain.AdSelection, error) {
	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ad.UserID != userID {
		return nil, ErrForbidden
	}

	if _, err := s.websites.GetByID(ctx, req.WebsiteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	for _, categoryID := range req.CategoryIDs {
		category, err := s.categories.GetByID(ctx, categoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryMismatch
			}
			return nil, err
		}
		if category.WebsiteID != req.WebsiteID {
			return nil, ErrCategoryMismatch
		}
	}

	sel := &domain.AdSelection{AdID: adID, WebsiteID: req.WebsiteID}
	sel.SetCategoryIDs(req.CategoryIDs)
	if err := s.selections.Create(ctx, sel); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyPlaced
		}
		return nil, err
	}

	// Mirror the placement into the category join table so the resolver can
	// load a category's candidate ads in one query.
	for _, categoryID := range req.CategoryIDs {
		if err := s.categories.AddAd(ctx, categoryID, ad); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
