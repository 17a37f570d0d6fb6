package repository

import (
	"context"

	"admarket/internal/domain"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetWithAds loads a category with its selected ads and their selections.
// Ads come back in storage order; the resolver relies on that for the
// display cap.
func (r *CategoryRepository) GetWithAds(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).
		Preload("SelectedAds", func(db *gorm.DB) *gorm.DB {
			return db.Order("ads.id")
		}).
		Preload("SelectedAds.Selections").
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) AddAd(ctx context.Context, categoryID int64, ad *domain.Ad) error {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, categoryID).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&c).Association("SelectedAds").Append(ad)
}

func (r *CategoryRepository) ListByWebsite(ctx context.Context, websiteID int64) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).Where("website_id = ?", websiteID).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
