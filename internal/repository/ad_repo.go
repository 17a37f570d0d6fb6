package repository

import (
	"context"

	"admarket/internal/domain"

	"gorm.io/gorm"
)

type AdRepository struct {
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) *AdRepository {
	return &AdRepository{db: db}
}

func (r *AdRepository) Create(ctx context.Context, ad *domain.Ad) error {
	return r.db.WithContext(ctx).Create(ad).Error
}

func (r *AdRepository) GetByID(ctx context.Context, id int64) (*domain.Ad, error) {
	var ad domain.Ad
	if err := r.db.WithContext(ctx).First(&ad, id).Error; err != nil {
		return nil, err
	}
	return &ad, nil
}

func (r *AdRepository) GetWithSelections(ctx context.Context, id int64) (*domain.Ad, error) {
	var ad domain.Ad
	if err := r.db.WithContext(ctx).Preload("Selections").First(&ad, id).Error; err != nil {
		return nil, err
	}
	return &ad, nil
}

func (r *AdRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Ad, error) {
	var ads []domain.Ad
	if err := r.db.WithContext(ctx).Preload("Selections").Where("user_id = ?", userID).Order("id").Find(&ads).Error; err != nil {
		return nil, err
	}
	return ads, nil
}

// Confirm marks the ad as funded. Idempotent: re-confirming an already
// confirmed ad is a no-op at the row level.
func (r *AdRepository) Confirm(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&domain.Ad{}).Where("id = ?", id).Update("confirmed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Ad{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
