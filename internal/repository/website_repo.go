package repository

import (
	"context"

	"admarket/internal/domain"

	"gorm.io/gorm"
)

type WebsiteRepository struct {
	db *gorm.DB
}

func NewWebsiteRepository(db *gorm.DB) *WebsiteRepository {
	return &WebsiteRepository{db: db}
}

func (r *WebsiteRepository) Create(ctx context.Context, w *domain.Website) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WebsiteRepository) GetByID(ctx context.Context, id int64) (*domain.Website, error) {
	var w domain.Website
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WebsiteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Website, error) {
	var sites []domain.Website
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}
