package repository

import (
	"context"
	"time"

	"admarket/internal/domain"

	"gorm.io/gorm"
)

type SelectionRepository struct {
	db *gorm.DB
}

func NewSelectionRepository(db *gorm.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

func (r *SelectionRepository) Create(ctx context.Context, s *domain.AdSelection) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SelectionRepository) Get(ctx context.Context, adID, websiteID int64) (*domain.AdSelection, error) {
	var s domain.AdSelection
	if err := r.db.WithContext(ctx).Where("ad_id = ? AND website_id = ?", adID, websiteID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SetApproved flips the approval flag for one (ad, website) pair. Re-approval
// is idempotent and refreshes the timestamp. Entries for other websites on
// the same ad are untouched.
func (r *SelectionRepository) SetApproved(ctx context.Context, adID, websiteID int64, approved bool) error {
	updates := map[string]interface{}{
		"approved":    approved,
		"approved_at": nil,
	}
	if approved {
		now := time.Now().UTC()
		updates["approved_at"] = &now
	}
	res := r.db.WithContext(ctx).
		Model(&domain.AdSelection{}).
		Where("ad_id = ? AND website_id = ?", adID, websiteID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPendingByWebsite returns unapproved selections for a publisher's
// review queue, oldest first.
func (r *SelectionRepository) ListPendingByWebsite(ctx context.Context, websiteID int64) ([]domain.AdSelection, error) {
	var selections []domain.AdSelection
	if err := r.db.WithContext(ctx).
		Where("website_id = ? AND approved = ?", websiteID, false).
		Order("created_at").
		Find(&selections).Error; err != nil {
		return nil, err
	}
	return selections, nil
}
