package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"admarket/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type TrackerRepository struct {
	db *gorm.DB
}

func NewTrackerRepository(db *gorm.DB) *TrackerRepository {
	return &TrackerRepository{db: db}
}

// CreateIfAbsent inserts the tracker for its (ad, category) agreement.
// A concurrent or repeated insert hits the unique index and is treated as
// success so that duplicate payment confirmations never create a second
// ledger row.
func (r *TrackerRepository) CreateIfAbsent(ctx context.Context, t *domain.PaymentTracker) error {
	err := r.db.WithContext(ctx).Create(t).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return nil
	}
	return err
}

func (r *TrackerRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentTracker, error) {
	var t domain.PaymentTracker
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TrackerRepository) GetByAgreement(ctx context.Context, adID, categoryID int64) (*domain.PaymentTracker, error) {
	var t domain.PaymentTracker
	if err := r.db.WithContext(ctx).Where("ad_id = ? AND category_id = ?", adID, categoryID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TrackerRepository) ListByAd(ctx context.Context, adID int64) ([]domain.PaymentTracker, error) {
	var trackers []domain.PaymentTracker
	if err := r.db.WithContext(ctx).Where("ad_id = ?", adID).Order("id").Find(&trackers).Error; err != nil {
		return nil, err
	}
	return trackers, nil
}

// Credit increases current_views by n with an atomic increment in the store.
// Withdrawn trackers are excluded; the counter never decreases.
func (r *TrackerRepository) Credit(ctx context.Context, adID int64, n int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.PaymentTracker{}).
		Where("ad_id = ? AND status <> ?", adID, domain.TrackerWithdrawn).
		Update("current_views", gorm.Expr("current_views + ?", n)).Error
}

// TryRelease promotes pending -> available once the view target is met.
// The status guard makes the transition fire at most once even under
// concurrent callers.
func (r *TrackerRepository) TryRelease(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentTracker{}).
		Where("id = ? AND status = ? AND current_views >= views_required", id, domain.TrackerPending).
		Update("status", domain.TrackerAvailable)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseEligibleByAd runs the release check for every pending tracker on
// the ad, in one conditional update.
func (r *TrackerRepository) ReleaseEligibleByAd(ctx context.Context, adID int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.PaymentTracker{}).
		Where("ad_id = ? AND status = ? AND current_views >= views_required", adID, domain.TrackerPending).
		Update("status", domain.TrackerAvailable).Error
}

// ReleaseEligible is the sweep form used by the recurring binary.
func (r *TrackerRepository) ReleaseEligible(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentTracker{}).
		Where("status = ? AND current_views >= views_required", domain.TrackerPending).
		Update("status", domain.TrackerAvailable)
	return res.RowsAffected, res.Error
}

// Withdraw moves available -> withdrawn and stamps the withdrawal date.
// Any other starting state leaves the row untouched and reports false.
func (r *TrackerRepository) Withdraw(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentTracker{}).
		Where("id = ? AND status = ?", id, domain.TrackerAvailable).
		Updates(map[string]interface{}{
			"status":               domain.TrackerWithdrawn,
			"last_withdrawal_date": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
