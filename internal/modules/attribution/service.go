package attribution

import (
	"context"
	"errors"

	"admarket/internal/domain"

	"gorm.io/gorm"
)

var ErrAdNotFound = errors.New("ad not found")

// StatsNotifier pushes counter changes to connected dashboards. Optional.
type StatsNotifier interface {
	PublishStats(adID, views, clicks int64)
}

// Service records view/click beacons. A view increments the ad counter and
// the funding ledger counter in one database transaction with atomic
// increments, so concurrent beacons never lose updates and the two counters
// never drift apart. Clicks touch the ad only: billing is view-based.
//
// Idempotency is request-level: every call is one increment. The browser
// beacon is responsible for not double-firing; the server does not
// deduplicate.
type Service struct {
	db       *gorm.DB
	notifier StatsNotifier
}

func NewService(db *gorm.DB, notifier StatsNotifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// RecordView counts one view and mirrors it into the ad's ledgers, running
// the release check on the same transaction. Returns the updated view count.
func (s *Service) RecordView(ctx context.Context, adID int64) (int64, error) {
	var views, clicks int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Ad{}).Where("id = ?", adID).Update("views", gorm.Expr("views + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAdNotFound
		}

		if err := tx.Model(&domain.PaymentTracker{}).
			Where("ad_id = ? AND status <> ?", adID, domain.TrackerWithdrawn).
			Update("current_views", gorm.Expr("current_views + 1")).Error; err != nil {
			return err
		}

		// Promote any agreement that just met its target. CAS on status,
		// fires at most once per ledger.
		if err := tx.Model(&domain.PaymentTracker{}).
			Where("ad_id = ? AND status = ? AND current_views >= views_required", adID, domain.TrackerPending).
			Update("status", domain.TrackerAvailable).Error; err != nil {
			return err
		}

		var ad domain.Ad
		if err := tx.Select("views", "clicks").First(&ad, adID).Error; err != nil {
			return err
		}
		views, clicks = ad.Views, ad.Clicks
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.notifier != nil {
		s.notifier.PublishStats(adID, views, clicks)
	}
	return views, nil
}

// RecordClick counts one click. The ledger is untouched.
func (s *Service) RecordClick(ctx context.Context, adID int64) (int64, error) {
	clicks, _, err := s.click(ctx, adID)
	return clicks, err
}

// ClickThrough counts one click and returns the ad's target URL for the
// tracking redirect.
func (s *Service) ClickThrough(ctx context.Context, adID int64) (string, error) {
	_, target, err := s.click(ctx, adID)
	return target, err
}

func (s *Service) click(ctx context.Context, adID int64) (int64, string, error) {
	var clicks, views int64
	var target string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Ad{}).Where("id = ?", adID).Update("clicks", gorm.Expr("clicks + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAdNotFound
		}

		var ad domain.Ad
		if err := tx.Select("views", "clicks", "target_url").First(&ad, adID).Error; err != nil {
			return err
		}
		clicks, views, target = ad.Clicks, ad.Views, ad.TargetURL
		return nil
	})
	if err != nil {
		return 0, "", err
	}

	if s.notifier != nil {
		s.notifier.PublishStats(adID, views, clicks)
	}
	return clicks, target, nil
}
