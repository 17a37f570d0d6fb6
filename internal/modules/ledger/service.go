package ledger

import (
	"context"
	"errors"
	"time"

	"admarket/internal/domain"

	"gorm.io/gorm"
)

// Service owns the funding ledger lifecycle: crediting views, promoting
// pending agreements to available once the view target is met, and paying
// out. All state transitions are conditional updates in the store, so
// concurrent callers can never move a ledger backward or release it twice.
type Service struct {
	trackers trackerRepo
	cats     categoryReader
	sites    websiteReader
	loggerf  func(format string, args ...interface{})
}

func NewService(trackers trackerRepo, cats categoryReader, sites websiteReader, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{trackers: trackers, cats: cats, sites: sites, loggerf: loggerf}
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.PaymentTracker, error) {
	t, err := s.trackers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) ListByAd(ctx context.Context, adID int64) ([]domain.PaymentTracker, error) {
	return s.trackers.ListByAd(ctx, adID)
}

// Credit adds n attributable views to the ad's agreements. The counter is
// monotonic; n must be positive.
func (s *Service) Credit(ctx context.Context, adID int64, n int64) error {
	if n <= 0 {
		return ErrValidation
	}
	return s.trackers.Credit(ctx, adID, n)
}

// TryRelease promotes pending -> available when the view target is met.
// Returns whether this call performed the transition; at most one caller
// ever gets true for a given ledger.
func (s *Service) TryRelease(ctx context.Context, id int64) (bool, error) {
	return s.trackers.TryRelease(ctx, id)
}

// ReleaseEligible promotes every pending ledger whose target is met. Used by
// the recurring sweep.
func (s *Service) ReleaseEligible(ctx context.Context) (int64, error) {
	released, err := s.trackers.ReleaseEligible(ctx)
	if err != nil {
		return 0, err
	}
	if released > 0 {
		s.loggerf("level=info msg=ledger sweep released=%d", released)
	}
	return released, nil
}

// Withdraw pays out an available ledger to the publisher who earned the
// views. Only the owner of the category's website may withdraw; any state
// other than available is rejected without mutation.
func (s *Service) Withdraw(ctx context.Context, userID, id int64) (*domain.PaymentTracker, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cat, err := s.cats.GetByID(ctx, t.CategoryID)
	if err != nil {
		return nil, err
	}
	site, err := s.sites.GetByID(ctx, cat.WebsiteID)
	if err != nil {
		return nil, err
	}
	if site.OwnerID != userID {
		return nil, ErrForbidden
	}

	changed, err := s.trackers.Withdraw(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrInvalidState
	}
	s.loggerf("level=info msg=ledger withdrawn ledger_id=%d user_id=%d amount=%s", id, userID, t.Amount)
	return s.Get(ctx, id)
}
