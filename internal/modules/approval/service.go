package approval

import (
	"context"
	"errors"

	"admarket/internal/domain"

	"gorm.io/gorm"
)

var ErrSelectionNotFound = errors.New("ad is not placed on this website")

type selectionRepo interface {
	SetApproved(ctx context.Context, adID, websiteID int64, approved bool) error
	ListPendingByWebsite(ctx context.Context, websiteID int64) ([]domain.AdSelection, error)
}

// Service implements the publisher's review queue. Approval is scoped to one
// (ad, website) pair: approving an ad on one site says nothing about the same
// ad's placements elsewhere.
type Service struct {
	selections selectionRepo
	loggerf    func(format string, args ...interface{})
}

func NewService(selections selectionRepo, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Service{selections: selections, loggerf: loggerf}
}

// Approve marks the ad's placement on the website as approved. Re-approving
// is allowed and just refreshes the approval timestamp.
func (s *Service) Approve(ctx context.Context, adID, websiteID int64) error {
	if err := s.setApproved(ctx, adID, websiteID, true); err != nil {
		return err
	}
	s.loggerf("level=info msg=placement_approved ad_id=%d website_id=%d", adID, websiteID)
	return nil
}

// Revoke withdraws approval, removing the ad from the website's rotation.
func (s *Service) Revoke(ctx context.Context, adID, websiteID int64) error {
	if err := s.setApproved(ctx, adID, websiteID, false); err != nil {
		return err
	}
	s.loggerf("level=info msg=placement_revoked ad_id=%d website_id=%d", adID, websiteID)
	return nil
}

func (s *Service) setApproved(ctx context.Context, adID, websiteID int64, approved bool) error {
	err := s.selections.SetApproved(ctx, adID, websiteID, approved)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSelectionNotFound
	}
	return err
}

// ListPending returns the placements awaiting the publisher's review.
func (s *Service) ListPending(ctx context.Context, websiteID int64) ([]domain.AdSelection, error) {
	return s.selections.ListPendingByWebsite(ctx, websiteID)
}
