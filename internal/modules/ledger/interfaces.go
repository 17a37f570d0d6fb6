package ledger

import (
	"context"
	"time"

	"admarket/internal/domain"
)

type trackerRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.PaymentTracker, error)
	ListByAd(ctx context.Context, adID int64) ([]domain.PaymentTracker, error)
	Credit(ctx context.Context, adID int64, n int64) error
	TryRelease(ctx context.Context, id int64) (bool, error)
	ReleaseEligible(ctx context.Context) (int64, error)
	Withdraw(ctx context.Context, id int64, at time.Time) (bool, error)
}

type categoryReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}

type websiteReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Website, error)
}
