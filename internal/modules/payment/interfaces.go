package payment

import (
	"context"

	"admarket/internal/domain"
	"admarket/internal/repository"
)

type transactionRepo interface {
	Create(ctx context.Context, t *domain.PaymentTransaction) error
	GetByTxRef(ctx context.Context, txRef string) (*domain.PaymentTransaction, error)
	GetByGatewayID(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error)
	MarkPendingIfNotTerminal(ctx context.Context, txRef string) error
	MarkTerminalIdempotent(ctx context.Context, txRef string, w repository.TerminalWrite) (bool, domain.TransactionStatus, error)
}

type adConfirmer interface {
	GetByID(ctx context.Context, id int64) (*domain.Ad, error)
	Confirm(ctx context.Context, id int64) error
}

type trackerCreator interface {
	CreateIfAbsent(ctx context.Context, t *domain.PaymentTracker) error
}

// GatewayClient talks to the payment gateway. Implemented over HTTP in
// production and stubbed in tests.
type GatewayClient interface {
	VerifyByID(ctx context.Context, transactionID string) (*GatewayVerification, error)
	VerifyByReference(ctx context.Context, txRef string) (*GatewayVerification, error)
}
