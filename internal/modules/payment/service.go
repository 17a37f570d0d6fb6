package payment

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"admarket/internal/domain"
	"admarket/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service reconciles payment-confirmation signals from three channels
// (synchronous verify, asynchronous webhook, client poll) into one
// authoritative transaction status. Only verify and webhook write; the poll
// only reads. The terminal write is conditional, so duplicate deliveries and
// races between channels collapse into a single effective confirmation.
type Service struct {
	transactions transactionRepo
	ads          adConfirmer
	trackers     trackerCreator
	gateway      GatewayClient
	loggerf      func(format string, args ...interface{})

	webhookHash string
	checkoutURL string
}

func NewService(
	transactions transactionRepo,
	ads adConfirmer,
	trackers trackerCreator,
	gateway GatewayClient,
	webhookHash string,
	checkoutURL string,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		transactions: transactions,
		ads:          ads,
		trackers:     trackers,
		gateway:      gateway,
		webhookHash:  webhookHash,
		checkoutURL:  checkoutURL,
		loggerf:      loggerf,
	}
}

// InitTransaction opens a payment attempt for funding an (ad, category)
// agreement and returns the hosted checkout link.
func (s *Service) InitTransaction(ctx context.Context, userID int64, req InitTransactionRequest) (*InitTransactionResponse, error) {
	ad, err := s.ads.GetByID(ctx, req.AdID)
	if err != nil {
		return nil, fmt.Errorf("ad check failed: %w", err)
	}
	if ad.UserID != userID {
		return nil, ErrNotAdOwner
	}
	if _, ok := new(big.Rat).SetString(strings.TrimSpace(req.Amount)); !ok {
		return nil, fmt.Errorf("invalid amount %q", req.Amount)
	}

	txn := &domain.PaymentTransaction{
		TxRef:         uuid.NewString(),
		AdID:          req.AdID,
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		ViewsRequired: req.ViewsRequired,
		Status:        domain.TxInitiated,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("save transaction failed: %w", err)
	}

	checkout := fmt.Sprintf("%s?tx_ref=%s&amount=%s", s.checkoutURL, url.QueryEscape(txn.TxRef), url.QueryEscape(txn.Amount))
	s.loggerf("level=info msg=transaction initiated tx_ref=%s ad_id=%d amount=%s", txn.TxRef, txn.AdID, txn.Amount)

	return &InitTransactionResponse{
		TxRef:       txn.TxRef,
		CheckoutURL: checkout,
		Status:      string(domain.TxInitiated),
	}, nil
}

// VerifySync is channel 1: caller-initiated verification right after the
// gateway redirect, carrying the gateway-assigned transaction id.
func (s *Service) VerifySync(ctx context.Context, transactionID string) (*VerifyResponse, error) {
	v, err := s.gateway.VerifyByID(ctx, transactionID)
	if err != nil {
		s.loggerf("level=error msg=sync verify failed transaction_id=%s err=%v", transactionID, err)
		return nil, err
	}
	if v.TxRef == "" {
		// Some gateway responses omit the merchant reference; recover it
		// from the stored gateway id.
		txn, err := s.transactions.GetByGatewayID(ctx, transactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTransactionNotFound
			}
			return nil, err
		}
		v.TxRef = txn.TxRef
	}
	return s.applyVerification(ctx, v, "")
}

// CheckDirect is the fallback lookup by tx_ref, used when the redirect lost
// the gateway transaction id.
func (s *Service) CheckDirect(ctx context.Context, txRef string) (*VerifyResponse, error) {
	v, err := s.gateway.VerifyByReference(ctx, txRef)
	if err != nil {
		s.loggerf("level=error msg=direct check failed tx_ref=%s err=%v", txRef, err)
		return nil, err
	}
	if v.TxRef == "" {
		v.TxRef = txRef
	}
	return s.applyVerification(ctx, v, "")
}

// HandleWebhook is channel 2: gateway-pushed, at-least-once. The shared
// secret header is checked before anything is parsed.
func (s *Service) HandleWebhook(ctx context.Context, signature string, body []byte) (*VerifyResponse, error) {
	if s.webhookHash == "" || subtle.ConstantTimeCompare([]byte(signature), []byte(s.webhookHash)) != 1 {
		return nil, ErrInvalidSignature
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("malformed webhook body: %w", err)
	}
	if ev.Data.TxRef == "" {
		return nil, fmt.Errorf("webhook event %q missing tx_ref", ev.Event)
	}

	v := &GatewayVerification{
		TxRef:         ev.Data.TxRef,
		TransactionID: fmt.Sprintf("%d", ev.Data.ID),
		Status:        ev.Data.Status,
		Amount:        ev.Data.Amount,
	}
	return s.applyVerification(ctx, v, string(body))
}

// Cancel is the only path to the cancelled terminal state: user-abandoned or
// gateway-reported abandonment. A poll timeout never lands here.
func (s *Service) Cancel(ctx context.Context, txRef string) (*VerifyResponse, error) {
	changed, final, err := s.transactions.MarkTerminalIdempotent(ctx, txRef, repository.TerminalWrite{
		Status:        domain.TxCancelled,
		FailureReason: "cancelled by user",
		At:            time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if !changed && final != domain.TxCancelled {
		return &VerifyResponse{Success: false, Message: "transaction already " + string(final)}, nil
	}
	return &VerifyResponse{Success: true, Message: "transaction cancelled"}, nil
}

// PollStatus is channel 3: read-only. It never advances the state machine.
// Client-facing statuses collapse to pending/completed/failed.
func (s *Service) PollStatus(ctx context.Context, txRef string) (string, error) {
	txn, err := s.transactions.GetByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTransactionNotFound
		}
		return "", err
	}
	switch txn.Status {
	case domain.TxCompleted:
		return "completed", nil
	case domain.TxFailed, domain.TxCancelled:
		return "failed", nil
	default:
		return "pending", nil
	}
}

// applyVerification maps a gateway report onto the state machine. Terminal
// writes go through MarkTerminalIdempotent; the confirmation side effects
// (ad confirmed, ledger created) fire only on the edge into completed, never
// on an already-terminal observation.
func (s *Service) applyVerification(ctx context.Context, v *GatewayVerification, rawBody string) (*VerifyResponse, error) {
	txn, err := s.transactions.GetByTxRef(ctx, v.TxRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	gatewayID := strings.TrimSpace(v.TransactionID)

	switch strings.ToLower(strings.TrimSpace(v.Status)) {
	case "successful", "completed":
		if !amountEqual(v.Amount, txn.Amount) {
			reason := fmt.Sprintf("amount mismatch gateway=%s expected=%s", v.Amount, txn.Amount)
			if _, _, err := s.transactions.MarkTerminalIdempotent(ctx, v.TxRef, repository.TerminalWrite{
				Status:        domain.TxFailed,
				TransactionID: optional(gatewayID),
				RawBody:       rawBody,
				FailureReason: reason,
				At:            now,
			}); err != nil {
				s.loggerf("level=error msg=failed to record amount mismatch tx_ref=%s err=%v", v.TxRef, err)
			}
			return nil, ErrAmountMismatch
		}

		changed, final, err := s.transactions.MarkTerminalIdempotent(ctx, v.TxRef, repository.TerminalWrite{
			Status:        domain.TxCompleted,
			TransactionID: optional(gatewayID),
			RawBody:       rawBody,
			At:            now,
		})
		if err != nil {
			return nil, err
		}
		if changed {
			s.confirmFunding(ctx, txn, now)
			return &VerifyResponse{Success: true, Message: "payment completed"}, nil
		}
		if final == domain.TxCompleted {
			s.loggerf("level=info msg=duplicate completion ignored tx_ref=%s", v.TxRef)
			return &VerifyResponse{Success: true, Message: "payment already processed"}, nil
		}
		s.loggerf("level=warn msg=completion after terminal status tx_ref=%s status=%s", v.TxRef, final)
		return &VerifyResponse{Success: false, Message: "transaction already " + string(final)}, nil

	case "failed":
		_, final, err := s.transactions.MarkTerminalIdempotent(ctx, v.TxRef, repository.TerminalWrite{
			Status:        domain.TxFailed,
			TransactionID: optional(gatewayID),
			RawBody:       rawBody,
			FailureReason: "gateway reported failure",
			At:            now,
		})
		if err != nil {
			return nil, err
		}
		if final == domain.TxCompleted {
			return &VerifyResponse{Success: true, Message: "payment already processed"}, nil
		}
		return &VerifyResponse{Success: false, Message: "payment failed"}, nil

	case "cancelled":
		_, final, err := s.transactions.MarkTerminalIdempotent(ctx, v.TxRef, repository.TerminalWrite{
			Status:        domain.TxCancelled,
			TransactionID: optional(gatewayID),
			RawBody:       rawBody,
			FailureReason: "gateway reported cancellation",
			At:            now,
		})
		if err != nil {
			return nil, err
		}
		if final == domain.TxCompleted {
			return &VerifyResponse{Success: true, Message: "payment already processed"}, nil
		}
		return &VerifyResponse{Success: false, Message: "payment cancelled"}, nil

	case "pending":
		if err := s.transactions.MarkPendingIfNotTerminal(ctx, v.TxRef); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTransactionNotFound
			}
			return nil, err
		}
		return &VerifyResponse{Success: false, Message: "payment pending"}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGatewayStatus, v.Status)
	}
}

// confirmFunding runs the completed-edge side effects exactly once per
// transaction: the guarded terminal write above guarantees this is only
// reached by the first writer.
func (s *Service) confirmFunding(ctx context.Context, txn *domain.PaymentTransaction, now time.Time) {
	if err := s.ads.Confirm(ctx, txn.AdID); err != nil {
		s.loggerf("level=error msg=failed to confirm ad after payment tx_ref=%s ad_id=%d err=%v", txn.TxRef, txn.AdID, err)
	}

	tracker := &domain.PaymentTracker{
		AdID:          txn.AdID,
		CategoryID:    txn.CategoryID,
		Amount:        txn.Amount,
		ViewsRequired: txn.ViewsRequired,
		Status:        domain.TrackerPending,
		PaymentDate:   &now,
	}
	if err := s.trackers.CreateIfAbsent(ctx, tracker); err != nil {
		s.loggerf("level=error msg=failed to create payment tracker tx_ref=%s ad_id=%d err=%v", txn.TxRef, txn.AdID, err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func amountEqual(a, b string) bool {
	ar, ok := new(big.Rat).SetString(strings.TrimSpace(a))
	if !ok {
		return false
	}
	br, ok := new(big.Rat).SetString(strings.TrimSpace(b))
	if !ok {
		return false
	}
	return ar.Cmp(br) == 0
}
