package repository

import (
	"context"
	"errors"
	"time"

	"admarket/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) GetByTxRef(ctx context.Context, txRef string) (*domain.PaymentTransaction, error) {
	var t domain.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("tx_ref = ?", txRef).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByGatewayID(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error) {
	var t domain.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkPendingIfNotTerminal records that the gateway reports the attempt in
// flight. Terminal rows are left untouched; a missing row is an error.
func (r *TransactionRepository) MarkPendingIfNotTerminal(ctx context.Context, txRef string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentTransaction{}).
		Where("tx_ref = ? AND status NOT IN ?", txRef, terminalStatuses()).
		Update("status", domain.TxPending)
	if res.Error != nil {
		return res.Error
	}
	var existing int64
	if err := r.db.WithContext(ctx).Model(&domain.PaymentTransaction{}).Where("tx_ref = ?", txRef).Count(&existing).Error; err != nil {
		return err
	}
	if existing == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TerminalWrite carries everything a terminal transition records alongside
// the status itself.
type TerminalWrite struct {
	Status        domain.TransactionStatus
	TransactionID *string
	RawBody       string
	FailureReason string
	At            time.Time
}

// MarkTerminalIdempotent applies the one-and-only terminal transition for a
// tx_ref. The row is locked, re-checked, and written only if the current
// status is not already terminal. The first writer wins; later writers get
// changed=false and the status that is already on record. This is the single
// sink all confirmation channels converge on.
func (r *TransactionRepository) MarkTerminalIdempotent(ctx context.Context, txRef string, w TerminalWrite) (bool, domain.TransactionStatus, error) {
	if !w.Status.Terminal() {
		return false, "", errors.New("terminal write with non-terminal status")
	}

	var changed bool
	var final domain.TransactionStatus

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.PaymentTransaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("tx_ref = ?", txRef).First(&t).Error; err != nil {
			return err
		}
		if t.Status.Terminal() {
			changed = false
			final = t.Status
			return nil
		}

		updates := map[string]interface{}{
			"status":         w.Status,
			"failure_reason": w.FailureReason,
		}
		if w.TransactionID != nil {
			updates["transaction_id"] = *w.TransactionID
		}
		if w.RawBody != "" {
			updates["webhook_raw_body"] = w.RawBody
		}
		if w.Status == domain.TxCompleted {
			updates["completed_at"] = w.At
		}

		res := tx.Model(&domain.PaymentTransaction{}).Where("tx_ref = ?", txRef).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("transaction row not updated")
		}
		changed = true
		final = w.Status
		return nil
	})
	return changed, final, err
}

func terminalStatuses() []domain.TransactionStatus {
	return []domain.TransactionStatus{domain.TxCompleted, domain.TxFailed, domain.TxCancelled}
}
