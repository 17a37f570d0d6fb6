package domain

import "time"

type TransactionStatus string

const (
	TxInitiated TransactionStatus = "initiated"
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
	TxCancelled TransactionStatus = "cancelled"
)

// Terminal reports whether no further transition is accepted from s.
func (s TransactionStatus) Terminal() bool {
	return s == TxCompleted || s == TxFailed || s == TxCancelled
}

// PaymentTransaction is one payment attempt. TxRef is the client-generated
// idempotency key; TransactionID is assigned by the gateway once known.
// Exactly one terminal status is ever recorded per tx_ref.
type PaymentTransaction struct {
	ID             int64             `gorm:"primaryKey" json:"id"`
	TxRef          string            `gorm:"type:varchar(64);uniqueIndex;not null" json:"tx_ref"`
	TransactionID  *string           `gorm:"type:varchar(64);uniqueIndex" json:"transaction_id"`
	AdID           int64             `gorm:"index;not null" json:"ad_id"`
	CategoryID     int64             `gorm:"index;not null" json:"category_id"`
	Amount         string            `gorm:"type:varchar(32);not null" json:"amount"`
	ViewsRequired  int64             `gorm:"not null" json:"views_required"`
	Status         TransactionStatus `gorm:"type:varchar(20);default:'initiated';index" json:"status"`
	WebhookRawBody string            `gorm:"type:text" json:"webhook_raw_body"`
	FailureReason  string            `gorm:"type:text" json:"failure_reason"`
	CompletedAt    *time.Time        `json:"completed_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (PaymentTransaction) TableName() string { return "payment_transactions" }
