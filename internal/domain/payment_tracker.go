package domain

import "time"

type TrackerStatus string

const (
	TrackerPending   TrackerStatus = "pending"
	TrackerAvailable TrackerStatus = "available"
	TrackerWithdrawn TrackerStatus = "withdrawn"
)

// PaymentTracker is the funding ledger for one (ad, category) agreement.
// Status only moves forward: pending -> available -> withdrawn.
// Available requires current_views >= views_required.
type PaymentTracker struct {
	ID                 int64         `gorm:"primaryKey" json:"id"`
	AdID               int64         `gorm:"uniqueIndex:idx_tracker_agreement;not null" json:"ad_id"`
	CategoryID         int64         `gorm:"uniqueIndex:idx_tracker_agreement;not null" json:"category_id"`
	Amount             string        `gorm:"type:varchar(32);not null" json:"amount"`
	ViewsRequired      int64         `gorm:"not null" json:"views_required"`
	CurrentViews       int64         `gorm:"not null;default:0" json:"current_views"`
	Status             TrackerStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	PaymentDate        *time.Time    `json:"payment_date"`
	LastWithdrawalDate *time.Time    `json:"last_withdrawal_date"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (PaymentTracker) TableName() string { return "payment_trackers" }
