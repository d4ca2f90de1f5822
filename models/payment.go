package models

import "time"

// Payment is a single donation. Amount is in grosz (minor units).
// Status is monotonic: pending -> completed|failed, never back.
type Payment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CreatorID       uint       `gorm:"not null;index" json:"creator_id"`
	Amount          int64      `gorm:"not null" json:"amount"`
	Currency        string     `gorm:"size:8;not null;default:'pln'" json:"currency"`
	Status          string     `gorm:"type:enum('pending','completed','failed');not null;default:'pending';index" json:"status"`
	PaymentType     string     `gorm:"size:16;not null;default:'checkout'" json:"payment_type"`
	PayerName       *string    `gorm:"size:100" json:"payer_name,omitempty"`
	PayerEmail      *string    `gorm:"size:191" json:"payer_email,omitempty"`
	Message         *string    `gorm:"type:text" json:"message,omitempty"`
	StripeSessionID *string    `gorm:"type:varchar(191);index" json:"-"`
	StripePaymentID *string    `gorm:"type:varchar(191)" json:"-"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
