package models

import "time"

// Verification holds the KYC and phone-verification state for one user.
// KYCStatus gates payouts together with the presence of a bank account.
type Verification struct {
	UserID        uint      `gorm:"primaryKey" json:"user_id"`
	KYCStatus     string    `gorm:"column:kyc_status;type:enum('not_started','pending','verified','rejected');not null;default:'not_started'" json:"kyc_status"`
	DocumentURL   *string   `gorm:"type:varchar(255)" json:"-"`
	PhoneNumber   *string   `gorm:"size:20" json:"phone_number,omitempty"`
	PhoneVerified bool      `gorm:"not null;default:false" json:"phone_verified"`
	OTPID         *string   `gorm:"column:otp_id;type:varchar(191)" json:"-"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

func (Verification) TableName() string {
	return "verifications"
}
