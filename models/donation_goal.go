package models

import "time"

// DonationGoal tracks a fundraising target. CurrentAmount is incremented in
// the same transaction that completes a payment.
type DonationGoal struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	Title         string     `gorm:"size:100;not null" json:"title"`
	Description   *string    `gorm:"type:text" json:"description,omitempty"`
	TargetAmount  int64      `gorm:"not null" json:"target_amount"`
	CurrentAmount int64      `gorm:"not null;default:0" json:"current_amount"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Active        bool       `gorm:"not null;default:true;index" json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"-"`
}

func (DonationGoal) TableName() string {
	return "donation_goals"
}
