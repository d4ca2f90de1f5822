package models

import "time"

// Payout is a withdrawal request. Amount is in grosz. Rows are created as
// pending; the admin back-office flips them to completed or rejected.
type Payout struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uint         `gorm:"not null;index" json:"user_id"`
	BankAccountID uint         `gorm:"not null;index" json:"bank_account_id"`
	Amount        int64        `gorm:"not null" json:"amount"`
	Reference     string       `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference"`
	Status        string       `gorm:"type:enum('pending','completed','rejected');not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	BankAccount   *BankAccount `gorm:"foreignKey:BankAccountID" json:"bank_account,omitempty"`
}

func (Payout) TableName() string {
	return "payouts"
}
