package models

import "time"

type BankAccount struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	AccountNumber string    `gorm:"size:50;not null" json:"account_number"`
	BankName      string    `gorm:"size:100;not null" json:"bank_name"`
	SwiftCode     string    `gorm:"size:11;not null" json:"swift_code"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}
