package models

import "time"

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"size:255;not null" json:"-"`
	AccountType *string   `gorm:"type:enum('individual','company')" json:"account_type,omitempty"`
	Status      string    `gorm:"type:enum('Active','Inactive','Suspend');default:'Active'" json:"status"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
