package models

import "time"

// PersonalData is the onboarding personal-details step, one row per user.
type PersonalData struct {
	UserID      uint      `gorm:"primaryKey" json:"user_id"`
	FirstName   string    `gorm:"size:100;not null" json:"first_name"`
	LastName    string    `gorm:"size:100;not null" json:"last_name"`
	CompanyName *string   `gorm:"size:150" json:"company_name,omitempty"`
	TaxID       *string   `gorm:"column:tax_id;size:20" json:"tax_id,omitempty"`
	Street      string    `gorm:"size:150;not null" json:"street"`
	City        string    `gorm:"size:100;not null" json:"city"`
	PostalCode  string    `gorm:"size:10;not null" json:"postal_code"`
	Country     string    `gorm:"size:2;not null;default:'PL'" json:"country"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (PersonalData) TableName() string {
	return "personal_data"
}
