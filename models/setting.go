package models

import "gorm.io/gorm"

// Setting is the singleton application configuration row. Amount limits are
// in grosz.
type Setting struct {
	ID             int    `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"size:100;default:'Impact Market'" json:"name"`
	Company        string `gorm:"size:150" json:"company"`
	Logo           string `gorm:"size:255" json:"logo"`
	MinDonation    int64  `gorm:"not null;default:100" json:"min_donation"`
	MinPayout      int64  `gorm:"not null;default:1000" json:"min_payout"`
	MaxPayout      int64  `gorm:"not null;default:0" json:"max_payout"`
	Maintenance    bool   `gorm:"not null;default:false" json:"maintenance"`
	ClosedRegister bool   `gorm:"not null;default:false" json:"closed_register"`
	LinkHelp       string `gorm:"size:255" json:"link_help"`
	LinkTerms      string `gorm:"size:255" json:"link_terms"`
}

func (Setting) TableName() string {
	return "settings"
}

// EnsureSetting creates the default settings row when the table is empty.
func EnsureSetting(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&Setting{
		Name:        "Impact Market",
		MinDonation: 100,
		MinPayout:   1000,
	}).Error
}
