package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SocialLinks maps platform name to URL and is stored as a JSON column.
type SocialLinks map[string]string

func (s SocialLinks) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *SocialLinks) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for SocialLinks")
	}
}

// Profile is the creator's public page. Primary key equals the owning user's id.
// TotalDonations and AvailableBalance are cached aggregates in grosz, updated
// transactionally by the payment webhook and the payout back-office; the
// available balance excludes completed payouts but not pending ones.
type Profile struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	Username         string      `gorm:"size:50;uniqueIndex;not null" json:"username"`
	DisplayName      string      `gorm:"size:100;not null" json:"display_name"`
	Bio              *string     `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL        *string     `gorm:"type:varchar(255)" json:"avatar_url,omitempty"`
	SmallAmount      int64       `gorm:"not null;default:500" json:"small_amount"`
	MediumAmount     int64       `gorm:"not null;default:1500" json:"medium_amount"`
	LargeAmount      int64       `gorm:"not null;default:5000" json:"large_amount"`
	SmallIcon        string      `gorm:"size:50" json:"small_icon"`
	MediumIcon       string      `gorm:"size:50" json:"medium_icon"`
	LargeIcon        string      `gorm:"size:50" json:"large_icon"`
	SocialLinks      SocialLinks `gorm:"type:json" json:"social_links,omitempty"`
	TotalDonations   int64       `gorm:"not null;default:0" json:"total_donations"`
	AvailableBalance int64       `gorm:"not null;default:0" json:"available_balance"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

// IconsSelected reports whether the icon-selection onboarding step is done.
func (p *Profile) IconsSelected() bool {
	return p.SmallIcon != "" && p.MediumIcon != "" && p.LargeIcon != ""
}
