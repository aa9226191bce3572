package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Sponsor struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID       snowflake.ID `gorm:"not null;uniqueIndex" json:"user_id"`
	CompanyName  string       `gorm:"not null" json:"company_name"`
	WebsiteURL   string       `json:"website_url,omitempty"`
	LogoURL      string       `json:"logo_url,omitempty"`
	BillingEmail string       `json:"billing_email,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
