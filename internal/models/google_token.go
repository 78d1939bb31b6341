package models

import "time"

// GoogleToken is the OAuth token pair that lets the app write to a user's calendar.
type GoogleToken struct {
	UserID       uint   `gorm:"primaryKey;autoIncrement:false"`
	AccessToken  string `gorm:"not null;default:''"`
	RefreshToken string `gorm:"not null"`
	TokenType    string `gorm:"not null;default:''"`
	Expiry       *time.Time
	UpdatedAt    time.Time
}

func (GoogleToken) TableName() string {
	return "google_auth_tokens"
}
