package model

import (
	"gorm.io/gorm"
)

// User is the identity record. RefreshToken is the single-slot session model:
// it holds the one refresh token currently considered valid for this user, or
// NULL when no session is live.
type User struct {
	gorm.Model
	Username      string  `gorm:"column:username;unique;not null;index"`
	Email         string  `gorm:"column:email;unique;not null;index"`
	FullName      string  `gorm:"column:full_name;not null"`
	Password      string  `gorm:"column:password;not null"`
	AvatarURL     string  `gorm:"column:avatar_url;not null"`
	CoverImageURL string  `gorm:"column:cover_image_url"`
	RefreshToken  *string `gorm:"column:refresh_token;default:null"`
}
