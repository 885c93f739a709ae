package dto

import "time"

// RegisterUserRequest carries the text fields of the multipart registration
// form; the avatar and cover image files are handled separately.
type RegisterUserRequest struct {
	Username string `form:"username" json:"username" binding:"required,min=3,max=30" validate:"required,min=3,max=30"`
	Email    string `form:"email" json:"email" binding:"required,email" validate:"required,email"`
	FullName string `form:"fullName" json:"fullName" binding:"required,min=2,max=100" validate:"required,min=2,max=100"`
	Password string `form:"password" json:"password" binding:"required,min=8,max=100" validate:"required,min=8,max=100"`
}

// UserLoginRequest matches the identifier against either username or email.
type UserLoginRequest struct {
	Identifier string `json:"identifier" binding:"required" validate:"required"`
	Password   string `json:"password" binding:"required" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required" validate:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=100" validate:"required,min=8,max=100"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName" binding:"omitempty,min=2,max=100" validate:"omitempty,min=2,max=100"`
	Email    string `json:"email" binding:"omitempty,email" validate:"omitempty,email"`
}

// UserResponse is the public-safe identity view: everything except the
// password hash and the stored refresh token.
type UserResponse struct {
	ID            uint      `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"` // access token expiry in seconds
	User         UserResponse `json:"user"`
}
