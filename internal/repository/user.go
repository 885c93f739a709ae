package repository

import (
	"context"
	"errors"

	"github.com/streamhub/accounts/internal/model"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// UserStore is the credential store contract. The service layer depends on
// this interface only; the gorm implementation below is the production
// collaborator.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)

	// UpdateRefreshToken overwrites the single session slot; nil clears it.
	UpdateRefreshToken(ctx context.Context, id uint, token *string) error

	// RotateRefreshToken atomically replaces the stored refresh token only if
	// it still equals current. Returns false when another caller rotated
	// first; the losing caller's token is already spent.
	RotateRefreshToken(ctx context.Context, id uint, current, next string) (bool, error)

	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	UpdateAccount(ctx context.Context, id uint, fullName, email string) error
	UpdateAvatar(ctx context.Context, id uint, url string) error
	UpdateCoverImage(ctx context.Context, id uint, url string) error
}
