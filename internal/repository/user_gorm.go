package repository

import (
	"context"
	"errors"
	"time"

	"github.com/streamhub/accounts/internal/model"
	ctxutil "github.com/streamhub/accounts/pkg/context"
	"github.com/streamhub/accounts/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

var _ UserStore = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	logger.DebugWithContext(ctx, "Creating new user").
		String("username", user.Username).
		String("email", user.Email).
		Log()

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", user.Username).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created successfully").
		String("username", user.Username).
		Uint("user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByID")

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved successfully").
		Uint("user_id", id).
		String("username", user.Username).
		Duration(duration).
		Log()

	return &user, nil
}

// FindByUsernameOrEmail matches either column; either argument may be empty.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByUsernameOrEmail")

	start := time.Now()
	var user model.User

	result := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get user by username or email").
			String("username", username).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved by username or email").
		Uint("user_id", user.ID).
		Duration(duration).
		Log()

	return &user, nil
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id uint, token *string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateRefreshToken")

	logger.DebugWithContext(ctx, "Updating refresh token").
		Uint("user_id", id).
		Bool("has_token", token != nil).
		Log()

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("refresh_token", token)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update refresh token").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// RotateRefreshToken performs the conditional single-row update: the new
// token is written only if the stored value still equals the presented one.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id uint, current, next string) (bool, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "RotateRefreshToken")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND refresh_token = ?", id, current).
		Update("refresh_token", next)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to rotate refresh token").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "Refresh token rotation lost the race or token already rotated").
			Uint("user_id", id).
			Duration(duration).
			Log()
		return false, nil
	}

	logger.DebugWithContext(ctx, "Refresh token rotated successfully").
		Uint("user_id", id).
		Duration(duration).
		Log()

	return true, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdatePassword")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password", hashedPassword)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user password").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	logger.InfoWithContext(ctx, "User password updated successfully").
		Uint("user_id", id).
		Duration(duration).
		Log()

	return nil
}

func (r *UserRepository) UpdateAccount(ctx context.Context, id uint, fullName, email string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateAccount")

	updates := map[string]interface{}{}
	if fullName != "" {
		updates["full_name"] = fullName
	}
	if email != "" {
		updates["email"] = email
	}
	if len(updates) == 0 {
		return nil
	}

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update account details").
			Uint("user_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id uint, url string) error {
	return r.updateImage(ctx, "UpdateAvatar", id, "avatar_url", url)
}

func (r *UserRepository) UpdateCoverImage(ctx context.Context, id uint, url string) error {
	return r.updateImage(ctx, "UpdateCoverImage", id, "cover_image_url", url)
}

func (r *UserRepository) updateImage(ctx context.Context, op string, id uint, column, url string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", op)

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update(column, url)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user image").
			Uint("user_id", id).
			String("column", column).
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
