package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/streamhub/accounts/internal/dto"
	apperrors "github.com/streamhub/accounts/internal/errors"
	"github.com/streamhub/accounts/internal/model"
	"github.com/streamhub/accounts/internal/repository"
	ctxutil "github.com/streamhub/accounts/pkg/context"
	"github.com/streamhub/accounts/pkg/logger"
	"github.com/streamhub/accounts/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

// ImageUpload is an image file received at the HTTP boundary, ready to be
// streamed to the media store.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// UserService orchestrates the account and session lifecycle: registration,
// login, refresh-token rotation, logout, password change and profile updates.
// All collaborators are passed in; there is no ambient global state.
type UserService struct {
	store    repository.UserStore
	tokens   *TokenService
	uploader storage.Uploader
	profiles *ProfileCache
}

func NewUserService(store repository.UserStore, tokens *TokenService, uploader storage.Uploader, profiles *ProfileCache) *UserService {
	return &UserService{
		store:    store,
		tokens:   tokens,
		uploader: uploader,
		profiles: profiles,
	}
}

func publicView(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FullName:      user.FullName,
		AvatarURL:     user.AvatarURL,
		CoverImageURL: user.CoverImageURL,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

func hashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

func checkPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// Register creates a new identity. The avatar is mandatory: a failed or
// missing upload aborts registration. The cover image is optional and
// degrades to an empty URL on failure.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterUserRequest, avatar, cover *ImageUpload) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")

	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.TrimSpace(req.Email)

	logger.InfoWithContext(ctx, "Registering new user").
		String("username", username).
		String("email", email).
		Log()

	if avatar == nil {
		return nil, apperrors.ErrMissingAvatar
	}

	existing, err := s.store.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if existing != nil {
		logger.WarnWithContext(ctx, "Registration conflict").
			String("username", username).
			Log()
		return nil, apperrors.ErrUserExists
	}

	avatarURL, err := s.uploader.Upload(ctx, avatar.Reader, avatar.Size, avatar.ContentType)
	if err != nil {
		logger.ErrorWithContext(ctx, "Mandatory avatar upload failed").
			String("username", username).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrUploadFailed, err)
	}

	coverURL := ""
	if cover != nil {
		coverURL, err = s.uploader.Upload(ctx, cover.Reader, cover.Size, cover.ContentType)
		if err != nil {
			logger.WarnWithContext(ctx, "Optional cover image upload failed, continuing without it").
				String("username", username).
				Err(err).
				Log()
			coverURL = ""
		}
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username:      username,
		Email:         email,
		FullName:      strings.TrimSpace(req.FullName),
		Password:      hashedPassword,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}

	if err := s.store.Create(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", username).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	view := publicView(user)
	s.profiles.Set(ctx, view)

	logger.InfoWithContext(ctx, "User registered successfully").
		Uint("user_id", user.ID).
		String("username", username).
		Log()

	return view, nil
}

// Login verifies credentials and opens the single session slot. The
// identifier is matched against username or email; a missing user and a
// wrong password yield the identical error.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	user, err := s.store.FindByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.InfoWithContext(ctx, "Login failed: user not found").Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !checkPassword(user.Password, password) {
		logger.WarnWithContext(ctx, "Login failed: incorrect password").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	view := publicView(user)

	accessToken, refreshToken, err := s.tokens.IssueTokenPair(view)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to issue token pair").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		logger.ErrorWithContext(ctx, "Failed to persist refresh token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged in successfully").
		Uint("user_id", user.ID).
		Log()

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokens.AccessTTLSeconds(),
		User:         *view,
	}, nil
}

// Refresh rotates the session: signature and expiry are verified first, then
// the presented token must equal the stored slot byte for byte. The stored
// value is replaced with a conditional update so a racing refresh cannot
// spend the same token twice. Every failure collapses into the same error.
func (s *UserService) Refresh(ctx context.Context, presented string) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Refresh")

	claims, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		logger.WarnWithContext(ctx, "Refresh token failed verification").Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		logger.WarnWithContext(ctx, "Presented refresh token does not match stored session").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	view := publicView(user)

	accessToken, refreshToken, err := s.tokens.IssueTokenPair(view)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	rotated, err := s.store.RotateRefreshToken(ctx, user.ID, presented, refreshToken)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !rotated {
		// Another caller rotated first; the presented token is spent.
		return nil, apperrors.ErrInvalidRefreshToken
	}

	logger.InfoWithContext(ctx, "Session refreshed successfully").
		Uint("user_id", user.ID).
		Log()

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokens.AccessTTLSeconds(),
		User:         *view,
	}, nil
}

// Logout clears the session slot. Clearing an already-empty slot succeeds.
func (s *UserService) Logout(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Logout")

	if err := s.store.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged out successfully").
		Uint("user_id", userID).
		Log()

	return nil
}

// ChangePassword re-verifies the old password before accepting the new one.
// The live refresh token is left untouched.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ChangePassword")

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !checkPassword(user.Password, oldPassword) {
		logger.WarnWithContext(ctx, "Password change failed: old password verification failed").
			Uint("user_id", userID).
			Log()
		return apperrors.ErrInvalidCredentials
	}

	hashedPassword, err := hashPassword(newPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password changed successfully").
		Uint("user_id", userID).
		Log()

	return nil
}

// CurrentUser returns the public-safe view, served from the profile cache
// when possible.
func (s *UserService) CurrentUser(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "CurrentUser")

	if view, ok := s.profiles.Get(ctx, userID); ok {
		return view, nil
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	view := publicView(user)
	s.profiles.Set(ctx, view)

	return view, nil
}

// UpdateAccount changes full name and/or email.
func (s *UserService) UpdateAccount(ctx context.Context, userID uint, req *dto.UpdateAccountRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateAccount")

	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)

	if fullName == "" && email == "" {
		return nil, apperrors.ErrValidation
	}

	if email != "" {
		existing, err := s.store.FindByUsernameOrEmail(ctx, "", email)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if existing != nil && existing.ID != userID {
			return nil, apperrors.ErrUserExists
		}
	}

	if err := s.store.UpdateAccount(ctx, userID, fullName, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.profiles.Invalidate(ctx, userID)

	return s.CurrentUser(ctx, userID)
}

// UpdateAvatar replaces the avatar image; the upload must succeed.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, img *ImageUpload) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateAvatar")
	return s.updateImage(ctx, userID, img, s.store.UpdateAvatar)
}

// UpdateCoverImage replaces the cover image; the upload must succeed.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID uint, img *ImageUpload) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateCoverImage")
	return s.updateImage(ctx, userID, img, s.store.UpdateCoverImage)
}

func (s *UserService) updateImage(ctx context.Context, userID uint, img *ImageUpload, update func(context.Context, uint, string) error) (*dto.UserResponse, error) {
	if img == nil {
		return nil, apperrors.ErrValidation
	}

	url, err := s.uploader.Upload(ctx, img.Reader, img.Size, img.ContentType)
	if err != nil {
		logger.ErrorWithContext(ctx, "Image upload failed").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrUploadFailed, err)
	}

	if err := update(ctx, userID, url); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.profiles.Invalidate(ctx, userID)

	return s.CurrentUser(ctx, userID)
}
