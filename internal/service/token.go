package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/streamhub/accounts/internal/dto"
	apperrors "github.com/streamhub/accounts/internal/errors"
)

// AccessClaims are carried by short-lived access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RefreshClaims carry only the subject id; refresh tokens exist solely to
// mint new pairs.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID uint `json:"uid"`
}

// TokenService issues and verifies the access/refresh token pair. The two
// token kinds are signed with distinct secrets so that compromise of one
// cannot forge the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueTokenPair creates both tokens for the user. Persisting the refresh
// token is the caller's responsibility.
func (s *TokenService) IssueTokenPair(user *dto.UserResponse) (string, string, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})

	accessToken, err := access.SignedString(s.accessSecret)
	if err != nil {
		return "", "", err
	}

	// The jti makes every refresh token unique even when two are minted
	// within the same second, so rotation always changes the stored value.
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
		UserID: user.ID,
	})

	refreshToken, err := refresh.SignedString(s.refreshSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// VerifyAccessToken validates the token and returns its claims. Malformed,
// forged and expired tokens all collapse into the same invalid outcome so
// the distinction never crosses the trust boundary.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken validates the token and returns its claims.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return apperrors.ErrInvalidToken
	}
	return nil
}

// AccessTTLSeconds reports the access token lifetime for response payloads.
func (s *TokenService) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

// RefreshTTLSeconds reports the refresh token lifetime for cookie expiry.
func (s *TokenService) RefreshTTLSeconds() int {
	return int(s.refreshTTL.Seconds())
}
