package service

import (
	"testing"
	"time"

	"github.com/streamhub/accounts/internal/dto"
	apperrors "github.com/streamhub/accounts/internal/errors"
)

func testUser() *dto.UserResponse {
	return &dto.UserResponse{
		ID:       42,
		Username: "frodo",
		Email:    "frodo@shire.me",
		FullName: "Frodo Baggins",
	}
}

func TestIssueTokenPair(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	access, refresh, err := svc.IssueTokenPair(testUser())
	if err != nil {
		t.Fatalf("IssueTokenPair returned error: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("Expected non-empty token pair")
	}
	if access == refresh {
		t.Fatal("Access and refresh tokens must differ")
	}

	accessClaims, err := svc.VerifyAccessToken(access)
	if err != nil {
		t.Fatalf("VerifyAccessToken returned error: %v", err)
	}
	if accessClaims.UserID != 42 {
		t.Errorf("Expected user id 42, got %d", accessClaims.UserID)
	}
	if accessClaims.Username != "frodo" {
		t.Errorf("Expected username frodo, got %s", accessClaims.Username)
	}

	refreshClaims, err := svc.VerifyRefreshToken(refresh)
	if err != nil {
		t.Fatalf("VerifyRefreshToken returned error: %v", err)
	}
	if refreshClaims.UserID != 42 {
		t.Errorf("Expected user id 42, got %d", refreshClaims.UserID)
	}
}

func TestVerifyAccessTokenFailures(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	other := NewTokenService("other-access", "other-refresh", time.Hour, 24*time.Hour)
	expired := NewTokenService("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	goodAccess, goodRefresh, err := svc.IssueTokenPair(testUser())
	if err != nil {
		t.Fatalf("IssueTokenPair returned error: %v", err)
	}

	forged, _, err := other.IssueTokenPair(testUser())
	if err != nil {
		t.Fatalf("IssueTokenPair returned error: %v", err)
	}

	expiredAccess, _, err := expired.IssueTokenPair(testUser())
	if err != nil {
		t.Fatalf("IssueTokenPair returned error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"Malformed token", "not.a.jwt"},
		{"Empty token", ""},
		{"Forged signature", forged},
		{"Expired token", expiredAccess},
		{"Refresh token presented as access token", goodRefresh},
		{"Tampered payload", goodAccess[:len(goodAccess)-4] + "XXXX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyAccessToken(tt.token)
			if err != apperrors.ErrInvalidToken {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyRefreshTokenRejectsAccessToken(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	access, _, err := svc.IssueTokenPair(testUser())
	if err != nil {
		t.Fatalf("IssueTokenPair returned error: %v", err)
	}

	if _, err := svc.VerifyRefreshToken(access); err != apperrors.ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestAccessTTLSeconds(t *testing.T) {
	svc := NewTokenService("a", "r", 24*time.Hour, 240*time.Hour)

	if got := svc.AccessTTLSeconds(); got != 86400 {
		t.Errorf("Expected 86400, got %d", got)
	}
	if got := svc.RefreshTTLSeconds(); got != 864000 {
		t.Errorf("Expected 864000, got %d", got)
	}
}
