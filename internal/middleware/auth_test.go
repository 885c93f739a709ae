package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/internal/dto"
	"github.com/streamhub/accounts/internal/model"
	"github.com/streamhub/accounts/internal/repository"
	"github.com/streamhub/accounts/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubStore struct {
	user *model.User
}

func (s *stubStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubStore) Create(context.Context, *model.User) error { return nil }
func (s *stubStore) FindByUsernameOrEmail(context.Context, string, string) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (s *stubStore) UpdateRefreshToken(context.Context, uint, *string) error { return nil }
func (s *stubStore) RotateRefreshToken(context.Context, uint, string, string) (bool, error) {
	return false, nil
}
func (s *stubStore) UpdatePassword(context.Context, uint, string) error        { return nil }
func (s *stubStore) UpdateAccount(context.Context, uint, string, string) error { return nil }
func (s *stubStore) UpdateAvatar(context.Context, uint, string) error          { return nil }
func (s *stubStore) UpdateCoverImage(context.Context, uint, string) error      { return nil }

func setupGuard(t *testing.T, store repository.UserStore) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := service.NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	mw := NewAuthMiddleware(tokens, store)

	engine := gin.New()
	engine.GET("/protected", mw.RequireAuth(), func(c *gin.Context) {
		userID, _ := AuthenticatedUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	return engine, tokens
}

func issueAccessToken(t *testing.T, tokens *service.TokenService, id uint) string {
	t.Helper()
	access, _, err := tokens.IssueTokenPair(&dto.UserResponse{ID: id, Username: "sam", Email: "sam@shire.me"})
	require.NoError(t, err)
	return access
}

func TestRequireAuthMissingCredential(t *testing.T) {
	engine, _ := setupGuard(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), constants.MsgMissingCredential)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	engine, _ := setupGuard(t, &stubStore{})

	tests := []struct {
		name   string
		header string
	}{
		{"Garbage bearer token", "Bearer not-a-jwt"},
		{"Wrong scheme", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set(constants.HeaderAuthorization, tt.header)
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAuthBearerHeader(t *testing.T) {
	store := &stubStore{user: &model.User{Model: gorm.Model{ID: 7}, Username: "sam"}}
	engine, tokens := setupGuard(t, store)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer "+issueAccessToken(t, tokens, 7))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":7`)
}

func TestRequireAuthCookie(t *testing.T) {
	store := &stubStore{user: &model.User{Model: gorm.Model{ID: 7}, Username: "sam"}}
	engine, tokens := setupGuard(t, store)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: issueAccessToken(t, tokens, 7)})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthDeletedUser(t *testing.T) {
	engine, tokens := setupGuard(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer "+issueAccessToken(t, tokens, 7))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), constants.MsgInvalidCredential)
}
