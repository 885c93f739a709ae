package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/internal/middleware"
	"github.com/streamhub/accounts/internal/model"
	"github.com/streamhub/accounts/internal/repository"
	"github.com/streamhub/accounts/internal/service"
	"github.com/streamhub/accounts/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	users  map[uint]*model.User
	nextID uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[uint]*model.User), nextID: 1}
}

func (s *memoryStore) Create(_ context.Context, user *model.User) error {
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.nextID++
	s.users[user.ID] = user
	return nil
}

func (s *memoryStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memoryStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*model.User, error) {
	for _, user := range s.users {
		if user.Username == username || user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryStore) UpdateRefreshToken(_ context.Context, id uint, token *string) error {
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.RefreshToken = token
	return nil
}

func (s *memoryStore) RotateRefreshToken(_ context.Context, id uint, current, next string) (bool, error) {
	user, ok := s.users[id]
	if !ok || user.RefreshToken == nil || *user.RefreshToken != current {
		return false, nil
	}
	user.RefreshToken = &next
	return true, nil
}

func (s *memoryStore) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (s *memoryStore) UpdateAccount(_ context.Context, id uint, fullName, email string) error {
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if fullName != "" {
		user.FullName = fullName
	}
	if email != "" {
		user.Email = email
	}
	return nil
}

func (s *memoryStore) UpdateAvatar(_ context.Context, id uint, url string) error {
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.AvatarURL = url
	return nil
}

func (s *memoryStore) UpdateCoverImage(_ context.Context, id uint, url string) error {
	user, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.CoverImageURL = url
	return nil
}

type staticUploader struct{}

func (staticUploader) Upload(_ context.Context, _ io.Reader, _ int64, _ string) (string, error) {
	return "https://media.example.com/object.png", nil
}

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemoryStore()
	tokens := service.NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	profiles := service.NewProfileCache(redis.NewClient(redis.Config{Enabled: false}, zap.NewNop()))
	userService := service.NewUserService(store, tokens, staticUploader{}, profiles)

	userHandler := NewUserHandler(userService)
	authHandler := NewAuthHandler(userService, tokens, CookieConfig{})
	authMw := middleware.NewAuthMiddleware(tokens, store)

	engine := gin.New()
	users := engine.Group("/api/v1/users")
	{
		users.POST("/register", userHandler.Register)
		users.POST("/login", authHandler.Login)
		users.POST("/refresh-token", authHandler.RefreshToken)

		protected := users.Group("")
		protected.Use(authMw.RequireAuth())
		{
			protected.POST("/logout", authHandler.Logout)
			protected.POST("/change-password", userHandler.ChangePassword)
			protected.GET("/current-user", userHandler.GetCurrentUser)
			protected.PATCH("/update-account", userHandler.UpdateAccount)
		}
	}

	return engine
}

func multipartRegistration(t *testing.T, withAvatar bool) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"username": "Bilbo",
		"email":    "bilbo@shire.me",
		"fullName": "Bilbo Baggins",
		"password": "theredbook1",
	}
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}

	if withAvatar {
		part, err := writer.CreateFormFile("avatar", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake png bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func registerTestUser(t *testing.T, engine *gin.Engine) {
	t.Helper()

	body, contentType := multipartRegistration(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func loginTestUser(t *testing.T, engine *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"identifier":"bilbo","password":"theredbook1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestRegisterEndpoint(t *testing.T) {
	engine := setupTestServer(t)

	body, contentType := multipartRegistration(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(http.StatusCreated), envelope["status"])

	data := envelope["data"].(map[string]any)
	assert.Equal(t, "bilbo", data["username"])
	assert.Equal(t, "https://media.example.com/object.png", data["avatar"])

	// The password hash and refresh token must never appear in a response.
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "refreshToken")
}

func TestRegisterEndpointMissingAvatar(t *testing.T) {
	engine := setupTestServer(t)

	body, contentType := multipartRegistration(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "avatar file is required")
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	engine := setupTestServer(t)
	registerTestUser(t, engine)

	body, contentType := multipartRegistration(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginEndpointSetsCookies(t *testing.T) {
	engine := setupTestServer(t)
	registerTestUser(t, engine)

	rec := loginTestUser(t, engine)

	assert.NotEmpty(t, cookieValue(rec, "accessToken"))
	assert.NotEmpty(t, cookieValue(rec, "refreshToken"))

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data := envelope["data"].(map[string]any)
	assert.NotEmpty(t, data["accessToken"])
	assert.Equal(t, float64(3600), data["expiresIn"])
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	engine := setupTestServer(t)
	registerTestUser(t, engine)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"identifier":"bilbo","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid user credentials")
}

func TestRefreshTokenEndpointFromCookie(t *testing.T) {
	engine := setupTestServer(t)
	registerTestUser(t, engine)
	loginRec := loginTestUser(t, engine)

	refresh := cookieValue(loginRec, "refreshToken")
	require.NotEmpty(t, refresh)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rotated := cookieValue(rec, "refreshToken")
	assert.NotEmpty(t, rotated)
	assert.NotEqual(t, refresh, rotated, "refresh must rotate the token")

	// The spent token no longer works.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenEndpointFromBody(t *testing.T) {
	engine := setupTestServer(t)
	registerTestUser(t, engine)
	loginRec := loginTestUser(t, engine)

	refresh := cookieValue(loginRec, "refreshToken")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token",
		strings.NewReader(`{"refreshToken":"`+refresh+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRefreshTokenEndpointMissing(t *testing.T) {
	engine := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCurrentUserEndpoint(t *testing.T) {
	engine := setupTestServer(t)
	registerTestUser(t, engine)
	loginRec := loginTestUser(t, engine)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.Header.Set("Authorization", "Bearer "+cookieValue(loginRec, "accessToken"))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"username":"bilbo"`)
}

func TestCurrentUserEndpointUnauthenticated(t *testing.T) {
	engine := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpointClearsCookies(t *testing.T) {
	engine := setupTestServer(t)
	registerTestUser(t, engine)
	loginRec := loginTestUser(t, engine)

	access := cookieValue(loginRec, "accessToken")
	refresh := cookieValue(loginRec, "refreshToken")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value, "auth cookie %s must be cleared", c.Name)
	}

	// The stored session is gone: the refresh token is unusable.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	engine := setupTestServer(t)
	registerTestUser(t, engine)
	loginRec := loginTestUser(t, engine)

	access := cookieValue(loginRec, "accessToken")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password",
		strings.NewReader(`{"oldPassword":"theredbook1","newPassword":"thereandback2"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Old password is rejected, new one works.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"identifier":"bilbo","password":"theredbook1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"identifier":"bilbo","password":"thereandback2"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateAccountEndpoint(t *testing.T) {
	engine := setupTestServer(t)
	registerTestUser(t, engine)
	loginRec := loginTestUser(t, engine)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-account",
		strings.NewReader(`{"fullName":"Bilbo of Bag End"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cookieValue(loginRec, "accessToken"))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Bilbo of Bag End")
}
