package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/internal/dto"
	apperrors "github.com/streamhub/accounts/internal/errors"
	"github.com/streamhub/accounts/internal/middleware"
	"github.com/streamhub/accounts/internal/service"
	ctxutil "github.com/streamhub/accounts/pkg/context"
	"github.com/streamhub/accounts/pkg/logger"
)

// CookieConfig controls the auth cookies the handlers set alongside the
// JSON response body.
type CookieConfig struct {
	Domain string
	Secure bool
}

type AuthHandler struct {
	userService *service.UserService
	tokens      *service.TokenService
	cookies     CookieConfig
}

func NewAuthHandler(userService *service.UserService, tokens *service.TokenService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		cookies:     cookies,
	}
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "Login")

	var req dto.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest,
			constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgBadRequest, middleware.ValidationMessages(err)))
		return
	}

	response, err := h.userService.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	h.setAuthCookies(c, response)

	logger.LogAuth(response.User.ID, "login", true)

	c.JSON(http.StatusOK,
		constants.BuildResponse(http.StatusOK, response, constants.MsgLoggedIn))
}

// RefreshToken rotates the session. The refresh token is read from the
// refreshToken cookie first, then the request body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "RefreshToken")

	presented, _ := c.Cookie(constants.CookieRefreshToken)
	if presented == "" {
		var req dto.RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	if presented == "" {
		c.JSON(http.StatusUnauthorized,
			constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgMissingCredential, nil))
		return
	}

	response, err := h.userService.Refresh(ctx, presented)
	if err != nil {
		logger.WarnWithContext(ctx, "Token refresh failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	h.setAuthCookies(c, response)

	logger.InfoWithContext(ctx, "Token refreshed successfully").
		Uint("user_id", response.User.ID).
		Log()

	c.JSON(http.StatusOK,
		constants.BuildResponse(http.StatusOK, response, constants.MsgTokenRefreshed))
}

// Logout clears the session and both auth cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "Logout")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgMissingCredential, nil))
		return
	}

	if err := h.userService.Logout(ctx, userID); err != nil {
		logger.ErrorWithContext(ctx, "Failed to logout user").
			Uint("user_id", userID).
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	h.clearAuthCookies(c)

	logger.LogAuth(userID, "logout", true)

	c.JSON(http.StatusOK,
		constants.BuildResponse(http.StatusOK, nil, constants.MsgLoggedOut))
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, response *dto.AuthResponse) {
	c.SetCookie(constants.CookieAccessToken, response.AccessToken,
		h.tokens.AccessTTLSeconds(), "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(constants.CookieRefreshToken, response.RefreshToken,
		h.tokens.RefreshTTLSeconds(), "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetCookie(constants.CookieAccessToken, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(constants.CookieRefreshToken, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}
