package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/internal/model"
	"github.com/streamhub/accounts/internal/repository"
	"github.com/streamhub/accounts/internal/service"
	ctxutil "github.com/streamhub/accounts/pkg/context"
	"github.com/streamhub/accounts/pkg/logger"
	"go.uber.org/zap"
)

// AuthMiddleware guards protected routes. The access token is read from the
// accessToken cookie first, then the Authorization bearer header. A missing
// credential and an invalid one produce distinct messages; everything else
// about the failure stays on the server side of the trust boundary.
type AuthMiddleware struct {
	tokens *service.TokenService
	store  repository.UserStore
}

func NewAuthMiddleware(tokens *service.TokenService, store repository.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		store:  store,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			logger.GetLogger().Warn("Request without credential on protected route",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(http.StatusUnauthorized,
				constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgMissingCredential, nil))
			c.Abort()
			return
		}

		claims, err := m.tokens.VerifyAccessToken(tokenString)
		if err != nil {
			logger.GetLogger().Warn("Access token failed verification",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(http.StatusUnauthorized,
				constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgInvalidCredential, nil))
			c.Abort()
			return
		}

		// The subject must still exist; a deleted account's unexpired
		// tokens are worthless.
		user, err := m.store.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.GetLogger().Error("Failed to load user during authentication",
					zap.Uint("user_id", claims.UserID),
					zap.Error(err))
			}
			c.JSON(http.StatusUnauthorized,
				constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgInvalidCredential, nil))
			c.Abort()
			return
		}

		c.Set(constants.GinKeyUserID, user.ID)
		c.Set(constants.GinKeyUser, user)

		ctx := ctxutil.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(constants.CookieAccessToken); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader(constants.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// AuthenticatedUserID reads the user id set by RequireAuth.
func AuthenticatedUserID(c *gin.Context) (uint, bool) {
	val, exists := c.Get(constants.GinKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := val.(uint)
	return id, ok
}

// AuthenticatedUser reads the user record set by RequireAuth.
func AuthenticatedUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(constants.GinKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok
}
