package handler

import (
	"context"
	"mime/multipart"
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

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates a new account from a multipart form: text fields plus a
// mandatory avatar file and an optional coverImage file.
func (h *UserHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "Register")

	var req dto.RegisterUserRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid registration request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest,
			constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgBadRequest, middleware.ValidationMessages(err)))
		return
	}

	avatar, avatarFile, err := openFormImage(c, constants.FormFieldAvatar)
	if err != nil {
		c.JSON(http.StatusBadRequest,
			constants.BuildErrorResponse(http.StatusBadRequest, err.Error(), nil))
		return
	}
	if avatarFile != nil {
		defer avatarFile.Close()
	}

	cover, coverFile, err := openFormImage(c, constants.FormFieldCoverImage)
	if err != nil {
		c.JSON(http.StatusBadRequest,
			constants.BuildErrorResponse(http.StatusBadRequest, err.Error(), nil))
		return
	}
	if coverFile != nil {
		defer coverFile.Close()
	}

	user, err := h.userService.Register(ctx, &req, avatar, cover)
	if err != nil {
		logger.WarnWithContext(ctx, "Registration failed").
			String("username", req.Username).
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusCreated,
		constants.BuildResponse(http.StatusCreated, user, constants.MsgRegistered))
}

// GetCurrentUser returns the authenticated user's public-safe view.
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "GetCurrentUser")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgMissingCredential, nil))
		return
	}

	user, err := h.userService.CurrentUser(ctx, userID)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK,
		constants.BuildResponse(http.StatusOK, user, constants.MsgCurrentUser))
}

// ChangePassword verifies the old password before accepting the new one.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "ChangePassword")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgMissingCredential, nil))
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgBadRequest, middleware.ValidationMessages(err)))
		return
	}

	if err := h.userService.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		logger.WarnWithContext(ctx, "Password change failed").
			Uint("user_id", userID).
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	logger.LogAuth(userID, "change_password", true)

	c.JSON(http.StatusOK,
		constants.BuildResponse(http.StatusOK, nil, constants.MsgPasswordChanged))
}

// UpdateAccount changes full name and/or email.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", "UpdateAccount")

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgMissingCredential, nil))
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgBadRequest, middleware.ValidationMessages(err)))
		return
	}

	user, err := h.userService.UpdateAccount(ctx, userID, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK,
		constants.BuildResponse(http.StatusOK, user, constants.MsgAccountUpdated))
}

// UpdateAvatar replaces the avatar image.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "UpdateAvatar", constants.FormFieldAvatar, constants.MsgAvatarUpdated, h.userService.UpdateAvatar)
}

// UpdateCoverImage replaces the cover image.
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "UpdateCoverImage", constants.FormFieldCoverImage, constants.MsgCoverUpdated, h.userService.UpdateCoverImage)
}

func (h *UserHandler) updateImage(
	c *gin.Context,
	function, formField, successMessage string,
	update func(ctx context.Context, userID uint, img *service.ImageUpload) (*dto.UserResponse, error),
) {
	ctx := ctxutil.NewContext(c.Request.Context(), c.Request, "handler", function)

	userID, ok := middleware.AuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			constants.BuildErrorResponse(http.StatusUnauthorized, constants.MsgMissingCredential, nil))
		return
	}

	img, file, err := openFormImage(c, formField)
	if err != nil {
		c.JSON(http.StatusBadRequest,
			constants.BuildErrorResponse(http.StatusBadRequest, err.Error(), nil))
		return
	}
	if img == nil {
		c.JSON(http.StatusBadRequest,
			constants.BuildErrorResponse(http.StatusBadRequest, "image file is required", nil))
		return
	}
	defer file.Close()

	user, err := update(ctx, userID, img)
	if err != nil {
		logger.WarnWithContext(ctx, "Image update failed").
			Uint("user_id", userID).
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK,
		constants.BuildResponse(http.StatusOK, user, successMessage))
}

// openFormImage reads an optional image file from the multipart form. A
// missing field returns (nil, nil, nil); the caller decides whether the
// field was mandatory. Oversized files are rejected here before any bytes
// reach the media store.
func openFormImage(c *gin.Context, field string) (*service.ImageUpload, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	if header.Size > constants.MaxImageUploadBytes {
		return nil, nil, apperrors.ErrValidation
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}

	return &service.ImageUpload{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get(constants.HeaderContentType),
	}, file, nil
}
