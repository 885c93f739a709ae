package constants

// HTTP Header Names
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderUserAgent     = "User-Agent"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRealIP       = "X-Real-IP"
)

// HTTP Content Types
const (
	ContentTypeJSON      = "application/json"
	ContentTypeForm      = "application/x-www-form-urlencoded"
	ContentTypeMultipart = "multipart/form-data"
)

// Common HTTP Error Messages
const (
	MsgUnauthorized      = "Unauthorized access"
	MsgMissingCredential = "missing credential"
	MsgInvalidCredential = "invalid credential"
	MsgNotFound          = "Resource not found"
	MsgBadRequest        = "Invalid request"
	MsgInternalError     = "Internal server error"
	MsgConflict          = "Resource already exists"
)

// HTTP Success Messages
const (
	MsgRegistered      = "User registered successfully"
	MsgLoggedIn        = "User logged in successfully"
	MsgLoggedOut       = "User logged out successfully"
	MsgTokenRefreshed  = "Access token refreshed successfully"
	MsgPasswordChanged = "Password changed successfully"
	MsgAccountUpdated  = "Account details updated successfully"
	MsgAvatarUpdated   = "Avatar updated successfully"
	MsgCoverUpdated    = "Cover image updated successfully"
	MsgCurrentUser     = "Current user fetched successfully"
)
