package constants

// Field Length Limits
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MinNameLength     = 2
	MaxNameLength     = 100
	MaxEmailLength    = 255
)

// Multipart form field names for registration and image updates
const (
	FormFieldAvatar     = "avatar"
	FormFieldCoverImage = "coverImage"
)

// Upload limits
const (
	MaxImageUploadBytes = 5 * 1024 * 1024
)
