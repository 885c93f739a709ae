package validation

func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"Email": {
			"required": "email must not be empty",
			"email":    "email is not a valid address",
		},
		"Username": {
			"required": "username must not be empty",
			"min":      "username must be at least 3 characters",
			"max":      "username must be at most 30 characters",
		},
		"Password": {
			"required": "password must not be empty",
			"min":      "password must be at least 8 characters",
		},
		"NewPassword": {
			"required": "new password must not be empty",
			"min":      "new password must be at least 8 characters",
		},
		"OldPassword": {
			"required": "old password must not be empty",
		},
		"FullName": {
			"required": "full name must not be empty",
		},
		"Identifier": {
			"required": "username or email must not be empty",
		},
	}
	return customValidationMessages[field]
}
