package middleware

import (
	"github.com/go-playground/validator/v10"
	"github.com/streamhub/accounts/pkg/validation"
)

// ValidationMessages converts validator errors into the per-field messages
// returned to the client. Handlers call this after a failed bind so that
// validation failures read the same everywhere.
func ValidationMessages(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	var messages []string
	for _, e := range validationErrors {
		if fieldMessages := validation.CustomMessage(e.Field()); fieldMessages != nil {
			if msg, exists := fieldMessages[e.Tag()]; exists {
				messages = append(messages, msg)
				continue
			}
		}
		messages = append(messages, validation.DefaultMessage(e.Field(), e.Tag()))
	}

	return messages
}
