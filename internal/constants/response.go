package constants

// Standard Response Field Keys
const (
	ResponseFieldStatus  = "status"
	ResponseFieldData    = "data"
	ResponseFieldMessage = "message"
	ResponseFieldDetails = "details"
)

// Response Format Functions
//
// Every response, success or failure, is the same envelope: a status code,
// a payload (or null) and a human-readable message.

func BuildResponse(status int, data any, message string) map[string]any {
	return map[string]any{
		ResponseFieldStatus:  status,
		ResponseFieldData:    data,
		ResponseFieldMessage: message,
	}
}

func BuildErrorResponse(status int, message string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldStatus:  status,
		ResponseFieldData:    nil,
		ResponseFieldMessage: message,
	}

	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}
