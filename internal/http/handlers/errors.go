package handlers

// Stable error codes returned in ErrorResponse.Code. Generic codes mirror the
// HTTP status; domain codes name the failing operation.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	ErrCodeEmptyPrompt        = "empty_prompt"
	ErrCodePromptTooLong      = "prompt_too_long"
	ErrCodeLookupFailed       = "lookup_failed"
	ErrCodeListFailed         = "list_failed"
	ErrCodeFeedbackFailed     = "feedback_failed"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeEmailTaken         = "email_taken"
	ErrCodeInvalidProfile     = "invalid_profile"
	ErrCodeInvalidFlag        = "invalid_flag"
)
