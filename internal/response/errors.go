package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Mount tickets ─────────────────────────────────────────────────
	ErrTicketRequired ErrCode = "TICKET_REQUIRED"
	ErrTicketInvalid  ErrCode = "TICKET_INVALID"
	ErrMountExpired   ErrCode = "MOUNT_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrOptionRange    ErrCode = "OPTION_OUT_OF_RANGE"
	ErrUnknownAction  ErrCode = "UNKNOWN_ACTION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrPageNotFound    ErrCode = "PAGE_NOT_FOUND"
	ErrCheckNotFound   ErrCode = "CHECK_NOT_FOUND"
	ErrNoQuiz          ErrCode = "NO_QUIZ"
	ErrUnknownQuestion ErrCode = "UNKNOWN_QUESTION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Mount tickets ─────────────────────────────────────────────────
	case ErrTicketRequired:
		return "A mount ticket is required."
	case ErrTicketInvalid:
		return "The mount ticket is not valid."
	case ErrMountExpired:
		return "This page has expired. Reload it to start again."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrOptionRange:
		return "The selected option does not exist for this question."
	case ErrUnknownAction:
		return "Unknown action."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrPageNotFound:
		return "Page not found."
	case ErrCheckNotFound:
		return "This section has no knowledge check."
	case ErrNoQuiz:
		return "This page has no quiz."
	case ErrUnknownQuestion:
		return "The question is not part of this quiz."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
