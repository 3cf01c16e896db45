package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrExamNotFound       ErrCode = "EXAM_NOT_FOUND"
	ErrInvalidPassword    ErrCode = "INVALID_ACCESS_PASSWORD"
	ErrAttemptSubmitted   ErrCode = "ATTEMPT_ALREADY_SUBMITTED"
	ErrCandidateRequired  ErrCode = "CANDIDATE_REQUIRED"
	ErrQuestionNotInExam  ErrCode = "QUESTION_NOT_IN_EXAM"
	ErrOptionNotInQuestion ErrCode = "OPTION_NOT_IN_QUESTION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid id format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNotFound:
		return "Resource not found."
	case ErrExamNotFound:
		return "Exam not found or not published."
	case ErrInvalidPassword:
		return "Invalid access password."
	case ErrAttemptSubmitted:
		return "This attempt has already been submitted."
	case ErrCandidateRequired:
		return "A candidate identifier is required."
	case ErrQuestionNotInExam:
		return "Question does not belong to this exam."
	case ErrOptionNotInQuestion:
		return "Option does not belong to this question."
	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."
	case ErrInternal:
		return "Internal server error."
	default:
		return "Unknown error."
	}
}
