package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrRoleDenied        ErrCode = "ROLE_DENIED"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"
	ErrWrongClass        ErrCode = "WRONG_CLASS"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Exam window ───────────────────────────────────────────────────
	ErrExamNotStarted   ErrCode = "EXAM_NOT_STARTED"
	ErrExamElapsed      ErrCode = "EXAM_ELAPSED"
	ErrExamNotToday     ErrCode = "EXAM_NOT_TODAY"
	ErrTimeLimitReached ErrCode = "TIME_LIMIT_REACHED"

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	ErrAlreadyCompleted ErrCode = "ALREADY_COMPLETED"
	ErrAttemptConcluded ErrCode = "ATTEMPT_CONCLUDED"
	ErrAlreadyFinalized ErrCode = "ALREADY_FINALIZED"
	ErrNotFinished      ErrCode = "NOT_FINISHED"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid registration number or exam password."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is not valid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrRoleDenied:
		return "Your role does not permit this action."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrWrongClass:
		return "Access denied. This exam is not scheduled for your class."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrDependencyExists:
		return "The record cannot be deleted because other records still reference it."

	// ─── Exam window ───────────────────────────────────────────────────
	case ErrExamNotStarted:
		return "The exam has not yet started."
	case ErrExamElapsed:
		return "The exam period has elapsed. It is now closed."
	case ErrExamNotToday:
		return "This exam is not scheduled for today."
	case ErrTimeLimitReached:
		return "Time limit reached. The exam has been auto-submitted. Answer not recorded."

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	case ErrAlreadyCompleted:
		return "This exam has already been completed and submitted."
	case ErrAttemptConcluded:
		return "This exam has already concluded and cannot accept more answers."
	case ErrAlreadyFinalized:
		return "This exam has already been finalized."
	case ErrNotFinished:
		return "The exam is not yet finished."
	case ErrNoQuestions:
		return "No questions found for this exam schedule."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
