package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrStaffAccessOnly   ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam requests ─────────────────────────────────────────────────
	ErrDuplicateRequest ErrCode = "DUPLICATE_REQUEST"
	ErrAlreadyApproved  ErrCode = "ALREADY_APPROVED"
	ErrAlreadyRejected  ErrCode = "ALREADY_REJECTED"
	ErrNotApproved      ErrCode = "NOT_APPROVED"
	ErrIncorrectCode    ErrCode = "INCORRECT_CODE"

	// ─── Sets & assignment ─────────────────────────────────────────────
	ErrSetNotReady     ErrCode = "SET_NOT_READY"
	ErrNoQuestions     ErrCode = "NO_QUESTIONS"
	ErrAlreadyAssigned ErrCode = "ALREADY_ASSIGNED"

	// ─── Sessions & proctoring ─────────────────────────────────────────
	ErrMissingSnapshot     ErrCode = "MISSING_SNAPSHOT"
	ErrMissingReference    ErrCode = "MISSING_REFERENCE"
	ErrSessionNotVerified  ErrCode = "SESSION_NOT_VERIFIED"
	ErrWindowClosed        ErrCode = "EXAM_WINDOW_CLOSED"
	ErrVerificationLocked  ErrCode = "VERIFICATION_LOCKED"
	ErrVerificationCooldown ErrCode = "VERIFICATION_COOLDOWN"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Dependencies ──────────────────────────────────────────────────
	ErrDependencyFailure ErrCode = "DEPENDENCY_FAILURE"

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
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "Authentication token required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to perform this action."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrStaffAccessOnly:
		return "This resource is restricted to instructors and admins."

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
		return "Resource already exists."

	// ─── Exam requests ─────────────────────────────────────────────────
	case ErrDuplicateRequest:
		return "You have already requested this exam."
	case ErrAlreadyApproved:
		return "Request already approved."
	case ErrAlreadyRejected:
		return "Request already rejected."
	case ErrNotApproved:
		return "No approved exam request found for this course."
	case ErrIncorrectCode:
		return "Incorrect exam code."

	// ─── Sets & assignment ─────────────────────────────────────────────
	case ErrSetNotReady:
		return "This exam set is not marked ready."
	case ErrNoQuestions:
		return "This exam set has no questions."
	case ErrAlreadyAssigned:
		return "Student is already assigned to an exam set for this course."

	// ─── Sessions & proctoring ─────────────────────────────────────────
	case ErrMissingSnapshot:
		return "A face snapshot is required to register for the exam."
	case ErrMissingReference:
		return "No reference snapshot is stored for this session."
	case ErrSessionNotVerified:
		return "Your identity has not been verified yet."
	case ErrWindowClosed:
		return "The exam window is not open."
	case ErrVerificationLocked:
		return "Too many failed verification attempts. An instructor has been notified."
	case ErrVerificationCooldown:
		return "Please wait before retrying verification."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "File upload required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Dependencies ──────────────────────────────────────────────────
	case ErrDependencyFailure:
		return "An upstream service failed. Please try again."

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
