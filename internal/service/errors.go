package service

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// Domain errors. Every operation failure is one of these (possibly wrapped),
// so handlers and tests can branch on errors.Is rather than string matching.
var (
	// Validation
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingSnapshot = errors.New("face snapshot is required")

	// Conflict
	ErrDuplicateRequest = errors.New("exam request already exists for this course")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrAlreadyApproved  = errors.New("request already approved")
	ErrAlreadyRejected  = errors.New("request already rejected")

	// Authorization
	ErrForbidden = errors.New("not authorized")

	// NotFound
	ErrNotFound    = errors.New("resource not found")
	ErrNotApproved = errors.New("no approved exam request for this course")

	// ErrIncorrectCode is a mismatch against an existing approved request.
	// Kept distinct from ErrNotApproved: the student holds a code and only
	// needs to retype it, not re-request access.
	ErrIncorrectCode = errors.New("incorrect exam code")

	// Set / assignment state
	ErrSetNotReady = errors.New("exam set is not marked ready")
	ErrNoQuestions = errors.New("exam set has no questions")

	// Session state
	ErrMissingReference     = errors.New("no reference snapshot stored for session")
	ErrSessionNotVerified   = errors.New("session is not verified")
	ErrWindowClosed         = errors.New("exam window is not open")
	ErrVerificationLocked   = errors.New("verification attempts exhausted, session flagged for review")
	ErrVerificationCooldown = errors.New("verification retry cooldown in effect")

	// Dependency failures (face comparison, notification transport). Wrapped
	// with the underlying cause so callers can decide to retry.
	ErrDependency = errors.New("dependency failure")
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// mapNoRows converts the store's not-found signal to the domain sentinel and
// passes everything else through.
func mapNoRows(err error) error {
	if isNoRows(err) {
		return ErrNotFound
	}
	return err
}
