package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
//
// PENDING_VERIFICATION → VERIFIED → STARTED → COMPLETED is the happy path.
// FLAGGED_FOR_REVIEW is entered when face verification exhausts its attempt
// budget; only an instructor unflag (out of scope here) can recover it.
type SessionStatus string

const (
	SessionStatusPendingVerification SessionStatus = "PENDING_VERIFICATION"
	SessionStatusVerified            SessionStatus = "VERIFIED"
	SessionStatusStarted             SessionStatus = "STARTED"
	SessionStatusCompleted           SessionStatus = "COMPLETED"
	SessionStatusFlagged             SessionStatus = "FLAGGED_FOR_REVIEW"
)

// ExamSession tracks a student's registration and verification progress for a
// given exam code. Unique per (student, exam code); creation is idempotent.
// FaceSnapshot is the reference image captured at registration and is never
// overwritten by later captures.
type ExamSession struct {
	ID              uuid.UUID     `json:"id"`
	StudentID       uuid.UUID     `json:"student_id"`
	RequestID       uuid.UUID     `json:"request_id"`
	ExamCode        string        `json:"exam_code"`
	IPAddress       string        `json:"ip_address"`
	DeviceInfo      string        `json:"device_info"`
	FaceSnapshot    string        `json:"-"`
	StartTime       time.Time     `json:"start_time"`
	Status          SessionStatus `json:"status"`
	VerifiedAt      *time.Time    `json:"verified_at,omitempty"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	FinishedAt      *time.Time    `json:"finished_at,omitempty"`
	FaceAttempts    int           `json:"face_attempts"`
	LastFaceAttempt *time.Time    `json:"last_face_attempt,omitempty"`
}

// SessionRegistration is the device/network/biometric capture taken once,
// when the session is created.
type SessionRegistration struct {
	IPAddress    string
	DeviceInfo   string
	FaceSnapshot string
}

// SessionStatusView is the lightweight existence/status probe used by the
// registration wizard.
type SessionStatusView struct {
	Exists    bool          `json:"exists"`
	SessionID *uuid.UUID    `json:"session_id,omitempty"`
	Status    SessionStatus `json:"status,omitempty"`
}

// ViolationLog is an AI- or proctor-reported incident against a session.
type ViolationLog struct {
	ID              uuid.UUID `json:"id"`
	SessionID       uuid.UUID `json:"session_id"`
	Type            string    `json:"type"`
	Description     string    `json:"description"`
	SnapshotLocator string    `json:"snapshot_locator,omitempty"`
	DetectedAt      time.Time `json:"detected_at"`
}

// LogViolationRequest is the payload for reporting a violation.
type LogViolationRequest struct {
	Type        string `json:"type" form:"type" binding:"required,max=64"`
	Description string `json:"description" form:"description" binding:"omitempty,max=1024"`
}
