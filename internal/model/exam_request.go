package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus enumerates exam request states.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// ExamRequest records a student's request for exam access to a course.
// Unique per (student, course). The exam code is minted exactly once, at
// approval, and is never exposed through status reads.
type ExamRequest struct {
	ID        uuid.UUID     `json:"id"`
	StudentID uuid.UUID     `json:"student_id"`
	CourseID  uuid.UUID     `json:"course_id"`
	Status    RequestStatus `json:"status"`
	ExamCode  *string       `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PendingRequest is an exam request joined with student and course details,
// as shown on the instructor's approval queue.
type PendingRequest struct {
	ExamRequest
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
	CourseTitle  string `json:"course_title"`
}

// SubmitRequestPayload is the body for a student submitting an exam request.
type SubmitRequestPayload struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

// VerifyCodePayload is the body for a student verifying their exam code.
type VerifyCodePayload struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
	ExamCode string    `json:"exam_code" binding:"required,len=6"`
}

// RequestStatusView is the student-facing status read. It never carries the
// exam code itself.
type RequestStatusView struct {
	Status      RequestStatus `json:"status"`
	CourseTitle string        `json:"course_title"`
}
