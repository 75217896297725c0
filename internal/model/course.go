package model

import (
	"time"

	"github.com/google/uuid"
)

// Course is the catalog entry exams hang off of. Course content delivery is
// outside this service; only ownership and the enrollment roster matter here.
type Course struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Enrollment binds a student to a course roster.
type Enrollment struct {
	CourseID   uuid.UUID `json:"course_id"`
	StudentID  uuid.UUID `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
