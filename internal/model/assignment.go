package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus enumerates assigned exam states.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "ASSIGNED"
	AssignmentStatusStarted   AssignmentStatus = "STARTED"
	AssignmentStatusCompleted AssignmentStatus = "COMPLETED"
)

// AssignedExam binds an approved student to a specific exam set. Set metadata
// and the exam code are copied at assignment time — later edits to the set do
// not retroactively change the snapshot.
type AssignedExam struct {
	ID              uuid.UUID        `json:"id"`
	ExamID          uuid.UUID        `json:"exam_id"`
	ExamCode        string           `json:"exam_code"`
	StudentID       uuid.UUID        `json:"student_id"`
	CourseID        uuid.UUID        `json:"course_id"`
	ExamName        string           `json:"exam_name"`
	SetLabel        string           `json:"set_label"`
	Types           []QuestionType   `json:"types"`
	StartAt         *time.Time       `json:"start_at,omitempty"`
	EndAt           *time.Time       `json:"end_at,omitempty"`
	DurationMinutes int              `json:"duration_minutes"`
	Status          AssignmentStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Candidate is the instructor-facing eligibility row for one student of a
// course, relative to a particular set. Selectable is false when the student
// lacks an approved request or already holds an assignment anywhere in the
// course.
type Candidate struct {
	StudentID            uuid.UUID `json:"student_id"`
	StudentName          string    `json:"student_name"`
	StudentEmail         string    `json:"student_email"`
	Approved             bool      `json:"approved"`
	AssignedInCurrentSet bool      `json:"assigned_in_current_set"`
	AssignedInOtherSet   bool      `json:"assigned_in_other_set"`
	AssignedSetLabels    []string  `json:"assigned_set_labels"`
	Selectable           bool      `json:"selectable"`
}

// AssignStudentsRequest is the payload for manual assignment.
type AssignStudentsRequest struct {
	StudentIDs []uuid.UUID `json:"student_ids" binding:"required,min=1"`
}
