package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the kinds of questions a set may contain.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "MCQ"
	QuestionTypeDescriptive QuestionType = "DESCRIPTIVE"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	return t == QuestionTypeMCQ || t == QuestionTypeDescriptive
}

// ExamSet is an instructor-authored exam definition for a course: label,
// name, allowed question types, schedule and duration. IsReady is a one-way
// latch gating assignment eligibility.
type ExamSet struct {
	ID              uuid.UUID      `json:"id"`
	CourseID        uuid.UUID      `json:"course_id"`
	CreatedBy       uuid.UUID      `json:"created_by"`
	Name            string         `json:"name"`
	SetLabel        string         `json:"set_label"`
	Types           []QuestionType `json:"types"`
	StartAt         *time.Time     `json:"start_at,omitempty"`
	EndAt           *time.Time     `json:"end_at,omitempty"`
	DurationMinutes int            `json:"duration_minutes"`
	IsReady         bool           `json:"is_ready"`
	QuestionCount   int            `json:"question_count"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CreateExamSetRequest is the payload for creating a new exam set.
type CreateExamSetRequest struct {
	CourseID        uuid.UUID  `json:"course_id" binding:"required"`
	Name            string     `json:"name" binding:"required,min=3,max=255"`
	SetLabel        string     `json:"set_label" binding:"required,len=1,uppercase,alpha"`
	Types           []string   `json:"types" binding:"required,min=1,dive,oneof=MCQ DESCRIPTIVE"`
	StartAt         *time.Time `json:"start_at" binding:"omitempty"`
	EndAt           *time.Time `json:"end_at" binding:"omitempty,gtfield=StartAt"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=1,max=480"`
}
