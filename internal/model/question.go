package model

import (
	"time"

	"github.com/google/uuid"
)

// MediaKind enumerates supported question media attachments.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// Media references an uploaded attachment. Question validity never depends
// on its media.
type Media struct {
	Kind    MediaKind `json:"kind"`
	Locator string    `json:"locator"`
}

// Question is a single MCQ or descriptive question attached to an exam set.
type Question struct {
	ID                 uuid.UUID    `json:"id"`
	ExamSetID          uuid.UUID    `json:"exam_set_id"`
	Type               QuestionType `json:"type"`
	Marks              float64      `json:"marks"`
	Prompt             string       `json:"prompt"`
	Media              *Media       `json:"media,omitempty"`
	Options            []string     `json:"options,omitempty"`
	CorrectAnswerIndex *int         `json:"correct_answer_index,omitempty"`
	ExpectedAnswer     string       `json:"expected_answer,omitempty"`
	CreatedBy          uuid.UUID    `json:"created_by"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// QuestionPayload is the write payload for adding or updating a question.
// Media arrives separately as a multipart file and is attached by the handler.
type QuestionPayload struct {
	Type               string   `json:"type" form:"type" binding:"required,oneof=MCQ DESCRIPTIVE"`
	Marks              float64  `json:"marks" form:"marks" binding:"required,gt=0"`
	Prompt             string   `json:"prompt" form:"prompt" binding:"required"`
	Options            []string `json:"options" form:"options" binding:"omitempty"`
	CorrectAnswerIndex *int     `json:"correct_answer_index" form:"correct_answer_index" binding:"omitempty,min=0"`
	ExpectedAnswer     string   `json:"expected_answer" form:"expected_answer" binding:"omitempty"`
}
