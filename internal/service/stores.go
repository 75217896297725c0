package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/learnhub/proctor-backend/internal/model"
)

// Store interfaces consumed by the services. The pgx repositories implement
// them; tests substitute in-memory fakes. "Not found" is signalled with
// pgx.ErrNoRows, matching the repositories' raw behavior.

// UserStore provides account lookups.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// CourseDirectory supplies course ownership and roster lookups. Course
// content lives elsewhere; this is the only view the exam workflow needs.
type CourseDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Roster(ctx context.Context, courseID uuid.UUID) ([]model.User, error)
	IsEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
}

// ExamRequestStore persists exam requests.
type ExamRequestStore interface {
	Create(ctx context.Context, req *model.ExamRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamRequest, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.ExamRequest, error)
	GetApproved(ctx context.Context, studentID, courseID uuid.UUID) (*model.ExamRequest, error)
	GetApprovedByCode(ctx context.Context, studentID uuid.UUID, examCode string) (*model.ExamRequest, error)
	Approve(ctx context.Context, id uuid.UUID, examCode string) (bool, error)
	Reject(ctx context.Context, id uuid.UUID) (bool, error)
	ListPending(ctx context.Context, instructorID uuid.UUID) ([]model.PendingRequest, error)
	ListApprovedByCourse(ctx context.Context, courseID uuid.UUID) ([]model.PendingRequest, error)
}

// ExamSetStore persists exam sets.
type ExamSetStore interface {
	Create(ctx context.Context, set *model.ExamSet) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSet, error)
	MarkReady(ctx context.Context, id uuid.UUID) error
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.ExamSet, error)
}

// QuestionStore persists questions.
type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySet(ctx context.Context, setID uuid.UUID) ([]model.Question, error)
	CountBySet(ctx context.Context, setID uuid.UUID) (int, error)
}

// AssignmentStore persists assigned exams. Create must be conditioned on the
// uniqueness constraints at write time and report created=false on conflict.
type AssignmentStore interface {
	Create(ctx context.Context, a *model.AssignedExam) (bool, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.AssignedExam, error)
	GetByStudentAndCode(ctx context.Context, studentID uuid.UUID, examCode string) (*model.AssignedExam, error)
	ListBySet(ctx context.Context, setID uuid.UUID) ([]model.AssignedExam, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.AssignedExam, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AssignmentStatus) (bool, error)
}

// ExamSessionStore persists exam sessions and violation logs.
type ExamSessionStore interface {
	Create(ctx context.Context, s *model.ExamSession) error
	GetByStudentAndCode(ctx context.Context, studentID uuid.UUID, examCode string) (*model.ExamSession, error)
	GetByCode(ctx context.Context, examCode string) (*model.ExamSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	CompleteRegistration(ctx context.Context, id uuid.UUID, reg model.SessionRegistration) (bool, error)
	RecordFaceAttempt(ctx context.Context, id uuid.UUID) (int, error)
	MarkVerified(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFlagged(ctx context.Context, id uuid.UUID) (bool, error)
	MarkStarted(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	InsertViolation(ctx context.Context, v *model.ViolationLog) error
	ListViolations(ctx context.Context, sessionID uuid.UUID) ([]model.ViolationLog, error)
}
