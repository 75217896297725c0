package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnhub/proctor-backend/internal/model"
)

// AssignmentRepository handles assigned exam data access.
//
// Two uniqueness constraints back the engine's invariants:
// UNIQUE(exam_id, student_id) makes reassignment a no-op, and
// UNIQUE(student_id, course_id) makes one-active-set-per-course a real
// storage invariant rather than a candidate-filtering courtesy.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create inserts an assignment snapshot. Returns created=false without error
// when either uniqueness constraint already holds for the student — the
// write is conditioned at the storage layer, not on a prior read.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.AssignedExam) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assigned_exams
		   (exam_id, exam_code, student_id, course_id, exam_name, set_label,
		    types, start_at, end_at, duration_minutes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT DO NOTHING
		 RETURNING id, created_at, updated_at`,
		a.ExamID, a.ExamCode, a.StudentID, a.CourseID, a.ExamName, a.SetLabel,
		typesToStrings(a.Types), a.StartAt, a.EndAt, a.DurationMinutes,
		model.AssignmentStatusAssigned,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	a.Status = model.AssignmentStatusAssigned
	return true, nil
}

// GetByStudentAndCourse retrieves a student's assignment within a course.
func (r *AssignmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.AssignedExam, error) {
	row := r.pool.QueryRow(ctx, selectAssignment+` WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	return scanAssignment(row)
}

// GetByStudentAndCode retrieves a student's assignment by exam code.
func (r *AssignmentRepository) GetByStudentAndCode(ctx context.Context, studentID uuid.UUID, examCode string) (*model.AssignedExam, error) {
	row := r.pool.QueryRow(ctx, selectAssignment+` WHERE student_id = $1 AND exam_code = $2`, studentID, examCode)
	return scanAssignment(row)
}

// ListBySet retrieves all assignments for a set.
func (r *AssignmentRepository) ListBySet(ctx context.Context, setID uuid.UUID) ([]model.AssignedExam, error) {
	return r.list(ctx, selectAssignment+` WHERE exam_id = $1 ORDER BY created_at ASC`, setID)
}

// ListByCourse retrieves all assignments across the sets of a course.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.AssignedExam, error) {
	return r.list(ctx, selectAssignment+` WHERE course_id = $1 ORDER BY created_at ASC`, courseID)
}

// UpdateStatus moves an assignment through ASSIGNED → STARTED → COMPLETED.
// The from-state guard makes the transition a compare-and-set.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AssignmentStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assigned_exams SET status = $1, updated_at = now()
		 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AssignmentRepository) list(ctx context.Context, query string, args ...any) ([]model.AssignedExam, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.AssignedExam
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

const selectAssignment = `
	SELECT id, exam_id, exam_code, student_id, course_id, exam_name, set_label,
	       types, start_at, end_at, duration_minutes, status, created_at, updated_at
	FROM assigned_exams`

func scanAssignment(row rowScanner) (*model.AssignedExam, error) {
	a := &model.AssignedExam{}
	var types []string
	err := row.Scan(&a.ID, &a.ExamID, &a.ExamCode, &a.StudentID, &a.CourseID,
		&a.ExamName, &a.SetLabel, &types, &a.StartAt, &a.EndAt,
		&a.DurationMinutes, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Types = stringsToTypes(types)
	return a, nil
}
