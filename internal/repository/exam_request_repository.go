package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnhub/proctor-backend/internal/model"
)

// ExamRequestRepository handles exam request data access.
type ExamRequestRepository struct {
	pool *pgxpool.Pool
}

// NewExamRequestRepository creates a new ExamRequestRepository.
func NewExamRequestRepository(pool *pgxpool.Pool) *ExamRequestRepository {
	return &ExamRequestRepository{pool: pool}
}

// Create inserts a new pending request. The UNIQUE(student_id, course_id)
// constraint makes a second request for the pair fail with ErrDuplicateKey.
func (r *ExamRequestRepository) Create(ctx context.Context, req *model.ExamRequest) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_requests (student_id, course_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		req.StudentID, req.CourseID, model.RequestStatusPending,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	if err == nil {
		req.Status = model.RequestStatusPending
	}
	return err
}

// GetByID retrieves a request by id.
func (r *ExamRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamRequest, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, student_id, course_id, status, exam_code, created_at, updated_at
		 FROM exam_requests WHERE id = $1`, id))
}

// GetByStudentAndCourse retrieves the request for a (student, course) pair.
func (r *ExamRequestRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.ExamRequest, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, student_id, course_id, status, exam_code, created_at, updated_at
		 FROM exam_requests WHERE student_id = $1 AND course_id = $2`, studentID, courseID))
}

// GetApproved retrieves the approved request for a (student, course) pair,
// or pgx.ErrNoRows when none exists.
func (r *ExamRequestRepository) GetApproved(ctx context.Context, studentID, courseID uuid.UUID) (*model.ExamRequest, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, student_id, course_id, status, exam_code, created_at, updated_at
		 FROM exam_requests
		 WHERE student_id = $1 AND course_id = $2 AND status = $3`,
		studentID, courseID, model.RequestStatusApproved))
}

// Approve performs the compare-and-set approval transition. Returns false
// when the request was not in PENDING — the caller observed a lost race or a
// terminal state.
func (r *ExamRequestRepository) Approve(ctx context.Context, id uuid.UUID, examCode string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_requests
		 SET status = $1, exam_code = $2, updated_at = now()
		 WHERE id = $3 AND status = $4`,
		model.RequestStatusApproved, examCode, id, model.RequestStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Reject performs the compare-and-set rejection transition.
func (r *ExamRequestRepository) Reject(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_requests
		 SET status = $1, updated_at = now()
		 WHERE id = $2 AND status = $3`,
		model.RequestStatusRejected, id, model.RequestStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetApprovedByCode retrieves the student's approved request carrying the
// given exam code, or pgx.ErrNoRows when no such request exists.
func (r *ExamRequestRepository) GetApprovedByCode(ctx context.Context, studentID uuid.UUID, examCode string) (*model.ExamRequest, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, student_id, course_id, status, exam_code, created_at, updated_at
		 FROM exam_requests
		 WHERE student_id = $1 AND exam_code = $2 AND status = $3`,
		studentID, examCode, model.RequestStatusApproved))
}

// ListPending retrieves pending requests with student and course details.
// A zero-value instructorID returns all pending requests (admin view);
// otherwise only requests for courses created by that instructor.
func (r *ExamRequestRepository) ListPending(ctx context.Context, instructorID uuid.UUID) ([]model.PendingRequest, error) {
	query := `
		SELECT er.id, er.student_id, er.course_id, er.status, er.exam_code,
		       er.created_at, er.updated_at, u.name, u.email, c.title
		FROM exam_requests er
		JOIN users u ON u.id = er.student_id
		JOIN courses c ON c.id = er.course_id
		WHERE er.status = $1`
	args := []any{model.RequestStatusPending}

	if instructorID != uuid.Nil {
		query += ` AND c.created_by = $2`
		args = append(args, instructorID)
	}
	query += ` ORDER BY er.created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []model.PendingRequest
	for rows.Next() {
		var p model.PendingRequest
		if err := rows.Scan(
			&p.ID, &p.StudentID, &p.CourseID, &p.Status, &p.ExamCode,
			&p.CreatedAt, &p.UpdatedAt, &p.StudentName, &p.StudentEmail, &p.CourseTitle,
		); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// ListApprovedByCourse retrieves approved requests for a course with student
// details, for the assignment engine's candidate computation.
func (r *ExamRequestRepository) ListApprovedByCourse(ctx context.Context, courseID uuid.UUID) ([]model.PendingRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT er.id, er.student_id, er.course_id, er.status, er.exam_code,
		       er.created_at, er.updated_at, u.name, u.email, c.title
		FROM exam_requests er
		JOIN users u ON u.id = er.student_id
		JOIN courses c ON c.id = er.course_id
		WHERE er.course_id = $1 AND er.status = $2
		ORDER BY u.name ASC`,
		courseID, model.RequestStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approved []model.PendingRequest
	for rows.Next() {
		var p model.PendingRequest
		if err := rows.Scan(
			&p.ID, &p.StudentID, &p.CourseID, &p.Status, &p.ExamCode,
			&p.CreatedAt, &p.UpdatedAt, &p.StudentName, &p.StudentEmail, &p.CourseTitle,
		); err != nil {
			return nil, err
		}
		approved = append(approved, p)
	}
	return approved, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ExamRequestRepository) scanOne(row rowScanner) (*model.ExamRequest, error) {
	req := &model.ExamRequest{}
	err := row.Scan(&req.ID, &req.StudentID, &req.CourseID, &req.Status,
		&req.ExamCode, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return req, nil
}
