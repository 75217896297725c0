package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnhub/proctor-backend/internal/model"
)

// ExamSessionRepository handles exam session and violation data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

// Create inserts a new session in PENDING_VERIFICATION. The
// UNIQUE(student_id, exam_code) constraint plus ON CONFLICT DO NOTHING makes
// concurrent creation converge on one row; a lost race surfaces as
// pgx.ErrNoRows and the caller re-fetches the winner.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions
		   (student_id, request_id, exam_code, ip_address, device_info, face_snapshot, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (student_id, exam_code) DO NOTHING
		 RETURNING id, start_time`,
		s.StudentID, s.RequestID, s.ExamCode, s.IPAddress, s.DeviceInfo,
		s.FaceSnapshot, model.SessionStatusPendingVerification,
	).Scan(&s.ID, &s.StartTime)
	if err == nil {
		s.Status = model.SessionStatusPendingVerification
	}
	return err
}

// GetByStudentAndCode retrieves a session for a (student, exam code) pair.
func (r *ExamSessionRepository) GetByStudentAndCode(ctx context.Context, studentID uuid.UUID, examCode string) (*model.ExamSession, error) {
	row := r.pool.QueryRow(ctx, selectSession+` WHERE student_id = $1 AND exam_code = $2`, studentID, examCode)
	return scanSession(row)
}

// GetByCode retrieves a session by exam code alone. Codes are minted per
// approved request, so at most one session carries a given code.
func (r *ExamSessionRepository) GetByCode(ctx context.Context, examCode string) (*model.ExamSession, error) {
	row := r.pool.QueryRow(ctx, selectSession+` WHERE exam_code = $1`, examCode)
	return scanSession(row)
}

// GetByID retrieves a session by id.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	row := r.pool.QueryRow(ctx, selectSession+` WHERE id = $1`, id)
	return scanSession(row)
}

// CompleteRegistration fills in the connection details and face snapshot on a
// session created without them. The face_snapshot guard makes the write
// first-wins: once a snapshot is stored, later registrations change nothing.
func (r *ExamSessionRepository) CompleteRegistration(ctx context.Context, id uuid.UUID, reg model.SessionRegistration) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET ip_address = $1, device_info = $2, face_snapshot = $3
		 WHERE id = $4 AND face_snapshot = ''`,
		reg.IPAddress, reg.DeviceInfo, reg.FaceSnapshot, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RecordFaceAttempt bumps the attempt counter and returns the new count.
func (r *ExamSessionRepository) RecordFaceAttempt(ctx context.Context, id uuid.UUID) (int, error) {
	var attempts int
	err := r.pool.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET face_attempts = face_attempts + 1, last_face_attempt = now()
		 WHERE id = $1
		 RETURNING face_attempts`, id).Scan(&attempts)
	return attempts, err
}

// MarkVerified transitions PENDING_VERIFICATION → VERIFIED. Returns false
// when the session was not pending (already verified or flagged).
func (r *ExamSessionRepository) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx,
		`UPDATE exam_sessions SET status = $1, verified_at = now()
		 WHERE id = $2 AND status = $3`,
		model.SessionStatusVerified, id, model.SessionStatusPendingVerification)
}

// MarkFlagged transitions PENDING_VERIFICATION → FLAGGED_FOR_REVIEW.
func (r *ExamSessionRepository) MarkFlagged(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx,
		`UPDATE exam_sessions SET status = $1
		 WHERE id = $2 AND status = $3`,
		model.SessionStatusFlagged, id, model.SessionStatusPendingVerification)
}

// MarkStarted transitions VERIFIED → STARTED.
func (r *ExamSessionRepository) MarkStarted(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx,
		`UPDATE exam_sessions SET status = $1, started_at = now()
		 WHERE id = $2 AND status = $3`,
		model.SessionStatusStarted, id, model.SessionStatusVerified)
}

// MarkCompleted transitions STARTED → COMPLETED.
func (r *ExamSessionRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx,
		`UPDATE exam_sessions SET status = $1, finished_at = now()
		 WHERE id = $2 AND status = $3`,
		model.SessionStatusCompleted, id, model.SessionStatusStarted)
}

// InsertViolation records a proctoring incident against a session.
func (r *ExamSessionRepository) InsertViolation(ctx context.Context, v *model.ViolationLog) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO violation_logs (session_id, vtype, description, snapshot_locator)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, detected_at`,
		v.SessionID, v.Type, v.Description, v.SnapshotLocator,
	).Scan(&v.ID, &v.DetectedAt)
}

// ListViolations retrieves a session's violations, oldest first.
func (r *ExamSessionRepository) ListViolations(ctx context.Context, sessionID uuid.UUID) ([]model.ViolationLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, vtype, description, snapshot_locator, detected_at
		 FROM violation_logs
		 WHERE session_id = $1
		 ORDER BY detected_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []model.ViolationLog
	for rows.Next() {
		var v model.ViolationLog
		if err := rows.Scan(&v.ID, &v.SessionID, &v.Type, &v.Description,
			&v.SnapshotLocator, &v.DetectedAt); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

func (r *ExamSessionRepository) transition(ctx context.Context, query string, args ...any) (bool, error) {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const selectSession = `
	SELECT id, student_id, request_id, exam_code, ip_address, device_info,
	       face_snapshot, start_time, status, verified_at, started_at,
	       finished_at, face_attempts, last_face_attempt
	FROM exam_sessions`

func scanSession(row rowScanner) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.StudentID, &s.RequestID, &s.ExamCode, &s.IPAddress,
		&s.DeviceInfo, &s.FaceSnapshot, &s.StartTime, &s.Status, &s.VerifiedAt,
		&s.StartedAt, &s.FinishedAt, &s.FaceAttempts, &s.LastFaceAttempt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
