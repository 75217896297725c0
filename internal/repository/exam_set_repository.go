package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnhub/proctor-backend/internal/model"
)

// ExamSetRepository handles exam set data access.
type ExamSetRepository struct {
	pool *pgxpool.Pool
}

// NewExamSetRepository creates a new ExamSetRepository.
func NewExamSetRepository(pool *pgxpool.Pool) *ExamSetRepository {
	return &ExamSetRepository{pool: pool}
}

// Create inserts a new exam set with is_ready = false.
func (r *ExamSetRepository) Create(ctx context.Context, set *model.ExamSet) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sets
		   (course_id, created_by, name, set_label, types, start_at, end_at, duration_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, is_ready, created_at, updated_at`,
		set.CourseID, set.CreatedBy, set.Name, set.SetLabel, typesToStrings(set.Types),
		set.StartAt, set.EndAt, set.DurationMinutes,
	).Scan(&set.ID, &set.IsReady, &set.CreatedAt, &set.UpdatedAt)
}

// GetByID retrieves an exam set with its question count.
func (r *ExamSetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSet, error) {
	set := &model.ExamSet{}
	var types []string
	err := r.pool.QueryRow(ctx,
		`SELECT s.id, s.course_id, s.created_by, s.name, s.set_label, s.types,
		        s.start_at, s.end_at, s.duration_minutes, s.is_ready,
		        (SELECT COUNT(*) FROM questions q WHERE q.exam_set_id = s.id),
		        s.created_at, s.updated_at
		 FROM exam_sets s WHERE s.id = $1`, id,
	).Scan(&set.ID, &set.CourseID, &set.CreatedBy, &set.Name, &set.SetLabel, &types,
		&set.StartAt, &set.EndAt, &set.DurationMinutes, &set.IsReady,
		&set.QuestionCount, &set.CreatedAt, &set.UpdatedAt)
	if err != nil {
		return nil, err
	}
	set.Types = stringsToTypes(types)
	return set, nil
}

// MarkReady latches is_ready to true. Idempotent.
func (r *ExamSetRepository) MarkReady(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sets SET is_ready = true, updated_at = now() WHERE id = $1`, id)
	return err
}

// ListByCourse retrieves all sets of a course, most recent first, regardless
// of readiness.
func (r *ExamSetRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.ExamSet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.course_id, s.created_by, s.name, s.set_label, s.types,
		        s.start_at, s.end_at, s.duration_minutes, s.is_ready,
		        (SELECT COUNT(*) FROM questions q WHERE q.exam_set_id = s.id),
		        s.created_at, s.updated_at
		 FROM exam_sets s
		 WHERE s.course_id = $1
		 ORDER BY s.created_at DESC`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []model.ExamSet
	for rows.Next() {
		var set model.ExamSet
		var types []string
		if err := rows.Scan(&set.ID, &set.CourseID, &set.CreatedBy, &set.Name, &set.SetLabel,
			&types, &set.StartAt, &set.EndAt, &set.DurationMinutes, &set.IsReady,
			&set.QuestionCount, &set.CreatedAt, &set.UpdatedAt); err != nil {
			return nil, err
		}
		set.Types = stringsToTypes(types)
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

func typesToStrings(types []model.QuestionType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func stringsToTypes(raw []string) []model.QuestionType {
	out := make([]model.QuestionType, len(raw))
	for i, s := range raw {
		out[i] = model.QuestionType(s)
	}
	return out
}
