package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnhub/proctor-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	var mediaKind, mediaLocator *string
	if q.Media != nil {
		k, l := string(q.Media.Kind), q.Media.Locator
		mediaKind, mediaLocator = &k, &l
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions
		   (exam_set_id, qtype, marks, prompt, media_kind, media_locator,
		    options, correct_answer_index, expected_answer, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		q.ExamSetID, q.Type, q.Marks, q.Prompt, mediaKind, mediaLocator,
		q.Options, q.CorrectAnswerIndex, q.ExpectedAnswer, q.CreatedBy,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a question by id.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	row := r.pool.QueryRow(ctx, selectQuestion+` WHERE id = $1`, id)
	return scanQuestion(row)
}

// Update rewrites a question's content fields. Media is replaced only when a
// new locator is set on q.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	var mediaKind, mediaLocator *string
	if q.Media != nil {
		k, l := string(q.Media.Kind), q.Media.Locator
		mediaKind, mediaLocator = &k, &l
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET qtype = $1, marks = $2, prompt = $3,
		     media_kind = COALESCE($4, media_kind),
		     media_locator = COALESCE($5, media_locator),
		     options = $6, correct_answer_index = $7, expected_answer = $8,
		     updated_at = now()
		 WHERE id = $9`,
		q.Type, q.Marks, q.Prompt, mediaKind, mediaLocator,
		q.Options, q.CorrectAnswerIndex, q.ExpectedAnswer, q.ID)
	return err
}

// Delete removes a question unconditionally.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// ListBySet retrieves all questions of a set in insertion order.
func (r *QuestionRepository) ListBySet(ctx context.Context, setID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, selectQuestion+` WHERE exam_set_id = $1 ORDER BY created_at ASC`, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// CountBySet returns the number of questions attached to a set.
func (r *QuestionRepository) CountBySet(ctx context.Context, setID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE exam_set_id = $1`, setID).Scan(&n)
	return n, err
}

const selectQuestion = `
	SELECT id, exam_set_id, qtype, marks, prompt, media_kind, media_locator,
	       options, correct_answer_index, expected_answer, created_by,
	       created_at, updated_at
	FROM questions`

func scanQuestion(row rowScanner) (*model.Question, error) {
	q := &model.Question{}
	var mediaKind, mediaLocator *string
	err := row.Scan(&q.ID, &q.ExamSetID, &q.Type, &q.Marks, &q.Prompt,
		&mediaKind, &mediaLocator, &q.Options, &q.CorrectAnswerIndex,
		&q.ExpectedAnswer, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if mediaKind != nil && mediaLocator != nil {
		q.Media = &model.Media{Kind: model.MediaKind(*mediaKind), Locator: *mediaLocator}
	}
	return q, nil
}
