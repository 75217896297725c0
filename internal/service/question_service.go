package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/rs/zerolog"
)

const minPromptLength = 4

// QuestionService manages the question bank of an exam set.
type QuestionService struct {
	questions QuestionStore
	sets      *ExamSetService
	log       zerolog.Logger
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(questions QuestionStore, sets *ExamSetService, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		sets:      sets,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// Add appends a question to a set. Media is optional and never affects
// validity.
func (s *QuestionService) Add(ctx context.Context, actor model.Actor, setID uuid.UUID, payload model.QuestionPayload, media *model.Media) (*model.Question, error) {
	set, _, err := s.sets.authorizeSet(ctx, actor, setID, ActionManageQuestions)
	if err != nil {
		return nil, err
	}

	q, err := buildQuestion(set, payload)
	if err != nil {
		return nil, err
	}
	q.CreatedBy = actor.ID
	q.Media = media

	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("question_id", q.ID.String()).
		Str("set_id", setID.String()).
		Str("type", string(q.Type)).
		Msg("Question added")
	return q, nil
}

// Update replaces a question's content. A nil media keeps the stored
// attachment.
func (s *QuestionService) Update(ctx context.Context, actor model.Actor, questionID uuid.UUID, payload model.QuestionPayload, media *model.Media) (*model.Question, error) {
	existing, set, err := s.loadQuestion(ctx, actor, questionID)
	if err != nil {
		return nil, err
	}

	q, err := buildQuestion(set, payload)
	if err != nil {
		return nil, err
	}
	q.ID = existing.ID
	q.ExamSetID = existing.ExamSetID
	q.CreatedBy = existing.CreatedBy
	q.Media = media

	if err := s.questions.Update(ctx, q); err != nil {
		return nil, err
	}
	if q.Media == nil {
		q.Media = existing.Media
	}
	return q, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, actor model.Actor, questionID uuid.UUID) error {
	q, _, err := s.loadQuestion(ctx, actor, questionID)
	if err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, q.ID); err != nil {
		return err
	}
	s.log.Info().Str("question_id", q.ID.String()).Msg("Question deleted")
	return nil
}

// ListBySet returns a set's questions in insertion order.
func (s *QuestionService) ListBySet(ctx context.Context, actor model.Actor, setID uuid.UUID) ([]model.Question, error) {
	if _, _, err := s.sets.authorizeSet(ctx, actor, setID, ActionManageQuestions); err != nil {
		return nil, err
	}
	return s.questions.ListBySet(ctx, setID)
}

func (s *QuestionService) loadQuestion(ctx context.Context, actor model.Actor, questionID uuid.UUID) (*model.Question, *model.ExamSet, error) {
	if !RoleCan(actor.Role, ActionManageQuestions) {
		return nil, nil, ErrForbidden
	}
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	set, _, err := s.sets.authorizeSet(ctx, actor, q.ExamSetID, ActionManageQuestions)
	if err != nil {
		return nil, nil, err
	}
	return q, set, nil
}

// buildQuestion validates a payload against its set and produces the
// normalized question. MCQ needs at least two options and an in-range correct
// index; descriptive needs a prompt longer than three characters after
// trimming. The set's declared types bound what may be added.
func buildQuestion(set *model.ExamSet, payload model.QuestionPayload) (*model.Question, error) {
	qtype := model.QuestionType(payload.Type)
	if !qtype.Valid() || !setAllowsType(set, qtype) {
		return nil, ErrInvalidInput
	}

	prompt := strings.TrimSpace(payload.Prompt)
	q := &model.Question{
		ExamSetID: set.ID,
		Type:      qtype,
		Marks:     payload.Marks,
		Prompt:    prompt,
	}

	switch qtype {
	case model.QuestionTypeMCQ:
		if prompt == "" {
			return nil, ErrInvalidInput
		}
		if len(payload.Options) < 2 {
			return nil, ErrInvalidInput
		}
		if payload.CorrectAnswerIndex == nil ||
			*payload.CorrectAnswerIndex < 0 ||
			*payload.CorrectAnswerIndex >= len(payload.Options) {
			return nil, ErrInvalidInput
		}
		q.Options = payload.Options
		q.CorrectAnswerIndex = payload.CorrectAnswerIndex
	case model.QuestionTypeDescriptive:
		if len(prompt) < minPromptLength {
			return nil, ErrInvalidInput
		}
		q.ExpectedAnswer = strings.TrimSpace(payload.ExpectedAnswer)
	}
	return q, nil
}

func setAllowsType(set *model.ExamSet, t model.QuestionType) bool {
	for _, allowed := range set.Types {
		if allowed == t {
			return true
		}
	}
	return false
}
