package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/rs/zerolog"
)

// ExamSetService manages exam set definitions and the readiness latch.
type ExamSetService struct {
	sets      ExamSetStore
	questions QuestionStore
	courses   CourseDirectory
	cfg       *config.Config
	log       zerolog.Logger
}

// NewExamSetService creates an ExamSetService.
func NewExamSetService(
	sets ExamSetStore,
	questions QuestionStore,
	courses CourseDirectory,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamSetService {
	return &ExamSetService{
		sets:      sets,
		questions: questions,
		courses:   courses,
		cfg:       cfg,
		log:       log.With().Str("component", "exam_set_service").Logger(),
	}
}

// Create registers a new exam set for a course. Multiple sets per course are
// allowed, including sets sharing a label.
func (s *ExamSetService) Create(ctx context.Context, actor model.Actor, payload model.CreateExamSetRequest) (*model.ExamSet, error) {
	course, err := s.authorizeCourse(ctx, actor, payload.CourseID, ActionManageSet)
	if err != nil {
		return nil, err
	}

	types := make([]model.QuestionType, 0, len(payload.Types))
	for _, t := range payload.Types {
		qt := model.QuestionType(t)
		if !qt.Valid() {
			return nil, ErrInvalidInput
		}
		types = append(types, qt)
	}

	set := &model.ExamSet{
		CourseID:        course.ID,
		CreatedBy:       actor.ID,
		Name:            payload.Name,
		SetLabel:        payload.SetLabel,
		Types:           types,
		StartAt:         payload.StartAt,
		EndAt:           payload.EndAt,
		DurationMinutes: payload.DurationMinutes,
	}
	if err := s.sets.Create(ctx, set); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("set_id", set.ID.String()).
		Str("course_id", course.ID.String()).
		Str("label", set.SetLabel).
		Msg("Exam set created")
	return set, nil
}

// Get returns a set for staff who can manage the owning course.
func (s *ExamSetService) Get(ctx context.Context, actor model.Actor, setID uuid.UUID) (*model.ExamSet, error) {
	set, _, err := s.authorizeSet(ctx, actor, setID, ActionManageSet)
	return set, err
}

// ListByCourse returns all sets of a course, newest first.
func (s *ExamSetService) ListByCourse(ctx context.Context, actor model.Actor, courseID uuid.UUID) ([]model.ExamSet, error) {
	if _, err := s.authorizeCourse(ctx, actor, courseID, ActionManageSet); err != nil {
		return nil, err
	}
	return s.sets.ListByCourse(ctx, courseID)
}

// MarkReady flips the readiness latch. Idempotent: marking a ready set ready
// again succeeds without effect. When question-gated readiness is enabled,
// an empty set cannot be marked ready.
func (s *ExamSetService) MarkReady(ctx context.Context, actor model.Actor, setID uuid.UUID) (*model.ExamSet, error) {
	set, _, err := s.authorizeSet(ctx, actor, setID, ActionManageSet)
	if err != nil {
		return nil, err
	}

	if s.cfg.RequireQuestionsForReady && !set.IsReady {
		count, err := s.questions.CountBySet(ctx, setID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrNoQuestions
		}
	}

	if err := s.sets.MarkReady(ctx, setID); err != nil {
		return nil, err
	}
	set.IsReady = true

	s.log.Info().Str("set_id", setID.String()).Msg("Exam set marked ready")
	return set, nil
}

// authorizeCourse loads a course and checks staff access against its owner.
func (s *ExamSetService) authorizeCourse(ctx context.Context, actor model.Actor, courseID uuid.UUID, action Action) (*model.Course, error) {
	if !RoleCan(actor.Role, action) {
		return nil, ErrForbidden
	}
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !Authorize(actor, course.CreatedBy, action) {
		return nil, ErrForbidden
	}
	return course, nil
}

// authorizeSet loads a set plus its course and checks staff access.
func (s *ExamSetService) authorizeSet(ctx context.Context, actor model.Actor, setID uuid.UUID, action Action) (*model.ExamSet, *model.Course, error) {
	if !RoleCan(actor.Role, action) {
		return nil, nil, ErrForbidden
	}
	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	course, err := s.courses.GetByID(ctx, set.CourseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !Authorize(actor, course.CreatedBy, action) {
		return nil, nil, ErrForbidden
	}
	return set, course, nil
}
