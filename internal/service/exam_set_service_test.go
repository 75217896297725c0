package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/rs/zerolog"
)

type setEnv struct {
	svc        *ExamSetService
	qsvc       *QuestionService
	questions  *fakeQuestionStore
	cfg        *config.Config
	course     *model.Course
	instructor model.Actor
}

func newSetEnv(t *testing.T) *setEnv {
	t.Helper()

	sets := newFakeSetStore()
	questions := newFakeQuestionStore()
	courses := newFakeCourseDirectory()

	instructorID := uuid.New()
	course := courses.addCourse("Compilers", instructorID)

	cfg := &config.Config{}
	svc := NewExamSetService(sets, questions, courses, cfg, zerolog.Nop())
	qsvc := NewQuestionService(questions, svc, zerolog.Nop())

	return &setEnv{
		svc:        svc,
		qsvc:       qsvc,
		questions:  questions,
		cfg:        cfg,
		course:     course,
		instructor: model.Actor{ID: instructorID, Role: model.RoleInstructor},
	}
}

func (env *setEnv) createSet(t *testing.T, types []string) *model.ExamSet {
	t.Helper()
	set, err := env.svc.Create(context.Background(), env.instructor, model.CreateExamSetRequest{
		CourseID:        env.course.ID,
		Name:            "Final Exam",
		SetLabel:        "A",
		Types:           types,
		DurationMinutes: 120,
	})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	return set
}

func TestCreateExamSet(t *testing.T) {
	env := newSetEnv(t)

	set := env.createSet(t, []string{"MCQ", "DESCRIPTIVE"})
	if set.IsReady {
		t.Errorf("new set starts ready")
	}
	if len(set.Types) != 2 {
		t.Errorf("types = %v", set.Types)
	}

	// Two sets may share a course, and even a label.
	if _, err := env.svc.Create(context.Background(), env.instructor, model.CreateExamSetRequest{
		CourseID:        env.course.ID,
		Name:            "Retake",
		SetLabel:        "A",
		Types:           []string{"MCQ"},
		DurationMinutes: 60,
	}); err != nil {
		t.Errorf("second set err = %v", err)
	}
}

func TestMarkReadyIdempotent(t *testing.T) {
	env := newSetEnv(t)
	ctx := context.Background()
	set := env.createSet(t, []string{"MCQ"})

	// Default mode: an empty set can be marked ready.
	ready, err := env.svc.MarkReady(ctx, env.instructor, set.ID)
	if err != nil {
		t.Fatalf("MarkReady: %v", err)
	}
	if !ready.IsReady {
		t.Errorf("is_ready = false after MarkReady")
	}

	if _, err := env.svc.MarkReady(ctx, env.instructor, set.ID); err != nil {
		t.Errorf("repeat MarkReady err = %v", err)
	}
}

func TestMarkReadyRequiresQuestions(t *testing.T) {
	env := newSetEnv(t)
	env.cfg.RequireQuestionsForReady = true
	ctx := context.Background()
	set := env.createSet(t, []string{"MCQ"})

	if _, err := env.svc.MarkReady(ctx, env.instructor, set.ID); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("empty set err = %v, want ErrNoQuestions", err)
	}

	idx := 1
	if _, err := env.qsvc.Add(ctx, env.instructor, set.ID, model.QuestionPayload{
		Type:               "MCQ",
		Marks:              5,
		Prompt:             "Which phase produces tokens?",
		Options:            []string{"Lexing", "Parsing"},
		CorrectAnswerIndex: &idx,
	}, nil); err != nil {
		t.Fatalf("add question: %v", err)
	}

	if _, err := env.svc.MarkReady(ctx, env.instructor, set.ID); err != nil {
		t.Errorf("MarkReady with question err = %v", err)
	}
}

func TestAddQuestionValidation(t *testing.T) {
	env := newSetEnv(t)
	ctx := context.Background()
	set := env.createSet(t, []string{"MCQ"})

	idx := 0
	cases := []struct {
		name    string
		payload model.QuestionPayload
	}{
		{"one option", model.QuestionPayload{Type: "MCQ", Marks: 1, Prompt: "Pick", Options: []string{"only"}, CorrectAnswerIndex: &idx}},
		{"no correct index", model.QuestionPayload{Type: "MCQ", Marks: 1, Prompt: "Pick", Options: []string{"a", "b"}}},
		{"index out of range", model.QuestionPayload{Type: "MCQ", Marks: 1, Prompt: "Pick", Options: []string{"a", "b"}, CorrectAnswerIndex: intPtr(2)}},
		{"type not allowed by set", model.QuestionPayload{Type: "DESCRIPTIVE", Marks: 1, Prompt: "Explain parsing"}},
	}
	for _, tc := range cases {
		if _, err := env.qsvc.Add(ctx, env.instructor, set.ID, tc.payload, nil); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", tc.name, err)
		}
	}

	valid := model.QuestionPayload{
		Type:               "MCQ",
		Marks:              2,
		Prompt:             "Pick one",
		Options:            []string{"a", "b", "c"},
		CorrectAnswerIndex: intPtr(1),
	}
	if _, err := env.qsvc.Add(ctx, env.instructor, set.ID, valid, nil); err != nil {
		t.Errorf("valid MCQ err = %v", err)
	}
}

func TestAddDescriptiveQuestion(t *testing.T) {
	env := newSetEnv(t)
	ctx := context.Background()
	set := env.createSet(t, []string{"DESCRIPTIVE"})

	// Whitespace does not count toward the prompt length.
	if _, err := env.qsvc.Add(ctx, env.instructor, set.ID, model.QuestionPayload{
		Type: "DESCRIPTIVE", Marks: 5, Prompt: "  ab  ",
	}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("short prompt err = %v, want ErrInvalidInput", err)
	}

	q, err := env.qsvc.Add(ctx, env.instructor, set.ID, model.QuestionPayload{
		Type: "DESCRIPTIVE", Marks: 5, Prompt: "Describe SSA form.",
	}, nil)
	if err != nil {
		t.Fatalf("valid descriptive err = %v", err)
	}
	if q.Prompt != "Describe SSA form." {
		t.Errorf("prompt = %q", q.Prompt)
	}
}

func TestQuestionMediaOptional(t *testing.T) {
	env := newSetEnv(t)
	ctx := context.Background()
	set := env.createSet(t, []string{"DESCRIPTIVE"})

	media := &model.Media{Kind: model.MediaKindImage, Locator: "/uploads/fig.png"}
	q, err := env.qsvc.Add(ctx, env.instructor, set.ID, model.QuestionPayload{
		Type: "DESCRIPTIVE", Marks: 3, Prompt: "Discuss the figure.",
	}, media)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if q.Media == nil || q.Media.Locator != "/uploads/fig.png" {
		t.Errorf("media = %+v", q.Media)
	}

	// Updating without a new file keeps the stored attachment.
	updated, err := env.qsvc.Update(ctx, env.instructor, q.ID, model.QuestionPayload{
		Type: "DESCRIPTIVE", Marks: 4, Prompt: "Discuss the figure in depth.",
	}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Media == nil || updated.Media.Locator != "/uploads/fig.png" {
		t.Errorf("updated media = %+v", updated.Media)
	}
}

func TestSetAuthz(t *testing.T) {
	env := newSetEnv(t)
	set := env.createSet(t, []string{"MCQ"})

	student := model.Actor{ID: uuid.New(), Role: model.RoleStudent}
	if _, err := env.svc.MarkReady(context.Background(), student, set.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("student mark ready err = %v, want ErrForbidden", err)
	}

	stranger := model.Actor{ID: uuid.New(), Role: model.RoleInstructor}
	if _, err := env.svc.MarkReady(context.Background(), stranger, set.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger mark ready err = %v, want ErrForbidden", err)
	}

	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	if _, err := env.svc.MarkReady(context.Background(), admin, set.ID); err != nil {
		t.Errorf("admin mark ready err = %v", err)
	}
}

func intPtr(v int) *int { return &v }
