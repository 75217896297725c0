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

type assignEnv struct {
	svc         *AssignmentService
	setSvc      *ExamSetService
	requests    *fakeRequestStore
	assignments *fakeAssignmentStore
	sets        *fakeSetStore
	courses     *fakeCourseDirectory
	cfg         *config.Config
	course      *model.Course
	instructor  model.Actor
	approved    model.User // enrolled, approved request with code
	unapproved  model.User // enrolled, no approved request
}

func newAssignEnv(t *testing.T) *assignEnv {
	t.Helper()

	requests := newFakeRequestStore()
	assignments := newFakeAssignmentStore()
	sets := newFakeSetStore()
	questions := newFakeQuestionStore()
	courses := newFakeCourseDirectory()

	instructorID := uuid.New()
	course := courses.addCourse("Databases", instructorID)

	approved := model.User{ID: uuid.New(), Name: "Meera", Email: "meera@example.com", Role: model.RoleStudent}
	unapproved := model.User{ID: uuid.New(), Name: "Jonas", Email: "jonas@example.com", Role: model.RoleStudent}
	courses.enroll(course.ID, approved)
	courses.enroll(course.ID, unapproved)

	ctx := context.Background()
	req := &model.ExamRequest{StudentID: approved.ID, CourseID: course.ID}
	if err := requests.Create(ctx, req); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	if ok, err := requests.Approve(ctx, req.ID, "Qw4rT7"); !ok || err != nil {
		t.Fatalf("seed approve: ok=%t err=%v", ok, err)
	}

	cfg := &config.Config{RandomAssignEligibility: config.EligibilityEnrolledOnly}
	setSvc := NewExamSetService(sets, questions, courses, cfg, zerolog.Nop())
	svc := NewAssignmentService(assignments, requests, setSvc, courses, cfg, zerolog.Nop())

	return &assignEnv{
		svc:         svc,
		setSvc:      setSvc,
		requests:    requests,
		assignments: assignments,
		sets:        sets,
		courses:     courses,
		cfg:         cfg,
		course:      course,
		instructor:  model.Actor{ID: instructorID, Role: model.RoleInstructor},
		approved:    approved,
		unapproved:  unapproved,
	}
}

func (env *assignEnv) makeSet(t *testing.T, label string, ready bool) *model.ExamSet {
	t.Helper()
	set, err := env.setSvc.Create(context.Background(), env.instructor, model.CreateExamSetRequest{
		CourseID:        env.course.ID,
		Name:            "Midterm " + label,
		SetLabel:        label,
		Types:           []string{"MCQ"},
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("create set %s: %v", label, err)
	}
	if ready {
		if _, err := env.setSvc.MarkReady(context.Background(), env.instructor, set.ID); err != nil {
			t.Fatalf("mark ready %s: %v", label, err)
		}
		set.IsReady = true
	}
	return set
}

func TestAssignManual(t *testing.T) {
	env := newAssignEnv(t)
	ctx := context.Background()
	set := env.makeSet(t, "A", true)

	result, err := env.svc.AssignManual(ctx, env.instructor, set.ID, []uuid.UUID{env.approved.ID})
	if err != nil {
		t.Fatalf("AssignManual: %v", err)
	}
	if result.Assigned != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v", result)
	}

	// The snapshot carries the set metadata and the minted code.
	a, err := env.assignments.GetByStudentAndCourse(ctx, env.approved.ID, env.course.ID)
	if err != nil {
		t.Fatalf("load assignment: %v", err)
	}
	if a.ExamCode != "Qw4rT7" || a.SetLabel != "A" || a.DurationMinutes != 60 {
		t.Errorf("snapshot = %+v", a)
	}
	if a.Status != model.AssignmentStatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", a.Status)
	}
}

func TestAssignManualSkipsIneligible(t *testing.T) {
	env := newAssignEnv(t)
	ctx := context.Background()
	set := env.makeSet(t, "A", true)

	// Unapproved students are skipped silently, not failed.
	result, err := env.svc.AssignManual(ctx, env.instructor, set.ID, []uuid.UUID{env.approved.ID, env.unapproved.ID})
	if err != nil {
		t.Fatalf("AssignManual: %v", err)
	}
	if result.Assigned != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 1 assigned 1 skipped", result)
	}

	// Repeating the batch assigns nothing new.
	result, err = env.svc.AssignManual(ctx, env.instructor, set.ID, []uuid.UUID{env.approved.ID})
	if err != nil {
		t.Fatalf("repeat AssignManual: %v", err)
	}
	if result.Assigned != 0 || result.Skipped != 1 {
		t.Errorf("repeat result = %+v, want 0 assigned 1 skipped", result)
	}

	all, _ := env.assignments.ListByCourse(ctx, env.course.ID)
	if len(all) != 1 {
		t.Errorf("assignment rows = %d, want exactly 1", len(all))
	}
}

func TestAssignManualCrossSetExclusion(t *testing.T) {
	env := newAssignEnv(t)
	ctx := context.Background()
	setA := env.makeSet(t, "A", true)
	setB := env.makeSet(t, "B", true)

	if _, err := env.svc.AssignManual(ctx, env.instructor, setA.ID, []uuid.UUID{env.approved.ID}); err != nil {
		t.Fatalf("assign to A: %v", err)
	}

	// One assignment per course: set B cannot take the same student.
	result, err := env.svc.AssignManual(ctx, env.instructor, setB.ID, []uuid.UUID{env.approved.ID})
	if err != nil {
		t.Fatalf("assign to B: %v", err)
	}
	if result.Assigned != 0 || result.Skipped != 1 {
		t.Errorf("result = %+v, want skip", result)
	}
}

func TestAssignManualRequiresReadySet(t *testing.T) {
	env := newAssignEnv(t)
	set := env.makeSet(t, "A", false)

	_, err := env.svc.AssignManual(context.Background(), env.instructor, set.ID, []uuid.UUID{env.approved.ID})
	if !errors.Is(err, ErrSetNotReady) {
		t.Errorf("err = %v, want ErrSetNotReady", err)
	}
}

func TestCandidates(t *testing.T) {
	env := newAssignEnv(t)
	ctx := context.Background()
	setA := env.makeSet(t, "A", true)
	setB := env.makeSet(t, "B", true)

	if _, err := env.svc.AssignManual(ctx, env.instructor, setA.ID, []uuid.UUID{env.approved.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	candidates, err := env.svc.Candidates(ctx, env.instructor, setB.ID)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	byID := make(map[uuid.UUID]model.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.StudentID] = c
	}

	got := byID[env.approved.ID]
	if !got.Approved || !got.AssignedInOtherSet || got.AssignedInCurrentSet || got.Selectable {
		t.Errorf("approved+assigned candidate = %+v", got)
	}
	if len(got.AssignedSetLabels) != 1 || got.AssignedSetLabels[0] != "A" {
		t.Errorf("labels = %v", got.AssignedSetLabels)
	}

	got = byID[env.unapproved.ID]
	if got.Approved || got.Selectable || got.AssignedInOtherSet {
		t.Errorf("unapproved candidate = %+v", got)
	}

	// Relative to set A, the assignment shows as current.
	candidates, err = env.svc.Candidates(ctx, env.instructor, setA.ID)
	if err != nil {
		t.Fatalf("Candidates A: %v", err)
	}
	for _, c := range candidates {
		if c.StudentID == env.approved.ID && (!c.AssignedInCurrentSet || c.AssignedInOtherSet) {
			t.Errorf("set A candidate = %+v", c)
		}
	}
}

func TestAssignRandomEnrolledOnly(t *testing.T) {
	env := newAssignEnv(t)
	ctx := context.Background()
	set := env.makeSet(t, "A", true)

	result, err := env.svc.AssignRandomToAll(ctx, env.instructor, set.ID)
	if err != nil {
		t.Fatalf("AssignRandomToAll: %v", err)
	}

	// Both enrolled students are in the population, but only the approved
	// one holds a minted code and can actually be assigned.
	if result.Assigned != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 1 assigned 1 skipped", result)
	}
}

func TestAssignRandomApprovedOnly(t *testing.T) {
	env := newAssignEnv(t)
	env.cfg.RandomAssignEligibility = config.EligibilityApprovedOnly
	ctx := context.Background()
	set := env.makeSet(t, "A", true)

	result, err := env.svc.AssignRandomToAll(ctx, env.instructor, set.ID)
	if err != nil {
		t.Fatalf("AssignRandomToAll: %v", err)
	}
	if result.Assigned != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v, want 1 assigned 0 skipped", result)
	}
}

func TestAssignRandomTargetsNamedSet(t *testing.T) {
	env := newAssignEnv(t)
	ctx := context.Background()
	setA := env.makeSet(t, "A", true)
	setB := env.makeSet(t, "B", true)

	// Approve a handful more students so there is a real population to place.
	for i := 0; i < 5; i++ {
		student := model.User{ID: uuid.New(), Role: model.RoleStudent}
		courseCtx := context.Background()
		env.courses.enroll(env.course.ID, student)
		req := &model.ExamRequest{StudentID: student.ID, CourseID: env.course.ID}
		if err := env.requests.Create(courseCtx, req); err != nil {
			t.Fatalf("seed request: %v", err)
		}
		if ok, err := env.requests.Approve(courseCtx, req.ID, "Xy9zW1"); !ok || err != nil {
			t.Fatalf("seed approve: ok=%t err=%v", ok, err)
		}
	}

	result, err := env.svc.AssignRandomToAll(ctx, env.instructor, setB.ID)
	if err != nil {
		t.Fatalf("AssignRandomToAll: %v", err)
	}
	if result.Assigned != 6 {
		t.Fatalf("assigned = %d, want 6", result.Assigned)
	}

	// Every placement lands in the named set; the other ready set stays empty.
	inB, err := env.assignments.ListBySet(ctx, setB.ID)
	if err != nil {
		t.Fatalf("ListBySet B: %v", err)
	}
	if len(inB) != 6 {
		t.Errorf("set B assignments = %d, want 6", len(inB))
	}
	inA, err := env.assignments.ListBySet(ctx, setA.ID)
	if err != nil {
		t.Fatalf("ListBySet A: %v", err)
	}
	if len(inA) != 0 {
		t.Errorf("set A assignments = %d, want 0", len(inA))
	}
}

func TestAssignRandomNeedsReadySet(t *testing.T) {
	env := newAssignEnv(t)
	set := env.makeSet(t, "A", false)

	_, err := env.svc.AssignRandomToAll(context.Background(), env.instructor, set.ID)
	if !errors.Is(err, ErrSetNotReady) {
		t.Errorf("err = %v, want ErrSetNotReady", err)
	}
}

func TestAssignAuthz(t *testing.T) {
	env := newAssignEnv(t)
	set := env.makeSet(t, "A", true)

	student := model.Actor{ID: env.approved.ID, Role: model.RoleStudent}
	if _, err := env.svc.AssignManual(context.Background(), student, set.ID, []uuid.UUID{env.approved.ID}); !errors.Is(err, ErrForbidden) {
		t.Errorf("student assign err = %v, want ErrForbidden", err)
	}

	stranger := model.Actor{ID: uuid.New(), Role: model.RoleInstructor}
	if _, err := env.svc.AssignManual(context.Background(), stranger, set.ID, []uuid.UUID{env.approved.ID}); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger assign err = %v, want ErrForbidden", err)
	}
}
