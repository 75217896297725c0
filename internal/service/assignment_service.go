package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/rs/zerolog"
)

// AssignmentService binds approved students to exam sets. All writes go
// through the store's conditional insert, so repeats and races collapse to a
// single assignment record per student per course.
type AssignmentService struct {
	assignments AssignmentStore
	requests    ExamRequestStore
	sets        *ExamSetService
	courses     CourseDirectory
	cfg         *config.Config
	log         zerolog.Logger
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(
	assignments AssignmentStore,
	requests ExamRequestStore,
	sets *ExamSetService,
	courses CourseDirectory,
	cfg *config.Config,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		requests:    requests,
		sets:        sets,
		courses:     courses,
		cfg:         cfg,
		log:         log.With().Str("component", "assignment_service").Logger(),
	}
}

// AssignResult reports the outcome of a bulk assignment call.
type AssignResult struct {
	Assigned int         `json:"assigned"`
	Skipped  int         `json:"skipped"`
	Students []uuid.UUID `json:"assigned_students"`
}

// Candidates returns the full course roster annotated with per-student
// assignment eligibility relative to the given set. The roster is a superset
// of the approved students: unapproved enrollees appear with Approved=false
// so staff can see who has not requested access yet, and only the approved,
// unassigned subset is selectable.
func (s *AssignmentService) Candidates(ctx context.Context, actor model.Actor, setID uuid.UUID) ([]model.Candidate, error) {
	set, course, err := s.sets.authorizeSet(ctx, actor, setID, ActionViewAssignments)
	if err != nil {
		return nil, err
	}

	roster, err := s.courses.Roster(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	approved, err := s.requests.ListApprovedByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.assignments.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	approvedSet := make(map[uuid.UUID]bool, len(approved))
	for _, a := range approved {
		approvedSet[a.StudentID] = true
	}
	assignedTo := make(map[uuid.UUID][]model.AssignedExam, len(assigned))
	for _, a := range assigned {
		assignedTo[a.StudentID] = append(assignedTo[a.StudentID], a)
	}

	candidates := make([]model.Candidate, 0, len(roster))
	for _, student := range roster {
		c := model.Candidate{
			StudentID:    student.ID,
			StudentName:  student.Name,
			StudentEmail: student.Email,
			Approved:     approvedSet[student.ID],
		}
		for _, a := range assignedTo[student.ID] {
			if a.ExamID == set.ID {
				c.AssignedInCurrentSet = true
			} else {
				c.AssignedInOtherSet = true
			}
			c.AssignedSetLabels = append(c.AssignedSetLabels, a.SetLabel)
		}
		c.Selectable = c.Approved && !c.AssignedInCurrentSet && !c.AssignedInOtherSet
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// AssignManual assigns the named students to a set. Ineligible students —
// unapproved, or already assigned in the course — are skipped silently, never
// failing the batch. The set must be ready.
func (s *AssignmentService) AssignManual(ctx context.Context, actor model.Actor, setID uuid.UUID, studentIDs []uuid.UUID) (*AssignResult, error) {
	set, course, err := s.sets.authorizeSet(ctx, actor, setID, ActionAssignStudents)
	if err != nil {
		return nil, err
	}
	if !set.IsReady {
		return nil, ErrSetNotReady
	}

	result := &AssignResult{Students: []uuid.UUID{}}
	for _, studentID := range studentIDs {
		created, err := s.assignOne(ctx, set, course, studentID)
		if err != nil {
			return nil, err
		}
		if created {
			result.Assigned++
			result.Students = append(result.Students, studentID)
		} else {
			result.Skipped++
		}
	}

	s.log.Info().
		Str("set_id", setID.String()).
		Int("assigned", result.Assigned).
		Int("skipped", result.Skipped).
		Msg("Manual assignment completed")
	return result, nil
}

// AssignRandomToAll assigns every eligible student of the set's course to
// that set. Eligibility follows the configured policy; either way, a student
// without a minted exam code cannot be assigned and is skipped. The set must
// be ready.
func (s *AssignmentService) AssignRandomToAll(ctx context.Context, actor model.Actor, setID uuid.UUID) (*AssignResult, error) {
	set, course, err := s.sets.authorizeSet(ctx, actor, setID, ActionAssignStudents)
	if err != nil {
		return nil, err
	}
	if !set.IsReady {
		return nil, ErrSetNotReady
	}

	students, err := s.eligibleStudents(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	result := &AssignResult{Students: []uuid.UUID{}}
	for _, studentID := range students {
		created, err := s.assignOne(ctx, set, course, studentID)
		if err != nil {
			return nil, err
		}
		if created {
			result.Assigned++
			result.Students = append(result.Students, studentID)
		} else {
			result.Skipped++
		}
	}

	s.log.Info().
		Str("set_id", setID.String()).
		Int("assigned", result.Assigned).
		Int("skipped", result.Skipped).
		Msg("Random assignment completed")
	return result, nil
}

// ListBySet returns a set's assignments.
func (s *AssignmentService) ListBySet(ctx context.Context, actor model.Actor, setID uuid.UUID) ([]model.AssignedExam, error) {
	if _, _, err := s.sets.authorizeSet(ctx, actor, setID, ActionViewAssignments); err != nil {
		return nil, err
	}
	return s.assignments.ListBySet(ctx, setID)
}

// MyAssignment returns the student's own assignment for a course.
func (s *AssignmentService) MyAssignment(ctx context.Context, actor model.Actor, courseID uuid.UUID) (*model.AssignedExam, error) {
	a, err := s.assignments.GetByStudentAndCourse(ctx, actor.ID, courseID)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return a, nil
}

// assignOne snapshots the set for one student. Reported as not created when
// the student lacks an approved code or the conditional insert hit the
// per-course uniqueness constraint.
func (s *AssignmentService) assignOne(ctx context.Context, set *model.ExamSet, course *model.Course, studentID uuid.UUID) (bool, error) {
	req, err := s.requests.GetApproved(ctx, studentID, course.ID)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	if req.ExamCode == nil {
		return false, nil
	}

	assignment := &model.AssignedExam{
		ExamID:          set.ID,
		ExamCode:        *req.ExamCode,
		StudentID:       studentID,
		CourseID:        course.ID,
		ExamName:        set.Name,
		SetLabel:        set.SetLabel,
		Types:           set.Types,
		StartAt:         set.StartAt,
		EndAt:           set.EndAt,
		DurationMinutes: set.DurationMinutes,
		Status:          model.AssignmentStatusAssigned,
	}
	return s.assignments.Create(ctx, assignment)
}

// eligibleStudents resolves the configured random-assignment population.
func (s *AssignmentService) eligibleStudents(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	if s.cfg.RandomAssignEligibility == config.EligibilityApprovedOnly {
		approved, err := s.requests.ListApprovedByCourse(ctx, courseID)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(approved))
		for _, a := range approved {
			ids = append(ids, a.StudentID)
		}
		return ids, nil
	}

	roster, err := s.courses.Roster(ctx, courseID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(roster))
	for _, student := range roster {
		ids = append(ids, student.ID)
	}
	return ids, nil
}
