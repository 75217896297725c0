package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnhub/proctor-backend/internal/mailer"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/learnhub/proctor-backend/internal/repository"
)

// In-memory store fakes mirroring the repositories' contracts: pgx.ErrNoRows
// for missing rows, repository.ErrDuplicateKey for unique violations, and
// compare-and-set semantics on state transitions.

type fakeUserStore struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateKey
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

type fakeCourseDirectory struct {
	courses map[uuid.UUID]*model.Course
	rosters map[uuid.UUID][]model.User
}

func newFakeCourseDirectory() *fakeCourseDirectory {
	return &fakeCourseDirectory{
		courses: make(map[uuid.UUID]*model.Course),
		rosters: make(map[uuid.UUID][]model.User),
	}
}

func (f *fakeCourseDirectory) addCourse(title string, createdBy uuid.UUID) *model.Course {
	c := &model.Course{ID: uuid.New(), Title: title, CreatedBy: createdBy, CreatedAt: time.Now()}
	f.courses[c.ID] = c
	return c
}

func (f *fakeCourseDirectory) enroll(courseID uuid.UUID, student model.User) {
	f.rosters[courseID] = append(f.rosters[courseID], student)
}

func (f *fakeCourseDirectory) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeCourseDirectory) Roster(_ context.Context, courseID uuid.UUID) ([]model.User, error) {
	return f.rosters[courseID], nil
}

func (f *fakeCourseDirectory) IsEnrolled(_ context.Context, courseID, studentID uuid.UUID) (bool, error) {
	for _, u := range f.rosters[courseID] {
		if u.ID == studentID {
			return true, nil
		}
	}
	return false, nil
}

type fakeRequestStore struct {
	requests map[uuid.UUID]*model.ExamRequest
	details  map[uuid.UUID]model.PendingRequest
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{
		requests: make(map[uuid.UUID]*model.ExamRequest),
		details:  make(map[uuid.UUID]model.PendingRequest),
	}
}

func (f *fakeRequestStore) Create(_ context.Context, req *model.ExamRequest) error {
	for _, existing := range f.requests {
		if existing.StudentID == req.StudentID && existing.CourseID == req.CourseID {
			return repository.ErrDuplicateKey
		}
	}
	req.ID = uuid.New()
	req.Status = model.RequestStatusPending
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeRequestStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRequestStore) GetByStudentAndCourse(_ context.Context, studentID, courseID uuid.UUID) (*model.ExamRequest, error) {
	for _, req := range f.requests {
		if req.StudentID == studentID && req.CourseID == courseID {
			clone := *req
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRequestStore) GetApproved(_ context.Context, studentID, courseID uuid.UUID) (*model.ExamRequest, error) {
	for _, req := range f.requests {
		if req.StudentID == studentID && req.CourseID == courseID && req.Status == model.RequestStatusApproved {
			clone := *req
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRequestStore) GetApprovedByCode(_ context.Context, studentID uuid.UUID, examCode string) (*model.ExamRequest, error) {
	for _, req := range f.requests {
		if req.StudentID == studentID && req.Status == model.RequestStatusApproved &&
			req.ExamCode != nil && *req.ExamCode == examCode {
			clone := *req
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRequestStore) Approve(_ context.Context, id uuid.UUID, examCode string) (bool, error) {
	req, ok := f.requests[id]
	if !ok || req.Status != model.RequestStatusPending {
		return false, nil
	}
	req.Status = model.RequestStatusApproved
	req.ExamCode = &examCode
	req.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRequestStore) Reject(_ context.Context, id uuid.UUID) (bool, error) {
	req, ok := f.requests[id]
	if !ok || req.Status != model.RequestStatusPending {
		return false, nil
	}
	req.Status = model.RequestStatusRejected
	req.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRequestStore) ListPending(_ context.Context, _ uuid.UUID) ([]model.PendingRequest, error) {
	var pending []model.PendingRequest
	for _, req := range f.requests {
		if req.Status == model.RequestStatusPending {
			pending = append(pending, model.PendingRequest{ExamRequest: *req})
		}
	}
	return pending, nil
}

func (f *fakeRequestStore) ListApprovedByCourse(_ context.Context, courseID uuid.UUID) ([]model.PendingRequest, error) {
	var approved []model.PendingRequest
	for _, req := range f.requests {
		if req.CourseID == courseID && req.Status == model.RequestStatusApproved {
			approved = append(approved, model.PendingRequest{ExamRequest: *req})
		}
	}
	return approved, nil
}

func (f *fakeRequestStore) storedCode(id uuid.UUID) *string {
	return f.requests[id].ExamCode
}

type fakeSetStore struct {
	sets map[uuid.UUID]*model.ExamSet
}

func newFakeSetStore() *fakeSetStore {
	return &fakeSetStore{sets: make(map[uuid.UUID]*model.ExamSet)}
}

func (f *fakeSetStore) Create(_ context.Context, set *model.ExamSet) error {
	set.ID = uuid.New()
	set.CreatedAt = time.Now()
	set.UpdatedAt = set.CreatedAt
	clone := *set
	f.sets[set.ID] = &clone
	return nil
}

func (f *fakeSetStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSet, error) {
	set, ok := f.sets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *set
	return &clone, nil
}

func (f *fakeSetStore) MarkReady(_ context.Context, id uuid.UUID) error {
	set, ok := f.sets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	set.IsReady = true
	return nil
}

func (f *fakeSetStore) ListByCourse(_ context.Context, courseID uuid.UUID) ([]model.ExamSet, error) {
	var sets []model.ExamSet
	for _, set := range f.sets {
		if set.CourseID == courseID {
			sets = append(sets, *set)
		}
	}
	return sets, nil
}

type fakeQuestionStore struct {
	questions map[uuid.UUID]*model.Question
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{questions: make(map[uuid.UUID]*model.Question)}
}

func (f *fakeQuestionStore) Create(_ context.Context, q *model.Question) error {
	q.ID = uuid.New()
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	clone := *q
	f.questions[q.ID] = &clone
	return nil
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *q
	return &clone, nil
}

func (f *fakeQuestionStore) Update(_ context.Context, q *model.Question) error {
	if _, ok := f.questions[q.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *q
	f.questions[q.ID] = &clone
	return nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.questions, id)
	return nil
}

func (f *fakeQuestionStore) ListBySet(_ context.Context, setID uuid.UUID) ([]model.Question, error) {
	var questions []model.Question
	for _, q := range f.questions {
		if q.ExamSetID == setID {
			questions = append(questions, *q)
		}
	}
	return questions, nil
}

func (f *fakeQuestionStore) CountBySet(_ context.Context, setID uuid.UUID) (int, error) {
	count := 0
	for _, q := range f.questions {
		if q.ExamSetID == setID {
			count++
		}
	}
	return count, nil
}

type fakeAssignmentStore struct {
	assignments map[uuid.UUID]*model.AssignedExam
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{assignments: make(map[uuid.UUID]*model.AssignedExam)}
}

func (f *fakeAssignmentStore) Create(_ context.Context, a *model.AssignedExam) (bool, error) {
	for _, existing := range f.assignments {
		if existing.StudentID == a.StudentID && existing.CourseID == a.CourseID {
			return false, nil
		}
		if existing.StudentID == a.StudentID && existing.ExamID == a.ExamID {
			return false, nil
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	clone := *a
	f.assignments[a.ID] = &clone
	return true, nil
}

func (f *fakeAssignmentStore) GetByStudentAndCourse(_ context.Context, studentID, courseID uuid.UUID) (*model.AssignedExam, error) {
	for _, a := range f.assignments {
		if a.StudentID == studentID && a.CourseID == courseID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAssignmentStore) GetByStudentAndCode(_ context.Context, studentID uuid.UUID, examCode string) (*model.AssignedExam, error) {
	for _, a := range f.assignments {
		if a.StudentID == studentID && a.ExamCode == examCode {
			clone := *a
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAssignmentStore) ListBySet(_ context.Context, setID uuid.UUID) ([]model.AssignedExam, error) {
	var assignments []model.AssignedExam
	for _, a := range f.assignments {
		if a.ExamID == setID {
			assignments = append(assignments, *a)
		}
	}
	return assignments, nil
}

func (f *fakeAssignmentStore) ListByCourse(_ context.Context, courseID uuid.UUID) ([]model.AssignedExam, error) {
	var assignments []model.AssignedExam
	for _, a := range f.assignments {
		if a.CourseID == courseID {
			assignments = append(assignments, *a)
		}
	}
	return assignments, nil
}

func (f *fakeAssignmentStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.AssignmentStatus) (bool, error) {
	a, ok := f.assignments[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	return true, nil
}

type fakeSessionStore struct {
	sessions   map[uuid.UUID]*model.ExamSession
	violations []model.ViolationLog
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*model.ExamSession)}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.ExamSession) error {
	for _, existing := range f.sessions {
		if existing.StudentID == s.StudentID && existing.ExamCode == s.ExamCode {
			return pgx.ErrNoRows
		}
	}
	s.ID = uuid.New()
	s.Status = model.SessionStatusPendingVerification
	s.StartTime = time.Now()
	clone := *s
	f.sessions[s.ID] = &clone
	return nil
}

func (f *fakeSessionStore) GetByStudentAndCode(_ context.Context, studentID uuid.UUID, examCode string) (*model.ExamSession, error) {
	for _, s := range f.sessions {
		if s.StudentID == studentID && s.ExamCode == examCode {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) GetByCode(_ context.Context, examCode string) (*model.ExamSession, error) {
	for _, s := range f.sessions {
		if s.ExamCode == examCode {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessionStore) CompleteRegistration(_ context.Context, id uuid.UUID, reg model.SessionRegistration) (bool, error) {
	s, ok := f.sessions[id]
	if !ok || s.FaceSnapshot != "" {
		return false, nil
	}
	s.IPAddress = reg.IPAddress
	s.DeviceInfo = reg.DeviceInfo
	s.FaceSnapshot = reg.FaceSnapshot
	return true, nil
}

func (f *fakeSessionStore) RecordFaceAttempt(_ context.Context, id uuid.UUID) (int, error) {
	s, ok := f.sessions[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	s.FaceAttempts++
	now := time.Now()
	s.LastFaceAttempt = &now
	return s.FaceAttempts, nil
}

func (f *fakeSessionStore) MarkVerified(_ context.Context, id uuid.UUID) (bool, error) {
	return f.transition(id, model.SessionStatusPendingVerification, model.SessionStatusVerified)
}

func (f *fakeSessionStore) MarkFlagged(_ context.Context, id uuid.UUID) (bool, error) {
	return f.transition(id, model.SessionStatusPendingVerification, model.SessionStatusFlagged)
}

func (f *fakeSessionStore) MarkStarted(_ context.Context, id uuid.UUID) (bool, error) {
	return f.transition(id, model.SessionStatusVerified, model.SessionStatusStarted)
}

func (f *fakeSessionStore) MarkCompleted(_ context.Context, id uuid.UUID) (bool, error) {
	return f.transition(id, model.SessionStatusStarted, model.SessionStatusCompleted)
}

func (f *fakeSessionStore) transition(id uuid.UUID, from, to model.SessionStatus) (bool, error) {
	s, ok := f.sessions[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (f *fakeSessionStore) InsertViolation(_ context.Context, v *model.ViolationLog) error {
	v.ID = uuid.New()
	v.DetectedAt = time.Now()
	f.violations = append(f.violations, *v)
	return nil
}

func (f *fakeSessionStore) ListViolations(_ context.Context, sessionID uuid.UUID) ([]model.ViolationLog, error) {
	var out []model.ViolationLog
	for _, v := range f.violations {
		if v.SessionID == sessionID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	sent []mailer.Message
}

func (f *fakeNotifier) EnqueueMail(_ context.Context, msg mailer.Message) {
	f.sent = append(f.sent, msg)
}

type fakeSink struct {
	events       []SessionEvent
	cachedStarts int
}

func (f *fakeSink) Publish(_ context.Context, ev SessionEvent) {
	f.events = append(f.events, ev)
}

func (f *fakeSink) CacheExamStart(_ context.Context, _ uuid.UUID, _ time.Time, _ time.Duration) {
	f.cachedStarts++
}

type fakeComparator struct {
	match bool
	err   error
	calls int
}

func (f *fakeComparator) Compare(_ context.Context, _, _ string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.match, nil
}

var errComparatorDown = errors.New("comparator unreachable")
