package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/facematch"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/rs/zerolog"
)

// ExamSessionService drives the session state machine:
// PENDING_VERIFICATION → VERIFIED → STARTED → COMPLETED, with
// FLAGGED_FOR_REVIEW as the dead end for exhausted face verification.
// Every transition is a conditional store update, so concurrent callers
// converge on a single outcome.
type ExamSessionService struct {
	sessions    ExamSessionStore
	requests    ExamRequestStore
	assignments AssignmentStore
	courses     CourseDirectory
	comparator  facematch.Comparator
	sink        SessionEventSink
	cfg         *config.Config
	log         zerolog.Logger
	now         func() time.Time
}

// NewExamSessionService creates an ExamSessionService.
func NewExamSessionService(
	sessions ExamSessionStore,
	requests ExamRequestStore,
	assignments AssignmentStore,
	courses CourseDirectory,
	comparator facematch.Comparator,
	sink SessionEventSink,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		sessions:    sessions,
		requests:    requests,
		assignments: assignments,
		courses:     courses,
		comparator:  comparator,
		sink:        sink,
		cfg:         cfg,
		log:         log.With().Str("component", "exam_session_service").Logger(),
		now:         time.Now,
	}
}

// VerifyCode checks the exam code against the student's approved request for
// the course and idempotently ensures a session exists for it. The session
// may be created here without registration data; StartSession fills that in.
// A mismatch against an existing approved request is ErrIncorrectCode, not
// ErrNotApproved: the former is retryable typing, the latter means there is
// nothing to type against.
func (s *ExamSessionService) VerifyCode(ctx context.Context, actor model.Actor, courseID uuid.UUID, examCode string) (*model.ExamSession, error) {
	req, err := s.requests.GetApproved(ctx, actor.ID, courseID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotApproved
		}
		return nil, err
	}
	if req.ExamCode == nil || *req.ExamCode != examCode {
		return nil, ErrIncorrectCode
	}
	return s.ensureSession(ctx, actor.ID, req.ID, examCode, model.SessionRegistration{})
}

// StartSession registers the student's device, network and reference face
// snapshot against their session, creating the session if the code was never
// verified first. Registration happens at most once: the first stored
// snapshot wins and later payloads are ignored. A session that still lacks a
// snapshot requires one here.
func (s *ExamSessionService) StartSession(ctx context.Context, actor model.Actor, examCode string, reg model.SessionRegistration) (*model.ExamSession, error) {
	req, err := s.requests.GetApprovedByCode(ctx, actor.ID, examCode)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotApproved
		}
		return nil, err
	}

	session, err := s.sessions.GetByStudentAndCode(ctx, actor.ID, examCode)
	if err != nil {
		if !isNoRows(err) {
			return nil, err
		}
		if reg.FaceSnapshot == "" {
			return nil, ErrMissingSnapshot
		}
		return s.ensureSession(ctx, actor.ID, req.ID, examCode, reg)
	}

	if session.FaceSnapshot == "" {
		if reg.FaceSnapshot == "" {
			return nil, ErrMissingSnapshot
		}
		ok, err := s.sessions.CompleteRegistration(ctx, session.ID, reg)
		if err != nil {
			return nil, err
		}
		if ok {
			session.IPAddress = reg.IPAddress
			session.DeviceInfo = reg.DeviceInfo
			session.FaceSnapshot = reg.FaceSnapshot
			s.publish(ctx, session, EventRegistered, "")
		} else {
			// Lost a registration race; re-read the winner.
			return s.sessions.GetByID(ctx, session.ID)
		}
	}
	return session, nil
}

// SessionStatus probes whether a session exists for the student's code and
// reports its state. Used by the registration wizard to resume mid-flow.
func (s *ExamSessionService) SessionStatus(ctx context.Context, actor model.Actor, examCode string) (*model.SessionStatusView, error) {
	session, err := s.sessions.GetByStudentAndCode(ctx, actor.ID, examCode)
	if err != nil {
		if isNoRows(err) {
			return &model.SessionStatusView{Exists: false}, nil
		}
		return nil, err
	}
	return &model.SessionStatusView{
		Exists:    true,
		SessionID: &session.ID,
		Status:    session.Status,
	}, nil
}

// VerifyFaceResult reports one verification attempt.
type VerifyFaceResult struct {
	Matched      bool                `json:"matched"`
	Status       model.SessionStatus `json:"status"`
	AttemptsLeft int                 `json:"attempts_left"`
}

// VerifyFace compares a live capture against the session's reference
// snapshot. A match moves the session to VERIFIED; a mismatch consumes one
// attempt, and the final attempt flags the session for instructor review.
// Comparator outages consume nothing. Verifying an already-verified session
// succeeds without a comparison.
func (s *ExamSessionService) VerifyFace(ctx context.Context, actor model.Actor, sessionID uuid.UUID, candidate string) (*VerifyFaceResult, error) {
	session, err := s.ownSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case model.SessionStatusVerified, model.SessionStatusStarted, model.SessionStatusCompleted:
		return &VerifyFaceResult{Matched: true, Status: session.Status}, nil
	case model.SessionStatusFlagged:
		return nil, ErrVerificationLocked
	}

	if session.FaceSnapshot == "" {
		return nil, ErrMissingReference
	}
	if candidate == "" {
		return nil, ErrMissingSnapshot
	}
	if s.cfg.FaceAttemptCooldown > 0 && session.LastFaceAttempt != nil {
		if s.now().Sub(*session.LastFaceAttempt) < s.cfg.FaceAttemptCooldown {
			return nil, ErrVerificationCooldown
		}
	}

	matched, err := s.comparator.Compare(ctx, session.FaceSnapshot, candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}

	if matched {
		ok, err := s.sessions.MarkVerified(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Another attempt won; report the current state.
			current, err := s.sessions.GetByID(ctx, session.ID)
			if err != nil {
				return nil, err
			}
			if current.Status == model.SessionStatusFlagged {
				return nil, ErrVerificationLocked
			}
			return &VerifyFaceResult{Matched: true, Status: current.Status}, nil
		}
		session.Status = model.SessionStatusVerified
		s.publish(ctx, session, EventVerified, "")
		s.log.Info().Str("session_id", session.ID.String()).Msg("Face verified")
		return &VerifyFaceResult{Matched: true, Status: session.Status}, nil
	}

	attempts, err := s.sessions.RecordFaceAttempt(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if attempts >= s.cfg.FaceMaxAttempts {
		if _, err := s.sessions.MarkFlagged(ctx, session.ID); err != nil {
			return nil, err
		}
		session.Status = model.SessionStatusFlagged
		s.publish(ctx, session, EventFlagged, fmt.Sprintf("face verification failed %d times", attempts))
		s.log.Warn().
			Str("session_id", session.ID.String()).
			Int("attempts", attempts).
			Msg("Session flagged for review")
		return nil, ErrVerificationLocked
	}

	return &VerifyFaceResult{
		Matched:      false,
		Status:       session.Status,
		AttemptsLeft: s.cfg.FaceMaxAttempts - attempts,
	}, nil
}

// Start moves a verified session into STARTED, inside the assignment's exam
// window. Starting an already-started session is a no-op returning the
// session as-is.
func (s *ExamSessionService) Start(ctx context.Context, actor model.Actor, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.ownSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case model.SessionStatusStarted:
		return session, nil
	case model.SessionStatusVerified:
	default:
		return nil, ErrSessionNotVerified
	}

	assignment, err := s.assignments.GetByStudentAndCode(ctx, actor.ID, session.ExamCode)
	if err != nil {
		return nil, mapNoRows(err)
	}

	now := s.now()
	if assignment.StartAt != nil && now.Before(*assignment.StartAt) {
		return nil, ErrWindowClosed
	}
	if assignment.EndAt != nil && now.After(*assignment.EndAt) {
		return nil, ErrWindowClosed
	}

	ok, err := s.sessions.MarkStarted(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.sessions.GetByID(ctx, session.ID)
	}
	session.Status = model.SessionStatusStarted
	session.StartedAt = &now

	if _, err := s.assignments.UpdateStatus(ctx, assignment.ID, model.AssignmentStatusAssigned, model.AssignmentStatusStarted); err != nil {
		s.log.Warn().Err(err).Str("assignment_id", assignment.ID.String()).Msg("Update assignment status")
	}

	duration := time.Duration(assignment.DurationMinutes) * time.Minute
	s.sink.CacheExamStart(ctx, session.ID, now, duration)
	s.publish(ctx, session, EventStarted, "")

	s.log.Info().Str("session_id", session.ID.String()).Msg("Exam started")
	return session, nil
}

// Finish moves a started session to COMPLETED.
func (s *ExamSessionService) Finish(ctx context.Context, actor model.Actor, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.ownSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case model.SessionStatusCompleted:
		return session, nil
	case model.SessionStatusStarted:
	default:
		return nil, ErrSessionNotVerified
	}

	ok, err := s.sessions.MarkCompleted(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.sessions.GetByID(ctx, session.ID)
	}
	session.Status = model.SessionStatusCompleted

	if assignment, err := s.assignments.GetByStudentAndCode(ctx, actor.ID, session.ExamCode); err == nil {
		if _, err := s.assignments.UpdateStatus(ctx, assignment.ID, model.AssignmentStatusStarted, model.AssignmentStatusCompleted); err != nil {
			s.log.Warn().Err(err).Str("assignment_id", assignment.ID.String()).Msg("Update assignment status")
		}
	}

	s.publish(ctx, session, EventCompleted, "")
	s.log.Info().Str("session_id", session.ID.String()).Msg("Exam finished")
	return session, nil
}

// Details returns the session for an exam code, for staff monitoring the
// owning course.
func (s *ExamSessionService) Details(ctx context.Context, actor model.Actor, examCode string) (*model.ExamSession, error) {
	if !RoleCan(actor.Role, ActionMonitorCourse) {
		return nil, ErrForbidden
	}

	session, err := s.sessions.GetByCode(ctx, examCode)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if err := s.authorizeSessionCourse(ctx, actor, session); err != nil {
		return nil, err
	}
	return session, nil
}

// LogViolation records a proctoring incident against the caller's own
// session and fans it out to the monitor.
func (s *ExamSessionService) LogViolation(ctx context.Context, actor model.Actor, sessionID uuid.UUID, payload model.LogViolationRequest, snapshotLocator string) (*model.ViolationLog, error) {
	session, err := s.ownSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	v := &model.ViolationLog{
		SessionID:       session.ID,
		Type:            payload.Type,
		Description:     payload.Description,
		SnapshotLocator: snapshotLocator,
	}
	if err := s.sessions.InsertViolation(ctx, v); err != nil {
		return nil, err
	}

	s.publish(ctx, session, EventViolation, payload.Type)
	s.log.Warn().
		Str("session_id", session.ID.String()).
		Str("type", payload.Type).
		Msg("Violation logged")
	return v, nil
}

// ListViolations returns a session's violations for staff monitoring the
// owning course.
func (s *ExamSessionService) ListViolations(ctx context.Context, actor model.Actor, sessionID uuid.UUID) ([]model.ViolationLog, error) {
	if !RoleCan(actor.Role, ActionMonitorCourse) {
		return nil, ErrForbidden
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if err := s.authorizeSessionCourse(ctx, actor, session); err != nil {
		return nil, err
	}
	return s.sessions.ListViolations(ctx, sessionID)
}

// ensureSession creates the session row, converging with any concurrent
// creation for the same (student, code) pair.
func (s *ExamSessionService) ensureSession(ctx context.Context, studentID, requestID uuid.UUID, examCode string, reg model.SessionRegistration) (*model.ExamSession, error) {
	session := &model.ExamSession{
		StudentID:    studentID,
		RequestID:    requestID,
		ExamCode:     examCode,
		IPAddress:    reg.IPAddress,
		DeviceInfo:   reg.DeviceInfo,
		FaceSnapshot: reg.FaceSnapshot,
	}
	err := s.sessions.Create(ctx, session)
	if err == nil {
		if reg.FaceSnapshot != "" {
			s.publish(ctx, session, EventRegistered, "")
		}
		s.log.Info().
			Str("session_id", session.ID.String()).
			Str("student_id", studentID.String()).
			Msg("Exam session created")
		return session, nil
	}
	if isNoRows(err) {
		return s.sessions.GetByStudentAndCode(ctx, studentID, examCode)
	}
	return nil, err
}

// ownSession loads a session and checks the caller owns it.
func (s *ExamSessionService) ownSession(ctx context.Context, actor model.Actor, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if session.StudentID != actor.ID {
		return nil, ErrForbidden
	}
	return session, nil
}

// authorizeSessionCourse walks session → request → course and checks staff
// ownership.
func (s *ExamSessionService) authorizeSessionCourse(ctx context.Context, actor model.Actor, session *model.ExamSession) error {
	req, err := s.requests.GetByID(ctx, session.RequestID)
	if err != nil {
		return mapNoRows(err)
	}
	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		return mapNoRows(err)
	}
	if !Authorize(actor, course.CreatedBy, ActionMonitorCourse) {
		return ErrForbidden
	}
	return nil
}

// publish resolves the course and emits a monitor event. Best-effort.
func (s *ExamSessionService) publish(ctx context.Context, session *model.ExamSession, event SessionEventType, detail string) {
	req, err := s.requests.GetByID(ctx, session.RequestID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Resolve course for event")
		return
	}
	s.sink.Publish(ctx, SessionEvent{
		Type:      event,
		SessionID: session.ID,
		StudentID: session.StudentID,
		CourseID:  req.CourseID,
		ExamCode:  session.ExamCode,
		Status:    session.Status,
		Detail:    detail,
		At:        s.now(),
	})
}
