package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/mailer"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/learnhub/proctor-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ExamRequestService owns the request ledger: submission, the
// approve/reject decision, code minting and the student-facing status read.
type ExamRequestService struct {
	requests ExamRequestStore
	courses  CourseDirectory
	users    UserStore
	notifier Notifier
	cfg      *config.Config
	log      zerolog.Logger
}

// NewExamRequestService creates an ExamRequestService.
func NewExamRequestService(
	requests ExamRequestStore,
	courses CourseDirectory,
	users UserStore,
	notifier Notifier,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamRequestService {
	return &ExamRequestService{
		requests: requests,
		courses:  courses,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		log:      log.With().Str("component", "exam_request_service").Logger(),
	}
}

// Submit records a student's exam request for a course. At most one request
// per (student, course) ever exists; a repeat submission is a conflict no
// matter what state the first one reached.
func (s *ExamRequestService) Submit(ctx context.Context, actor model.Actor, courseID uuid.UUID) (*model.ExamRequest, error) {
	if !RoleCan(actor.Role, ActionSubmitRequest) {
		return nil, ErrForbidden
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	enrolled, err := s.courses.IsEnrolled(ctx, courseID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrForbidden
	}

	req := &model.ExamRequest{StudentID: actor.ID, CourseID: courseID}
	if err := s.requests.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}

	s.log.Info().
		Str("student_id", actor.ID.String()).
		Str("course_id", courseID.String()).
		Msg("Exam request submitted")
	return req, nil
}

// Approve transitions a pending request to APPROVED, minting the exam code
// exactly once. Concurrent approvals converge: the loser of the race gets
// ErrAlreadyApproved and the stored code is never regenerated.
func (s *ExamRequestService) Approve(ctx context.Context, actor model.Actor, requestID uuid.UUID) (*model.ExamRequest, error) {
	req, err := s.authorizeDecision(ctx, actor, requestID, ActionApproveRequest)
	if err != nil {
		return nil, err
	}

	code, err := GenerateExamCode(s.cfg.ExamCodeSymbols)
	if err != nil {
		return nil, err
	}

	ok, err := s.requests.Approve(ctx, requestID, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race or the request already left PENDING.
		return nil, s.terminalStateError(ctx, requestID)
	}

	req.Status = model.RequestStatusApproved
	req.ExamCode = &code

	s.notifyDecision(ctx, req, true)

	s.log.Info().
		Str("request_id", requestID.String()).
		Str("approved_by", actor.ID.String()).
		Msg("Exam request approved")
	return req, nil
}

// Reject transitions a pending request to REJECTED. No code is minted.
func (s *ExamRequestService) Reject(ctx context.Context, actor model.Actor, requestID uuid.UUID) (*model.ExamRequest, error) {
	req, err := s.authorizeDecision(ctx, actor, requestID, ActionRejectRequest)
	if err != nil {
		return nil, err
	}

	ok, err := s.requests.Reject(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.terminalStateError(ctx, requestID)
	}

	req.Status = model.RequestStatusRejected

	s.notifyDecision(ctx, req, false)

	s.log.Info().
		Str("request_id", requestID.String()).
		Str("rejected_by", actor.ID.String()).
		Msg("Exam request rejected")
	return req, nil
}

// Status returns the student's own request state for a course. The exam code
// never travels through this read; students obtain it out of band.
func (s *ExamRequestService) Status(ctx context.Context, actor model.Actor, courseID uuid.UUID) (*model.RequestStatusView, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	req, err := s.requests.GetByStudentAndCourse(ctx, actor.ID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.RequestStatusView{Status: req.Status, CourseTitle: course.Title}, nil
}

// ListPending returns the approval queue. Instructors see only requests for
// their own courses; admins see everything.
func (s *ExamRequestService) ListPending(ctx context.Context, actor model.Actor) ([]model.PendingRequest, error) {
	if !RoleCan(actor.Role, ActionListPending) {
		return nil, ErrForbidden
	}

	scope := actor.ID
	if actor.Role == model.RoleAdmin {
		scope = uuid.Nil
	}
	return s.requests.ListPending(ctx, scope)
}

// authorizeDecision loads the request and checks the actor against the
// owning course. The role plausibility check runs before any lookup, so a
// student probing a random id gets Forbidden, not NotFound.
func (s *ExamRequestService) authorizeDecision(ctx context.Context, actor model.Actor, requestID uuid.UUID, action Action) (*model.ExamRequest, error) {
	if !RoleCan(actor.Role, action) {
		return nil, ErrForbidden
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !Authorize(actor, course.CreatedBy, action) {
		return nil, ErrForbidden
	}
	return req, nil
}

// terminalStateError re-reads the request to report which terminal state
// beat the caller there.
func (s *ExamRequestService) terminalStateError(ctx context.Context, requestID uuid.UUID) error {
	current, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return ErrNotFound
	}
	switch current.Status {
	case model.RequestStatusApproved:
		return ErrAlreadyApproved
	case model.RequestStatusRejected:
		return ErrAlreadyRejected
	default:
		return ErrNotFound
	}
}

// notifyDecision queues the decision email. Best-effort: a queue failure
// never unwinds the decision.
func (s *ExamRequestService) notifyDecision(ctx context.Context, req *model.ExamRequest, approved bool) {
	student, err := s.users.GetByID(ctx, req.StudentID)
	if err != nil {
		s.log.Warn().Err(err).Str("student_id", req.StudentID.String()).Msg("Load student for notification")
		return
	}
	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		s.log.Warn().Err(err).Str("course_id", req.CourseID.String()).Msg("Load course for notification")
		return
	}

	msg := mailer.Message{ToName: student.Name, ToAddr: student.Email}
	if approved {
		msg.Subject = fmt.Sprintf("Exam access approved: %s", course.Title)
		msg.BodyHTML = fmt.Sprintf(
			"<p>Hi %s,</p><p>Your exam request for <strong>%s</strong> was approved.</p>"+
				"<p>Your exam code is <strong>%s</strong>. Keep it private.</p>",
			student.Name, course.Title, *req.ExamCode)
	} else {
		msg.Subject = fmt.Sprintf("Exam access rejected: %s", course.Title)
		msg.BodyHTML = fmt.Sprintf(
			"<p>Hi %s,</p><p>Your exam request for <strong>%s</strong> was rejected. "+
				"Contact your instructor for details.</p>",
			student.Name, course.Title)
	}
	s.notifier.EnqueueMail(ctx, msg)
}
