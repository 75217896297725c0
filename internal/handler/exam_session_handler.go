package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/proctor-backend/internal/middleware"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/learnhub/proctor-backend/internal/response"
	"github.com/learnhub/proctor-backend/internal/service"
	"github.com/learnhub/proctor-backend/internal/validator"
)

// ExamSessionHandler handles session lifecycle endpoints.
type ExamSessionHandler struct {
	sessionService *service.ExamSessionService
	mediaService   *service.MediaService
}

// NewExamSessionHandler creates a new ExamSessionHandler.
func NewExamSessionHandler(sessionService *service.ExamSessionService, mediaService *service.MediaService) *ExamSessionHandler {
	return &ExamSessionHandler{
		sessionService: sessionService,
		mediaService:   mediaService,
	}
}

// VerifyCode godoc
// POST /api/v1/exams/verify-code
// Checks the student's exam code for a course and ensures a session exists.
func (h *ExamSessionHandler) VerifyCode(c *gin.Context) {
	var req model.VerifyCodePayload
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.VerifyCode(c.Request.Context(), middleware.GetActor(c), req.CourseID, req.ExamCode)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session_id": session.ID,
		"status":     session.Status,
	})
}

// StartSession godoc
// POST /api/v1/exams/start-session
// Multipart: exam_code, device_info, face_snapshot (image). Registers the
// student's device and reference snapshot; repeat calls return the existing
// session untouched.
func (h *ExamSessionHandler) StartSession(c *gin.Context) {
	examCode := c.PostForm("exam_code")
	if examCode == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"exam_code": "exam_code is required"})
		return
	}

	reg := model.SessionRegistration{
		IPAddress:  c.ClientIP(),
		DeviceInfo: c.PostForm("device_info"),
	}
	if reg.DeviceInfo == "" {
		reg.DeviceInfo = c.Request.UserAgent()
	}

	if fh, err := c.FormFile("face_snapshot"); err == nil {
		snapshot, err := h.mediaService.EncodeSnapshot(fh)
		if err != nil {
			failFromService(c, err)
			return
		}
		reg.FaceSnapshot = snapshot
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), middleware.GetActor(c), examCode, reg)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// SessionStatus godoc
// GET /api/v1/exams/session-status?exam_code=XXXXXX
func (h *ExamSessionHandler) SessionStatus(c *gin.Context) {
	examCode := c.Query("exam_code")
	if examCode == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"exam_code": "exam_code is required"})
		return
	}

	view, err := h.sessionService.SessionStatus(c.Request.Context(), middleware.GetActor(c), examCode)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// VerifyFace godoc
// POST /api/v1/exams/verify-face/:sessionId
// Multipart: face_snapshot (image). Compares a live capture against the
// session's reference snapshot.
func (h *ExamSessionHandler) VerifyFace(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	fh, err := c.FormFile("face_snapshot")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	candidate, err := h.mediaService.EncodeSnapshot(fh)
	if err != nil {
		failFromService(c, err)
		return
	}

	result, err := h.sessionService.VerifyFace(c.Request.Context(), middleware.GetActor(c), sessionID, candidate)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Start godoc
// POST /api/v1/sessions/:sessionId/start
func (h *ExamSessionHandler) Start(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), middleware.GetActor(c), sessionID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Finish godoc
// POST /api/v1/sessions/:sessionId/finish
func (h *ExamSessionHandler) Finish(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.sessionService.Finish(c.Request.Context(), middleware.GetActor(c), sessionID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Details godoc
// GET /api/v1/staff/session-details/:examCode
// Instructor's view of the session behind an exam code, violations included.
func (h *ExamSessionHandler) Details(c *gin.Context) {
	examCode := c.Param("examCode")

	session, err := h.sessionService.Details(c.Request.Context(), middleware.GetActor(c), examCode)
	if err != nil {
		failFromService(c, err)
		return
	}

	violations, err := h.sessionService.ListViolations(c.Request.Context(), middleware.GetActor(c), session.ID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session":    session,
		"violations": violations,
	})
}

// LogViolation godoc
// POST /api/v1/sessions/:sessionId/violations
// Multipart: type, description, snapshot (optional image evidence).
func (h *ExamSessionHandler) LogViolation(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req model.LogViolationRequest
	if err := c.ShouldBind(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	var locator string
	if fh, err := c.FormFile("snapshot"); err == nil {
		locator, err = h.mediaService.SaveSnapshotFile(fh)
		if err != nil {
			failFromService(c, err)
			return
		}
	}

	v, err := h.sessionService.LogViolation(c.Request.Context(), middleware.GetActor(c), sessionID, req, locator)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"violation": v})
}
