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

// ExamRequestHandler handles the request ledger endpoints.
type ExamRequestHandler struct {
	requestService *service.ExamRequestService
}

// NewExamRequestHandler creates a new ExamRequestHandler.
func NewExamRequestHandler(requestService *service.ExamRequestService) *ExamRequestHandler {
	return &ExamRequestHandler{requestService: requestService}
}

// Submit godoc
// POST /api/v1/exam-requests
// Student requests exam access for a course.
func (h *ExamRequestHandler) Submit(c *gin.Context) {
	var req model.SubmitRequestPayload
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.requestService.Submit(c.Request.Context(), middleware.GetActor(c), req.CourseID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"request": created})
}

// Status godoc
// GET /api/v1/courses/:courseId/exam-request
// Student reads their own request state. The exam code never appears here.
func (h *ExamRequestHandler) Status(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "courseId")
	if !ok {
		return
	}

	view, err := h.requestService.Status(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// ListPending godoc
// GET /api/v1/staff/exam-requests/pending
func (h *ExamRequestHandler) ListPending(c *gin.Context) {
	pending, err := h.requestService.ListPending(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"requests": pending})
}

// Approve godoc
// POST /api/v1/staff/exam-requests/:requestId/approve
func (h *ExamRequestHandler) Approve(c *gin.Context) {
	requestID, ok := parseUUIDParam(c, "requestId")
	if !ok {
		return
	}

	req, err := h.requestService.Approve(c.Request.Context(), middleware.GetActor(c), requestID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": req})
}

// Reject godoc
// POST /api/v1/staff/exam-requests/:requestId/reject
func (h *ExamRequestHandler) Reject(c *gin.Context) {
	requestID, ok := parseUUIDParam(c, "requestId")
	if !ok {
		return
	}

	req, err := h.requestService.Reject(c.Request.Context(), middleware.GetActor(c), requestID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"request": req})
}
