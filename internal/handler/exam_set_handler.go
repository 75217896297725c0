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

// ExamSetHandler handles exam set management endpoints.
type ExamSetHandler struct {
	setService *service.ExamSetService
}

// NewExamSetHandler creates a new ExamSetHandler.
func NewExamSetHandler(setService *service.ExamSetService) *ExamSetHandler {
	return &ExamSetHandler{setService: setService}
}

// Create godoc
// POST /api/v1/staff/exam-sets
func (h *ExamSetHandler) Create(c *gin.Context) {
	var req model.CreateExamSetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	set, err := h.setService.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam_set": set})
}

// Get godoc
// GET /api/v1/staff/exam-sets/:setId
func (h *ExamSetHandler) Get(c *gin.Context) {
	setID, ok := parseUUIDParam(c, "setId")
	if !ok {
		return
	}

	set, err := h.setService.Get(c.Request.Context(), middleware.GetActor(c), setID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam_set": set})
}

// ListByCourse godoc
// GET /api/v1/staff/courses/:courseId/exam-sets
func (h *ExamSetHandler) ListByCourse(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "courseId")
	if !ok {
		return
	}

	sets, err := h.setService.ListByCourse(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam_sets": sets})
}

// MarkReady godoc
// POST /api/v1/staff/exam-sets/:setId/ready
func (h *ExamSetHandler) MarkReady(c *gin.Context) {
	setID, ok := parseUUIDParam(c, "setId")
	if !ok {
		return
	}

	set, err := h.setService.MarkReady(c.Request.Context(), middleware.GetActor(c), setID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam_set": set})
}
