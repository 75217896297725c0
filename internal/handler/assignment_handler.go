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

// AssignmentHandler handles assignment engine endpoints.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// Candidates godoc
// GET /api/v1/staff/exam-sets/:setId/candidates
// Roster annotated with per-student eligibility for this set.
func (h *AssignmentHandler) Candidates(c *gin.Context) {
	setID, ok := parseUUIDParam(c, "setId")
	if !ok {
		return
	}

	candidates, err := h.assignmentService.Candidates(c.Request.Context(), middleware.GetActor(c), setID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"candidates": candidates})
}

// Assign godoc
// POST /api/v1/staff/exam-sets/:setId/assign
func (h *AssignmentHandler) Assign(c *gin.Context) {
	setID, ok := parseUUIDParam(c, "setId")
	if !ok {
		return
	}

	var req model.AssignStudentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.assignmentService.AssignManual(c.Request.Context(), middleware.GetActor(c), setID, req.StudentIDs)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// AssignRandom godoc
// POST /api/v1/staff/exam-sets/:setId/assign-random
func (h *AssignmentHandler) AssignRandom(c *gin.Context) {
	setID, ok := parseUUIDParam(c, "setId")
	if !ok {
		return
	}

	result, err := h.assignmentService.AssignRandomToAll(c.Request.Context(), middleware.GetActor(c), setID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListBySet godoc
// GET /api/v1/staff/exam-sets/:setId/assignments
func (h *AssignmentHandler) ListBySet(c *gin.Context) {
	setID, ok := parseUUIDParam(c, "setId")
	if !ok {
		return
	}

	assignments, err := h.assignmentService.ListBySet(c.Request.Context(), middleware.GetActor(c), setID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// MyAssignment godoc
// GET /api/v1/courses/:courseId/assignment
// Student reads their own assignment snapshot for a course.
func (h *AssignmentHandler) MyAssignment(c *gin.Context) {
	courseID, ok := parseUUIDParam(c, "courseId")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.MyAssignment(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assignment": assignment})
}
