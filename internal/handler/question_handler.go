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

// QuestionHandler handles question bank endpoints. Writes arrive as
// multipart forms so media can ride along with the payload.
type QuestionHandler struct {
	questionService *service.QuestionService
	mediaService    *service.MediaService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, mediaService *service.MediaService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		mediaService:    mediaService,
	}
}

// Add godoc
// POST /api/v1/staff/exam-sets/:setId/questions
func (h *QuestionHandler) Add(c *gin.Context) {
	setID, ok := parseUUIDParam(c, "setId")
	if !ok {
		return
	}

	payload, media, ok := h.bindQuestion(c)
	if !ok {
		return
	}

	q, err := h.questionService.Add(c.Request.Context(), middleware.GetActor(c), setID, payload, media)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// Update godoc
// PUT /api/v1/staff/questions/:questionId
func (h *QuestionHandler) Update(c *gin.Context) {
	questionID, ok := parseUUIDParam(c, "questionId")
	if !ok {
		return
	}

	payload, media, ok := h.bindQuestion(c)
	if !ok {
		return
	}

	q, err := h.questionService.Update(c.Request.Context(), middleware.GetActor(c), questionID, payload, media)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// Delete godoc
// DELETE /api/v1/staff/questions/:questionId
func (h *QuestionHandler) Delete(c *gin.Context) {
	questionID, ok := parseUUIDParam(c, "questionId")
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), middleware.GetActor(c), questionID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListBySet godoc
// GET /api/v1/staff/exam-sets/:setId/questions
func (h *QuestionHandler) ListBySet(c *gin.Context) {
	setID, ok := parseUUIDParam(c, "setId")
	if !ok {
		return
	}

	questions, err := h.questionService.ListBySet(c.Request.Context(), middleware.GetActor(c), setID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// bindQuestion binds the payload from JSON or multipart form and stores an
// attached media file when present.
func (h *QuestionHandler) bindQuestion(c *gin.Context) (model.QuestionPayload, *model.Media, bool) {
	var payload model.QuestionPayload
	if err := c.ShouldBind(&payload); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return payload, nil, false
	}

	fh, err := c.FormFile("media")
	if err != nil {
		// No file attached.
		return payload, nil, true
	}

	media, err := h.mediaService.SaveUpload(fh)
	if err != nil {
		failFromService(c, err)
		return payload, nil, false
	}
	return payload, media, true
}
