package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/learnhub/proctor-backend/internal/response"
	"github.com/learnhub/proctor-backend/internal/service"
)

// failFromService maps a domain error to its HTTP status and error code.
// The mapping is exhaustive over the service sentinels; anything unknown is
// an internal error.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotApproved):
		response.Fail(c, http.StatusNotFound, response.ErrNotApproved)
	case errors.Is(err, service.ErrIncorrectCode):
		response.Fail(c, http.StatusBadRequest, response.ErrIncorrectCode)
	case errors.Is(err, service.ErrDuplicateRequest):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateRequest)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrAlreadyApproved):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyApproved)
	case errors.Is(err, service.ErrAlreadyRejected):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyRejected)
	case errors.Is(err, service.ErrSetNotReady):
		response.Fail(c, http.StatusConflict, response.ErrSetNotReady)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, service.ErrInvalidInput):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrMissingSnapshot):
		response.Fail(c, http.StatusBadRequest, response.ErrMissingSnapshot)
	case errors.Is(err, service.ErrMissingReference):
		response.Fail(c, http.StatusConflict, response.ErrMissingReference)
	case errors.Is(err, service.ErrSessionNotVerified):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotVerified)
	case errors.Is(err, service.ErrWindowClosed):
		response.Fail(c, http.StatusConflict, response.ErrWindowClosed)
	case errors.Is(err, service.ErrVerificationLocked):
		response.Fail(c, http.StatusLocked, response.ErrVerificationLocked)
	case errors.Is(err, service.ErrVerificationCooldown):
		response.Fail(c, http.StatusTooManyRequests, response.ErrVerificationCooldown)
	case errors.Is(err, service.ErrDependency):
		response.Fail(c, http.StatusBadGateway, response.ErrDependencyFailure)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrInvalidFileType):
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// parseUUIDParam reads a UUID path parameter, failing the request on a
// malformed value.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
