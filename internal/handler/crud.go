package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/examsched/examsched-backend/internal/response"
	"github.com/examsched/examsched-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// failCRUD maps the shared CRUD errors to HTTP statuses and error codes.
func failCRUD(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrDuplicateRecord):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrHasDependents):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	case errors.Is(err, service.ErrOpenAttemptExists):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	case errors.Is(err, service.ErrOneCorrectOption):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"options": "exactly one option must be marked correct"})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// pathID parses the :id path parameter, failing the request on bad input.
func pathID(c *gin.Context) (int, bool) {
	return pathIntParam(c, "id")
}

func pathIntParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
