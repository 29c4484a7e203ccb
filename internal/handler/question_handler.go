package handler

import (
	"net/http"

	"github.com/examsched/examsched-backend/internal/model"
	"github.com/examsched/examsched-backend/internal/response"
	"github.com/examsched/examsched-backend/internal/service"
	"github.com/examsched/examsched-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// QuestionHandler handles admin-facing question authoring.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions godoc
// GET /api/v1/admin/groups/:id/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	groupID, ok := pathID(c)
	if !ok {
		return
	}

	questions, err := h.questionService.ListByGroup(c.Request.Context(), groupID)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// CreateQuestion godoc
// POST /api/v1/admin/groups/:id/questions
// Creates a question with its options. Exactly one option must be marked
// correct.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	groupID, ok := pathID(c)
	if !ok {
		return
	}

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), groupID, &req)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// GetQuestion godoc
// GET /api/v1/admin/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// ReplaceQuestion godoc
// PUT /api/v1/admin/questions/:id
// Rewrites the question's text, number, and full option set.
func (h *QuestionHandler) ReplaceQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Replace(c.Request.Context(), id, &req)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
// Fails once submitted answers reference the question.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
