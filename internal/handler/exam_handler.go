package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/examsched/examsched-backend/internal/middleware"
	"github.com/examsched/examsched-backend/internal/model"
	"github.com/examsched/examsched-backend/internal/response"
	"github.com/examsched/examsched-backend/internal/service"
	"github.com/examsched/examsched-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ExamHandler handles the student-facing exam attempt lifecycle.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// Dashboard godoc
// GET /api/v1/exam/schedules/:id
// Returns the schedule summary for the logged-in student.
func (h *ExamHandler) Dashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	scheduleID, ok := h.scheduleFromPath(c, claims)
	if !ok {
		return
	}

	dashboard, err := h.examService.Dashboard(c.Request.Context(), scheduleID, claims.ClassID)
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"schedule": dashboard})
}

// StartExam godoc
// POST /api/v1/exam/schedules/:id/start
// Starts a new attempt or resumes the open one, returning the question
// payload with correct answers stripped.
func (h *ExamHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	scheduleID, ok := h.scheduleFromPath(c, claims)
	if !ok {
		return
	}

	payload, err := h.examService.Start(c.Request.Context(), scheduleID, claims.StudentID, claims.ClassID)
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": payload})
}

// SubmitAnswer godoc
// POST /api/v1/exam/attempts/:id/answers
// Records or replaces the answer for one question of an open attempt.
func (h *ExamHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.examService.SubmitAnswer(c.Request.Context(), attemptID, claims.StudentID, req.QuestionID, req.SelectedOptionID)
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// FinishExam godoc
// POST /api/v1/exam/attempts/:id/finish
// Closes an open attempt and returns the finalized result.
func (h *ExamHandler) FinishExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.examService.Finish(c.Request.Context(), attemptID, claims.StudentID)
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetReport godoc
// GET /api/v1/exam/attempts/:id/report
// Returns the finalized result of a closed attempt.
func (h *ExamHandler) GetReport(c *gin.Context) {
	claims := middleware.GetClaims(c)
	attemptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.examService.Report(c.Request.Context(), attemptID, claims.StudentID)
	if err != nil {
		h.failExam(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// scheduleFromPath parses the schedule ID and checks it against the token's
// bound schedule. An exam token only ever grants access to the schedule it
// was issued for.
func (h *ExamHandler) scheduleFromPath(c *gin.Context, claims *service.Claims) (int, bool) {
	scheduleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return 0, false
	}
	if scheduleID != claims.ScheduleID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return 0, false
	}
	return scheduleID, true
}

// failExam maps exam lifecycle errors to HTTP statuses and error codes.
func (h *ExamHandler) failExam(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrWrongClass):
		response.Fail(c, http.StatusForbidden, response.ErrWrongClass)
	case errors.Is(err, service.ErrExamNotToday):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotToday)
	case errors.Is(err, service.ErrExamNotStarted):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotStarted)
	case errors.Is(err, service.ErrExamElapsed):
		response.Fail(c, http.StatusForbidden, response.ErrExamElapsed)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Fail(c, http.StatusBadRequest, response.ErrAlreadyCompleted)
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAttemptConcluded):
		response.Fail(c, http.StatusBadRequest, response.ErrAttemptConcluded)
	case errors.Is(err, service.ErrTimeLimitReached):
		response.Fail(c, http.StatusForbidden, response.ErrTimeLimitReached)
	case errors.Is(err, service.ErrQuestionNotInExam):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAlreadyFinalized):
		response.Fail(c, http.StatusBadRequest, response.ErrAlreadyFinalized)
	case errors.Is(err, service.ErrReportNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotFinished):
		response.Fail(c, http.StatusBadRequest, response.ErrNotFinished)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
