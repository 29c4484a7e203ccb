package handler

import (
	"errors"
	"net/http"

	"github.com/examsched/examsched-backend/internal/middleware"
	"github.com/examsched/examsched-backend/internal/model"
	"github.com/examsched/examsched-backend/internal/response"
	"github.com/examsched/examsched-backend/internal/service"
	"github.com/examsched/examsched-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles student exam login and admin authentication.
type AuthHandler struct {
	authService  *service.AuthService
	examService  *service.ExamService
	adminService *service.AdminService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, examService *service.ExamService, adminService *service.AdminService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		examService:  examService,
		adminService: adminService,
	}
}

// ExamLogin godoc
// POST /api/v1/auth/exam-login
// Authenticates a student into today's exam window for their class. The
// issued token is bound to the matched schedule.
func (h *AuthHandler) ExamLogin(c *gin.Context) {
	var req model.ExamLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, schedule, err := h.examService.AuthenticateExamLogin(c.Request.Context(), req.RegNumber, req.ExamPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidExamCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrExamNotStarted):
			response.Fail(c, http.StatusForbidden, response.ErrExamNotStarted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	token, err := h.authService.GenerateExamToken(c.Request.Context(), student, schedule.ID)
	if err != nil {
		if errors.Is(err, service.ErrSessionAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"student": gin.H{
			"id":        student.ID,
			"full_name": student.FullName,
			"class_id":  student.ClassID,
		},
		"schedule_id": schedule.ID,
	})
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Authenticates an administrator.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAdminCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateAdminToken(admin)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "admin": admin})
}

// AdminMe godoc
// GET /api/v1/admin/me
// Returns the authenticated admin's profile.
func (h *AuthHandler) AdminMe(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, err := h.adminService.GetByID(c.Request.Context(), claims.AdminID)
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}
