package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/examsched/examsched-backend/internal/model"
	"github.com/examsched/examsched-backend/internal/response"
	"github.com/examsched/examsched-backend/internal/service"
	"github.com/examsched/examsched-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ScheduleHandler handles admin-facing schedule and question group management.
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// ListSchedules godoc
// GET /api/v1/admin/schedules?class_id=&exam_date=
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	var classID *int
	if raw := c.Query("class_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		classID = &id
	}

	var examDate *time.Time
	if raw := c.Query("exam_date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"exam_date": "must be in YYYY-MM-DD format"})
			return
		}
		examDate = &d
	}

	schedules, err := h.scheduleService.List(c.Request.Context(), classID, examDate)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedules": schedules})
}

// GetSchedule godoc
// GET /api/v1/admin/schedules/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.GetByID(c.Request.Context(), id)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedule": schedule})
}

// CreateSchedule godoc
// POST /api/v1/admin/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req model.ScheduleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	schedule, err := h.scheduleService.Create(c.Request.Context(), &req)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"schedule": schedule})
}

// UpdateSchedule godoc
// PUT /api/v1/admin/schedules/:id
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.ScheduleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	schedule, err := h.scheduleService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedule": schedule})
}

// DeleteSchedule godoc
// DELETE /api/v1/admin/schedules/:id
// Fails once attempts have been recorded against the schedule.
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.scheduleService.Delete(c.Request.Context(), id); err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListAttempts godoc
// GET /api/v1/admin/schedules/:id/attempts
// Returns every recorded attempt for a schedule, newest first.
func (h *ScheduleHandler) ListAttempts(c *gin.Context) {
	scheduleID, ok := pathID(c)
	if !ok {
		return
	}

	attempts, err := h.scheduleService.ListAttempts(c.Request.Context(), scheduleID)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// ListGroups godoc
// GET /api/v1/admin/schedules/:id/groups
func (h *ScheduleHandler) ListGroups(c *gin.Context) {
	scheduleID, ok := pathID(c)
	if !ok {
		return
	}

	groups, err := h.scheduleService.ListGroups(c.Request.Context(), scheduleID)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}

// CreateGroup godoc
// POST /api/v1/admin/schedules/:id/groups
func (h *ScheduleHandler) CreateGroup(c *gin.Context) {
	scheduleID, ok := pathID(c)
	if !ok {
		return
	}

	var req model.GroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	group, err := h.scheduleService.CreateGroup(c.Request.Context(), scheduleID, &req)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"group": group})
}

// GetGroup godoc
// GET /api/v1/admin/groups/:id
func (h *ScheduleHandler) GetGroup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	group, err := h.scheduleService.GetGroup(c.Request.Context(), id)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"group": group})
}

// UpdateGroup godoc
// PUT /api/v1/admin/groups/:id
func (h *ScheduleHandler) UpdateGroup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.GroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	group, err := h.scheduleService.UpdateGroup(c.Request.Context(), id, &req)
	if err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"group": group})
}

// DeleteGroup godoc
// DELETE /api/v1/admin/groups/:id
// Fails once submitted answers reference questions in the group.
func (h *ScheduleHandler) DeleteGroup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.scheduleService.DeleteGroup(c.Request.Context(), id); err != nil {
		failCRUD(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
