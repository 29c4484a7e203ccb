package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/examsched/examsched-backend/internal/config"
	"github.com/examsched/examsched-backend/internal/model"
	"github.com/examsched/examsched-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ScheduleService manages exam schedules and their question groups.
type ScheduleService struct {
	repo      *repository.ScheduleRepository
	questions *repository.QuestionRepository
	attempts  *repository.AttemptRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewScheduleService creates a new ScheduleService. rdb may be nil.
func NewScheduleService(repo *repository.ScheduleRepository, questions *repository.QuestionRepository, attempts *repository.AttemptRepository, rdb *redis.Client, log zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		repo:      repo,
		questions: questions,
		attempts:  attempts,
		rdb:       rdb,
		log:       log.With().Str("service", "schedule").Logger(),
	}
}

// List returns schedules with optional class and date filters.
func (s *ScheduleService) List(ctx context.Context, classID *int, examDate *time.Time) ([]model.ExamSchedule, error) {
	return s.repo.List(ctx, classID, examDate)
}

// GetByID retrieves a schedule.
func (s *ScheduleService) GetByID(ctx context.Context, id int) (*model.ExamSchedule, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	return schedule, nil
}

// Create adds a new exam schedule.
func (s *ScheduleService) Create(ctx context.Context, req *model.ScheduleRequest) (*model.ExamSchedule, error) {
	examDate, err := time.Parse("2006-01-02", req.ExamDate)
	if err != nil {
		return nil, fmt.Errorf("parsing exam date: %w", err)
	}

	schedule := &model.ExamSchedule{
		SubjectID:       req.SubjectID,
		ClassID:         req.ClassID,
		ExamDate:        examDate,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		ExamPassword:    req.ExamPassword,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		if isPgErr(err, pgForeignKeyViolation) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("creating schedule: %w", err)
	}
	return s.GetByID(ctx, schedule.ID)
}

// Update modifies an exam schedule.
func (s *ScheduleService) Update(ctx context.Context, id int, req *model.ScheduleRequest) (*model.ExamSchedule, error) {
	schedule, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	examDate, err := time.Parse("2006-01-02", req.ExamDate)
	if err != nil {
		return nil, fmt.Errorf("parsing exam date: %w", err)
	}

	schedule.SubjectID = req.SubjectID
	schedule.ClassID = req.ClassID
	schedule.ExamDate = examDate
	schedule.StartTime = req.StartTime
	schedule.DurationMinutes = req.DurationMinutes
	schedule.ExamPassword = req.ExamPassword
	if err := s.repo.Update(ctx, schedule); err != nil {
		if isPgErr(err, pgForeignKeyViolation) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating schedule: %w", err)
	}

	s.invalidatePayload(ctx, id)
	return s.GetByID(ctx, id)
}

// Delete removes a schedule and its question groups. It refuses once any
// attempt has been recorded against it.
func (s *ScheduleService) Delete(ctx context.Context, id int) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	attempts, err := s.repo.CountAttempts(ctx, id)
	if err != nil {
		return fmt.Errorf("counting attempts: %w", err)
	}
	if attempts > 0 {
		return ErrHasDependents
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if isPgErr(err, pgForeignKeyViolation) {
			return ErrHasDependents
		}
		return fmt.Errorf("deleting schedule: %w", err)
	}
	s.invalidatePayload(ctx, id)
	return nil
}

// ListAttempts returns all recorded attempts for a schedule, newest first.
func (s *ScheduleService) ListAttempts(ctx context.Context, scheduleID int) ([]model.ScheduledAttempt, error) {
	if _, err := s.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.attempts.ListBySchedule(ctx, scheduleID)
}

// ListGroups returns the question groups of a schedule in display order.
func (s *ScheduleService) ListGroups(ctx context.Context, scheduleID int) ([]model.QuestionGroup, error) {
	if _, err := s.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.repo.ListGroups(ctx, scheduleID)
}

// GetGroup retrieves a question group.
func (s *ScheduleService) GetGroup(ctx context.Context, groupID int) (*model.QuestionGroup, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading group: %w", err)
	}
	return group, nil
}

// CreateGroup adds a question group to a schedule. Display order must be
// unique within the schedule.
func (s *ScheduleService) CreateGroup(ctx context.Context, scheduleID int, req *model.GroupRequest) (*model.QuestionGroup, error) {
	if _, err := s.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}

	group := &model.QuestionGroup{
		ScheduleID:      scheduleID,
		InstructionText: req.InstructionText,
		GroupTitle:      req.GroupTitle,
		DisplayOrder:    req.DisplayOrder,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, ErrDuplicateRecord
		}
		return nil, fmt.Errorf("creating group: %w", err)
	}
	s.invalidatePayload(ctx, scheduleID)
	return group, nil
}

// UpdateGroup modifies a question group.
func (s *ScheduleService) UpdateGroup(ctx context.Context, groupID int, req *model.GroupRequest) (*model.QuestionGroup, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group.InstructionText = req.InstructionText
	group.GroupTitle = req.GroupTitle
	group.DisplayOrder = req.DisplayOrder
	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, ErrDuplicateRecord
		}
		return nil, fmt.Errorf("updating group: %w", err)
	}
	s.invalidatePayload(ctx, group.ScheduleID)
	return group, nil
}

// DeleteGroup removes a question group and its questions. It refuses once
// answers reference any question in the group.
func (s *ScheduleService) DeleteGroup(ctx context.Context, groupID int) error {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}

	answers, err := s.questions.CountAnswersByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("counting answers: %w", err)
	}
	if answers > 0 {
		return ErrHasDependents
	}

	if err := s.repo.DeleteGroup(ctx, groupID); err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	s.invalidatePayload(ctx, group.ScheduleID)
	return nil
}

// invalidatePayload drops the cached question payload after authoring
// changes so students never see a stale set within the cache TTL.
func (s *ScheduleService) invalidatePayload(ctx context.Context, scheduleID int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.SchedulePayloadKey(scheduleID)).Err(); err != nil {
		s.log.Warn().Err(err).Int("schedule_id", scheduleID).Msg("payload cache invalidation failed")
	}
}
