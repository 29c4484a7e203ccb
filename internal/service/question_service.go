package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/examsched/examsched-backend/internal/config"
	"github.com/examsched/examsched-backend/internal/model"
	"github.com/examsched/examsched-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// QuestionService manages question authoring.
type QuestionService struct {
	repo   *repository.QuestionRepository
	groups *repository.ScheduleRepository
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewQuestionService creates a new QuestionService. rdb may be nil.
func NewQuestionService(repo *repository.QuestionRepository, groups *repository.ScheduleRepository, rdb *redis.Client, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		repo:   repo,
		groups: groups,
		rdb:    rdb,
		log:    log.With().Str("service", "question").Logger(),
	}
}

// GetByID retrieves a question with its options.
func (s *QuestionService) GetByID(ctx context.Context, id int) (*model.QuestionWithOptions, error) {
	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading question: %w", err)
	}
	return question, nil
}

// ListByGroup returns all questions of a group with their options.
func (s *QuestionService) ListByGroup(ctx context.Context, groupID int) ([]model.QuestionWithOptions, error) {
	if _, err := s.group(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.ListByGroup(ctx, groupID)
}

// Create adds a question with its options to a group. Exactly one option
// must be marked correct.
func (s *QuestionService) Create(ctx context.Context, groupID int, req *model.QuestionRequest) (*model.QuestionWithOptions, error) {
	group, err := s.group(ctx, groupID)
	if err != nil {
		return nil, err
	}

	correctIndex, options, err := splitOptions(req.Options)
	if err != nil {
		return nil, err
	}

	question := &model.QuestionWithOptions{
		Question: model.Question{
			GroupID:        groupID,
			QuestionText:   req.QuestionText,
			QuestionNumber: req.QuestionNumber,
		},
		Options: options,
	}
	if err := s.repo.Create(ctx, question, correctIndex); err != nil {
		return nil, fmt.Errorf("creating question: %w", err)
	}

	s.invalidatePayload(ctx, group.ScheduleID)
	return question, nil
}

// Replace rewrites a question's text, number, and full option set.
func (s *QuestionService) Replace(ctx context.Context, id int, req *model.QuestionRequest) (*model.QuestionWithOptions, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	group, err := s.group(ctx, existing.GroupID)
	if err != nil {
		return nil, err
	}

	correctIndex, options, err := splitOptions(req.Options)
	if err != nil {
		return nil, err
	}

	question := &model.QuestionWithOptions{
		Question: model.Question{
			ID:             id,
			GroupID:        existing.GroupID,
			QuestionText:   req.QuestionText,
			QuestionNumber: req.QuestionNumber,
		},
		Options: options,
	}
	if err := s.repo.Replace(ctx, question, correctIndex); err != nil {
		return nil, fmt.Errorf("replacing question: %w", err)
	}

	s.invalidatePayload(ctx, group.ScheduleID)
	return question, nil
}

// Delete removes a question. It refuses once submitted answers reference it.
func (s *QuestionService) Delete(ctx context.Context, id int) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	answers, err := s.repo.CountAnswers(ctx, id)
	if err != nil {
		return fmt.Errorf("counting answers: %w", err)
	}
	if answers > 0 {
		return ErrHasDependents
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting question: %w", err)
	}

	if group, err := s.group(ctx, existing.GroupID); err == nil {
		s.invalidatePayload(ctx, group.ScheduleID)
	}
	return nil
}

func (s *QuestionService) group(ctx context.Context, groupID int) (*model.QuestionGroup, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading group: %w", err)
	}
	return group, nil
}

func (s *QuestionService) invalidatePayload(ctx context.Context, scheduleID int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.SchedulePayloadKey(scheduleID)).Err(); err != nil {
		s.log.Warn().Err(err).Int("schedule_id", scheduleID).Msg("payload cache invalidation failed")
	}
}

// splitOptions validates that exactly one option is marked correct and
// converts the request options into model options, returning the index of
// the correct one.
func splitOptions(inputs []model.OptionInput) (int, []model.Option, error) {
	correctIndex := -1
	options := make([]model.Option, len(inputs))
	for i, in := range inputs {
		options[i] = model.Option{OptionText: in.OptionText}
		if in.IsCorrect {
			if correctIndex >= 0 {
				return 0, nil, ErrOneCorrectOption
			}
			correctIndex = i
		}
	}
	if correctIndex < 0 {
		return 0, nil, ErrOneCorrectOption
	}
	return correctIndex, options, nil
}
