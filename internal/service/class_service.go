package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/examsched/examsched-backend/internal/model"
	"github.com/examsched/examsched-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ClassService manages classes.
type ClassService struct {
	repo *repository.ClassRepository
	log  zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(repo *repository.ClassRepository, log zerolog.Logger) *ClassService {
	return &ClassService{repo: repo, log: log.With().Str("service", "class").Logger()}
}

// List returns all classes.
func (s *ClassService) List(ctx context.Context) ([]model.Class, error) {
	return s.repo.List(ctx)
}

// GetByID retrieves a class.
func (s *ClassService) GetByID(ctx context.Context, id int) (*model.Class, error) {
	class, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading class: %w", err)
	}
	return class, nil
}

// Create adds a new class.
func (s *ClassService) Create(ctx context.Context, req *model.ClassRequest) (*model.Class, error) {
	class := &model.Class{Name: req.Name}
	if err := s.repo.Create(ctx, class); err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, ErrDuplicateRecord
		}
		return nil, fmt.Errorf("creating class: %w", err)
	}
	return class, nil
}

// Update renames a class.
func (s *ClassService) Update(ctx context.Context, id int, req *model.ClassRequest) (*model.Class, error) {
	class, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	class.Name = req.Name
	if err := s.repo.Update(ctx, class); err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, ErrDuplicateRecord
		}
		return nil, fmt.Errorf("updating class: %w", err)
	}
	return class, nil
}

// Delete removes a class. It refuses while students or schedules still
// reference it.
func (s *ClassService) Delete(ctx context.Context, id int) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	students, err := s.repo.CountStudents(ctx, id)
	if err != nil {
		return fmt.Errorf("counting students: %w", err)
	}
	schedules, err := s.repo.CountSchedules(ctx, id)
	if err != nil {
		return fmt.Errorf("counting schedules: %w", err)
	}
	if students > 0 || schedules > 0 {
		return ErrHasDependents
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if isPgErr(err, pgForeignKeyViolation) {
			return ErrHasDependents
		}
		return fmt.Errorf("deleting class: %w", err)
	}
	return nil
}
