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

// SubjectService manages subjects.
type SubjectService struct {
	repo *repository.SubjectRepository
	log  zerolog.Logger
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(repo *repository.SubjectRepository, log zerolog.Logger) *SubjectService {
	return &SubjectService{repo: repo, log: log.With().Str("service", "subject").Logger()}
}

// List returns all subjects.
func (s *SubjectService) List(ctx context.Context) ([]model.Subject, error) {
	return s.repo.List(ctx)
}

// GetByID retrieves a subject.
func (s *SubjectService) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading subject: %w", err)
	}
	return subject, nil
}

// Create adds a new subject.
func (s *SubjectService) Create(ctx context.Context, req *model.SubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{Name: req.Name}
	if err := s.repo.Create(ctx, subject); err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, ErrDuplicateRecord
		}
		return nil, fmt.Errorf("creating subject: %w", err)
	}
	return subject, nil
}

// Update renames a subject.
func (s *SubjectService) Update(ctx context.Context, id int, req *model.SubjectRequest) (*model.Subject, error) {
	subject, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subject.Name = req.Name
	if err := s.repo.Update(ctx, subject); err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, ErrDuplicateRecord
		}
		return nil, fmt.Errorf("updating subject: %w", err)
	}
	return subject, nil
}

// Delete removes a subject. It refuses while schedules still use it.
func (s *SubjectService) Delete(ctx context.Context, id int) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	schedules, err := s.repo.CountSchedules(ctx, id)
	if err != nil {
		return fmt.Errorf("counting schedules: %w", err)
	}
	if schedules > 0 {
		return ErrHasDependents
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if isPgErr(err, pgForeignKeyViolation) {
			return ErrHasDependents
		}
		return fmt.Errorf("deleting subject: %w", err)
	}
	return nil
}
