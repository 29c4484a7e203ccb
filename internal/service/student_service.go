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

// StudentService manages student records.
type StudentService struct {
	repo *repository.StudentRepository
	log  zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(repo *repository.StudentRepository, log zerolog.Logger) *StudentService {
	return &StudentService{repo: repo, log: log.With().Str("service", "student").Logger()}
}

// List returns students with an optional class filter, paginated.
func (s *StudentService) List(ctx context.Context, classID *int, page, perPage int) ([]model.Student, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.repo.List(ctx, classID, perPage, (page-1)*perPage)
}

// GetByID retrieves a student.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading student: %w", err)
	}
	return student, nil
}

// Create enrolls a new student.
func (s *StudentService) Create(ctx context.Context, req *model.StudentRequest) (*model.Student, error) {
	student := &model.Student{
		FullName:  req.FullName,
		RegNumber: req.RegNumber,
		ClassID:   req.ClassID,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, ErrDuplicateRecord
		}
		if isPgErr(err, pgForeignKeyViolation) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("creating student: %w", err)
	}
	return student, nil
}

// Update modifies a student record.
func (s *StudentService) Update(ctx context.Context, id int, req *model.StudentRequest) (*model.Student, error) {
	student, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	student.FullName = req.FullName
	student.RegNumber = req.RegNumber
	student.ClassID = req.ClassID
	if err := s.repo.Update(ctx, student); err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, ErrDuplicateRecord
		}
		if isPgErr(err, pgForeignKeyViolation) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating student: %w", err)
	}
	return student, nil
}

// Delete removes a student along with their attempt history. It refuses while
// the student has an exam in progress.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	open, err := s.repo.CountOpenAttempts(ctx, id)
	if err != nil {
		return fmt.Errorf("counting open attempts: %w", err)
	}
	if open > 0 {
		return ErrOpenAttemptExists
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting student: %w", err)
	}
	s.log.Info().Int("student_id", id).Msg("student deleted")
	return nil
}
