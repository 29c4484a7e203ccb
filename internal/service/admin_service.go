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

// ErrInvalidAdminCredentials covers both an unknown email and a wrong
// password.
var ErrInvalidAdminCredentials = errors.New("invalid email or password")

// AdminService manages administrator accounts.
type AdminService struct {
	repo *repository.AdminRepository
	auth *AuthService
	log  zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(repo *repository.AdminRepository, auth *AuthService, log zerolog.Logger) *AdminService {
	return &AdminService{repo: repo, auth: auth, log: log.With().Str("service", "admin").Logger()}
}

// Authenticate verifies admin credentials and returns the account.
func (s *AdminService) Authenticate(ctx context.Context, email, password string) (*model.Admin, error) {
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidAdminCredentials
		}
		return nil, fmt.Errorf("looking up admin: %w", err)
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, password); err != nil {
		return nil, ErrInvalidAdminCredentials
	}
	return admin, nil
}

// GetByID retrieves an admin account.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading admin: %w", err)
	}
	return admin, nil
}

// Create registers a new admin account with a hashed password.
func (s *AdminService) Create(ctx context.Context, name, email, password string, role model.AdminRole) (*model.Admin, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, admin); err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, ErrDuplicateRecord
		}
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	s.log.Info().Int("admin_id", admin.ID).Str("role", string(role)).Msg("admin created")
	return admin, nil
}
