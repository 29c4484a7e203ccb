package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/examsched/examsched-backend/internal/config"
	"github.com/examsched/examsched-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// TokenType distinguishes student exam tokens from admin tokens.
type TokenType string

const (
	// TokenTypeStudent marks a short-lived exam session token.
	TokenTypeStudent TokenType = "student"
	// TokenTypeAdmin marks an administrator token.
	TokenTypeAdmin TokenType = "admin"
)

// Claims is the JWT payload for both token types. Student tokens carry the
// identity triple the exam endpoints authorize against; admin tokens carry
// the admin ID and role.
type Claims struct {
	TokenType  TokenType       `json:"token_type"`
	StudentID  int             `json:"student_id,omitempty"`
	ClassID    int             `json:"class_id,omitempty"`
	ScheduleID int             `json:"schedule_id,omitempty"`
	AdminID    int             `json:"admin_id,omitempty"`
	Role       model.AdminRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Auth errors returned to handlers.
var (
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrSessionAlreadyActive = errors.New("an exam session is already active for this student")
	ErrSessionInvalid       = errors.New("session is no longer valid")
)

// AuthService issues and validates JWTs and enforces the single active exam
// session per student via a Redis JTI registry.
type AuthService struct {
	rdb *redis.Client
	cfg *config.Config
	log zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *AuthService {
	return &AuthService{rdb: rdb, cfg: cfg, log: log.With().Str("service", "auth").Logger()}
}

// GenerateExamToken issues a student exam token bound to one schedule and
// registers its JTI as the student's single active session. A second login
// while a session is live is rejected; an admin can clear the registration
// with ResetStudentSession.
func (s *AuthService) GenerateExamToken(ctx context.Context, student *model.Student, scheduleID int) (string, error) {
	sessionKey := config.CacheKey.StudentSessionKey(student.ID)

	jti := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, sessionKey, jti, s.cfg.ExamTokenExpiry).Result()
	if err != nil {
		return "", fmt.Errorf("registering exam session: %w", err)
	}
	if !ok {
		return "", ErrSessionAlreadyActive
	}

	now := time.Now()
	claims := &Claims{
		TokenType:  TokenTypeStudent,
		StudentID:  student.ID,
		ClassID:    student.ClassID,
		ScheduleID: scheduleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   student.RegNumber,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.ExamTokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		// Roll back the session registration so the student can retry.
		s.rdb.Del(ctx, sessionKey)
		return "", fmt.Errorf("signing exam token: %w", err)
	}

	s.log.Info().Int("student_id", student.ID).Int("schedule_id", scheduleID).Msg("exam session opened")
	return signed, nil
}

// GenerateAdminToken issues an admin JWT.
func (s *AuthService) GenerateAdminToken(admin *model.Admin) (string, error) {
	now := time.Now()
	claims := &Claims{
		TokenType: TokenTypeAdmin,
		AdminID:   admin.ID,
		Role:      admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AdminJWTExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing admin token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateStudentSession checks that jti is still the student's registered
// active session.
func (s *AuthService) ValidateStudentSession(ctx context.Context, studentID int, jti string) error {
	current, err := s.rdb.Get(ctx, config.CacheKey.StudentSessionKey(studentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionInvalid
		}
		return fmt.Errorf("reading exam session: %w", err)
	}
	if current != jti {
		return ErrSessionInvalid
	}
	return nil
}

// ResetStudentSession clears a student's active exam session so they can log
// in again, e.g. after a browser crash mid-exam.
func (s *AuthService) ResetStudentSession(ctx context.Context, studentID int) error {
	if err := s.rdb.Del(ctx, config.CacheKey.StudentSessionKey(studentID)).Err(); err != nil {
		return fmt.Errorf("resetting exam session: %w", err)
	}
	s.log.Info().Int("student_id", studentID).Msg("exam session reset")
	return nil
}

// HashPassword hashes a plaintext password with bcrypt.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
