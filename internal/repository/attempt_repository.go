package repository

import (
	"context"
	"errors"
	"time"

	"github.com/examsched/examsched-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository handles scheduled attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// GetByStudentAndSchedule retrieves the attempt for a student on a schedule.
// At most one exists per pair.
func (r *AttemptRepository) GetByStudentAndSchedule(ctx context.Context, studentID, scheduleID int) (*model.ScheduledAttempt, error) {
	a := &model.ScheduledAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, schedule_id, start_time, end_time, score
		 FROM scheduled_attempts
		 WHERE student_id = $1 AND schedule_id = $2`, studentID, scheduleID,
	).Scan(&a.ID, &a.StudentID, &a.ScheduleID, &a.StartTime, &a.EndTime, &a.Score)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new attempt. When a concurrent request already created the
// row for the same (student, schedule) pair, ON CONFLICT DO NOTHING makes the
// RETURNING clause produce no row and the call surfaces pgx.ErrNoRows; callers
// refetch and resume the existing attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.ScheduledAttempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO scheduled_attempts (student_id, schedule_id, start_time, score)
		 VALUES ($1, $2, $3, 0)
		 ON CONFLICT (student_id, schedule_id) DO NOTHING
		 RETURNING id`,
		a.StudentID, a.ScheduleID, a.StartTime,
	).Scan(&a.ID)
}

// ListBySchedule retrieves all attempts for a schedule, newest first.
func (r *AttemptRepository) ListBySchedule(ctx context.Context, scheduleID int) ([]model.ScheduledAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, schedule_id, start_time, end_time, score
		 FROM scheduled_attempts
		 WHERE schedule_id = $1
		 ORDER BY start_time DESC`, scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.ScheduledAttempt
	for rows.Next() {
		var a model.ScheduledAttempt
		if err := rows.Scan(&a.ID, &a.StudentID, &a.ScheduleID, &a.StartTime, &a.EndTime, &a.Score); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Begin opens a transactional unit of work over a single attempt. Submit and
// finish run their read-check-write sequences inside it, serialized per
// attempt by the row lock taken in AttemptForUpdate.
func (r *AttemptRepository) Begin(ctx context.Context) (*AttemptTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &AttemptTx{tx: tx}, nil
}

// AttemptTx is a database transaction scoped to attempt mutation. All methods
// run on the same underlying transaction; Commit or Rollback ends it.
type AttemptTx struct {
	tx pgx.Tx
}

// AttemptForUpdate retrieves an attempt and locks its row until the
// transaction ends. Concurrent submits against the same attempt queue here.
func (t *AttemptTx) AttemptForUpdate(ctx context.Context, attemptID int) (*model.ScheduledAttempt, error) {
	a := &model.ScheduledAttempt{}
	err := t.tx.QueryRow(ctx,
		`SELECT id, student_id, schedule_id, start_time, end_time, score
		 FROM scheduled_attempts
		 WHERE id = $1
		 FOR UPDATE`, attemptID,
	).Scan(&a.ID, &a.StudentID, &a.ScheduleID, &a.StartTime, &a.EndTime, &a.Score)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Schedule retrieves a schedule with its subject name inside the transaction.
func (t *AttemptTx) Schedule(ctx context.Context, scheduleID int) (*model.ExamSchedule, error) {
	s := &model.ExamSchedule{}
	err := t.tx.QueryRow(ctx,
		`SELECT `+scheduleColumns+`
		 FROM exam_schedules s
		 JOIN subjects sub ON s.subject_id = sub.id
		 WHERE s.id = $1`, scheduleID,
	).Scan(&s.ID, &s.SubjectID, &s.SubjectName, &s.ClassID, &s.ExamDate, &s.StartTime, &s.DurationMinutes, &s.ExamPassword)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// QuestionInSchedule retrieves a question only if it belongs to the given
// schedule through its question group.
func (t *AttemptTx) QuestionInSchedule(ctx context.Context, questionID, scheduleID int) (*model.Question, error) {
	q := &model.Question{}
	err := t.tx.QueryRow(ctx,
		`SELECT q.id, q.group_id, q.question_text, q.question_number, COALESCE(q.correct_option_id, 0)
		 FROM questions q
		 JOIN question_groups g ON q.group_id = g.id
		 WHERE q.id = $1 AND g.schedule_id = $2`, questionID, scheduleID,
	).Scan(&q.ID, &q.GroupID, &q.QuestionText, &q.QuestionNumber, &q.CorrectOptionID)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Answer retrieves the stored answer for a question within an attempt.
func (t *AttemptTx) Answer(ctx context.Context, attemptID, questionID int) (*model.UserAnswer, error) {
	a := &model.UserAnswer{}
	err := t.tx.QueryRow(ctx,
		`SELECT id, attempt_id, question_id, selected_option_id, is_correct, correct_option_id, answered_at
		 FROM user_answers
		 WHERE attempt_id = $1 AND question_id = $2`, attemptID, questionID,
	).Scan(&a.ID, &a.AttemptID, &a.QuestionID, &a.SelectedOptionID, &a.IsCorrect, &a.CorrectOptionID, &a.AnsweredAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpsertAnswer inserts or replaces the answer for (attempt, question). The
// UNIQUE(attempt_id, question_id) constraint guarantees a single row per
// question regardless of resubmission.
func (t *AttemptTx) UpsertAnswer(ctx context.Context, ans *model.UserAnswer) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO user_answers (attempt_id, question_id, selected_option_id, is_correct, correct_option_id, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (attempt_id, question_id) DO UPDATE
		 SET selected_option_id = EXCLUDED.selected_option_id,
		     is_correct = EXCLUDED.is_correct,
		     answered_at = EXCLUDED.answered_at
		 RETURNING id`,
		ans.AttemptID, ans.QuestionID, ans.SelectedOptionID, ans.IsCorrect, ans.CorrectOptionID, ans.AnsweredAt,
	).Scan(&ans.ID)
}

// AddScore applies a signed delta to the attempt's running score.
func (t *AttemptTx) AddScore(ctx context.Context, attemptID, delta int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE scheduled_attempts SET score = score + $1 WHERE id = $2`, delta, attemptID,
	)
	return err
}

// CloseAttempt stamps end_time on an open attempt. A closed attempt is never
// reopened, so the update is guarded on end_time IS NULL.
func (t *AttemptTx) CloseAttempt(ctx context.Context, attemptID int, endTime time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE scheduled_attempts SET end_time = $1 WHERE id = $2 AND end_time IS NULL`,
		endTime, attemptID,
	)
	return err
}

// CountQuestions returns the total question count of a schedule inside the
// transaction.
func (t *AttemptTx) CountQuestions(ctx context.Context, scheduleID int) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM questions q
		 JOIN question_groups g ON q.group_id = g.id
		 WHERE g.schedule_id = $1`, scheduleID,
	).Scan(&n)
	return n, err
}

// SubjectBreakdown aggregates answer counts for an attempt, grouped under the
// schedule's subject. Returns nil when the attempt has no answers.
func (t *AttemptTx) SubjectBreakdown(ctx context.Context, attemptID int) (*model.SubjectScoreDetail, error) {
	d := &model.SubjectScoreDetail{}
	err := t.tx.QueryRow(ctx,
		`SELECT sub.id, sub.name,
		        COUNT(*) FILTER (WHERE ua.is_correct),
		        COUNT(*)
		 FROM user_answers ua
		 JOIN scheduled_attempts a ON ua.attempt_id = a.id
		 JOIN exam_schedules s ON a.schedule_id = s.id
		 JOIN subjects sub ON s.subject_id = sub.id
		 WHERE ua.attempt_id = $1
		 GROUP BY sub.id, sub.name`, attemptID,
	).Scan(&d.SubjectID, &d.SubjectName, &d.CorrectAnswers, &d.TotalAnsweredQuestions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// CreateReport inserts the immutable final report snapshot for an attempt.
func (t *AttemptTx) CreateReport(ctx context.Context, report *model.FinalReport) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO final_reports (attempt_id, subject_scores_json, final_score, time_taken_seconds)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		report.AttemptID, report.SubjectScoresJSON, report.FinalScore, report.TimeTakenSeconds,
	).Scan(&report.ID)
}

// Commit commits the transaction.
func (t *AttemptTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback aborts the transaction. Safe to defer; it is a no-op after Commit.
func (t *AttemptTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
