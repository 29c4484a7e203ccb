package repository

import (
	"context"

	"github.com/examsched/examsched-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository handles final report data access.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// GetForStudent retrieves a final report together with its attempt, scoped to
// the owning student. A report belonging to another student is
// indistinguishable from a missing one.
func (r *ReportRepository) GetForStudent(ctx context.Context, attemptID, studentID int) (*model.FinalReport, *model.ScheduledAttempt, error) {
	report := &model.FinalReport{}
	attempt := &model.ScheduledAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT fr.id, fr.attempt_id, fr.subject_scores_json, fr.final_score, fr.time_taken_seconds,
		        a.id, a.student_id, a.schedule_id, a.start_time, a.end_time, a.score
		 FROM final_reports fr
		 JOIN scheduled_attempts a ON fr.attempt_id = a.id
		 WHERE fr.attempt_id = $1 AND a.student_id = $2`, attemptID, studentID,
	).Scan(
		&report.ID, &report.AttemptID, &report.SubjectScoresJSON, &report.FinalScore, &report.TimeTakenSeconds,
		&attempt.ID, &attempt.StudentID, &attempt.ScheduleID, &attempt.StartTime, &attempt.EndTime, &attempt.Score,
	)
	if err != nil {
		return nil, nil, err
	}
	return report, attempt, nil
}
