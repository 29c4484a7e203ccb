package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/examsched/examsched-backend/internal/config"
	"github.com/examsched/examsched-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Exam lifecycle errors. Handlers map these to HTTP statuses and error codes.
var (
	ErrInvalidExamCredentials = errors.New("invalid registration number or exam password")
	ErrExamNotStarted         = errors.New("exam has not yet started")
	ErrExamElapsed            = errors.New("exam period has elapsed")
	ErrExamNotToday           = errors.New("exam is not scheduled for today")
	ErrScheduleNotFound       = errors.New("exam schedule not found")
	ErrWrongClass             = errors.New("exam is not scheduled for this class")
	ErrNoQuestions            = errors.New("no questions for this exam schedule")
	ErrAlreadyCompleted       = errors.New("exam already completed and submitted")
	ErrAttemptNotFound        = errors.New("exam attempt not found")
	ErrAttemptConcluded       = errors.New("exam already concluded")
	ErrTimeLimitReached       = errors.New("time limit reached, answer not recorded")
	ErrQuestionNotInExam      = errors.New("question does not belong to this exam")
	ErrAlreadyFinalized       = errors.New("exam already finalized")
	ErrReportNotFound         = errors.New("exam report not found")
	ErrNotFinished            = errors.New("exam not yet finished")
)

// StudentReader is the student lookup the exam engine needs.
type StudentReader interface {
	GetByRegNumber(ctx context.Context, regNumber string) (*model.Student, error)
}

// ScheduleReader is the read-only schedule access the exam engine needs.
type ScheduleReader interface {
	GetByID(ctx context.Context, id int) (*model.ExamSchedule, error)
	FindForLogin(ctx context.Context, examPassword string, classID int, examDate time.Time) (*model.ExamSchedule, error)
	CountQuestions(ctx context.Context, scheduleID int) (int, error)
	CountGroups(ctx context.Context, scheduleID int) (int, error)
	PayloadGroups(ctx context.Context, scheduleID int) ([]model.GroupForStudent, error)
}

// AttemptStore creates and retrieves attempt rows outside a transaction.
type AttemptStore interface {
	GetByStudentAndSchedule(ctx context.Context, studentID, scheduleID int) (*model.ScheduledAttempt, error)
	Create(ctx context.Context, a *model.ScheduledAttempt) error
}

// AttemptTx is the transactional unit of work submit and finish run inside.
// AttemptForUpdate locks the attempt row, serializing concurrent mutation of
// the same attempt for the life of the transaction.
type AttemptTx interface {
	AttemptForUpdate(ctx context.Context, attemptID int) (*model.ScheduledAttempt, error)
	Schedule(ctx context.Context, scheduleID int) (*model.ExamSchedule, error)
	QuestionInSchedule(ctx context.Context, questionID, scheduleID int) (*model.Question, error)
	Answer(ctx context.Context, attemptID, questionID int) (*model.UserAnswer, error)
	UpsertAnswer(ctx context.Context, ans *model.UserAnswer) error
	AddScore(ctx context.Context, attemptID, delta int) error
	CloseAttempt(ctx context.Context, attemptID int, endTime time.Time) error
	CountQuestions(ctx context.Context, scheduleID int) (int, error)
	SubjectBreakdown(ctx context.Context, attemptID int) (*model.SubjectScoreDetail, error)
	CreateReport(ctx context.Context, report *model.FinalReport) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BeginAttemptTx opens an AttemptTx.
type BeginAttemptTx func(ctx context.Context) (AttemptTx, error)

// ReportReader retrieves final reports scoped to their owning student.
type ReportReader interface {
	GetForStudent(ctx context.Context, attemptID, studentID int) (*model.FinalReport, *model.ScheduledAttempt, error)
}

// payloadCacheTTL bounds staleness of the cached question payload. Authoring
// is expected to stop before the exam window opens, so a short TTL is enough
// to absorb the login stampede at exam start.
const payloadCacheTTL = 5 * time.Minute

// ExamService implements the exam attempt lifecycle: login, start/resume,
// answer submission, finish, and report retrieval.
type ExamService struct {
	students  StudentReader
	schedules ScheduleReader
	attempts  AttemptStore
	begin     BeginAttemptTx
	reports   ReportReader
	rdb       *redis.Client
	log       zerolog.Logger

	now func() time.Time
}

// NewExamService creates a new ExamService. rdb may be nil, which disables
// payload caching.
func NewExamService(
	students StudentReader,
	schedules ScheduleReader,
	attempts AttemptStore,
	begin BeginAttemptTx,
	reports ReportReader,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		students:  students,
		schedules: schedules,
		attempts:  attempts,
		begin:     begin,
		reports:   reports,
		rdb:       rdb,
		log:       log.With().Str("service", "exam").Logger(),
		now:       time.Now,
	}
}

// AuthenticateExamLogin resolves a registration number and exam password to a
// (student, schedule) pair. The password is matched only against schedules
// for the student's class on today's date. A wrong registration number, a
// wrong password, a wrong class, and a wrong day are deliberately
// indistinguishable so the login form leaks nothing about which part failed.
// A login before the window opens is the one distinct failure.
func (s *ExamService) AuthenticateExamLogin(ctx context.Context, regNumber, examPassword string) (*model.Student, *model.ExamSchedule, error) {
	student, err := s.students.GetByRegNumber(ctx, regNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidExamCredentials
		}
		return nil, nil, fmt.Errorf("looking up student: %w", err)
	}

	now := s.now()
	schedule, err := s.schedules.FindForLogin(ctx, examPassword, student.ClassID, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidExamCredentials
		}
		return nil, nil, fmt.Errorf("looking up schedule: %w", err)
	}

	if now.Before(schedule.StartsAt()) {
		return nil, nil, ErrExamNotStarted
	}

	return student, schedule, nil
}

// Start begins a new attempt or resumes the open one, and returns the full
// question payload. The attempt row is created before the window checks run,
// so the attempt's own countdown starts even if this request then fails; a
// retry within the window resumes that same attempt with its original
// StartTime.
func (s *ExamService) Start(ctx context.Context, scheduleID, studentID, classID int) (*model.ExamPayload, error) {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	if schedule.ClassID != classID {
		return nil, ErrWrongClass
	}

	now := s.now()
	attempt, err := s.attempts.GetByStudentAndSchedule(ctx, studentID, scheduleID)
	switch {
	case err == nil:
		if !attempt.Open() {
			return nil, ErrAlreadyCompleted
		}
	case errors.Is(err, pgx.ErrNoRows):
		attempt = &model.ScheduledAttempt{
			StudentID:  studentID,
			ScheduleID: scheduleID,
			StartTime:  now,
		}
		if err := s.attempts.Create(ctx, attempt); err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("creating attempt: %w", err)
			}
			// A concurrent request created the row first; resume it.
			attempt, err = s.attempts.GetByStudentAndSchedule(ctx, studentID, scheduleID)
			if err != nil {
				return nil, fmt.Errorf("resuming attempt: %w", err)
			}
			if !attempt.Open() {
				return nil, ErrAlreadyCompleted
			}
		} else {
			s.log.Info().Int("attempt_id", attempt.ID).Int("student_id", studentID).
				Int("schedule_id", scheduleID).Msg("attempt created")
		}
	default:
		return nil, fmt.Errorf("loading attempt: %w", err)
	}

	if !schedule.IsOnDate(now) {
		return nil, ErrExamNotToday
	}
	if now.Before(schedule.StartsAt()) {
		return nil, ErrExamNotStarted
	}
	if now.After(schedule.EndsAt()) {
		return nil, ErrExamElapsed
	}

	total, err := s.schedules.CountQuestions(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("counting questions: %w", err)
	}
	if total == 0 {
		return nil, ErrNoQuestions
	}

	groups, err := s.payloadGroups(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("assembling payload: %w", err)
	}

	return &model.ExamPayload{
		AttemptID:       attempt.ID,
		ScheduleID:      scheduleID,
		SubjectName:     schedule.SubjectName,
		DurationMinutes: schedule.DurationMinutes,
		TotalQuestions:  total,
		QuestionGroups:  groups,
	}, nil
}

// SubmitAnswer records or replaces the answer for one question of an open
// attempt and keeps the running score consistent. Correctness is graded
// against the question's correct option as of now and snapshotted on the
// answer row. If the attempt's time limit has passed, the attempt is
// finalized instead and the answer is rejected with ErrTimeLimitReached.
func (s *ExamService) SubmitAnswer(ctx context.Context, attemptID, studentID, questionID, selectedOptionID int) (*model.AnswerResult, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	attempt, err := tx.AttemptForUpdate(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("locking attempt: %w", err)
	}
	// An attempt belonging to another student looks exactly like a missing one.
	if attempt.StudentID != studentID {
		return nil, ErrAttemptNotFound
	}
	if !attempt.Open() {
		return nil, ErrAttemptConcluded
	}

	schedule, err := tx.Schedule(ctx, attempt.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}

	now := s.now()
	if now.After(attempt.ExpiresAt(schedule.DurationMinutes)) {
		// Lazy expiry: the deadline passed between submissions. Close and
		// finalize here so the student's report is immediately retrievable,
		// then reject this answer.
		if err := s.finalize(ctx, tx, attempt, schedule, now); err != nil {
			return nil, fmt.Errorf("finalizing expired attempt: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("committing expiry: %w", err)
		}
		s.log.Info().Int("attempt_id", attemptID).Msg("attempt auto-closed on expiry")
		return nil, ErrTimeLimitReached
	}

	question, err := tx.QuestionInSchedule(ctx, questionID, attempt.ScheduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotInExam
		}
		return nil, fmt.Errorf("loading question: %w", err)
	}

	isCorrect := selectedOptionID == question.CorrectOptionID

	// Reverse the prior answer's score contribution, then apply the new one.
	// Resubmitting the same choice nets to zero.
	delta := 0
	prior, err := tx.Answer(ctx, attemptID, questionID)
	switch {
	case err == nil:
		if prior.IsCorrect {
			delta--
		}
	case errors.Is(err, pgx.ErrNoRows):
		// First answer for this question.
	default:
		return nil, fmt.Errorf("loading prior answer: %w", err)
	}
	if isCorrect {
		delta++
	}

	ans := &model.UserAnswer{
		AttemptID:        attemptID,
		QuestionID:       questionID,
		SelectedOptionID: selectedOptionID,
		IsCorrect:        isCorrect,
		CorrectOptionID:  question.CorrectOptionID,
		AnsweredAt:       now,
	}
	if err := tx.UpsertAnswer(ctx, ans); err != nil {
		return nil, fmt.Errorf("saving answer: %w", err)
	}
	if delta != 0 {
		if err := tx.AddScore(ctx, attemptID, delta); err != nil {
			return nil, fmt.Errorf("updating score: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing answer: %w", err)
	}

	return &model.AnswerResult{
		IsCorrect:            isCorrect,
		CorrectOptionID:      question.CorrectOptionID,
		UserSelectedOptionID: selectedOptionID,
	}, nil
}

// Finish closes an open attempt, persists its final report, and returns the
// result. Elapsed time is clamped to the schedule duration; an over-limit
// finish is flagged as a time-up submission but still succeeds.
func (s *ExamService) Finish(ctx context.Context, attemptID, studentID int) (*model.ExamResult, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	attempt, err := tx.AttemptForUpdate(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("locking attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrAttemptNotFound
	}
	if !attempt.Open() {
		return nil, ErrAlreadyFinalized
	}

	schedule, err := tx.Schedule(ctx, attempt.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}

	now := s.now()
	report, detail, isTimeUp, err := s.writeReport(ctx, tx, attempt, schedule, now)
	if err != nil {
		return nil, err
	}

	total, err := tx.CountQuestions(ctx, attempt.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("counting questions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing finish: %w", err)
	}

	s.log.Info().Int("attempt_id", attemptID).Int("final_score", attempt.Score).
		Bool("is_time_up", isTimeUp).Msg("attempt finished")

	return buildResult(attempt, report, detail, total, isTimeUp), nil
}

// Report returns the finalized result of a closed attempt, reconstructed from
// the persisted report snapshot.
func (s *ExamService) Report(ctx context.Context, attemptID, studentID int) (*model.ExamResult, error) {
	report, attempt, err := s.reports.GetForStudent(ctx, attemptID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("loading report: %w", err)
	}
	if attempt.EndTime == nil {
		return nil, ErrNotFinished
	}

	schedule, err := s.schedules.GetByID(ctx, attempt.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	total, err := s.schedules.CountQuestions(ctx, attempt.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("counting questions: %w", err)
	}

	var detail model.SubjectScoreDetail
	if err := json.Unmarshal([]byte(report.SubjectScoresJSON), &detail); err != nil {
		return nil, fmt.Errorf("decoding subject scores: %w", err)
	}

	// Recomputed from the stored elapsed time, not re-snapshotted, so the
	// flag survives schedule edits no better and no worse than the elapsed
	// time itself does.
	isTimeUp := report.TimeTakenSeconds >= schedule.DurationMinutes*60

	return buildResult(attempt, report, &detail, total, isTimeUp), nil
}

// Dashboard returns the schedule summary for a logged-in student.
func (s *ExamService) Dashboard(ctx context.Context, scheduleID, classID int) (*model.ScheduleDashboard, error) {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	if schedule.ClassID != classID {
		return nil, ErrWrongClass
	}

	groups, err := s.schedules.CountGroups(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("counting groups: %w", err)
	}
	total, err := s.schedules.CountQuestions(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("counting questions: %w", err)
	}

	return &model.ScheduleDashboard{
		ID:              schedule.ID,
		SubjectID:       schedule.SubjectID,
		SubjectName:     schedule.SubjectName,
		ClassID:         schedule.ClassID,
		ExamDate:        schedule.ExamDate,
		StartTime:       schedule.StartTime,
		DurationMinutes: schedule.DurationMinutes,
		NumberOfGroups:  groups,
		TotalQuestions:  total,
	}, nil
}

// finalize closes an expired attempt and writes its report in the current
// transaction.
func (s *ExamService) finalize(ctx context.Context, tx AttemptTx, attempt *model.ScheduledAttempt, schedule *model.ExamSchedule, now time.Time) error {
	_, _, _, err := s.writeReport(ctx, tx, attempt, schedule, now)
	return err
}

// writeReport closes the attempt and persists the report snapshot. The
// caller still owns the transaction.
func (s *ExamService) writeReport(ctx context.Context, tx AttemptTx, attempt *model.ScheduledAttempt, schedule *model.ExamSchedule, now time.Time) (*model.FinalReport, *model.SubjectScoreDetail, bool, error) {
	elapsed := int(now.Sub(attempt.StartTime).Seconds())
	limit := schedule.DurationMinutes * 60
	isTimeUp := elapsed >= limit
	if isTimeUp {
		elapsed = limit
	}

	if err := tx.CloseAttempt(ctx, attempt.ID, now); err != nil {
		return nil, nil, false, fmt.Errorf("closing attempt: %w", err)
	}

	detail, err := tx.SubjectBreakdown(ctx, attempt.ID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("aggregating answers: %w", err)
	}
	if detail == nil {
		// No answers were submitted; report zeros under the exam's subject.
		detail = &model.SubjectScoreDetail{
			SubjectID:   schedule.SubjectID,
			SubjectName: schedule.SubjectName,
		}
	}
	detail.ComputePercentage()

	raw, err := json.Marshal(detail)
	if err != nil {
		return nil, nil, false, fmt.Errorf("encoding subject scores: %w", err)
	}

	report := &model.FinalReport{
		AttemptID:         attempt.ID,
		SubjectScoresJSON: string(raw),
		FinalScore:        attempt.Score,
		TimeTakenSeconds:  elapsed,
	}
	if err := tx.CreateReport(ctx, report); err != nil {
		return nil, nil, false, fmt.Errorf("creating report: %w", err)
	}
	return report, detail, isTimeUp, nil
}

// payloadGroups returns the schedule's question payload, served from Redis
// when possible.
func (s *ExamService) payloadGroups(ctx context.Context, scheduleID int) ([]model.GroupForStudent, error) {
	if s.rdb == nil {
		return s.schedules.PayloadGroups(ctx, scheduleID)
	}

	key := config.CacheKey.SchedulePayloadKey(scheduleID)
	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var groups []model.GroupForStudent
		if err := json.Unmarshal([]byte(cached), &groups); err == nil {
			return groups, nil
		}
		// Corrupt cache entry; fall through and rebuild.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Int("schedule_id", scheduleID).Msg("payload cache read failed")
	}

	groups, err := s.schedules.PayloadGroups(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(groups); err == nil {
		if err := s.rdb.Set(ctx, key, raw, payloadCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Int("schedule_id", scheduleID).Msg("payload cache write failed")
		}
	}
	return groups, nil
}

func buildResult(attempt *model.ScheduledAttempt, report *model.FinalReport, detail *model.SubjectScoreDetail, total int, isTimeUp bool) *model.ExamResult {
	pct := 0.0
	if total > 0 {
		pct = float64(report.FinalScore) / float64(total) * 100
	}
	return &model.ExamResult{
		AttemptID:          attempt.ID,
		FinalScore:         report.FinalScore,
		TotalQuestions:     total,
		PercentageScore:    pct,
		TimeTakenSeconds:   report.TimeTakenSeconds,
		IsTimeUpSubmission: isTimeUp,
		SubjectReport:      *detail,
	}
}
