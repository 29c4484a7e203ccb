package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/examsched/examsched-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// fakeDB backs the exam service fakes with in-memory state. A single mutex
// stands in for the attempt row lock, so transactions against the same
// attempt serialize exactly like SELECT ... FOR UPDATE does.
type fakeDB struct {
	mu sync.Mutex

	students  map[string]*model.Student
	schedules map[int]*model.ExamSchedule
	groups    map[int][]model.GroupForStudent
	counts    map[int]int

	attempts      map[int]*model.ScheduledAttempt
	attemptByPair map[[2]int]int
	answers       map[[2]int]*model.UserAnswer
	reports       map[int]*model.FinalReport

	// questionSchedule maps question ID to its schedule; correctOption maps
	// question ID to the right option.
	questionSchedule map[int]int
	correctOption    map[int]int

	nextAttemptID int
	nextAnswerID  int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		students:         make(map[string]*model.Student),
		schedules:        make(map[int]*model.ExamSchedule),
		groups:           make(map[int][]model.GroupForStudent),
		counts:           make(map[int]int),
		attempts:         make(map[int]*model.ScheduledAttempt),
		attemptByPair:    make(map[[2]int]int),
		answers:          make(map[[2]int]*model.UserAnswer),
		reports:          make(map[int]*model.FinalReport),
		questionSchedule: make(map[int]int),
		correctOption:    make(map[int]int),
		nextAttemptID:    1,
		nextAnswerID:     1,
	}
}

func (db *fakeDB) GetByRegNumber(_ context.Context, regNumber string) (*model.Student, error) {
	s, ok := db.students[regNumber]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (db *fakeDB) GetByID(_ context.Context, id int) (*model.ExamSchedule, error) {
	s, ok := db.schedules[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (db *fakeDB) FindForLogin(_ context.Context, examPassword string, classID int, examDate time.Time) (*model.ExamSchedule, error) {
	for _, s := range db.schedules {
		if s.ExamPassword == examPassword && s.ClassID == classID && s.IsOnDate(examDate) {
			return s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (db *fakeDB) CountQuestions(_ context.Context, scheduleID int) (int, error) {
	return db.counts[scheduleID], nil
}

func (db *fakeDB) CountGroups(_ context.Context, scheduleID int) (int, error) {
	return len(db.groups[scheduleID]), nil
}

func (db *fakeDB) PayloadGroups(_ context.Context, scheduleID int) ([]model.GroupForStudent, error) {
	return db.groups[scheduleID], nil
}

func (db *fakeDB) GetByStudentAndSchedule(_ context.Context, studentID, scheduleID int) (*model.ScheduledAttempt, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	id, ok := db.attemptByPair[[2]int{studentID, scheduleID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *db.attempts[id]
	return &cp, nil
}

func (db *fakeDB) Create(_ context.Context, a *model.ScheduledAttempt) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	key := [2]int{a.StudentID, a.ScheduleID}
	if _, exists := db.attemptByPair[key]; exists {
		return pgx.ErrNoRows
	}
	a.ID = db.nextAttemptID
	db.nextAttemptID++
	cp := *a
	db.attempts[a.ID] = &cp
	db.attemptByPair[key] = a.ID
	return nil
}

func (db *fakeDB) GetForStudent(_ context.Context, attemptID, studentID int) (*model.FinalReport, *model.ScheduledAttempt, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	report, ok := db.reports[attemptID]
	if !ok {
		return nil, nil, pgx.ErrNoRows
	}
	attempt := db.attempts[attemptID]
	if attempt == nil || attempt.StudentID != studentID {
		return nil, nil, pgx.ErrNoRows
	}
	rc, ac := *report, *attempt
	return &rc, &ac, nil
}

// fakeTx emulates the attempt transaction. The row lock is taken lazily by
// AttemptForUpdate and released on Commit or the first Rollback.
type fakeTx struct {
	db     *fakeDB
	locked bool
	done   bool
}

func (db *fakeDB) Begin(_ context.Context) (AttemptTx, error) {
	return &fakeTx{db: db}, nil
}

func (t *fakeTx) AttemptForUpdate(_ context.Context, attemptID int) (*model.ScheduledAttempt, error) {
	t.db.mu.Lock()
	t.locked = true
	a, ok := t.db.attempts[attemptID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (t *fakeTx) Schedule(_ context.Context, scheduleID int) (*model.ExamSchedule, error) {
	s, ok := t.db.schedules[scheduleID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (t *fakeTx) QuestionInSchedule(_ context.Context, questionID, scheduleID int) (*model.Question, error) {
	sid, ok := t.db.questionSchedule[questionID]
	if !ok || sid != scheduleID {
		return nil, pgx.ErrNoRows
	}
	return &model.Question{ID: questionID, CorrectOptionID: t.db.correctOption[questionID]}, nil
}

func (t *fakeTx) Answer(_ context.Context, attemptID, questionID int) (*model.UserAnswer, error) {
	a, ok := t.db.answers[[2]int{attemptID, questionID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (t *fakeTx) UpsertAnswer(_ context.Context, ans *model.UserAnswer) error {
	key := [2]int{ans.AttemptID, ans.QuestionID}
	if existing, ok := t.db.answers[key]; ok {
		ans.ID = existing.ID
	} else {
		ans.ID = t.db.nextAnswerID
		t.db.nextAnswerID++
	}
	cp := *ans
	t.db.answers[key] = &cp
	return nil
}

func (t *fakeTx) AddScore(_ context.Context, attemptID, delta int) error {
	t.db.attempts[attemptID].Score += delta
	return nil
}

func (t *fakeTx) CloseAttempt(_ context.Context, attemptID int, endTime time.Time) error {
	a := t.db.attempts[attemptID]
	if a.EndTime == nil {
		et := endTime
		a.EndTime = &et
	}
	return nil
}

func (t *fakeTx) CountQuestions(_ context.Context, scheduleID int) (int, error) {
	return t.db.counts[scheduleID], nil
}

func (t *fakeTx) SubjectBreakdown(_ context.Context, attemptID int) (*model.SubjectScoreDetail, error) {
	var detail *model.SubjectScoreDetail
	for key, ans := range t.db.answers {
		if key[0] != attemptID {
			continue
		}
		if detail == nil {
			schedule := t.db.schedules[t.db.attempts[attemptID].ScheduleID]
			detail = &model.SubjectScoreDetail{
				SubjectID:   schedule.SubjectID,
				SubjectName: schedule.SubjectName,
			}
		}
		detail.TotalAnsweredQuestions++
		if ans.IsCorrect {
			detail.CorrectAnswers++
		}
	}
	return detail, nil
}

func (t *fakeTx) CreateReport(_ context.Context, report *model.FinalReport) error {
	if _, exists := t.db.reports[report.AttemptID]; exists {
		return errors.New("duplicate report")
	}
	report.ID = len(t.db.reports) + 1
	cp := *report
	t.db.reports[report.AttemptID] = &cp
	return nil
}

func (t *fakeTx) Commit(_ context.Context) error {
	if t.locked {
		t.db.mu.Unlock()
		t.locked = false
	}
	t.done = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	if t.locked {
		t.db.mu.Unlock()
		t.locked = false
	}
	t.done = true
	return nil
}

// testClock is the frozen reference time the fixtures are built around:
// exam day 2026-03-10, window 08:00-09:00 local.
var testClock = time.Date(2026, 3, 10, 8, 30, 0, 0, time.Local)

func newTestService(db *fakeDB) *ExamService {
	svc := NewExamService(db, db, db, db.Begin, db, nil, zerolog.Nop())
	svc.now = func() time.Time { return testClock }
	return svc
}

// seedExam sets up one class-10 student, one schedule with five questions
// (question IDs 1..5, correct option ID = question ID*10), and returns the
// schedule ID.
func seedExam(db *fakeDB) {
	db.students["S-1001"] = &model.Student{ID: 1, FullName: "Dewi Anggraini", RegNumber: "S-1001", ClassID: 10}
	db.schedules[100] = &model.ExamSchedule{
		ID:              100,
		SubjectID:       7,
		SubjectName:     "Mathematics",
		ClassID:         10,
		ExamDate:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local),
		StartTime:       "08:00:00",
		DurationMinutes: 60,
		ExamPassword:    "math-password",
	}
	db.counts[100] = 5
	db.groups[100] = []model.GroupForStudent{
		{ID: 1, InstructionText: "Answer all questions.", DisplayOrder: 1},
	}
	for q := 1; q <= 5; q++ {
		db.questionSchedule[q] = 100
		db.correctOption[q] = q * 10
	}
}

func TestAuthenticateExamLogin(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	svc := newTestService(db)
	ctx := context.Background()

	student, schedule, err := svc.AuthenticateExamLogin(ctx, "S-1001", "math-password")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if student.ID != 1 || schedule.ID != 100 {
		t.Fatalf("got student %d schedule %d, want 1 and 100", student.ID, schedule.ID)
	}

	if _, _, err := svc.AuthenticateExamLogin(ctx, "nobody", "math-password"); !errors.Is(err, ErrInvalidExamCredentials) {
		t.Errorf("unknown student: got %v, want ErrInvalidExamCredentials", err)
	}
	if _, _, err := svc.AuthenticateExamLogin(ctx, "S-1001", "wrong"); !errors.Is(err, ErrInvalidExamCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidExamCredentials", err)
	}

	// A student in another class must not match the schedule even with the
	// right password.
	db.students["S-2001"] = &model.Student{ID: 2, FullName: "Bima Putra", RegNumber: "S-2001", ClassID: 11}
	if _, _, err := svc.AuthenticateExamLogin(ctx, "S-2001", "math-password"); !errors.Is(err, ErrInvalidExamCredentials) {
		t.Errorf("wrong class: got %v, want ErrInvalidExamCredentials", err)
	}

	// Before the window opens the failure is distinct.
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 7, 30, 0, 0, time.Local) }
	if _, _, err := svc.AuthenticateExamLogin(ctx, "S-1001", "math-password"); !errors.Is(err, ErrExamNotStarted) {
		t.Errorf("early login: got %v, want ErrExamNotStarted", err)
	}
}

func TestStartCreatesAndResumes(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	svc := newTestService(db)
	ctx := context.Background()

	payload, err := svc.Start(ctx, 100, 1, 10)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if payload.AttemptID == 0 || payload.TotalQuestions != 5 {
		t.Fatalf("bad payload: attempt %d total %d", payload.AttemptID, payload.TotalQuestions)
	}
	if len(payload.QuestionGroups) != 1 {
		t.Fatalf("got %d groups, want 1", len(payload.QuestionGroups))
	}

	// Second start resumes the same attempt with its original start time.
	again, err := svc.Start(ctx, 100, 1, 10)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if again.AttemptID != payload.AttemptID {
		t.Fatalf("resume created new attempt %d, want %d", again.AttemptID, payload.AttemptID)
	}

	// A closed attempt cannot be restarted.
	et := testClock
	db.attempts[payload.AttemptID].EndTime = &et
	if _, err := svc.Start(ctx, 100, 1, 10); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("restart after close: got %v, want ErrAlreadyCompleted", err)
	}
}

func TestStartWindowChecks(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	svc := newTestService(db)
	ctx := context.Background()

	if _, err := svc.Start(ctx, 999, 1, 10); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("missing schedule: got %v, want ErrScheduleNotFound", err)
	}
	if _, err := svc.Start(ctx, 100, 1, 11); !errors.Is(err, ErrWrongClass) {
		t.Errorf("wrong class: got %v, want ErrWrongClass", err)
	}

	svc.now = func() time.Time { return time.Date(2026, 3, 11, 8, 30, 0, 0, time.Local) }
	if _, err := svc.Start(ctx, 100, 1, 10); !errors.Is(err, ErrExamNotToday) {
		t.Errorf("wrong day: got %v, want ErrExamNotToday", err)
	}

	svc.now = func() time.Time { return time.Date(2026, 3, 10, 7, 0, 0, 0, time.Local) }
	if _, err := svc.Start(ctx, 100, 1, 10); !errors.Is(err, ErrExamNotStarted) {
		t.Errorf("before window: got %v, want ErrExamNotStarted", err)
	}

	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local) }
	if _, err := svc.Start(ctx, 100, 1, 10); !errors.Is(err, ErrExamElapsed) {
		t.Errorf("after window: got %v, want ErrExamElapsed", err)
	}

	// The attempt row was still created by the failed early start, so the
	// countdown is anchored to the first start call.
	if len(db.attempts) != 1 {
		t.Errorf("got %d attempts, want 1 created despite window failures", len(db.attempts))
	}
}

func TestStartWithoutQuestions(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	db.counts[100] = 0
	svc := newTestService(db)

	if _, err := svc.Start(context.Background(), 100, 1, 10); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("got %v, want ErrNoQuestions", err)
	}
}

func TestSubmitAnswerScoring(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	svc := newTestService(db)
	ctx := context.Background()

	payload, err := svc.Start(ctx, 100, 1, 10)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	attemptID := payload.AttemptID

	// Correct answer: score 1.
	res, err := svc.SubmitAnswer(ctx, attemptID, 1, 1, 10)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !res.IsCorrect || res.CorrectOptionID != 10 {
		t.Fatalf("bad result: %+v", res)
	}
	if got := db.attempts[attemptID].Score; got != 1 {
		t.Fatalf("score = %d, want 1", got)
	}

	// Changed to wrong: score back to 0, row replaced not duplicated.
	res, err = svc.SubmitAnswer(ctx, attemptID, 1, 1, 11)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if res.IsCorrect {
		t.Fatal("wrong answer reported correct")
	}
	if got := db.attempts[attemptID].Score; got != 0 {
		t.Fatalf("score = %d, want 0 after flip to wrong", got)
	}
	if len(db.answers) != 1 {
		t.Fatalf("got %d answer rows, want 1", len(db.answers))
	}

	// Back to correct: score 1 again.
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 1, 10); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	// Same answer again: net zero.
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 1, 10); err != nil {
		t.Fatalf("idempotent resubmit failed: %v", err)
	}
	if got := db.attempts[attemptID].Score; got != 1 {
		t.Fatalf("score = %d, want 1", got)
	}

	// Question from another exam is rejected.
	db.questionSchedule[99] = 200
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 99, 10); !errors.Is(err, ErrQuestionNotInExam) {
		t.Errorf("foreign question: got %v, want ErrQuestionNotInExam", err)
	}

	// Another student's attempt looks like a missing one.
	if _, err := svc.SubmitAnswer(ctx, attemptID, 2, 1, 10); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("foreign attempt: got %v, want ErrAttemptNotFound", err)
	}
}

func TestSubmitAnswerConcurrent(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	svc := newTestService(db)
	ctx := context.Background()

	payload, err := svc.Start(ctx, 100, 1, 10)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	attemptID := payload.AttemptID

	// Two concurrent correct submissions for the same question must leave
	// one answer row and a score of exactly 1.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 3, 30); err != nil {
				t.Errorf("concurrent submit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(db.answers) != 1 {
		t.Fatalf("got %d answer rows, want 1", len(db.answers))
	}
	if got := db.attempts[attemptID].Score; got != 1 {
		t.Fatalf("score = %d, want 1", got)
	}
}

func TestSubmitAnswerExpiryFinalizes(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	svc := newTestService(db)
	ctx := context.Background()

	payload, err := svc.Start(ctx, 100, 1, 10)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	attemptID := payload.AttemptID

	// Two correct answers before the deadline.
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 1, 10); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 2, 20); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// The next submission lands past the 60 minute limit.
	svc.now = func() time.Time { return testClock.Add(61 * time.Minute) }
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 3, 30); !errors.Is(err, ErrTimeLimitReached) {
		t.Fatalf("got %v, want ErrTimeLimitReached", err)
	}

	if db.attempts[attemptID].EndTime == nil {
		t.Fatal("attempt not closed on expiry")
	}
	if len(db.answers) != 2 {
		t.Fatalf("late answer was recorded: %d rows", len(db.answers))
	}

	// The report was written during the auto-close, so the student can read
	// their result immediately.
	result, err := svc.Report(ctx, attemptID, 1)
	if err != nil {
		t.Fatalf("report after expiry failed: %v", err)
	}
	if result.FinalScore != 2 || result.TotalQuestions != 5 {
		t.Fatalf("score %d/%d, want 2/5", result.FinalScore, result.TotalQuestions)
	}
	if result.PercentageScore != 40.0 {
		t.Errorf("percentage = %v, want 40.0", result.PercentageScore)
	}
	if result.TimeTakenSeconds != 3600 {
		t.Errorf("elapsed = %d, want clamped 3600", result.TimeTakenSeconds)
	}
	if !result.IsTimeUpSubmission {
		t.Error("expiry report not flagged as time-up")
	}

	// Finishing afterwards is a state error, and further answers are
	// rejected as concluded.
	if _, err := svc.Finish(ctx, attemptID, 1); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("finish after expiry: got %v, want ErrAlreadyFinalized", err)
	}
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 4, 40); !errors.Is(err, ErrAttemptConcluded) {
		t.Errorf("submit after close: got %v, want ErrAttemptConcluded", err)
	}
}

func TestFinish(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	svc := newTestService(db)
	ctx := context.Background()

	payload, err := svc.Start(ctx, 100, 1, 10)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	attemptID := payload.AttemptID

	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 1, 10); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 2, 21); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	svc.now = func() time.Time { return testClock.Add(20 * time.Minute) }
	result, err := svc.Finish(ctx, attemptID, 1)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if result.FinalScore != 1 || result.TotalQuestions != 5 {
		t.Fatalf("score %d/%d, want 1/5", result.FinalScore, result.TotalQuestions)
	}
	if result.TimeTakenSeconds != 1200 {
		t.Errorf("elapsed = %d, want 1200", result.TimeTakenSeconds)
	}
	if result.IsTimeUpSubmission {
		t.Error("in-window finish flagged as time-up")
	}
	if result.PercentageScore != 20.0 {
		t.Errorf("percentage = %v, want 20.0", result.PercentageScore)
	}
	if result.SubjectReport.CorrectAnswers != 1 || result.SubjectReport.TotalAnsweredQuestions != 2 {
		t.Errorf("subject breakdown = %+v, want 1/2", result.SubjectReport)
	}
	if result.SubjectReport.SubjectPercentage != 50.0 {
		t.Errorf("subject percentage = %v, want 50.0", result.SubjectReport.SubjectPercentage)
	}

	if _, err := svc.Finish(ctx, attemptID, 1); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("double finish: got %v, want ErrAlreadyFinalized", err)
	}
}

func TestFinishClampsElapsed(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	svc := newTestService(db)
	ctx := context.Background()

	payload, err := svc.Start(ctx, 100, 1, 10)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	svc.now = func() time.Time { return testClock.Add(75 * time.Minute) }
	result, err := svc.Finish(ctx, payload.AttemptID, 1)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if result.TimeTakenSeconds != 3600 {
		t.Errorf("elapsed = %d, want clamped to 3600", result.TimeTakenSeconds)
	}
	if !result.IsTimeUpSubmission {
		t.Error("over-limit finish not flagged as time-up")
	}

	// Finishing with zero answers still produces a zeroed subject report.
	if result.SubjectReport.SubjectID != 7 || result.SubjectReport.TotalAnsweredQuestions != 0 {
		t.Errorf("empty breakdown = %+v, want zeros for subject 7", result.SubjectReport)
	}
}

func TestReport(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	db.counts[100] = 3
	for q := 4; q <= 5; q++ {
		delete(db.questionSchedule, q)
	}
	svc := newTestService(db)
	ctx := context.Background()

	payload, err := svc.Start(ctx, 100, 1, 10)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	attemptID := payload.AttemptID

	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 1, 10); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 2, 21); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, attemptID, 1, 3, 31); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	svc.now = func() time.Time { return testClock.Add(10 * time.Minute) }
	if _, err := svc.Finish(ctx, attemptID, 1); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	result, err := svc.Report(ctx, attemptID, 1)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	// The overall percentage stays unrounded while the subject percentage
	// is rounded to two decimals.
	wantPct := 1.0 / 3.0 * 100
	if result.PercentageScore != wantPct {
		t.Errorf("percentage = %v, want unrounded %v", result.PercentageScore, wantPct)
	}
	if result.SubjectReport.SubjectPercentage != 33.33 {
		t.Errorf("subject percentage = %v, want 33.33", result.SubjectReport.SubjectPercentage)
	}
	if result.TimeTakenSeconds != 600 {
		t.Errorf("elapsed = %d, want 600", result.TimeTakenSeconds)
	}
	if result.IsTimeUpSubmission {
		t.Error("in-window report flagged as time-up")
	}

	// Reports are owner-scoped and absent for unknown attempts.
	if _, err := svc.Report(ctx, attemptID, 2); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("foreign report: got %v, want ErrReportNotFound", err)
	}
	if _, err := svc.Report(ctx, 999, 1); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("missing report: got %v, want ErrReportNotFound", err)
	}
}

func TestDashboard(t *testing.T) {
	db := newFakeDB()
	seedExam(db)
	svc := newTestService(db)
	ctx := context.Background()

	dash, err := svc.Dashboard(ctx, 100, 10)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if dash.SubjectName != "Mathematics" || dash.TotalQuestions != 5 || dash.NumberOfGroups != 1 {
		t.Fatalf("bad dashboard: %+v", dash)
	}

	if _, err := svc.Dashboard(ctx, 100, 11); !errors.Is(err, ErrWrongClass) {
		t.Errorf("wrong class: got %v, want ErrWrongClass", err)
	}
}
