package model

import "time"

// ScheduledAttempt is one student's run at one scheduled exam instance.
//
// Lifecycle: created with a null EndTime (open), closed exactly once by an
// explicit finish or by expiry detected during an answer submission. EndTime
// is monotonic: once set it never reverts and never changes again. Score is
// maintained incrementally by the answer recorder.
type ScheduledAttempt struct {
	ID         int        `json:"id"`
	StudentID  int        `json:"student_id"`
	ScheduleID int        `json:"schedule_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Score      int        `json:"score"`
}

// Open reports whether the attempt is still accepting answers.
func (a *ScheduledAttempt) Open() bool {
	return a.EndTime == nil
}

// ExpiresAt returns the moment the attempt's own time limit runs out.
func (a *ScheduledAttempt) ExpiresAt(durationMinutes int) time.Time {
	return a.StartTime.Add(time.Duration(durationMinutes) * time.Minute)
}

// UserAnswer is the single recorded answer for one question of one attempt.
// CorrectOptionID is snapshotted at submission time and never re-derived,
// so the grade reflects correctness as of the moment of answering.
type UserAnswer struct {
	ID               int       `json:"id"`
	AttemptID        int       `json:"attempt_id"`
	QuestionID       int       `json:"question_id"`
	SelectedOptionID int       `json:"selected_option_id"`
	IsCorrect        bool      `json:"is_correct"`
	CorrectOptionID  int       `json:"correct_option_id"`
	AnsweredAt       time.Time `json:"answered_at"`
}

// SubmitAnswerRequest is the payload for recording an answer.
type SubmitAnswerRequest struct {
	QuestionID       int `json:"question_id" binding:"required"`
	SelectedOptionID int `json:"selected_option_id" binding:"required"`
}

// AnswerResult is the immediate per-answer feedback returned to the student.
type AnswerResult struct {
	IsCorrect            bool `json:"is_correct"`
	CorrectOptionID      int  `json:"correct_option_id"`
	UserSelectedOptionID int  `json:"user_selected_option_id"`
}

// ExamPayload is the full question set returned when an attempt starts or
// resumes. Correct options are stripped before it ever leaves the server.
type ExamPayload struct {
	AttemptID       int               `json:"attempt_id"`
	ScheduleID      int               `json:"schedule_id"`
	SubjectName     string            `json:"subject_name"`
	DurationMinutes int               `json:"duration_minutes"`
	TotalQuestions  int               `json:"total_questions"`
	QuestionGroups  []GroupForStudent `json:"question_groups"`
}
