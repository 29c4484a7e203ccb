package model

import "time"

// ExamSchedule binds a subject to a class, a date, a start time, a duration,
// and a shared exam password. A schedule owns an ordered list of question
// groups; the attempt engine consumes it read-only.
type ExamSchedule struct {
	ID              int       `json:"id"`
	SubjectID       int       `json:"subject_id"`
	SubjectName     string    `json:"subject_name,omitempty"`
	ClassID         int       `json:"class_id"`
	ExamDate        time.Time `json:"exam_date"`
	StartTime       string    `json:"start_time"` // "HH:MM:SS"
	DurationMinutes int       `json:"duration_minutes"`
	ExamPassword    string    `json:"-"`
}

// StartsAt returns the moment the exam window opens on the exam date.
func (s *ExamSchedule) StartsAt() time.Time {
	t, err := time.Parse("15:04:05", s.StartTime)
	if err != nil {
		t, _ = time.Parse("15:04", s.StartTime)
	}
	y, m, d := s.ExamDate.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

// EndsAt returns the moment the exam window closes.
func (s *ExamSchedule) EndsAt() time.Time {
	return s.StartsAt().Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// TimeLimit returns the schedule duration as a time.Duration.
func (s *ExamSchedule) TimeLimit() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// IsOnDate reports whether the exam is scheduled for the calendar day of t.
func (s *ExamSchedule) IsOnDate(t time.Time) bool {
	y1, m1, d1 := s.ExamDate.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ScheduleRequest is the payload for creating or updating an exam schedule.
type ScheduleRequest struct {
	SubjectID       int    `json:"subject_id" binding:"required"`
	ClassID         int    `json:"class_id" binding:"required"`
	ExamDate        string `json:"exam_date" binding:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" binding:"required,datetime=15:04:05"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=480"`
	ExamPassword    string `json:"exam_password" binding:"required,min=4,max=64"`
}

// QuestionGroup is an ordered section of questions sharing an instruction block.
type QuestionGroup struct {
	ID              int    `json:"id"`
	ScheduleID      int    `json:"schedule_id"`
	InstructionText string `json:"instruction_text"`
	GroupTitle      string `json:"group_title,omitempty"`
	DisplayOrder    int    `json:"display_order"`
}

// GroupRequest is the payload for creating or updating a question group.
type GroupRequest struct {
	InstructionText string `json:"instruction_text" binding:"required"`
	GroupTitle      string `json:"group_title" binding:"omitempty,max=200"`
	DisplayOrder    int    `json:"display_order" binding:"required,min=1"`
}

// ScheduleDashboard is the schedule summary shown to a logged-in student.
type ScheduleDashboard struct {
	ID              int       `json:"id"`
	SubjectID       int       `json:"subject_id"`
	SubjectName     string    `json:"subject_name"`
	ClassID         int       `json:"class_id"`
	ExamDate        time.Time `json:"exam_date"`
	StartTime       string    `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	NumberOfGroups  int       `json:"number_of_groups"`
	TotalQuestions  int       `json:"total_questions"`
}
