package model

import "math"

// FinalReport is the immutable scoring snapshot persisted when an attempt
// closes. One report exists per attempt and is never mutated afterwards.
type FinalReport struct {
	ID                int    `json:"id"`
	AttemptID         int    `json:"attempt_id"`
	SubjectScoresJSON string `json:"-"`
	FinalScore        int    `json:"final_score"`
	TimeTakenSeconds  int    `json:"time_taken_seconds"`
}

// SubjectScoreDetail is the per-subject breakdown serialized into a report.
type SubjectScoreDetail struct {
	SubjectID              int     `json:"subject_id"`
	SubjectName            string  `json:"subject_name"`
	CorrectAnswers         int     `json:"correct_answers"`
	TotalAnsweredQuestions int     `json:"total_answered_questions"`
	SubjectPercentage      float64 `json:"subject_percentage"`
}

// ComputePercentage sets SubjectPercentage from the correct/answered counts,
// rounded to 2 decimals. Zero answered questions yields 0.0.
func (d *SubjectScoreDetail) ComputePercentage() {
	if d.TotalAnsweredQuestions == 0 {
		d.SubjectPercentage = 0.0
		return
	}
	pct := float64(d.CorrectAnswers) / float64(d.TotalAnsweredQuestions) * 100
	d.SubjectPercentage = math.Round(pct*100) / 100
}

// ExamResult is the finalized outcome of an attempt, returned by finish and
// by the report endpoint. PercentageScore is intentionally not rounded; only
// the subject-level percentage inside SubjectReport is.
type ExamResult struct {
	AttemptID          int                `json:"attempt_id"`
	FinalScore         int                `json:"final_score"`
	TotalQuestions     int                `json:"total_questions"`
	PercentageScore    float64            `json:"percentage_score"`
	TimeTakenSeconds   int                `json:"time_taken_seconds"`
	IsTimeUpSubmission bool               `json:"is_time_up_submission"`
	SubjectReport      SubjectScoreDetail `json:"subject_report"`
}
