package model

// Question belongs to one group and has exactly one designated correct
// option among its options.
type Question struct {
	ID              int    `json:"id"`
	GroupID         int    `json:"group_id"`
	QuestionText    string `json:"question_text"`
	QuestionNumber  int    `json:"question_number"`
	CorrectOptionID int    `json:"-"`
}

// Option is one answer choice for a question. The correctness flag lives on
// the question (correct_option_id) and is never exposed to students.
type Option struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"question_id"`
	OptionText string `json:"option_text"`
}

// OptionInput is one option in an authoring request.
type OptionInput struct {
	OptionText string `json:"option_text" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionRequest is the payload for creating or replacing a question and
// its options. Exactly one option must be marked correct.
type QuestionRequest struct {
	QuestionText   string        `json:"question_text" binding:"required"`
	QuestionNumber int           `json:"question_number" binding:"required,min=1"`
	Options        []OptionInput `json:"options" binding:"required,min=1,dive"`
}

// QuestionWithOptions is the admin view of a question.
type QuestionWithOptions struct {
	Question
	CorrectOptionID int      `json:"correct_option_id"`
	Options         []Option `json:"options"`
}

// OptionForStudent is an option without the correctness flag.
type OptionForStudent struct {
	ID         int    `json:"id"`
	OptionText string `json:"option_text"`
}

// QuestionForStudent is a question without the correct answer.
type QuestionForStudent struct {
	ID             int                `json:"id"`
	GroupID        int                `json:"group_id"`
	QuestionNumber int                `json:"question_number"`
	QuestionText   string             `json:"question_text"`
	Options        []OptionForStudent `json:"options"`
}

// GroupForStudent is a question group as delivered in the exam payload,
// ordered by display_order with its questions nested.
type GroupForStudent struct {
	ID              int                  `json:"id"`
	InstructionText string               `json:"instruction_text"`
	GroupTitle      string               `json:"group_title,omitempty"`
	DisplayOrder    int                  `json:"display_order"`
	Questions       []QuestionForStudent `json:"questions"`
}
