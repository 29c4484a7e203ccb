package model

import "time"

// Student represents a registered student.
type Student struct {
	ID        int       `json:"id"`
	FullName  string    `json:"full_name"`
	RegNumber string    `json:"reg_number"`
	ClassID   int       `json:"class_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentRequest is the payload for enrolling or updating a student.
type StudentRequest struct {
	FullName  string `json:"full_name" binding:"required,min=2,max=100"`
	RegNumber string `json:"reg_number" binding:"required,min=3,max=30"`
	ClassID   int    `json:"class_id" binding:"required"`
}

// ExamLoginRequest is the payload for a student authenticating into an exam window.
type ExamLoginRequest struct {
	RegNumber    string `json:"reg_number" binding:"required,min=3,max=30"`
	ExamPassword string `json:"exam_password" binding:"required,min=4,max=64"`
}
