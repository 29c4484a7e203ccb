package model

// Class represents a class (cohort) of students that schedules are bound to.
type Class struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ClassRequest is the payload for creating or updating a class.
type ClassRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}
