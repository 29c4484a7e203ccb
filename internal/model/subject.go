package model

// Subject represents an examinable subject.
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SubjectRequest is the payload for creating or updating a subject.
type SubjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}
