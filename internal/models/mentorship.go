package models

import "time"

// Mentorship pairs a Tite (mentee) under a Timothée (mentor). The relation
// is a first-class resource with its own endpoint rather than piggybacking
// on an unrelated one.
type Mentorship struct {
	ID         int64     `json:"id" validate:"required"`
	ChurchID   int64     `json:"church_id" validate:"required"`
	MentorID   int64     `json:"mentor_id" validate:"required"`
	MentorName string    `json:"mentor_name"`
	MenteeID   int64     `json:"mentee_id" validate:"required"`
	MenteeName string    `json:"mentee_name"`
	Since      Date      `json:"since"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
