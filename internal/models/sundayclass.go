package models

import "time"

// SundayClass is a Sunday-school class within a church.
type SundayClass struct {
	ID       int64    `json:"id" validate:"required"`
	ChurchID int64    `json:"church_id" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	Teacher  string   `json:"teacher"`
	AgeGroup AgeGroup `json:"age_group" validate:"required"`
	Room     string   `json:"room"`
	Schedule string   `json:"schedule"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
