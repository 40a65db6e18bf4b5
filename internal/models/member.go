package models

import "time"

// Member represents a church member as stored by the upstream backend.
type Member struct {
	ID        int64     `json:"id" validate:"required"`
	FirstName string    `json:"first_name" validate:"required"`
	LastName  string    `json:"last_name" validate:"required"`
	Gender    string    `json:"gender"`
	BirthDate Date      `json:"birth_date"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	PhotoPath string    `json:"photo_path"`
	ChurchID  int64     `json:"church_id" validate:"required"`
	MentorID  *int64    `json:"mentor_id,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins the member's names for display and search.
func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// HasMentor reports whether the member is already paired under a Timothée.
func (m Member) HasMentor() bool {
	return m.MentorID != nil && *m.MentorID != 0
}

// MemberDetail is the full record fetched for precondition checks, including
// the groups the member currently belongs to.
type MemberDetail struct {
	Member
	GroupIDs []int64 `json:"group_ids"`
}

// InGroup reports whether the member belongs to the given group.
func (d MemberDetail) InGroup(groupID int64) bool {
	for _, id := range d.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
