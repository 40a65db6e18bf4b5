package models

import "time"

// Group represents a church small group or department.
type Group struct {
	ID          int64     `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	AgeGroup    AgeGroup  `json:"age_group" validate:"required"`
	Minister    string    `json:"minister"`
	ChurchID    int64     `json:"church_id" validate:"required"`
	ImagePath   string    `json:"image_path"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupDetail is the full record fetched for precondition checks, including
// current member ids.
type GroupDetail struct {
	Group
	MemberIDs []int64 `json:"member_ids"`
}

// HasMember reports whether the member currently belongs to the group.
func (d GroupDetail) HasMember(memberID int64) bool {
	for _, id := range d.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
