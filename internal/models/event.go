package models

import "time"

// EventStatus derives from comparing an event date to the current time.
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventPast     EventStatus = "past"
)

func statusAt(eventTime, now time.Time) EventStatus {
	if eventTime.After(now) {
		return EventUpcoming
	}
	return EventPast
}

// Marriage records a wedding celebrated or planned in a church.
type Marriage struct {
	ID            int64     `json:"id" validate:"required"`
	ChurchID      int64     `json:"church_id" validate:"required"`
	HusbandID     int64     `json:"husband_id" validate:"required"`
	HusbandName   string    `json:"husband_name"`
	WifeID        int64     `json:"wife_id" validate:"required"`
	WifeName      string    `json:"wife_name"`
	WeddingDate   Date      `json:"wedding_date"`
	Location      string    `json:"location"`
	CertificateNo string    `json:"certificate_no"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Status classifies the marriage relative to now.
func (m Marriage) Status(now time.Time) EventStatus {
	return statusAt(m.WeddingDate.Time, now)
}

// Appointment is a scheduled church activity.
type Appointment struct {
	ID          int64     `json:"id" validate:"required"`
	ChurchID    int64     `json:"church_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Status classifies the appointment relative to now.
func (a Appointment) Status(now time.Time) EventStatus {
	return statusAt(a.StartTime, now)
}

// Death records the passing of a member.
type Death struct {
	ID         int64     `json:"id" validate:"required"`
	ChurchID   int64     `json:"church_id" validate:"required"`
	MemberID   int64     `json:"member_id" validate:"required"`
	MemberName string    `json:"member_name"`
	Date       Date      `json:"date"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
