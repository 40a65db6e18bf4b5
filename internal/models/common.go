package models

import (
	"fmt"
	"strings"
	"time"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Claims identifies the dashboard user acting through the gateway. Token
// issuance and verification policy belong to the external identity provider;
// the gateway only reads the subject and role.
type Claims struct {
	UserID string
	Name   string
	Role   string
}

// Date is a calendar date without a time component, serialized as
// "2006-01-02" the way the upstream backend emits it.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the upstream wire format.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// UnmarshalJSON accepts "2006-01-02" and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", raw, err)
	}
	*d = parsed
	return nil
}

// MarshalJSON emits "2006-01-02" or null for the zero value.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// YearsSince returns full calendar years elapsed between the date and the
// reference instant, accounting for month and day so an age check cannot be
// off by a partial month.
func (d Date) YearsSince(at time.Time) int {
	if d.IsZero() {
		return 0
	}
	years := at.Year() - d.Year()
	anniversary := time.Date(at.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if at.Before(anniversary) {
		years--
	}
	return years
}

// AgeGroup classifies members, groups and Sunday classes.
type AgeGroup string

const (
	AgeGroupChild      AgeGroup = "enfant"
	AgeGroupAdolescent AgeGroup = "adolescent"
	AgeGroupYouth      AgeGroup = "jeune"
	AgeGroupAdult      AgeGroup = "adulte"
)

// ParseAgeGroup validates a raw age group string. Unknown values are an
// error at the boundary rather than being silently bucketed.
func ParseAgeGroup(raw string) (AgeGroup, error) {
	switch AgeGroup(strings.ToLower(strings.TrimSpace(raw))) {
	case AgeGroupChild:
		return AgeGroupChild, nil
	case AgeGroupAdolescent:
		return AgeGroupAdolescent, nil
	case AgeGroupYouth:
		return AgeGroupYouth, nil
	case AgeGroupAdult:
		return AgeGroupAdult, nil
	default:
		return "", fmt.Errorf("unknown age group %q", raw)
	}
}

// IsAdult reports whether the group belongs to the adult track.
func (a AgeGroup) IsAdult() bool {
	return a == AgeGroupAdult
}

// Valid reports whether the value is one of the known age groups.
func (a AgeGroup) Valid() bool {
	_, err := ParseAgeGroup(string(a))
	return err == nil
}
