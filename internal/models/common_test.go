package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearsSinceCountsFullCalendarYears(t *testing.T) {
	birth := NewDate(2008, time.March, 15)

	// The day before the 18th birthday still counts 17.
	assert.Equal(t, 17, birth.YearsSince(time.Date(2026, time.March, 14, 23, 0, 0, 0, time.UTC)))
	// The birthday itself counts 18.
	assert.Equal(t, 18, birth.YearsSince(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)))
}

func TestYearsSinceZeroDate(t *testing.T) {
	var d Date
	assert.Equal(t, 0, d.YearsSince(time.Now()))
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, time.December, 3)

	payload, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-12-03"`, string(payload))

	var decoded Date
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.True(t, d.Equal(decoded.Time))
}

func TestDateUnmarshalNull(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte("null"), &d))
	assert.True(t, d.IsZero())
}

func TestDateUnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"03/12/2025"`), &d))
}

func TestParseAgeGroup(t *testing.T) {
	group, err := ParseAgeGroup("  Adulte ")
	require.NoError(t, err)
	assert.Equal(t, AgeGroupAdult, group)

	_, err = ParseAgeGroup("senior")
	assert.Error(t, err)
}

func TestMarriageStatus(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	upcoming := Marriage{WeddingDate: NewDate(2026, time.September, 12)}
	assert.Equal(t, EventUpcoming, upcoming.Status(now))

	past := Marriage{WeddingDate: NewDate(2024, time.May, 5)}
	assert.Equal(t, EventPast, past.Status(now))
}

func TestMemberHasMentor(t *testing.T) {
	var m Member
	assert.False(t, m.HasMentor())

	zero := int64(0)
	m.MentorID = &zero
	assert.False(t, m.HasMentor())

	mentor := int64(7)
	m.MentorID = &mentor
	assert.True(t, m.HasMentor())
}

func TestGroupDetailHasMember(t *testing.T) {
	d := GroupDetail{MemberIDs: []int64{3, 7}}
	assert.True(t, d.HasMember(7))
	assert.False(t, d.HasMember(9))
}
