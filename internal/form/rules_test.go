package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ecclesia-app/admin-gateway/internal/upstream"
)

func TestValidateCollectsAllViolationsAtOnce(t *testing.T) {
	draft := NewDraft()
	draft.Set("name", "")
	draft.Set("email", "not-an-address")

	errs := Validate(draft, []Rule{
		Required("name", "name required"),
		Email("email", "bad email"),
		Required("date", "date required"),
	})

	assert.Len(t, errs, 3)
	assert.Equal(t, "name required", errs["name"])
	assert.Equal(t, "bad email", errs["email"])
	assert.Equal(t, "date required", errs["date"])
}

func TestValidateFirstMessagePerFieldWins(t *testing.T) {
	draft := NewDraft()

	errs := Validate(draft, []Rule{
		Required("name", "first"),
		Required("name", "second"),
	})

	assert.Equal(t, "first", errs["name"])
}

func TestRequiredRejectsWhitespace(t *testing.T) {
	draft := NewDraft()
	draft.Set("name", "   ")

	errs := Validate(draft, []Rule{Required("name", "required")})
	assert.Equal(t, "required", errs["name"])
}

func TestOptionalRulesSkipEmptyFields(t *testing.T) {
	draft := NewDraft()

	errs := Validate(draft, []Rule{
		MinLen("name", 3, "too short"),
		Email("email", "bad email"),
		ValidDate("date", "bad date"),
		PositiveInt("id", "bad id"),
	})

	assert.Empty(t, errs)
}

func TestPositiveIntRejectsZeroAndGarbage(t *testing.T) {
	draft := NewDraft()
	draft.Set("id", "0")
	errs := Validate(draft, []Rule{PositiveInt("id", "bad id")})
	assert.Equal(t, "bad id", errs["id"])

	draft.Set("id", "abc")
	errs = Validate(draft, []Rule{PositiveInt("id", "bad id")})
	assert.Equal(t, "bad id", errs["id"])
}

func TestDistinctRejectsEqualValues(t *testing.T) {
	draft := NewDraft()
	draft.Set("husband_id", "7")
	draft.Set("wife_id", "7")

	errs := Validate(draft, []Rule{Distinct("husband_id", "wife_id", "must differ")})
	assert.Equal(t, "must differ", errs["wife_id"])
}

func TestDateRangeRequiresEndAfterStart(t *testing.T) {
	draft := NewDraft()
	draft.Set("start", "2025-06-10")
	draft.Set("end", "2025-06-10")

	errs := Validate(draft, []Rule{DateRange("start", "end", "end before start")})
	assert.Equal(t, "end before start", errs["end"])

	draft.Set("end", "2025-06-11")
	errs = Validate(draft, []Rule{DateRange("start", "end", "end before start")})
	assert.Empty(t, errs)
}

func TestTimeRangeRequiresEndAfterStart(t *testing.T) {
	draft := NewDraft()
	draft.Set("start", "2025-06-10T10:00:00Z")
	draft.Set("end", "2025-06-10T09:00:00Z")

	errs := Validate(draft, []Rule{TimeRange("start", "end", "end before start")})
	assert.Equal(t, "end before start", errs["end"])
}

func TestMinAgeCountsFullCalendarYears(t *testing.T) {
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	draft := NewDraft()
	// Turns 18 the day after the reference instant.
	draft.Set("birth_date", "2008-03-15")
	errs := Validate(draft, []Rule{MinAge("birth_date", 18, now, "too young")})
	assert.Equal(t, "too young", errs["birth_date"])

	// Turned 18 exactly on the reference day.
	draft.Set("birth_date", "2008-03-14")
	errs = Validate(draft, []Rule{MinAge("birth_date", 18, now, "too young")})
	assert.Empty(t, errs)
}

func TestFileRules(t *testing.T) {
	draft := NewDraft()
	draft.SetFile("photo", upstream.FilePart{
		Filename:    "photo.png",
		ContentType: "image/png",
		Data:        make([]byte, 10),
	})

	errs := Validate(draft, []Rule{
		FileType("photo", []string{"image/jpeg", "image/png"}, "bad type"),
		FileMaxSize("photo", 5, "too big"),
	})

	assert.Equal(t, "too big", errs["photo"], "size violation reported once type passes")
}

func TestOneOfIsCaseInsensitive(t *testing.T) {
	draft := NewDraft()
	draft.Set("age_group", "Adulte")

	errs := Validate(draft, []Rule{OneOf("age_group", []string{"enfant", "adulte"}, "unknown")})
	assert.Empty(t, errs)

	draft.Set("age_group", "senior")
	errs = Validate(draft, []Rule{OneOf("age_group", []string{"enfant", "adulte"}, "unknown")})
	assert.Equal(t, "unknown", errs["age_group"])
}
