// Package form implements validated form sessions: the draft record, the
// per-form rule list and the multi-step wizard used by the marriage flow.
package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

var fieldValidator = validator.New()

// Draft is the in-progress state of a create/edit form: scalar fields plus
// any binary parts not yet present on the server entity.
type Draft struct {
	fields map[string]string
	files  map[string]upstream.FilePart
}

// NewDraft builds an empty draft.
func NewDraft() *Draft {
	return &Draft{
		fields: make(map[string]string),
		files:  make(map[string]upstream.FilePart),
	}
}

// Set replaces exactly one scalar field.
func (d *Draft) Set(name, value string) {
	d.fields[name] = value
}

// Get returns a scalar field value.
func (d *Draft) Get(name string) string {
	return d.fields[name]
}

// SetFile replaces exactly one binary field.
func (d *Draft) SetFile(name string, part upstream.FilePart) {
	d.files[name] = part
}

// File returns a binary field, if present.
func (d *Draft) File(name string) (upstream.FilePart, bool) {
	part, ok := d.files[name]
	return part, ok
}

// Form converts the draft into an upstream submission: every non-empty
// scalar becomes a string part, every file a binary part.
func (d *Draft) Form() *upstream.Form {
	form := upstream.NewForm()
	for name, value := range d.fields {
		form.SetField(name, value)
	}
	for name, part := range d.files {
		form.SetFile(name, part)
	}
	return form
}

// Rule checks one constraint against the draft and reports the violated
// field with a message, or an empty field name when satisfied.
type Rule struct {
	Field string
	Check func(d *Draft) string
}

// Validate runs every rule and collects all violations at once. The first
// message recorded for a field wins.
func Validate(d *Draft, rules []Rule) appErrors.FieldErrors {
	errs := make(appErrors.FieldErrors)
	for _, rule := range rules {
		if _, seen := errs[rule.Field]; seen {
			continue
		}
		if msg := rule.Check(d); msg != "" {
			errs[rule.Field] = msg
		}
	}
	return errs
}

// Required fails when the field is empty or whitespace.
func Required(field, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		if strings.TrimSpace(d.Get(field)) == "" {
			return message
		}
		return ""
	}}
}

// MinLen fails when a non-empty field is shorter than n characters.
func MinLen(field string, n int, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		value := strings.TrimSpace(d.Get(field))
		if value != "" && len([]rune(value)) < n {
			return message
		}
		return ""
	}}
}

// PositiveInt fails unless the field parses as an integer greater than zero.
func PositiveInt(field, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		value := strings.TrimSpace(d.Get(field))
		if value == "" {
			return ""
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return message
		}
		return ""
	}}
}

// Email fails when a non-empty field is not a valid address.
func Email(field, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		value := strings.TrimSpace(d.Get(field))
		if value == "" {
			return ""
		}
		if err := fieldValidator.Var(value, "email"); err != nil {
			return message
		}
		return ""
	}}
}

// ValidDate fails when a non-empty field is not a calendar date.
func ValidDate(field, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		value := strings.TrimSpace(d.Get(field))
		if value == "" {
			return ""
		}
		if _, err := models.ParseDate(value); err != nil {
			return message
		}
		return ""
	}}
}

// DateRange fails on the end field unless end is strictly after start. Both
// fields must already parse; unparsable values are left to ValidDate.
func DateRange(startField, endField, message string) Rule {
	return Rule{Field: endField, Check: func(d *Draft) string {
		start, err := models.ParseDate(strings.TrimSpace(d.Get(startField)))
		if err != nil {
			return ""
		}
		end, err := models.ParseDate(strings.TrimSpace(d.Get(endField)))
		if err != nil {
			return ""
		}
		if !end.After(start.Time) {
			return message
		}
		return ""
	}}
}

// ValidDateTime fails when a non-empty field is not an RFC 3339 timestamp.
func ValidDateTime(field, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		value := strings.TrimSpace(d.Get(field))
		if value == "" {
			return ""
		}
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return message
		}
		return ""
	}}
}

// TimeRange fails on the end field unless end is strictly after start. Both
// fields must already parse; unparsable values are left to ValidDateTime.
func TimeRange(startField, endField, message string) Rule {
	return Rule{Field: endField, Check: func(d *Draft) string {
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(d.Get(startField)))
		if err != nil {
			return ""
		}
		end, err := time.Parse(time.RFC3339, strings.TrimSpace(d.Get(endField)))
		if err != nil {
			return ""
		}
		if !end.After(start) {
			return message
		}
		return ""
	}}
}

// OneOf fails unless the field holds one of the allowed values.
func OneOf(field string, allowed []string, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		value := strings.TrimSpace(d.Get(field))
		if value == "" {
			return ""
		}
		for _, candidate := range allowed {
			if strings.EqualFold(value, candidate) {
				return ""
			}
		}
		return message
	}}
}

// Distinct fails on fieldB when both fields hold the same non-empty value.
func Distinct(fieldA, fieldB, message string) Rule {
	return Rule{Field: fieldB, Check: func(d *Draft) string {
		a := strings.TrimSpace(d.Get(fieldA))
		b := strings.TrimSpace(d.Get(fieldB))
		if a != "" && a == b {
			return message
		}
		return ""
	}}
}

// FileType fails when a present file does not carry one of the allowed
// content types.
func FileType(field string, allowed []string, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		part, ok := d.File(field)
		if !ok {
			return ""
		}
		for _, candidate := range allowed {
			if strings.EqualFold(part.ContentType, candidate) {
				return ""
			}
		}
		return message
	}}
}

// FileMaxSize fails when a present file exceeds maxBytes.
func FileMaxSize(field string, maxBytes int64, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		part, ok := d.File(field)
		if !ok {
			return ""
		}
		if int64(len(part.Data)) > maxBytes {
			return message
		}
		return ""
	}}
}

// MinAge fails unless the field parses as a birth date whose bearer is at
// least years old at the reference instant, counted in full calendar years.
func MinAge(field string, years int, now time.Time, message string) Rule {
	return Rule{Field: field, Check: func(d *Draft) string {
		value := strings.TrimSpace(d.Get(field))
		if value == "" {
			return ""
		}
		birth, err := models.ParseDate(value)
		if err != nil {
			return ""
		}
		if birth.YearsSince(now) < years {
			return message
		}
		return ""
	}}
}
