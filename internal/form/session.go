package form

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

// Mode distinguishes create from edit flows.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// SubmitFunc performs the single upstream write for a validated draft.
type SubmitFunc func(ctx context.Context, form *upstream.Form) error

// Session is the explicit scoped resource behind one open form: the draft,
// its rules, the current field errors and a single-flight submit guard. It
// is created when the form opens and disposed on close or successful submit.
type Session struct {
	ID       string
	Mode     Mode
	TargetID int64

	mu        sync.Mutex
	draft     *Draft
	rules     []Rule
	errs      appErrors.FieldErrors
	inFlight  bool
	submitted bool
	createdAt time.Time
	expiresAt time.Time
}

// NewSession opens a form session. A zero ttl means the session never
// expires, which suits single-request create/edit flows.
func NewSession(mode Mode, targetID int64, rules []Rule, ttl time.Duration) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		Mode:      mode,
		TargetID:  targetID,
		draft:     NewDraft(),
		rules:     rules,
		errs:      make(appErrors.FieldErrors),
		createdAt: now,
	}
	if ttl > 0 {
		s.expiresAt = now.Add(ttl)
	}
	return s
}

// SetField replaces exactly one scalar field and clears that field's error.
func (s *Session) SetField(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Set(name, value)
	delete(s.errs, name)
}

// SetFile replaces exactly one binary field and clears that field's error.
func (s *Session) SetFile(name string, part upstream.FilePart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetFile(name, part)
	delete(s.errs, name)
}

// Field reads a scalar field from the draft.
func (s *Session) Field(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Get(name)
}

// Errors returns a copy of the current field errors.
func (s *Session) Errors() appErrors.FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := make(appErrors.FieldErrors, len(s.errs))
	for field, msg := range s.errs {
		errs[field] = msg
	}
	return errs
}

// Expired reports whether the session outlived its ttl.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.expiresAt.IsZero() && now.After(s.expiresAt)
}

// Submit validates the draft and, when clean, performs exactly one upstream
// write. All rule violations are reported together and block the write; a
// failed write preserves the draft so the user can correct and retry.
func (s *Session) Submit(ctx context.Context, fn SubmitFunc) error {
	s.mu.Lock()
	if s.submitted {
		s.mu.Unlock()
		return appErrors.ErrSessionExpired
	}
	if s.inFlight {
		s.mu.Unlock()
		return appErrors.ErrSubmitInFlight
	}
	if !s.expiresAt.IsZero() && time.Now().UTC().After(s.expiresAt) {
		s.mu.Unlock()
		return appErrors.ErrSessionExpired
	}

	errs := Validate(s.draft, s.rules)
	if !errs.Empty() {
		s.errs = errs
		s.mu.Unlock()
		return appErrors.Validation(errs)
	}

	s.inFlight = true
	form := s.draft.Form()
	s.mu.Unlock()

	err := fn(ctx, form)

	s.mu.Lock()
	s.inFlight = false
	if err == nil {
		s.submitted = true
		s.draft = NewDraft()
		s.errs = make(appErrors.FieldErrors)
	}
	s.mu.Unlock()
	return err
}
