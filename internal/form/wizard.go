package form

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

// Step is one state of a multi-step form: a name plus the rules that gate
// leaving it.
type Step struct {
	Name  string
	Rules []Rule
}

// Wizard is the finite state machine behind a multi-step form. States are
// the declared steps in order; Next is gated by the current step's rules,
// Back is unguarded, and Submit is only reachable from the final step.
type Wizard struct {
	ID string

	mu        sync.Mutex
	steps     []Step
	index     int
	draft     *Draft
	errs      appErrors.FieldErrors
	inFlight  bool
	submitted bool
	expiresAt time.Time
}

// NewWizard opens a wizard session at the first step.
func NewWizard(steps []Step, ttl time.Duration) *Wizard {
	w := &Wizard{
		ID:    uuid.NewString(),
		steps: steps,
		draft: NewDraft(),
		errs:  make(appErrors.FieldErrors),
	}
	if ttl > 0 {
		w.expiresAt = time.Now().UTC().Add(ttl)
	}
	return w
}

// StepName returns the current state.
func (w *Wizard) StepName() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.index].Name
}

// StepIndex returns the zero-based current step.
func (w *Wizard) StepIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// AtEnd reports whether the wizard sits on its final step.
func (w *Wizard) AtEnd() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index == len(w.steps)-1
}

// SetField replaces one scalar field and clears that field's error.
func (w *Wizard) SetField(name, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Set(name, value)
	delete(w.errs, name)
}

// SetFile replaces one binary field and clears that field's error.
func (w *Wizard) SetFile(name string, part upstream.FilePart) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.SetFile(name, part)
	delete(w.errs, name)
}

// Field reads a scalar field from the draft.
func (w *Wizard) Field(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Get(name)
}

// Errors returns a copy of the current field errors.
func (w *Wizard) Errors() appErrors.FieldErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := make(appErrors.FieldErrors, len(w.errs))
	for field, msg := range w.errs {
		errs[field] = msg
	}
	return errs
}

// Next validates the current step and advances. On the final step it is a
// no-op; violations keep the wizard in place and are reported together.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := Validate(w.draft, w.steps[w.index].Rules)
	if !errs.Empty() {
		w.errs = errs
		return appErrors.Validation(errs)
	}
	w.errs = make(appErrors.FieldErrors)
	if w.index < len(w.steps)-1 {
		w.index++
	}
	return nil
}

// Back returns to the previous step without validation.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.index > 0 {
		w.index--
	}
}

// Expired reports whether the wizard outlived its ttl.
func (w *Wizard) Expired(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.expiresAt.IsZero() && now.After(w.expiresAt)
}

// Submit re-validates every step, then performs exactly one upstream write.
// It is only reachable from the final step.
func (w *Wizard) Submit(ctx context.Context, fn SubmitFunc) error {
	w.mu.Lock()
	if w.submitted {
		w.mu.Unlock()
		return appErrors.ErrSessionExpired
	}
	if w.inFlight {
		w.mu.Unlock()
		return appErrors.ErrSubmitInFlight
	}
	if w.index != len(w.steps)-1 {
		w.mu.Unlock()
		return appErrors.Precondition("wizard has remaining steps")
	}

	errs := make(appErrors.FieldErrors)
	for _, step := range w.steps {
		for field, msg := range Validate(w.draft, step.Rules) {
			if _, seen := errs[field]; !seen {
				errs[field] = msg
			}
		}
	}
	if !errs.Empty() {
		w.errs = errs
		w.mu.Unlock()
		return appErrors.Validation(errs)
	}

	w.inFlight = true
	form := w.draft.Form()
	w.mu.Unlock()

	err := fn(ctx, form)

	w.mu.Lock()
	w.inFlight = false
	if err == nil {
		w.submitted = true
	}
	w.mu.Unlock()
	return err
}

// Registry keeps open wizard sessions by id with a shared ttl, sweeping
// expired entries on access.
type Registry struct {
	mu      sync.Mutex
	wizards map[string]*Wizard
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry builds an empty wizard registry.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		wizards: make(map[string]*Wizard),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Open creates and stores a new wizard.
func (r *Registry) Open(steps []Step) *Wizard {
	w := NewWizard(steps, r.ttl)
	r.mu.Lock()
	r.sweepLocked()
	r.wizards[w.ID] = w
	r.mu.Unlock()
	return w
}

// Get returns the wizard with the given id, dropping it when expired.
func (r *Registry) Get(id string) (*Wizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wizards[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "form session not found")
	}
	if w.Expired(r.now().UTC()) {
		delete(r.wizards, id)
		return nil, appErrors.ErrSessionExpired
	}
	return w, nil
}

// Close disposes of a wizard session.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	delete(r.wizards, id)
	r.mu.Unlock()
}

func (r *Registry) sweepLocked() {
	now := r.now().UTC()
	for id, w := range r.wizards {
		if w.Expired(now) {
			delete(r.wizards, id)
		}
	}
}
