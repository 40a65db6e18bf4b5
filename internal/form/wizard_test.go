package form

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

func wizardSteps() []Step {
	return []Step{
		{Name: "spouses", Rules: []Rule{
			Required("husband_id", "husband required"),
			Required("wife_id", "wife required"),
		}},
		{Name: "details", Rules: []Rule{
			Required("wedding_date", "date required"),
		}},
		{Name: "confirm"},
	}
}

func TestWizardNextIsGatedByStepRules(t *testing.T) {
	w := NewWizard(wizardSteps(), 0)

	err := w.Next()
	require.Error(t, err)
	assert.Equal(t, "spouses", w.StepName())

	appErr := appErrors.FromError(err)
	assert.Equal(t, "husband required", appErr.Fields["husband_id"])
	assert.Equal(t, "wife required", appErr.Fields["wife_id"])

	w.SetField("husband_id", "1")
	w.SetField("wife_id", "2")
	require.NoError(t, w.Next())
	assert.Equal(t, "details", w.StepName())
}

func TestWizardBackIsUnguarded(t *testing.T) {
	w := NewWizard(wizardSteps(), 0)
	w.SetField("husband_id", "1")
	w.SetField("wife_id", "2")
	require.NoError(t, w.Next())

	w.Back()
	assert.Equal(t, "spouses", w.StepName())

	w.Back()
	assert.Equal(t, "spouses", w.StepName(), "back from the first step stays put")
}

func TestWizardSubmitOnlyFromFinalStep(t *testing.T) {
	w := NewWizard(wizardSteps(), 0)
	w.SetField("husband_id", "1")
	w.SetField("wife_id", "2")

	err := w.Submit(context.Background(), func(context.Context, *upstream.Form) error { return nil })
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestWizardSubmitRevalidatesEveryStep(t *testing.T) {
	w := NewWizard(wizardSteps(), 0)
	w.SetField("husband_id", "1")
	w.SetField("wife_id", "2")
	require.NoError(t, w.Next())
	w.SetField("wedding_date", "2026-09-12")
	require.NoError(t, w.Next())
	require.True(t, w.AtEnd())

	// Field cleared after the step was passed; submit must still catch it.
	w.SetField("wedding_date", "")

	calls := 0
	err := w.Submit(context.Background(), func(context.Context, *upstream.Form) error {
		calls++
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 0, calls)

	w.SetField("wedding_date", "2026-09-12")
	require.NoError(t, w.Submit(context.Background(), func(context.Context, *upstream.Form) error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
}

func TestRegistryExpiresWizards(t *testing.T) {
	r := NewRegistry(time.Minute)
	base := time.Now().UTC()
	r.now = func() time.Time { return base }

	w := r.Open(wizardSteps())

	got, err := r.Get(w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)

	r.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = r.Get(w.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrSessionExpired))
}

func TestRegistryCloseDisposes(t *testing.T) {
	r := NewRegistry(time.Minute)
	w := r.Open(wizardSteps())

	r.Close(w.ID)
	_, err := r.Get(w.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
