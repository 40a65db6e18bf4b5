package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

func sessionRules() []Rule {
	return []Rule{
		Required("name", "name required"),
		MinLen("name", 3, "name too short"),
		Required("city", "city required"),
	}
}

func TestSessionSubmitBlocksOnViolationsWithoutWrite(t *testing.T) {
	session := NewSession(ModeCreate, 0, sessionRules(), 0)
	session.SetField("name", "ab")

	calls := 0
	err := session.Submit(context.Background(), func(context.Context, *upstream.Form) error {
		calls++
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, 0, calls)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "name too short", appErr.Fields["name"])
	assert.Equal(t, "city required", appErr.Fields["city"])
}

func TestSessionSubmitPerformsExactlyOneWrite(t *testing.T) {
	session := NewSession(ModeCreate, 0, sessionRules(), 0)
	session.SetField("name", "Bethel")
	session.SetField("city", "Goma")

	calls := 0
	err := session.Submit(context.Background(), func(_ context.Context, f *upstream.Form) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSessionSubmitAfterSuccessIsRejected(t *testing.T) {
	session := NewSession(ModeCreate, 0, sessionRules(), 0)
	session.SetField("name", "Bethel")
	session.SetField("city", "Goma")

	noop := func(context.Context, *upstream.Form) error { return nil }
	require.NoError(t, session.Submit(context.Background(), noop))

	err := session.Submit(context.Background(), noop)
	assert.True(t, appErrors.Is(err, appErrors.ErrSessionExpired))
}

func TestSessionSubmitFailurePreservesDraft(t *testing.T) {
	session := NewSession(ModeEdit, 12, sessionRules(), 0)
	session.SetField("name", "Bethel")
	session.SetField("city", "Goma")

	err := session.Submit(context.Background(), func(context.Context, *upstream.Form) error {
		return errors.New("upstream down")
	})
	require.Error(t, err)

	assert.Equal(t, "Bethel", session.Field("name"))
	assert.Equal(t, "Goma", session.Field("city"))

	calls := 0
	err = session.Submit(context.Background(), func(context.Context, *upstream.Form) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSessionSetFieldClearsFieldError(t *testing.T) {
	session := NewSession(ModeCreate, 0, sessionRules(), 0)

	_ = session.Submit(context.Background(), func(context.Context, *upstream.Form) error { return nil })
	require.NotEmpty(t, session.Errors()["name"])

	session.SetField("name", "Bethel")
	assert.Empty(t, session.Errors()["name"])
	assert.NotEmpty(t, session.Errors()["city"])
}

func TestSessionExpires(t *testing.T) {
	session := NewSession(ModeCreate, 0, sessionRules(), time.Nanosecond)
	session.SetField("name", "Bethel")
	session.SetField("city", "Goma")
	time.Sleep(time.Millisecond)

	err := session.Submit(context.Background(), func(context.Context, *upstream.Form) error { return nil })
	assert.True(t, appErrors.Is(err, appErrors.ErrSessionExpired))
}
