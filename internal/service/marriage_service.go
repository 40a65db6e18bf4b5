package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ecclesia-app/admin-gateway/internal/cache"
	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/form"
	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

const minSpouseAge = 18

// marriageStore is the upstream surface the marriage service depends on.
type marriageStore interface {
	ListByChurch(ctx context.Context, churchID int64) ([]models.Marriage, error)
	Get(ctx context.Context, id int64) (*models.Marriage, error)
	Create(ctx context.Context, form *upstream.Form) (*models.Marriage, error)
	Update(ctx context.Context, id int64, form *upstream.Form) (*models.Marriage, error)
	Delete(ctx context.Context, id int64) error
}

// MarriageService drives the marriage registry: the cached list with its
// upcoming/past classification and the three-step creation wizard.
type MarriageService struct {
	marriages marriageStore
	members   memberReader
	cache     snapshotCache
	registry  *form.Registry
	lists     config.ListConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewMarriageService creates a marriage service. Wizard sessions expire after
// the configured ttl.
func NewMarriageService(marriages marriageStore, members memberReader, cache snapshotCache, lists config.ListConfig, sessions config.SessionConfig, logger *zap.Logger) *MarriageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarriageService{
		marriages: marriages,
		members:   members,
		cache:     cache,
		registry:  form.NewRegistry(sessions.TTL),
		lists:     lists,
		logger:    logger,
		now:       time.Now,
	}
}

// MarriageInput carries the fields of the single-modal marriage edit form.
type MarriageInput struct {
	HusbandID     int64
	WifeID        int64
	WeddingDate   string
	Location      string
	CertificateNo string
}

// WizardState is the view of an open wizard returned to the dashboard after
// every transition.
type WizardState struct {
	ID        string                `json:"id"`
	Step      string                `json:"step"`
	StepIndex int                   `json:"step_index"`
	Steps     []string              `json:"steps"`
	Errors    appErrors.FieldErrors `json:"errors,omitempty"`
}

func (s *MarriageService) steps() []form.Step {
	return []form.Step{
		{
			Name: "spouses",
			Rules: []form.Rule{
				form.Required("husband_id", "l'époux est requis"),
				form.PositiveInt("husband_id", "époux invalide"),
				form.Required("wife_id", "l'épouse est requise"),
				form.PositiveInt("wife_id", "épouse invalide"),
				form.Distinct("husband_id", "wife_id", "les époux doivent être deux membres distincts"),
			},
		},
		{
			Name: "details",
			Rules: []form.Rule{
				form.Required("wedding_date", "la date du mariage est requise"),
				form.ValidDate("wedding_date", "date de mariage invalide"),
				form.Required("location", "le lieu est requis"),
			},
		},
		{Name: "confirm"},
	}
}

func (s *MarriageService) descriptor() collection.Descriptor[models.Marriage] {
	now := s.now().UTC()
	return collection.Descriptor[models.Marriage]{
		SearchFields: []func(models.Marriage) string{
			func(m models.Marriage) string { return m.HusbandName },
			func(m models.Marriage) string { return m.WifeName },
			func(m models.Marriage) string { return m.Location },
		},
		Filters: map[string]func(models.Marriage, string) bool{
			"status": func(m models.Marriage, v string) bool {
				return strings.EqualFold(string(m.Status(now)), v)
			},
			"year": func(m models.Marriage, v string) bool {
				year, err := strconv.Atoi(v)
				if err != nil {
					return false
				}
				return m.WeddingDate.Year() == year
			},
		},
		Sorters: map[string]func(a, b models.Marriage) bool{
			"wedding_date": func(a, b models.Marriage) bool { return a.WeddingDate.Before(b.WeddingDate.Time) },
			"husband":      func(a, b models.Marriage) bool { return a.HusbandName < b.HusbandName },
		},
		DefaultSort:     "wedding_date",
		DefaultPageSize: s.lists.DefaultPageSize,
		MaxPageSize:     s.lists.MaxPageSize,
	}
}

// List returns one page of the church's marriage registry.
func (s *MarriageService) List(ctx context.Context, churchID int64, q collection.Query, refresh bool) (collection.View[models.Marriage], error) {
	items, err := s.snapshot(ctx, churchID, refresh)
	if err != nil {
		return collection.View[models.Marriage]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Filtered returns the full filtered registry for export.
func (s *MarriageService) Filtered(ctx context.Context, churchID int64, q collection.Query) ([]models.Marriage, error) {
	items, err := s.snapshot(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, q, s.descriptor()), nil
}

func (s *MarriageService) snapshot(ctx context.Context, churchID int64, refresh bool) ([]models.Marriage, error) {
	key := cache.ListKey("marriages", churchID)
	return listSnapshot(ctx, s.cache, key, refresh, func(ctx context.Context) ([]models.Marriage, error) {
		return s.marriages.ListByChurch(ctx, churchID)
	})
}

// Get fetches one marriage record.
func (s *MarriageService) Get(ctx context.Context, id int64) (*models.Marriage, error) {
	return s.marriages.Get(ctx, id)
}

// StartWizard opens a creation wizard scoped to the church.
func (s *MarriageService) StartWizard(churchID int64) WizardState {
	w := s.registry.Open(s.steps())
	w.SetField("church_id", formatID(churchID))
	return s.state(w)
}

// UpdateWizard replaces draft fields on an open wizard without moving it.
func (s *MarriageService) UpdateWizard(id string, fields map[string]string) (WizardState, error) {
	w, err := s.registry.Get(id)
	if err != nil {
		return WizardState{}, err
	}
	for name, value := range fields {
		w.SetField(name, value)
	}
	return s.state(w), nil
}

// Advance validates the current step and moves forward. Violations keep the
// wizard in place and come back on the returned state.
func (s *MarriageService) Advance(id string) (WizardState, error) {
	w, err := s.registry.Get(id)
	if err != nil {
		return WizardState{}, err
	}
	if err := w.Next(); err != nil {
		return s.state(w), err
	}
	return s.state(w), nil
}

// Back returns the wizard to its previous step without validation.
func (s *MarriageService) Back(id string) (WizardState, error) {
	w, err := s.registry.Get(id)
	if err != nil {
		return WizardState{}, err
	}
	w.Back()
	return s.state(w), nil
}

// CancelWizard disposes of an open wizard.
func (s *MarriageService) CancelWizard(id string) {
	s.registry.Close(id)
}

// SubmitWizard performs the single upstream write from the confirm step.
// Beyond the per-step field rules it checks, against fresh member records,
// that both spouses belong to the church and have reached the minimum age
// counted in full calendar years.
func (s *MarriageService) SubmitWizard(ctx context.Context, id string) (*models.Marriage, error) {
	w, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if !w.AtEnd() {
		return nil, appErrors.Precondition("wizard has remaining steps")
	}

	churchID, _ := strconv.ParseInt(w.Field("church_id"), 10, 64)
	husbandID, err := strconv.ParseInt(w.Field("husband_id"), 10, 64)
	if err != nil {
		return nil, appErrors.Validation(appErrors.FieldErrors{"husband_id": "époux invalide"})
	}
	wifeID, err := strconv.ParseInt(w.Field("wife_id"), 10, 64)
	if err != nil {
		return nil, appErrors.Validation(appErrors.FieldErrors{"wife_id": "épouse invalide"})
	}

	now := s.now().UTC()
	for field, memberID := range map[string]int64{"husband_id": husbandID, "wife_id": wifeID} {
		member, err := s.members.Get(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if member.ChurchID != churchID {
			return nil, appErrors.Precondition("spouse does not belong to the church")
		}
		if member.BirthDate.YearsSince(now) < minSpouseAge {
			return nil, appErrors.Validation(appErrors.FieldErrors{
				field: "le membre n'a pas l'âge minimum requis",
			})
		}
	}

	var created *models.Marriage
	err = w.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		marriage, err := s.marriages.Create(ctx, f)
		if err != nil {
			return err
		}
		created = marriage
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.registry.Close(id)
	s.invalidate(ctx, churchID)
	s.logger.Info("marriage registered", zap.Int64("marriage_id", created.ID), zap.Int64("church_id", churchID))
	return created, nil
}

// Update edits an existing record through a single validated form. Every
// step's rules apply at once since the modal shows all fields together.
func (s *MarriageService) Update(ctx context.Context, id, churchID int64, in MarriageInput) (*models.Marriage, error) {
	var rules []form.Rule
	for _, step := range s.steps() {
		rules = append(rules, step.Rules...)
	}
	session := form.NewSession(form.ModeEdit, id, rules, 0)
	session.SetField("husband_id", formatID(in.HusbandID))
	session.SetField("wife_id", formatID(in.WifeID))
	session.SetField("wedding_date", in.WeddingDate)
	session.SetField("location", in.Location)
	session.SetField("certificate_no", in.CertificateNo)
	session.SetField("church_id", formatID(churchID))

	var updated *models.Marriage
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		marriage, err := s.marriages.Update(ctx, id, f)
		if err != nil {
			return err
		}
		updated = marriage
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	return updated, nil
}

// Delete removes a marriage record.
func (s *MarriageService) Delete(ctx context.Context, id, churchID int64) error {
	if err := s.marriages.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, churchID)
	return nil
}

func (s *MarriageService) state(w *form.Wizard) WizardState {
	steps := s.steps()
	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = step.Name
	}
	return WizardState{
		ID:        w.ID,
		Step:      w.StepName(),
		StepIndex: w.StepIndex(),
		Steps:     names,
		Errors:    w.Errors(),
	}
}

func (s *MarriageService) invalidate(ctx context.Context, churchID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.ListKey("marriages", churchID))
	}
}
