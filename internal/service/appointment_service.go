package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ecclesia-app/admin-gateway/internal/cache"
	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/form"
	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
)

// appointmentStore is the upstream surface the appointment service depends on.
type appointmentStore interface {
	ListByChurch(ctx context.Context, churchID int64) ([]models.Appointment, error)
	Get(ctx context.Context, id int64) (*models.Appointment, error)
	Create(ctx context.Context, form *upstream.Form) (*models.Appointment, error)
	Update(ctx context.Context, id int64, form *upstream.Form) (*models.Appointment, error)
	Delete(ctx context.Context, id int64) error
}

// AppointmentService drives the agenda pages.
type AppointmentService struct {
	appointments appointmentStore
	cache        snapshotCache
	lists        config.ListConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewAppointmentService creates an appointment service.
func NewAppointmentService(appointments appointmentStore, cache snapshotCache, lists config.ListConfig, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{
		appointments: appointments,
		cache:        cache,
		lists:        lists,
		logger:       logger,
		now:          time.Now,
	}
}

// AppointmentInput carries the fields of the appointment create/edit form.
// Times travel as RFC 3339 strings the way the dashboard sends them.
type AppointmentInput struct {
	Title       string
	Description string
	StartTime   string
	EndTime     string
	Location    string
}

func (s *AppointmentService) descriptor() collection.Descriptor[models.Appointment] {
	now := s.now().UTC()
	return collection.Descriptor[models.Appointment]{
		SearchFields: []func(models.Appointment) string{
			func(a models.Appointment) string { return a.Title },
			func(a models.Appointment) string { return a.Description },
			func(a models.Appointment) string { return a.Location },
		},
		Filters: map[string]func(models.Appointment, string) bool{
			"status": func(a models.Appointment, v string) bool {
				return strings.EqualFold(string(a.Status(now)), v)
			},
		},
		Sorters: map[string]func(a, b models.Appointment) bool{
			"start_time": func(a, b models.Appointment) bool { return a.StartTime.Before(b.StartTime) },
			"title":      func(a, b models.Appointment) bool { return a.Title < b.Title },
		},
		DefaultSort:     "start_time",
		DefaultPageSize: s.lists.DefaultPageSize,
		MaxPageSize:     s.lists.MaxPageSize,
	}
}

func (s *AppointmentService) rules() []form.Rule {
	return []form.Rule{
		form.Required("title", "le titre est requis"),
		form.Required("start_time", "l'heure de début est requise"),
		form.ValidDateTime("start_time", "heure de début invalide"),
		form.Required("end_time", "l'heure de fin est requise"),
		form.ValidDateTime("end_time", "heure de fin invalide"),
		form.TimeRange("start_time", "end_time", "la fin doit suivre le début"),
	}
}

// List returns one page of the church's agenda.
func (s *AppointmentService) List(ctx context.Context, churchID int64, q collection.Query, refresh bool) (collection.View[models.Appointment], error) {
	items, err := s.snapshot(ctx, churchID, refresh)
	if err != nil {
		return collection.View[models.Appointment]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Filtered returns the full filtered agenda for export.
func (s *AppointmentService) Filtered(ctx context.Context, churchID int64, q collection.Query) ([]models.Appointment, error) {
	items, err := s.snapshot(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, q, s.descriptor()), nil
}

func (s *AppointmentService) snapshot(ctx context.Context, churchID int64, refresh bool) ([]models.Appointment, error) {
	key := cache.ListKey("appointments", churchID)
	return listSnapshot(ctx, s.cache, key, refresh, func(ctx context.Context) ([]models.Appointment, error) {
		return s.appointments.ListByChurch(ctx, churchID)
	})
}

// Get fetches one appointment.
func (s *AppointmentService) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	return s.appointments.Get(ctx, id)
}

// Create validates the draft and performs the single upstream write.
func (s *AppointmentService) Create(ctx context.Context, churchID int64, in AppointmentInput) (*models.Appointment, error) {
	session := form.NewSession(form.ModeCreate, 0, s.rules(), 0)
	s.fill(session, churchID, in)

	var created *models.Appointment
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		appointment, err := s.appointments.Create(ctx, f)
		if err != nil {
			return err
		}
		created = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	return created, nil
}

// Update edits an existing appointment.
func (s *AppointmentService) Update(ctx context.Context, id, churchID int64, in AppointmentInput) (*models.Appointment, error) {
	session := form.NewSession(form.ModeEdit, id, s.rules(), 0)
	s.fill(session, churchID, in)

	var updated *models.Appointment
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		appointment, err := s.appointments.Update(ctx, id, f)
		if err != nil {
			return err
		}
		updated = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	return updated, nil
}

func (s *AppointmentService) fill(session *form.Session, churchID int64, in AppointmentInput) {
	session.SetField("title", in.Title)
	session.SetField("description", in.Description)
	session.SetField("start_time", in.StartTime)
	session.SetField("end_time", in.EndTime)
	session.SetField("location", in.Location)
	session.SetField("church_id", formatID(churchID))
}

// Delete removes an appointment.
func (s *AppointmentService) Delete(ctx context.Context, id, churchID int64) error {
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, churchID)
	return nil
}

func (s *AppointmentService) invalidate(ctx context.Context, churchID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.ListKey("appointments", churchID))
	}
}
