package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ecclesia-app/admin-gateway/internal/models"
)

// MarriagesClient talks to the marriage registry endpoints.
type MarriagesClient struct {
	c *Client
}

// ListByChurch fetches the marriages registered in a church.
func (m *MarriagesClient) ListByChurch(ctx context.Context, churchID int64) ([]models.Marriage, error) {
	var out []models.Marriage
	if err := m.c.get(ctx, fmt.Sprintf("/marriages/church/%d", churchID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one marriage record.
func (m *MarriagesClient) Get(ctx context.Context, id int64) (*models.Marriage, error) {
	var out models.Marriage
	if err := m.c.get(ctx, fmt.Sprintf("/marriages/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a new marriage draft.
func (m *MarriagesClient) Create(ctx context.Context, form *Form) (*models.Marriage, error) {
	var out models.Marriage
	if err := m.c.submitForm(ctx, http.MethodPost, "/marriages", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update submits an edited marriage draft.
func (m *MarriagesClient) Update(ctx context.Context, id int64, form *Form) (*models.Marriage, error) {
	form.SetInt("id", id)
	var out models.Marriage
	if err := m.c.submitForm(ctx, http.MethodPut, fmt.Sprintf("/marriages/%d", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a marriage record.
func (m *MarriagesClient) Delete(ctx context.Context, id int64) error {
	return m.c.deleteResource(ctx, fmt.Sprintf("/marriages/%d", id))
}

// AppointmentsClient talks to the appointment endpoints.
type AppointmentsClient struct {
	c *Client
}

// ListByChurch fetches the appointments of a church.
func (a *AppointmentsClient) ListByChurch(ctx context.Context, churchID int64) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := a.c.get(ctx, fmt.Sprintf("/appointments/church/%d", churchID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one appointment.
func (a *AppointmentsClient) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	var out models.Appointment
	if err := a.c.get(ctx, fmt.Sprintf("/appointments/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a new appointment draft.
func (a *AppointmentsClient) Create(ctx context.Context, form *Form) (*models.Appointment, error) {
	var out models.Appointment
	if err := a.c.submitForm(ctx, http.MethodPost, "/appointments", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update submits an edited appointment draft.
func (a *AppointmentsClient) Update(ctx context.Context, id int64, form *Form) (*models.Appointment, error) {
	form.SetInt("id", id)
	var out models.Appointment
	if err := a.c.submitForm(ctx, http.MethodPut, fmt.Sprintf("/appointments/%d", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an appointment.
func (a *AppointmentsClient) Delete(ctx context.Context, id int64) error {
	return a.c.deleteResource(ctx, fmt.Sprintf("/appointments/%d", id))
}

// DeathsClient talks to the death registry endpoints.
type DeathsClient struct {
	c *Client
}

// ListByChurch fetches the death records of a church.
func (d *DeathsClient) ListByChurch(ctx context.Context, churchID int64) ([]models.Death, error) {
	var out []models.Death
	if err := d.c.get(ctx, fmt.Sprintf("/deaths/church/%d", churchID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one death record.
func (d *DeathsClient) Get(ctx context.Context, id int64) (*models.Death, error) {
	var out models.Death
	if err := d.c.get(ctx, fmt.Sprintf("/deaths/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a new death record draft.
func (d *DeathsClient) Create(ctx context.Context, form *Form) (*models.Death, error) {
	var out models.Death
	if err := d.c.submitForm(ctx, http.MethodPost, "/deaths", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update submits an edited death record draft.
func (d *DeathsClient) Update(ctx context.Context, id int64, form *Form) (*models.Death, error) {
	form.SetInt("id", id)
	var out models.Death
	if err := d.c.submitForm(ctx, http.MethodPut, fmt.Sprintf("/deaths/%d", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a death record.
func (d *DeathsClient) Delete(ctx context.Context, id int64) error {
	return d.c.deleteResource(ctx, fmt.Sprintf("/deaths/%d", id))
}
