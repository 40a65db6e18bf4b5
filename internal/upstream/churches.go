package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ecclesia-app/admin-gateway/internal/models"
)

// ChurchesClient talks to the church endpoints.
type ChurchesClient struct {
	c *Client
}

// ListByMission fetches the churches owned by a mission.
func (ch *ChurchesClient) ListByMission(ctx context.Context, missionID int64) ([]models.Church, error) {
	var out []models.Church
	if err := ch.c.get(ctx, fmt.Sprintf("/churches/mission/%d", missionID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one church.
func (ch *ChurchesClient) Get(ctx context.Context, id int64) (*models.Church, error) {
	var out models.Church
	if err := ch.c.get(ctx, fmt.Sprintf("/churches/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a new church draft.
func (ch *ChurchesClient) Create(ctx context.Context, form *Form) (*models.Church, error) {
	var out models.Church
	if err := ch.c.submitForm(ctx, http.MethodPost, "/churches", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update submits an edited church draft.
func (ch *ChurchesClient) Update(ctx context.Context, id int64, form *Form) (*models.Church, error) {
	form.SetInt("id", id)
	var out models.Church
	if err := ch.c.submitForm(ctx, http.MethodPut, fmt.Sprintf("/churches/%d", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a church.
func (ch *ChurchesClient) Delete(ctx context.Context, id int64) error {
	return ch.c.deleteResource(ctx, fmt.Sprintf("/churches/%d", id))
}

// MissionsClient talks to the mission endpoints.
type MissionsClient struct {
	c *Client
}

// List fetches every mission.
func (m *MissionsClient) List(ctx context.Context) ([]models.Mission, error) {
	var out []models.Mission
	if err := m.c.get(ctx, "/missions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one mission.
func (m *MissionsClient) Get(ctx context.Context, id int64) (*models.Mission, error) {
	var out models.Mission
	if err := m.c.get(ctx, fmt.Sprintf("/missions/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a new mission draft.
func (m *MissionsClient) Create(ctx context.Context, form *Form) (*models.Mission, error) {
	var out models.Mission
	if err := m.c.submitForm(ctx, http.MethodPost, "/missions", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update submits an edited mission draft.
func (m *MissionsClient) Update(ctx context.Context, id int64, form *Form) (*models.Mission, error) {
	form.SetInt("id", id)
	var out models.Mission
	if err := m.c.submitForm(ctx, http.MethodPut, fmt.Sprintf("/missions/%d", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a mission.
func (m *MissionsClient) Delete(ctx context.Context, id int64) error {
	return m.c.deleteResource(ctx, fmt.Sprintf("/missions/%d", id))
}
