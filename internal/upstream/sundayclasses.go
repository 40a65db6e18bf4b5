package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ecclesia-app/admin-gateway/internal/models"
)

// SundayClassesClient talks to the Sunday-school class endpoints.
type SundayClassesClient struct {
	c *Client
}

// ListByChurch fetches the Sunday classes of a church.
func (s *SundayClassesClient) ListByChurch(ctx context.Context, churchID int64) ([]models.SundayClass, error) {
	var out []models.SundayClass
	if err := s.c.get(ctx, fmt.Sprintf("/sunday-classes/church/%d", churchID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one Sunday class.
func (s *SundayClassesClient) Get(ctx context.Context, id int64) (*models.SundayClass, error) {
	var out models.SundayClass
	if err := s.c.get(ctx, fmt.Sprintf("/sunday-classes/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a new Sunday class draft.
func (s *SundayClassesClient) Create(ctx context.Context, form *Form) (*models.SundayClass, error) {
	var out models.SundayClass
	if err := s.c.submitForm(ctx, http.MethodPost, "/sunday-classes", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update submits an edited Sunday class draft.
func (s *SundayClassesClient) Update(ctx context.Context, id int64, form *Form) (*models.SundayClass, error) {
	form.SetInt("id", id)
	var out models.SundayClass
	if err := s.c.submitForm(ctx, http.MethodPut, fmt.Sprintf("/sunday-classes/%d", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a Sunday class.
func (s *SundayClassesClient) Delete(ctx context.Context, id int64) error {
	return s.c.deleteResource(ctx, fmt.Sprintf("/sunday-classes/%d", id))
}
