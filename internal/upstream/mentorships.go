package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ecclesia-app/admin-gateway/internal/models"
)

// MentorshipsClient talks to the Timothée/Tite pairing endpoints. The
// relation has its own resource path instead of reusing the tithe endpoint
// the legacy dashboard leaned on.
type MentorshipsClient struct {
	c *Client
}

// ListByChurch fetches the pairings of a church.
func (m *MentorshipsClient) ListByChurch(ctx context.Context, churchID int64) ([]models.Mentorship, error) {
	var out []models.Mentorship
	if err := m.c.get(ctx, fmt.Sprintf("/mentorships/church/%d", churchID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one pairing.
func (m *MentorshipsClient) Get(ctx context.Context, id int64) (*models.Mentorship, error) {
	var out models.Mentorship
	if err := m.c.get(ctx, fmt.Sprintf("/mentorships/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pair creates a mentorship between a Timothée and a Tite.
func (m *MentorshipsClient) Pair(ctx context.Context, churchID, mentorID, menteeID int64) (*models.Mentorship, error) {
	payload := map[string]int64{
		"church_id": churchID,
		"mentor_id": mentorID,
		"mentee_id": menteeID,
	}
	var out models.Mentorship
	if err := m.c.sendJSON(ctx, http.MethodPost, "/mentorships", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unpair dissolves a mentorship.
func (m *MentorshipsClient) Unpair(ctx context.Context, id int64) error {
	return m.c.deleteResource(ctx, fmt.Sprintf("/mentorships/%d", id))
}
