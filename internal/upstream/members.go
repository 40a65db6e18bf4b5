package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ecclesia-app/admin-gateway/internal/models"
)

// MembersClient talks to the member roster endpoints.
type MembersClient struct {
	c *Client
}

// ListByChurch fetches the full member roster of a church.
func (m *MembersClient) ListByChurch(ctx context.Context, churchID int64) ([]models.Member, error) {
	var out []models.Member
	if err := m.c.get(ctx, fmt.Sprintf("/members/church/%d", churchID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByGroup fetches the members of one group.
func (m *MembersClient) ListByGroup(ctx context.Context, groupID int64) ([]models.Member, error) {
	var out []models.Member
	if err := m.c.get(ctx, fmt.Sprintf("/members/group/%d", groupID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches the detail record used for precondition checks.
func (m *MembersClient) Get(ctx context.Context, id int64) (*models.MemberDetail, error) {
	var out models.MemberDetail
	if err := m.c.get(ctx, fmt.Sprintf("/members/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a new member draft. Drafts with a photo go out as
// multipart form data.
func (m *MembersClient) Create(ctx context.Context, form *Form) (*models.Member, error) {
	var out models.Member
	if err := m.c.submitForm(ctx, http.MethodPost, "/members", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update submits an edited member draft targeting the given record.
func (m *MembersClient) Update(ctx context.Context, id int64, form *Form) (*models.Member, error) {
	form.SetInt("id", id)
	var out models.Member
	if err := m.c.submitForm(ctx, http.MethodPut, fmt.Sprintf("/members/%d", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a member record.
func (m *MembersClient) Delete(ctx context.Context, id int64) error {
	return m.c.deleteResource(ctx, fmt.Sprintf("/members/%d", id))
}
