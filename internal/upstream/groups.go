package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ecclesia-app/admin-gateway/internal/models"
)

// GroupsClient talks to the group endpoints, including membership moves.
type GroupsClient struct {
	c *Client
}

// ListByChurch fetches all groups of a church.
func (g *GroupsClient) ListByChurch(ctx context.Context, churchID int64) ([]models.Group, error) {
	var out []models.Group
	if err := g.c.get(ctx, fmt.Sprintf("/groups/church/%d", churchID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches the detail record, including current member ids, used for
// transfer precondition checks.
func (g *GroupsClient) Get(ctx context.Context, id int64) (*models.GroupDetail, error) {
	var out models.GroupDetail
	if err := g.c.get(ctx, fmt.Sprintf("/groups/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a new group draft. Drafts with an image go out as
// multipart form data.
func (g *GroupsClient) Create(ctx context.Context, form *Form) (*models.Group, error) {
	var out models.Group
	if err := g.c.submitForm(ctx, http.MethodPost, "/groups", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update submits an edited group draft targeting the given record.
func (g *GroupsClient) Update(ctx context.Context, id int64, form *Form) (*models.Group, error) {
	form.SetInt("id", id)
	var out models.Group
	if err := g.c.submitForm(ctx, http.MethodPut, fmt.Sprintf("/groups/%d", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a group.
func (g *GroupsClient) Delete(ctx context.Context, id int64) error {
	return g.c.deleteResource(ctx, fmt.Sprintf("/groups/%d", id))
}

// AddMember enrolls a member into a group.
func (g *GroupsClient) AddMember(ctx context.Context, groupID, memberID int64) error {
	payload := map[string]int64{"member_id": memberID}
	return g.c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/groups/%d/members", groupID), payload, nil)
}

// RemoveMember removes a member from a group.
func (g *GroupsClient) RemoveMember(ctx context.Context, groupID, memberID int64) error {
	return g.c.deleteResource(ctx, fmt.Sprintf("/groups/%d/members/%d", groupID, memberID))
}

// TransferMember moves a member from one group to another in a single
// upstream write.
func (g *GroupsClient) TransferMember(ctx context.Context, memberID, fromGroupID, toGroupID int64) error {
	payload := map[string]int64{
		"member_id":     memberID,
		"from_group_id": fromGroupID,
		"to_group_id":   toGroupID,
	}
	return g.c.sendJSON(ctx, http.MethodPost, "/groups/transfer", payload, nil)
}
