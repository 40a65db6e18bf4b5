package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// GroupHandler exposes the group endpoints.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler constructs GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AgeGroup    string `json:"age_group"`
	Minister    string `json:"minister"`
	ChurchID    int64  `json:"church_id"`
}

type groupMemberRequest struct {
	MemberID int64 `json:"member_id"`
	ChurchID int64 `json:"church_id"`
}

type groupTransferRequest struct {
	MemberID  int64 `json:"member_id"`
	ToGroupID int64 `json:"to_group_id"`
	ChurchID  int64 `json:"church_id"`
}

// List returns one page of a church's groups.
func (h *GroupHandler) List(c *gin.Context) {
	churchID, err := queryID(c, "church_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.groups.List(c.Request.Context(), churchID, queryFromRequest(c), refreshFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// Get returns one group with its current members.
func (h *GroupHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	group, err := h.groups.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Create opens and submits the group form. A request with an image arrives
// as multipart form data.
func (h *GroupHandler) Create(c *gin.Context) {
	in, churchID, err := bindGroupInput(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	group, err := h.groups.Create(c.Request.Context(), churchID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update edits an existing group.
func (h *GroupHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	in, churchID, err := bindGroupInput(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	group, err := h.groups.Update(c.Request.Context(), id, churchID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Delete removes a group.
func (h *GroupHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	churchID, err := queryID(c, "church_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.groups.Delete(c.Request.Context(), id, churchID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddMember enrolls a member into the group.
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req groupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.groups.AddMember(c.Request.Context(), req.ChurchID, groupID, req.MemberID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveMember removes a member from the group.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	memberID, err := pathID(c, "memberId")
	if err != nil {
		response.Error(c, err)
		return
	}
	churchID, err := queryID(c, "church_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.groups.RemoveMember(c.Request.Context(), churchID, groupID, memberID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Transfer moves a member from this group into another.
func (h *GroupHandler) Transfer(c *gin.Context) {
	fromGroupID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req groupTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	err = h.groups.Transfer(c.Request.Context(), service.TransferInput{
		ChurchID:    req.ChurchID,
		MemberID:    req.MemberID,
		FromGroupID: fromGroupID,
		ToGroupID:   req.ToGroupID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindGroupInput(c *gin.Context) (service.GroupInput, int64, error) {
	if isMultipart(c) {
		image, err := formFilePart(c, "image")
		if err != nil {
			return service.GroupInput{}, 0, err
		}
		churchID, err := parseFormID(c, "church_id")
		if err != nil {
			return service.GroupInput{}, 0, err
		}
		return service.GroupInput{
			Name:        c.PostForm("name"),
			Description: c.PostForm("description"),
			AgeGroup:    c.PostForm("age_group"),
			Minister:    c.PostForm("minister"),
			Image:       image,
		}, churchID, nil
	}

	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return service.GroupInput{}, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		return service.GroupInput{}, 0, err
	}
	return service.GroupInput{
		Name:        req.Name,
		Description: req.Description,
		AgeGroup:    req.AgeGroup,
		Minister:    req.Minister,
	}, req.ChurchID, nil
}
