package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// MemberHandler exposes the roster endpoints.
type MemberHandler struct {
	members *service.MemberService
}

// NewMemberHandler constructs MemberHandler.
func NewMemberHandler(members *service.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

type memberRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birth_date"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	ChurchID  int64  `json:"church_id"`
}

// List returns one page of a church's roster.
func (h *MemberHandler) List(c *gin.Context) {
	churchID, err := queryID(c, "church_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.members.List(c.Request.Context(), churchID, queryFromRequest(c), refreshFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// ListByGroup returns one page of a group's members.
func (h *MemberHandler) ListByGroup(c *gin.Context) {
	groupID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.members.ListByGroup(c.Request.Context(), groupID, queryFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// Get returns one member with group membership and a resolved photo URL.
func (h *MemberHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	member, err := h.members.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{}
	if url := h.members.AssetURL(member.PhotoPath); url != "" {
		meta["photo_url"] = url
	}
	response.JSON(c, http.StatusOK, member, nil, meta)
}

// Create opens and submits the member form. A request with a photo arrives
// as multipart form data.
func (h *MemberHandler) Create(c *gin.Context) {
	in, churchID, err := bindMemberInput(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	member, err := h.members.Create(c.Request.Context(), churchID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update edits an existing member.
func (h *MemberHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	in, churchID, err := bindMemberInput(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	member, err := h.members.Update(c.Request.Context(), id, churchID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Delete removes a member record.
func (h *MemberHandler) Delete(c *gin.Context) {
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
	if err := h.members.Delete(c.Request.Context(), id, churchID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindMemberInput(c *gin.Context) (service.MemberInput, int64, error) {
	if isMultipart(c) {
		photo, err := formFilePart(c, "photo")
		if err != nil {
			return service.MemberInput{}, 0, err
		}
		churchID, err := parseFormID(c, "church_id")
		if err != nil {
			return service.MemberInput{}, 0, err
		}
		return service.MemberInput{
			FirstName: c.PostForm("first_name"),
			LastName:  c.PostForm("last_name"),
			Gender:    c.PostForm("gender"),
			BirthDate: c.PostForm("birth_date"),
			Phone:     c.PostForm("phone"),
			Email:     c.PostForm("email"),
			Address:   c.PostForm("address"),
			Photo:     photo,
		}, churchID, nil
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return service.MemberInput{}, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		return service.MemberInput{}, 0, err
	}
	return service.MemberInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	}, req.ChurchID, nil
}
