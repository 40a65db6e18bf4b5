package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// MentorshipHandler exposes the Timothée/Tite pairing endpoints.
type MentorshipHandler struct {
	mentorships *service.MentorshipService
}

// NewMentorshipHandler constructs MentorshipHandler.
func NewMentorshipHandler(mentorships *service.MentorshipService) *MentorshipHandler {
	return &MentorshipHandler{mentorships: mentorships}
}

type pairRequest struct {
	ChurchID int64 `json:"church_id"`
	MentorID int64 `json:"mentor_id"`
	MenteeID int64 `json:"mentee_id"`
}

// List returns one page of a church's pairings.
func (h *MentorshipHandler) List(c *gin.Context) {
	churchID, err := queryID(c, "church_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.mentorships.List(c.Request.Context(), churchID, queryFromRequest(c), refreshFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// Pair establishes a mentorship.
func (h *MentorshipHandler) Pair(c *gin.Context) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	pairing, err := h.mentorships.Pair(c.Request.Context(), service.PairInput{
		ChurchID: req.ChurchID,
		MentorID: req.MentorID,
		MenteeID: req.MenteeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pairing)
}

// Unpair dissolves a mentorship.
func (h *MentorshipHandler) Unpair(c *gin.Context) {
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
	if err := h.mentorships.Unpair(c.Request.Context(), id, churchID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
