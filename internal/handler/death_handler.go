package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// DeathHandler exposes the death registry endpoints.
type DeathHandler struct {
	deaths *service.DeathService
}

// NewDeathHandler constructs DeathHandler.
func NewDeathHandler(deaths *service.DeathService) *DeathHandler {
	return &DeathHandler{deaths: deaths}
}

type deathRequest struct {
	MemberID int64  `json:"member_id"`
	Date     string `json:"date"`
	Note     string `json:"note"`
	ChurchID int64  `json:"church_id"`
}

// List returns one page of a church's death registry.
func (h *DeathHandler) List(c *gin.Context) {
	churchID, err := queryID(c, "church_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.deaths.List(c.Request.Context(), churchID, queryFromRequest(c), refreshFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// Get returns one death record.
func (h *DeathHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	death, err := h.deaths.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, death, nil)
}

// Create opens and submits the death record form.
func (h *DeathHandler) Create(c *gin.Context) {
	var req deathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	death, err := h.deaths.Create(c.Request.Context(), req.ChurchID, deathInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, death)
}

// Update edits an existing death record.
func (h *DeathHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req deathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	death, err := h.deaths.Update(c.Request.Context(), id, req.ChurchID, deathInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, death, nil)
}

// Delete removes a death record.
func (h *DeathHandler) Delete(c *gin.Context) {
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
	if err := h.deaths.Delete(c.Request.Context(), id, churchID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func deathInput(req deathRequest) service.DeathInput {
	return service.DeathInput{
		MemberID: req.MemberID,
		Date:     req.Date,
		Note:     req.Note,
	}
}
