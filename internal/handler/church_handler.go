package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// ChurchHandler exposes the church endpoints.
type ChurchHandler struct {
	churches *service.ChurchService
}

// NewChurchHandler constructs ChurchHandler.
func NewChurchHandler(churches *service.ChurchService) *ChurchHandler {
	return &ChurchHandler{churches: churches}
}

type churchRequest struct {
	Name      string `json:"name"`
	City      string `json:"city"`
	Address   string `json:"address"`
	Pastor    string `json:"pastor"`
	MissionID int64  `json:"mission_id"`
}

// List returns one page of a mission's churches.
func (h *ChurchHandler) List(c *gin.Context) {
	missionID, err := queryID(c, "mission_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.churches.List(c.Request.Context(), missionID, queryFromRequest(c), refreshFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// Get returns one church.
func (h *ChurchHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	church, err := h.churches.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, church, nil)
}

// Create opens and submits the church form.
func (h *ChurchHandler) Create(c *gin.Context) {
	var req churchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.MissionID, "mission_id"); err != nil {
		response.Error(c, err)
		return
	}
	church, err := h.churches.Create(c.Request.Context(), req.MissionID, churchInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, church)
}

// Update edits an existing church.
func (h *ChurchHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req churchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.MissionID, "mission_id"); err != nil {
		response.Error(c, err)
		return
	}
	church, err := h.churches.Update(c.Request.Context(), id, req.MissionID, churchInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, church, nil)
}

// Delete removes a church.
func (h *ChurchHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	missionID, err := queryID(c, "mission_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.churches.Delete(c.Request.Context(), id, missionID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func churchInput(req churchRequest) service.ChurchInput {
	return service.ChurchInput{
		Name:    req.Name,
		City:    req.City,
		Address: req.Address,
		Pastor:  req.Pastor,
	}
}
