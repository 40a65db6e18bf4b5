package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// MissionHandler exposes the mission directory endpoints.
type MissionHandler struct {
	missions *service.MissionService
}

// NewMissionHandler constructs MissionHandler.
func NewMissionHandler(missions *service.MissionService) *MissionHandler {
	return &MissionHandler{missions: missions}
}

type missionRequest struct {
	Name      string `json:"name"`
	President string `json:"president"`
	Region    string `json:"region"`
}

// List returns one page of the mission directory.
func (h *MissionHandler) List(c *gin.Context) {
	view, err := h.missions.List(c.Request.Context(), queryFromRequest(c), refreshFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// Get returns one mission.
func (h *MissionHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	mission, err := h.missions.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mission, nil)
}

// Create opens and submits the mission form.
func (h *MissionHandler) Create(c *gin.Context) {
	var req missionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mission, err := h.missions.Create(c.Request.Context(), missionInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mission)
}

// Update edits an existing mission.
func (h *MissionHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req missionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mission, err := h.missions.Update(c.Request.Context(), id, missionInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mission, nil)
}

// Delete removes a mission.
func (h *MissionHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.missions.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func missionInput(req missionRequest) service.MissionInput {
	return service.MissionInput{
		Name:      req.Name,
		President: req.President,
		Region:    req.Region,
	}
}
