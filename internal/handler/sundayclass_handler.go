package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// SundayClassHandler exposes the Sunday-school endpoints.
type SundayClassHandler struct {
	classes *service.SundayClassService
}

// NewSundayClassHandler constructs SundayClassHandler.
func NewSundayClassHandler(classes *service.SundayClassService) *SundayClassHandler {
	return &SundayClassHandler{classes: classes}
}

type sundayClassRequest struct {
	Name     string `json:"name"`
	Teacher  string `json:"teacher"`
	AgeGroup string `json:"age_group"`
	Room     string `json:"room"`
	Schedule string `json:"schedule"`
	ChurchID int64  `json:"church_id"`
}

// List returns one page of a church's Sunday classes.
func (h *SundayClassHandler) List(c *gin.Context) {
	churchID, err := queryID(c, "church_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.classes.List(c.Request.Context(), churchID, queryFromRequest(c), refreshFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// Get returns one Sunday class.
func (h *SundayClassHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.classes.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create opens and submits the class form.
func (h *SundayClassHandler) Create(c *gin.Context) {
	var req sundayClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req.ChurchID, sundayClassInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update edits an existing class.
func (h *SundayClassHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req sundayClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.classes.Update(c.Request.Context(), id, req.ChurchID, sundayClassInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete removes a Sunday class.
func (h *SundayClassHandler) Delete(c *gin.Context) {
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
	if err := h.classes.Delete(c.Request.Context(), id, churchID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func sundayClassInput(req sundayClassRequest) service.SundayClassInput {
	return service.SundayClassInput{
		Name:     req.Name,
		Teacher:  req.Teacher,
		AgeGroup: req.AgeGroup,
		Room:     req.Room,
		Schedule: req.Schedule,
	}
}
