package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// AppointmentHandler exposes the agenda endpoints.
type AppointmentHandler struct {
	appointments *service.AppointmentService
}

// NewAppointmentHandler constructs AppointmentHandler.
func NewAppointmentHandler(appointments *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

type appointmentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	ChurchID    int64  `json:"church_id"`
}

// List returns one page of a church's agenda.
func (h *AppointmentHandler) List(c *gin.Context) {
	churchID, err := queryID(c, "church_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.appointments.List(c.Request.Context(), churchID, queryFromRequest(c), refreshFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// Get returns one appointment.
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	appointment, err := h.appointments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

// Create opens and submits the appointment form.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	appointment, err := h.appointments.Create(c.Request.Context(), req.ChurchID, appointmentInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appointment)
}

// Update edits an existing appointment.
func (h *AppointmentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	appointment, err := h.appointments.Update(c.Request.Context(), id, req.ChurchID, appointmentInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

// Delete removes an appointment.
func (h *AppointmentHandler) Delete(c *gin.Context) {
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
	if err := h.appointments.Delete(c.Request.Context(), id, churchID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func appointmentInput(req appointmentRequest) service.AppointmentInput {
	return service.AppointmentInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
	}
}
