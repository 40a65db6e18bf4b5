package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// MarriageHandler exposes the marriage registry and its creation wizard.
type MarriageHandler struct {
	marriages *service.MarriageService
}

// NewMarriageHandler constructs MarriageHandler.
func NewMarriageHandler(marriages *service.MarriageService) *MarriageHandler {
	return &MarriageHandler{marriages: marriages}
}

type marriageRequest struct {
	HusbandID     int64  `json:"husband_id"`
	WifeID        int64  `json:"wife_id"`
	WeddingDate   string `json:"wedding_date"`
	Location      string `json:"location"`
	CertificateNo string `json:"certificate_no"`
	ChurchID      int64  `json:"church_id"`
}

type wizardStartRequest struct {
	ChurchID int64 `json:"church_id"`
}

type wizardFieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

// List returns one page of a church's marriage registry.
func (h *MarriageHandler) List(c *gin.Context) {
	churchID, err := queryID(c, "church_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.marriages.List(c.Request.Context(), churchID, queryFromRequest(c), refreshFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view.Items, &view.Pagination)
}

// Get returns one marriage record.
func (h *MarriageHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	marriage, err := h.marriages.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marriage, nil)
}

// StartWizard opens a creation wizard for the church.
func (h *MarriageHandler) StartWizard(c *gin.Context) {
	var req wizardStartRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChurchID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "church_id is required"))
		return
	}
	response.Created(c, h.marriages.StartWizard(req.ChurchID))
}

// SetWizardFields replaces draft fields on an open wizard.
func (h *MarriageHandler) SetWizardFields(c *gin.Context) {
	var req wizardFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	state, err := h.marriages.UpdateWizard(c.Param("wizardId"), req.Fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// AdvanceWizard validates the current step and moves forward. A violated
// step returns the field errors together with the unchanged state.
func (h *MarriageHandler) AdvanceWizard(c *gin.Context) {
	state, err := h.marriages.Advance(c.Param("wizardId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// BackWizard returns to the previous step.
func (h *MarriageHandler) BackWizard(c *gin.Context) {
	state, err := h.marriages.Back(c.Param("wizardId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// SubmitWizard performs the final write from the confirm step.
func (h *MarriageHandler) SubmitWizard(c *gin.Context) {
	marriage, err := h.marriages.SubmitWizard(c.Request.Context(), c.Param("wizardId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, marriage)
}

// CancelWizard disposes of an open wizard.
func (h *MarriageHandler) CancelWizard(c *gin.Context) {
	h.marriages.CancelWizard(c.Param("wizardId"))
	response.NoContent(c)
}

// Update edits an existing marriage record.
func (h *MarriageHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req marriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := requireScopeID(req.ChurchID, "church_id"); err != nil {
		response.Error(c, err)
		return
	}
	marriage, err := h.marriages.Update(c.Request.Context(), id, req.ChurchID, service.MarriageInput{
		HusbandID:     req.HusbandID,
		WifeID:        req.WifeID,
		WeddingDate:   req.WeddingDate,
		Location:      req.Location,
		CertificateNo: req.CertificateNo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marriage, nil)
}

// Delete removes a marriage record.
func (h *MarriageHandler) Delete(c *gin.Context) {
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
	if err := h.marriages.Delete(c.Request.Context(), id, churchID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
