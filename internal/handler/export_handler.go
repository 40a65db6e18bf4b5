package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecclesia-app/admin-gateway/internal/service"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
	"github.com/ecclesia-app/admin-gateway/pkg/export"
	"github.com/ecclesia-app/admin-gateway/pkg/response"
)

// ExportHandler renders the currently filtered collection of any list page
// into a download. It reuses the same query parsing as the list endpoints so
// the exported subset matches what the dashboard shows.
type ExportHandler struct {
	exports      *service.ExportService
	groups       *service.GroupService
	members      *service.MemberService
	mentorships  *service.MentorshipService
	marriages    *service.MarriageService
	appointments *service.AppointmentService
	classes      *service.SundayClassService
	deaths       *service.DeathService
	churches     *service.ChurchService
	missions     *service.MissionService
	now          func() time.Time
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(
	exports *service.ExportService,
	groups *service.GroupService,
	members *service.MemberService,
	mentorships *service.MentorshipService,
	marriages *service.MarriageService,
	appointments *service.AppointmentService,
	classes *service.SundayClassService,
	deaths *service.DeathService,
	churches *service.ChurchService,
	missions *service.MissionService,
) *ExportHandler {
	return &ExportHandler{
		exports:      exports,
		groups:       groups,
		members:      members,
		mentorships:  mentorships,
		marriages:    marriages,
		appointments: appointments,
		classes:      classes,
		deaths:       deaths,
		churches:     churches,
		missions:     missions,
		now:          time.Now,
	}
}

// Download renders one resource's filtered collection in the requested
// format and serves it as an attachment.
func (h *ExportHandler) Download(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
		return
	}

	data, err := h.dataset(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.exports.Render(format, data)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Bytes)
}

func (h *ExportHandler) dataset(c *gin.Context) (export.Dataset, error) {
	ctx := c.Request.Context()
	q := queryFromRequest(c)
	now := h.now().UTC()

	switch c.Param("resource") {
	case "groups":
		churchID, err := queryID(c, "church_id")
		if err != nil {
			return export.Dataset{}, err
		}
		items, err := h.groups.Filtered(ctx, churchID, q)
		if err != nil {
			return export.Dataset{}, err
		}
		return service.GroupDataset(items, now), nil

	case "members":
		churchID, err := queryID(c, "church_id")
		if err != nil {
			return export.Dataset{}, err
		}
		items, err := h.members.Filtered(ctx, churchID, q)
		if err != nil {
			return export.Dataset{}, err
		}
		return service.MemberDataset(items, now), nil

	case "mentorships":
		churchID, err := queryID(c, "church_id")
		if err != nil {
			return export.Dataset{}, err
		}
		items, err := h.mentorships.Filtered(ctx, churchID, q)
		if err != nil {
			return export.Dataset{}, err
		}
		return service.MentorshipDataset(items, now), nil

	case "marriages":
		churchID, err := queryID(c, "church_id")
		if err != nil {
			return export.Dataset{}, err
		}
		items, err := h.marriages.Filtered(ctx, churchID, q)
		if err != nil {
			return export.Dataset{}, err
		}
		return service.MarriageDataset(items, now), nil

	case "appointments":
		churchID, err := queryID(c, "church_id")
		if err != nil {
			return export.Dataset{}, err
		}
		items, err := h.appointments.Filtered(ctx, churchID, q)
		if err != nil {
			return export.Dataset{}, err
		}
		return service.AppointmentDataset(items, now), nil

	case "sunday-classes":
		churchID, err := queryID(c, "church_id")
		if err != nil {
			return export.Dataset{}, err
		}
		items, err := h.classes.Filtered(ctx, churchID, q)
		if err != nil {
			return export.Dataset{}, err
		}
		return service.SundayClassDataset(items, now), nil

	case "deaths":
		churchID, err := queryID(c, "church_id")
		if err != nil {
			return export.Dataset{}, err
		}
		items, err := h.deaths.Filtered(ctx, churchID, q)
		if err != nil {
			return export.Dataset{}, err
		}
		return service.DeathDataset(items, now), nil

	case "churches":
		missionID, err := queryID(c, "mission_id")
		if err != nil {
			return export.Dataset{}, err
		}
		items, err := h.churches.Filtered(ctx, missionID, q)
		if err != nil {
			return export.Dataset{}, err
		}
		return service.ChurchDataset(items, now), nil

	case "missions":
		items, err := h.missions.Filtered(ctx, q)
		if err != nil {
			return export.Dataset{}, err
		}
		return service.MissionDataset(items, now), nil

	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrNotFound, "unknown export resource")
	}
}
