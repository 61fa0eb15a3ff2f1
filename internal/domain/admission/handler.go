package admission

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/xiaodeng873/care-suite-sub002/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "nurse", "caregiver"))
	read.GET("/patients/:id/absences", h.ListIntervals)
	read.GET("/patients/:id/absences/check", h.CheckAbsence)

	write := api.Group("", auth.RequireRole("admin", "nurse"))
	write.POST("/absence-events", h.RecordEvent)
	write.POST("/patients/:id/absences", h.CreateInterval)
}

func (h *Handler) RecordEvent(c echo.Context) error {
	var ev AbsenceEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	iv, err := h.svc.RecordEvent(c.Request().Context(), &ev)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, iv)
}

func (h *Handler) CreateInterval(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var iv AbsenceInterval
	if err := c.Bind(&iv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	iv.PatientID = pid
	if err := h.svc.CreateInterval(c.Request().Context(), &iv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, iv)
}

func (h *Handler) ListIntervals(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListIntervals(c.Request().Context(), pid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// CheckAbsence answers "was the patient out at this instant"; at
// defaults to now when the query parameter is omitted.
func (h *Handler) CheckAbsence(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	at := time.Now()
	if raw := c.QueryParam("at"); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid at timestamp")
		}
	}
	absent, err := h.svc.CheckAbsence(c.Request().Context(), pid, at)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"patient_id": pid, "at": at, "absent": absent})
}
