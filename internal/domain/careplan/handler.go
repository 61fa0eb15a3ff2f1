package careplan

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/xiaodeng873/care-suite-sub002/internal/platform/auth"
	"github.com/xiaodeng873/care-suite-sub002/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "nurse", "caregiver"))
	read.GET("/care-plans", h.ListPlans)
	read.GET("/care-plans/:id", h.GetPlan)
	read.GET("/care-plans/:id/schedule", h.PlanSchedule)
	read.GET("/care-plans/:id/history", h.PlanHistory)
	read.GET("/care-plans/:id/problems", h.ListProblems)
	read.GET("/care-plans/:id/review-status", h.PlanReviewStatus)
	read.GET("/care-plans/:id/nursing-needs", h.ListNeedSettings)
	read.GET("/nursing-need-items", h.ListNeedItems)

	write := api.Group("", auth.RequireRole("admin", "nurse"))
	write.POST("/care-plans", h.CreatePlan)
	write.POST("/care-plans/preview", h.Preview)
	write.PUT("/care-plans/:id", h.UpdatePlan)
	write.DELETE("/care-plans/:id", h.DeletePlan)
	write.POST("/care-plans/:id/duplicate", h.DuplicatePlan)
	write.POST("/care-plans/:id/archive", h.ArchivePlan)
	write.POST("/care-plans/:id/problems/review", h.BulkReviewProblems)
	write.POST("/problems/:id/review", h.ReviewProblem)
	write.POST("/nursing-need-items", h.CreateNeedItem)
}

// planRequest is the create/update payload: the plan fields plus the
// problem list and nursing-need settings saved in the same action.
type planRequest struct {
	CarePlan
	Problems []*CarePlanProblem    `json:"problems"`
	Needs    []*NursingNeedSetting `json:"nursing_needs"`
}

func (h *Handler) CreatePlan(c echo.Context) error {
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.CreatePlan(c.Request().Context(), &req.CarePlan, req.Problems, req.Needs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}

type previewRequest struct {
	PatientID uuid.UUID  `json:"patient_id"`
	PlanType  PlanType   `json:"plan_type"`
	PlanDate  *time.Time `json:"plan_date,omitempty"`
}

func (h *Handler) Preview(c echo.Context) error {
	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	preview, err := h.svc.Preview(c.Request().Context(), req.PatientID, req.PlanType, req.PlanDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, preview)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	plan, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "care plan not found")
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) ListPlans(c echo.Context) error {
	if patientID := c.QueryParam("patient_id"); patientID != "" {
		pid, err := uuid.Parse(patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, err := h.svc.ListPlansByPatient(c.Request().Context(), pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, items)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPlans(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.CarePlan.ID = id
	plan, err := h.svc.UpdatePlan(c.Request().Context(), &req.CarePlan, req.Problems, req.Needs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) DeletePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePlan(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type duplicateRequest struct {
	PlanType PlanType  `json:"plan_type"`
	PlanDate time.Time `json:"plan_date"`
}

func (h *Handler) DuplicatePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req duplicateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.DuplicatePlan(c.Request().Context(), id, req.PlanType, req.PlanDate, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) ArchivePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	plan, err := h.svc.ArchivePlan(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) PlanSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	state, err := h.svc.PlanSchedule(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "care plan not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"state": string(state)})
}

func (h *Handler) PlanHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	plans, err := h.svc.PlanHistory(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, plans)
}

func (h *Handler) ListProblems(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	problems, err := h.svc.ListProblems(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, problems)
}

type reviewRequest struct {
	Verdict Verdict `json:"verdict"`
}

func (h *Handler) ReviewProblem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.ReviewProblem(c.Request().Context(), id, req.Verdict, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) BulkReviewProblems(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	problems, err := h.svc.BulkReviewProblems(c.Request().Context(), id, req.Verdict, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, problems)
}

func (h *Handler) PlanReviewStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	summary, err := h.svc.PlanReviewStatus(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) ListNeedItems(c echo.Context) error {
	items, err := h.svc.ListNeedItems(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateNeedItem(c echo.Context) error {
	var item NursingNeedItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateNeedItem(c.Request().Context(), &item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) ListNeedSettings(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	settings, err := h.svc.ListNeedSettings(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, settings)
}
