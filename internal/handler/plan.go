package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"stripe-monitor-backend/internal/service"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

func (h *PlanHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	plans, err := h.planService.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, plans)
}
