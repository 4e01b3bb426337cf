package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"stripe-monitor-backend/internal/dto"
	"stripe-monitor-backend/internal/service"
)

type SetupRequestHandler struct {
	setupRequestService service.SetupRequestService
}

func NewSetupRequestHandler(setupRequestService service.SetupRequestService) *SetupRequestHandler {
	return &SetupRequestHandler{
		setupRequestService: setupRequestService,
	}
}

// Create is the public lead-capture endpoint the marketing site posts to.
func (h *SetupRequestHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateSetupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	request, err := h.setupRequestService.Create(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, request)
}

func (h *SetupRequestHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	requests, err := h.setupRequestService.List(ctx, c.QueryParam("status"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, requests)
}

func (h *SetupRequestHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid setup request id")
	}

	var req dto.UpdateSetupRequestStatus
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.setupRequestService.UpdateStatus(ctx, uint(requestID), req.Status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "setup request not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": req.Status,
	})
}
