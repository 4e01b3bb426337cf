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

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func paymentIDFromPath(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid payment id")
	}
	return uint(id), nil
}

func (h *PaymentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	payment, err := h.paymentService.Create(ctx, userID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	payments, err := h.paymentService.List(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	paymentID, err := paymentIDFromPath(c)
	if err != nil {
		return err
	}

	payment, err := h.paymentService.Get(ctx, userID, paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "payment not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	paymentID, err := paymentIDFromPath(c)
	if err != nil {
		return err
	}

	err = h.paymentService.Delete(ctx, userID, paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "payment not found")
	}
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
