package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"stripe-monitor-backend/internal/dto"
	"stripe-monitor-backend/internal/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.userService.Signup(ctx, &req)
	if errors.Is(err, service.ErrEmailTaken) {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Signin(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SigninRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.userService.Signin(ctx, &req)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.Get(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, &dto.UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Name:            user.Name,
		StripeAccountID: user.StripeAccountID,
		StripeConnected: user.StripeAccountID != "",
	})
}
