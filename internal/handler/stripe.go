package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"stripe-monitor-backend/internal/dto"
	"stripe-monitor-backend/internal/model"
	"stripe-monitor-backend/internal/service"
)

const (
	defaultRangeDays = 7
	maxRangeDays     = 90
	eventListLimit   = 100
)

type StripeHandler struct {
	webhookService    service.WebhookService
	stripeDataService service.StripeDataService
	invalidation      service.InvalidationService
	userService       service.UserService
}

func NewStripeHandler(
	webhookService service.WebhookService,
	stripeDataService service.StripeDataService,
	invalidation service.InvalidationService,
	userService service.UserService,
) *StripeHandler {
	return &StripeHandler{
		webhookService:    webhookService,
		stripeDataService: stripeDataService,
		invalidation:      invalidation,
		userService:       userService,
	}
}

// Webhook receives Stripe deliveries. 2xx tells Stripe to stop
// retrying, 4xx is a permanent reject, 5xx prompts a retry.
func (h *StripeHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "unreadable body")
	}

	ack, err := h.webhookService.Ingest(ctx, body, c.Request().Header.Get("Stripe-Signature"))
	if errors.Is(err, service.ErrSignatureInvalid) || errors.Is(err, service.ErrMalformedPayload) {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ack)
}

func rangeDaysFromQuery(c echo.Context, param string, fallback int) int {
	days, err := strconv.Atoi(c.QueryParam(param))
	if err != nil || days <= 0 || days > maxRangeDays {
		return fallback
	}
	return days
}

func (h *StripeHandler) currentUser(c echo.Context) (*model.User, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}

	user, err := h.userService.Get(c.Request().Context(), userID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return user, nil
}

func dataError(err error) error {
	if errors.Is(err, service.ErrNoStripeAccount) {
		return echo.NewHTTPError(http.StatusConflict, "no stripe account connected")
	}
	// Upstream fetch or cache write failure; never silently stale.
	return echo.NewHTTPError(http.StatusBadGateway, err.Error())
}

func (h *StripeHandler) Charges(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	payments, err := h.stripeDataService.ChargesFor(ctx, user, rangeDaysFromQuery(c, "days", defaultRangeDays))
	if err != nil {
		return dataError(err)
	}

	return c.JSON(http.StatusOK, payments)
}

func (h *StripeHandler) Subscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	subs, err := h.stripeDataService.SubscriptionsFor(ctx, user)
	if err != nil {
		return dataError(err)
	}

	return c.JSON(http.StatusOK, subs)
}

func (h *StripeHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	days := rangeDaysFromQuery(c, "days", defaultRangeDays)
	offset := rangeDaysFromQuery(c, "offset", 0)

	summary, err := h.stripeDataService.SummaryFor(ctx, user, days, offset)
	if err != nil {
		return dataError(err)
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *StripeHandler) Events(c echo.Context) error {
	ctx := c.Request().Context()

	events, err := h.webhookService.Events(ctx, c.QueryParam("type"), eventListLimit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, events)
}

// InvalidateCache is the admin cache-bust path: unlike the webhook
// path, failures here propagate to the caller.
func (h *StripeHandler) InvalidateCache(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.InvalidateCacheRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if !req.Charges && !req.Subscriptions && !req.Summary {
		return echo.NewHTTPError(http.StatusBadRequest, "no cache variant selected")
	}

	result, err := h.invalidation.InvalidateSpecific(ctx, userID, service.InvalidateOptions{
		Charges:       req.Charges,
		Subscriptions: req.Subscriptions,
		Summary:       req.Summary,
		RangeDays:     req.RangeDays,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.InvalidateCacheResponse{
		ChargesDeleted:       result.ChargesDeleted,
		SubscriptionsDeleted: result.SubscriptionsDeleted,
		SummariesDeleted:     result.SummariesDeleted,
	})
}

func (h *StripeHandler) Connect(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	url, err := h.userService.BeginStripeConnect(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.ConnectResponse{
		URL: url,
	})
}

func (h *StripeHandler) ConnectCallback(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return c.String(http.StatusBadRequest, "invalid oauth callback")
	}

	user, err := h.userService.CompleteStripeConnect(ctx, code, state)
	if errors.Is(err, service.ErrInvalidOAuthState) {
		return c.String(http.StatusBadRequest, "invalid or expired oauth state")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":            "connected",
		"stripe_account_id": user.StripeAccountID,
	})
}

func (h *StripeHandler) Disconnect(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.userService.DisconnectStripe(ctx, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "disconnected",
	})
}
