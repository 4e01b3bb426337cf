package server

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"stripe-monitor-backend/internal/handler"
	"stripe-monitor-backend/internal/middleware"
	"stripe-monitor-backend/internal/service"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type Server struct {
	echo                *echo.Echo
	jwtSecret           string
	userHandler         *handler.UserHandler
	paymentHandler      *handler.PaymentHandler
	setupRequestHandler *handler.SetupRequestHandler
	planHandler         *handler.PlanHandler
	stripeHandler       *handler.StripeHandler
}

func NewServer(
	jwtSecret string,
	userService service.UserService,
	paymentService service.PaymentService,
	setupRequestService service.SetupRequestService,
	planService service.PlanService,
	webhookService service.WebhookService,
	stripeDataService service.StripeDataService,
	invalidationService service.InvalidationService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	s := &Server{
		echo:                e,
		jwtSecret:           jwtSecret,
		userHandler:         handler.NewUserHandler(userService),
		paymentHandler:      handler.NewPaymentHandler(paymentService),
		setupRequestHandler: handler.NewSetupRequestHandler(setupRequestService),
		planHandler:         handler.NewPlanHandler(planService),
		stripeHandler: handler.NewStripeHandler(
			webhookService,
			stripeDataService,
			invalidationService,
			userService,
		),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.POST("/auth/signup", s.userHandler.Signup)
	api.POST("/auth/signin", s.userHandler.Signin)
	api.GET("/plans", s.planHandler.List)
	api.POST("/setup-requests", s.setupRequestHandler.Create)

	// -------- stripe webhooks / callbacks --------
	api.POST("/stripe/webhook", s.stripeHandler.Webhook)
	api.GET("/stripe/connect/callback", s.stripeHandler.ConnectCallback)

	authed := api.Group("", middleware.AuthMiddleware(s.jwtSecret))

	authed.GET("/users/me", s.userHandler.Me)

	authed.POST("/payments", s.paymentHandler.Create)
	authed.GET("/payments", s.paymentHandler.List)
	authed.GET("/payments/:id", s.paymentHandler.Get)
	authed.DELETE("/payments/:id", s.paymentHandler.Delete)

	authed.GET("/setup-requests", s.setupRequestHandler.List)
	authed.PATCH("/setup-requests/:id/status", s.setupRequestHandler.UpdateStatus)

	// -------- stripe data (read-through cached) --------
	authed.GET("/stripe/charges", s.stripeHandler.Charges)
	authed.GET("/stripe/subscriptions", s.stripeHandler.Subscriptions)
	authed.GET("/stripe/summary", s.stripeHandler.Summary)
	authed.GET("/stripe/events", s.stripeHandler.Events)
	authed.POST("/stripe/cache/invalidate", s.stripeHandler.InvalidateCache)

	authed.POST("/stripe/connect", s.stripeHandler.Connect)
	authed.POST("/stripe/disconnect", s.stripeHandler.Disconnect)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
