package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"

	"stripe-monitor-backend/internal/dto"
	"stripe-monitor-backend/internal/model"
	"stripe-monitor-backend/internal/repository"
)

const (
	EventStatusReceived  = "received"
	EventStatusProcessed = "processed"
	EventStatusFailed    = "failed"
)

type WebhookService interface {
	// Ingest verifies, persists and routes one Stripe webhook
	// delivery. The returned ack maps to HTTP 200; verification and
	// parse failures map to 4xx; only a storage failure is 5xx.
	Ingest(ctx context.Context, body []byte, signatureHeader string) (*dto.WebhookAck, error)
	// Events lists recent stored deliveries for the back office.
	Events(ctx context.Context, eventType string, limit int) ([]*model.WebhookEvent, error)
}

type webhookServiceImpl struct {
	webhookSecret string
	eventRepo     repository.WebhookEventRepository
	invalidator   InvalidationService
	logger        *zap.Logger
}

func NewWebhookService(
	webhookSecret string,
	eventRepo repository.WebhookEventRepository,
	invalidator InvalidationService,
	logger *zap.Logger,
) WebhookService {
	if webhookSecret == "" {
		logger.Warn("stripe webhook secret not configured, signature verification disabled")
	}

	return &webhookServiceImpl{
		webhookSecret: webhookSecret,
		eventRepo:     eventRepo,
		invalidator:   invalidator,
		logger:        logger,
	}
}

func (s *webhookServiceImpl) Ingest(ctx context.Context, body []byte, signatureHeader string) (*dto.WebhookAck, error) {
	event, err := s.constructEvent(body, signatureHeader)
	if err != nil {
		return nil, err
	}

	record := &model.WebhookEvent{
		EventID:         event.ID,
		EventType:       event.Type,
		StripeAccountID: event.Account,
		APIVersion:      event.APIVersion,
		EventCreatedAt:  time.Unix(event.Created, 0).UTC(),
		Livemode:        event.Livemode,
		RequestID:       eventRequestID(event),
		RelatedObjectID: relatedObjectID(event),
		Status:          EventStatusReceived,
		Payload:         body,
	}

	duplicate, err := s.eventRepo.Record(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("record webhook event: %w", err)
	}

	if duplicate {
		s.logger.Info("duplicate webhook delivery",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
	}

	// Routing runs even on a duplicate: redelivery is expected and a
	// second invalidation is harmless.
	s.route(ctx, event)

	return &dto.WebhookAck{Received: true}, nil
}

func (s *webhookServiceImpl) Events(ctx context.Context, eventType string, limit int) ([]*model.WebhookEvent, error) {
	return s.eventRepo.List(ctx, eventType, limit)
}

func (s *webhookServiceImpl) constructEvent(body []byte, signatureHeader string) (*stripe.Event, error) {
	if s.webhookSecret != "" {
		event, err := webhook.ConstructEventWithOptions(body, signatureHeader, s.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			s.logger.Warn("webhook signature verification failed", zap.Error(err))
			return nil, ErrSignatureInvalid
		}

		return &event, nil
	}

	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, ErrMalformedPayload
	}
	if event.ID == "" || event.Type == "" {
		return nil, ErrMalformedPayload
	}

	return &event, nil
}

// route triggers the cache fan-out for classified account-scoped
// events. Persistence already succeeded, so failures here are logged
// and recorded on the event but never fail the delivery: a non-2xx
// would only buy a retry storm for work the next read repairs anyway.
func (s *webhookServiceImpl) route(ctx context.Context, event *stripe.Event) {
	if event.Account == "" {
		s.markStatus(ctx, event.ID, EventStatusProcessed)
		return
	}

	switch classifyEventType(event.Type) {
	case eventClassTransactional, eventClassSubscription:
		result, err := s.invalidator.InvalidateForAccount(ctx, event.Account, "webhook:"+event.Type)
		if err != nil {
			s.logger.Error("webhook cache invalidation failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.Type),
				zap.String("account", event.Account),
				zap.Error(err),
			)
			s.markStatus(ctx, event.ID, EventStatusFailed)
			return
		}

		s.logger.Info("webhook invalidated account caches",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("account", event.Account),
			zap.Int("users_affected", result.UsersAffected),
			zap.Int64("entries_deleted", result.TotalDeleted),
		)
	default:
		// Stored only.
	}

	s.markStatus(ctx, event.ID, EventStatusProcessed)
}

func (s *webhookServiceImpl) markStatus(ctx context.Context, eventID, status string) {
	if err := s.eventRepo.UpdateStatus(ctx, eventID, status); err != nil {
		s.logger.Error("update webhook event status",
			zap.String("event_id", eventID),
			zap.String("status", status),
			zap.Error(err),
		)
	}
}

func eventRequestID(event *stripe.Event) string {
	if event.Request == nil {
		return ""
	}
	return event.Request.ID
}

// relatedObjectID pulls a best-effort cross-reference id out of the
// payload: the object's own id, else the payment intent it hangs off.
func relatedObjectID(event *stripe.Event) string {
	if event.Data == nil {
		return ""
	}

	if id, ok := event.Data.Object["id"].(string); ok && id != "" {
		return id
	}
	if id, ok := event.Data.Object["payment_intent"].(string); ok && id != "" {
		return id
	}

	return ""
}
