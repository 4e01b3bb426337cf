package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"

	"stripe-monitor-backend/internal/client"
	"stripe-monitor-backend/internal/dto"
	"stripe-monitor-backend/internal/model"
	"stripe-monitor-backend/internal/repository"
)

// CacheTTL bounds how stale a served Stripe read can be. Entries at or
// past the TTL are never returned; the next read refetches.
const CacheTTL = time.Hour

const defaultFetchLimit = 100

// StripeDataService serves Stripe reads through the per-user caches.
// Every method either returns data fresher than CacheTTL or a fetch
// error; stale data is never served silently.
type StripeDataService interface {
	ChargesFor(ctx context.Context, user *model.User, rangeDays int) ([]model.NormalizedPayment, error)
	SubscriptionsFor(ctx context.Context, user *model.User) ([]dto.SubscriptionInfo, error)
	SummaryFor(ctx context.Context, user *model.User, rangeDays, dayOffset int) (*model.PaymentSummary, error)

	// RecentPayments is the uncached upstream fetcher: payment
	// intents first, charges as fallback, one normalized shape out.
	RecentPayments(ctx context.Context, accountID string, opts client.ListOptions) (*dto.RecentPaymentsResult, error)
}

type stripeDataServiceImpl struct {
	stripeClient client.StripeClient
	cacheRepo    repository.CacheRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewStripeDataService(
	stripeClient client.StripeClient,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
) StripeDataService {
	return &stripeDataServiceImpl{
		stripeClient: stripeClient,
		cacheRepo:    cacheRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *stripeDataServiceImpl) freshCutoff() time.Time {
	return s.now().Add(-CacheTTL)
}

func (s *stripeDataServiceImpl) ChargesFor(ctx context.Context, user *model.User, rangeDays int) ([]model.NormalizedPayment, error) {
	if user.StripeAccountID == "" {
		return nil, ErrNoStripeAccount
	}

	entry, err := s.cacheRepo.GetCharges(ctx, user.ID, user.StripeAccountID, rangeDays, s.freshCutoff())
	if err != nil {
		return nil, fmt.Errorf("read charge cache: %w", err)
	}

	if entry != nil {
		var payments []model.NormalizedPayment
		if err := json.Unmarshal(entry.Payload, &payments); err != nil {
			return nil, fmt.Errorf("decode cached charges: %w", err)
		}
		return payments, nil
	}

	now := s.now()
	result, err := s.RecentPayments(ctx, user.StripeAccountID, client.ListOptions{
		Limit:      defaultFetchLimit,
		CreatedGTE: now.AddDate(0, 0, -rangeDays).Unix(),
	})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result.Payments)
	if err != nil {
		return nil, fmt.Errorf("encode charges for cache: %w", err)
	}

	if err := s.cacheRepo.UpsertCharges(ctx, &model.ChargeCache{
		UserID:          user.ID,
		StripeAccountID: user.StripeAccountID,
		RangeDays:       rangeDays,
		Payload:         payload,
		CachedAt:        now,
	}); err != nil {
		return nil, fmt.Errorf("write charge cache: %w", err)
	}

	return result.Payments, nil
}

func (s *stripeDataServiceImpl) SubscriptionsFor(ctx context.Context, user *model.User) ([]dto.SubscriptionInfo, error) {
	if user.StripeAccountID == "" {
		return nil, ErrNoStripeAccount
	}

	entry, err := s.cacheRepo.GetSubscriptions(ctx, user.ID, user.StripeAccountID, s.freshCutoff())
	if err != nil {
		return nil, fmt.Errorf("read subscription cache: %w", err)
	}

	if entry != nil {
		var subs []dto.SubscriptionInfo
		if err := json.Unmarshal(entry.Payload, &subs); err != nil {
			return nil, fmt.Errorf("decode cached subscriptions: %w", err)
		}
		return subs, nil
	}

	upstream, err := s.stripeClient.ListSubscriptions(ctx, user.StripeAccountID, defaultFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch subscriptions: %w", err)
	}

	subs := make([]dto.SubscriptionInfo, 0, len(upstream))
	for _, sub := range upstream {
		info := dto.SubscriptionInfo{
			ID:                sub.ID,
			Status:            string(sub.Status),
			Created:           sub.Created,
			CurrentPeriodEnd:  sub.CurrentPeriodEnd,
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		}
		if sub.Customer != nil {
			info.Customer = sub.Customer.ID
		}
		subs = append(subs, info)
	}

	payload, err := json.Marshal(subs)
	if err != nil {
		return nil, fmt.Errorf("encode subscriptions for cache: %w", err)
	}

	if err := s.cacheRepo.UpsertSubscriptions(ctx, &model.SubscriptionCache{
		UserID:          user.ID,
		StripeAccountID: user.StripeAccountID,
		Payload:         payload,
		CachedAt:        s.now(),
	}); err != nil {
		return nil, fmt.Errorf("write subscription cache: %w", err)
	}

	return subs, nil
}

func (s *stripeDataServiceImpl) SummaryFor(ctx context.Context, user *model.User, rangeDays, dayOffset int) (*model.PaymentSummary, error) {
	if user.StripeAccountID == "" {
		return nil, ErrNoStripeAccount
	}

	entry, err := s.cacheRepo.GetSummary(ctx, user.ID, user.StripeAccountID, rangeDays, dayOffset, s.freshCutoff())
	if err != nil {
		return nil, fmt.Errorf("read summary cache: %w", err)
	}

	if entry != nil {
		var summary model.PaymentSummary
		if err := json.Unmarshal(entry.Payload, &summary); err != nil {
			return nil, fmt.Errorf("decode cached summary: %w", err)
		}
		return &summary, nil
	}

	now := s.now()
	windowEnd := now.AddDate(0, 0, -dayOffset)
	windowStart := windowEnd.AddDate(0, 0, -rangeDays)

	opts := client.ListOptions{
		Limit:      defaultFetchLimit,
		CreatedGTE: windowStart.Unix(),
	}
	if dayOffset > 0 {
		opts.CreatedLTE = windowEnd.Unix()
	}

	result, err := s.RecentPayments(ctx, user.StripeAccountID, opts)
	if err != nil {
		return nil, err
	}

	summary := summarize(result, rangeDays, dayOffset)

	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("encode summary for cache: %w", err)
	}

	if err := s.cacheRepo.UpsertSummary(ctx, &model.SummaryCache{
		UserID:          user.ID,
		StripeAccountID: user.StripeAccountID,
		RangeDays:       rangeDays,
		DayOffset:       dayOffset,
		Payload:         payload,
		CachedAt:        now,
	}); err != nil {
		return nil, fmt.Errorf("write summary cache: %w", err)
	}

	return summary, nil
}

func summarize(result *dto.RecentPaymentsResult, rangeDays, dayOffset int) *model.PaymentSummary {
	summary := &model.PaymentSummary{
		RangeDays: rangeDays,
		DayOffset: dayOffset,
		Source:    result.Source,
	}

	for _, payment := range result.Payments {
		summary.TotalCount++

		if payment.Paid {
			summary.SucceededCount++
			summary.GrossAmount += payment.Amount
			if summary.Currency == "" {
				summary.Currency = payment.Currency
			}
		} else if payment.Status == "failed" || payment.FailureCode != "" {
			summary.FailedCount++
		}
	}

	return summary
}

func (s *stripeDataServiceImpl) RecentPayments(ctx context.Context, accountID string, opts client.ListOptions) (*dto.RecentPaymentsResult, error) {
	intents, err := s.stripeClient.ListPaymentIntents(ctx, accountID, opts)
	if err == nil && len(intents) > 0 {
		payments := make([]model.NormalizedPayment, len(intents))
		for i, intent := range intents {
			payments[i] = normalizePaymentIntent(intent)
		}

		return &dto.RecentPaymentsResult{
			Payments: payments,
			Source:   model.SourcePaymentIntents,
		}, nil
	}

	if err != nil {
		s.logger.Warn("payment intent listing failed, falling back to charges",
			zap.String("account", accountID),
			zap.Error(err),
		)
	}

	charges, chargeErr := s.stripeClient.ListCharges(ctx, accountID, opts)
	if chargeErr != nil {
		// Both paths exhausted.
		return nil, fmt.Errorf("list charges fallback: %w", chargeErr)
	}

	payments := make([]model.NormalizedPayment, len(charges))
	for i, charge := range charges {
		payments[i] = normalizeCharge(charge)
	}

	return &dto.RecentPaymentsResult{
		Payments: payments,
		Source:   model.SourceCharges,
	}, nil
}

// Failure details live in different places depending on how a payment
// died. The extractors run in precedence order and stop at the first
// that applies, keeping the order auditable in one place.
type intentFailureExtractor func(*stripe.PaymentIntent) (code, message string, ok bool)

var intentFailureExtractors = []intentFailureExtractor{
	intentLastPaymentError,
	intentLatestChargeFailure,
	intentLatestChargeOutcome,
}

func intentLastPaymentError(intent *stripe.PaymentIntent) (string, string, bool) {
	if intent.LastPaymentError == nil {
		return "", "", false
	}
	return string(intent.LastPaymentError.Code), intent.LastPaymentError.Msg, true
}

func intentLatestChargeFailure(intent *stripe.PaymentIntent) (string, string, bool) {
	charge := intent.LatestCharge
	if charge == nil || (charge.FailureCode == "" && charge.FailureMessage == "") {
		return "", "", false
	}
	return charge.FailureCode, charge.FailureMessage, true
}

func intentLatestChargeOutcome(intent *stripe.PaymentIntent) (string, string, bool) {
	charge := intent.LatestCharge
	if charge == nil || charge.Outcome == nil {
		return "", "", false
	}
	outcome := charge.Outcome
	if outcome.Reason == "" && outcome.SellerMessage == "" {
		return "", "", false
	}
	return outcome.Reason, outcome.SellerMessage, true
}

func normalizePaymentIntent(intent *stripe.PaymentIntent) model.NormalizedPayment {
	payment := model.NormalizedPayment{
		ID:       intent.ID,
		Source:   model.SourcePaymentIntents,
		Amount:   intent.Amount,
		Currency: string(intent.Currency),
		Created:  intent.Created,
		Status:   string(intent.Status),
		Paid:     intent.Status == stripe.PaymentIntentStatusSucceeded,
	}

	if intent.Customer != nil {
		payment.Customer = intent.Customer.ID
	}

	for _, extract := range intentFailureExtractors {
		if code, message, ok := extract(intent); ok {
			payment.FailureCode = code
			payment.FailureMessage = message
			break
		}
	}

	return payment
}

type chargeFailureExtractor func(*stripe.Charge) (code, message string, ok bool)

var chargeFailureExtractors = []chargeFailureExtractor{
	chargeFailureFields,
	chargeOutcome,
}

func chargeFailureFields(charge *stripe.Charge) (string, string, bool) {
	if charge.FailureCode == "" && charge.FailureMessage == "" {
		return "", "", false
	}
	return charge.FailureCode, charge.FailureMessage, true
}

func chargeOutcome(charge *stripe.Charge) (string, string, bool) {
	if charge.Outcome == nil {
		return "", "", false
	}
	if charge.Outcome.Reason == "" && charge.Outcome.SellerMessage == "" {
		return "", "", false
	}
	return charge.Outcome.Reason, charge.Outcome.SellerMessage, true
}

func normalizeCharge(charge *stripe.Charge) model.NormalizedPayment {
	payment := model.NormalizedPayment{
		ID:       charge.ID,
		Source:   model.SourceCharges,
		Amount:   charge.Amount,
		Currency: string(charge.Currency),
		Created:  charge.Created,
		Status:   string(charge.Status),
		Paid:     charge.Paid && string(charge.Status) == "succeeded",
	}

	if charge.Customer != nil {
		payment.Customer = charge.Customer.ID
	}

	for _, extract := range chargeFailureExtractors {
		if code, message, ok := extract(charge); ok {
			payment.FailureCode = code
			payment.FailureMessage = message
			break
		}
	}

	return payment
}
