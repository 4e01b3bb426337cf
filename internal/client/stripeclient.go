package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v74"
	stripeclient "github.com/stripe/stripe-go/v74/client"

	"stripe-monitor-backend/internal/config"
)

const connectTokenURL = "https://connect.stripe.com/oauth/token"

type ListOptions struct {
	Limit      int64
	CreatedGTE int64 // epoch seconds, zero means unbounded
	CreatedLTE int64
}

// StripeClient wraps the pieces of the Stripe API this service reads.
// All listing calls are scoped to a connected account.
type StripeClient interface {
	ListPaymentIntents(ctx context.Context, accountID string, opts ListOptions) ([]*stripe.PaymentIntent, error)
	ListCharges(ctx context.Context, accountID string, opts ListOptions) ([]*stripe.Charge, error)
	ListSubscriptions(ctx context.Context, accountID string, limit int64) ([]*stripe.Subscription, error)
	ExchangeOAuthCode(ctx context.Context, code string) (string, error)
}

type stripeClientImpl struct {
	api        *stripeclient.API
	httpClient *http.Client
	secretKey  string
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	api := &stripeclient.API{}
	api.Init(stripeCfg.SecretKey, stripe.NewBackends(httpClient))

	return &stripeClientImpl{
		api:        api,
		httpClient: httpClient,
		secretKey:  stripeCfg.SecretKey,
	}
}

func createdRange(opts ListOptions) *stripe.RangeQueryParams {
	if opts.CreatedGTE == 0 && opts.CreatedLTE == 0 {
		return nil
	}

	rq := &stripe.RangeQueryParams{}
	if opts.CreatedGTE > 0 {
		rq.GreaterThanOrEqual = opts.CreatedGTE
	}
	if opts.CreatedLTE > 0 {
		rq.LesserThanOrEqual = opts.CreatedLTE
	}

	return rq
}

func (c *stripeClientImpl) ListPaymentIntents(ctx context.Context, accountID string, opts ListOptions) ([]*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(opts.Limit)
	params.SetStripeAccount(accountID)
	params.CreatedRange = createdRange(opts)
	params.AddExpand("data.latest_charge")

	var intents []*stripe.PaymentIntent

	iter := c.api.PaymentIntents.List(params)
	for iter.Next() {
		intents = append(intents, iter.PaymentIntent())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list payment intents: %w", err)
	}

	return intents, nil
}

func (c *stripeClientImpl) ListCharges(ctx context.Context, accountID string, opts ListOptions) ([]*stripe.Charge, error) {
	params := &stripe.ChargeListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(opts.Limit)
	params.SetStripeAccount(accountID)
	params.CreatedRange = createdRange(opts)

	var charges []*stripe.Charge

	iter := c.api.Charges.List(params)
	for iter.Next() {
		charges = append(charges, iter.Charge())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}

	return charges, nil
}

func (c *stripeClientImpl) ListSubscriptions(ctx context.Context, accountID string, limit int64) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.SetStripeAccount(accountID)
	params.Status = stripe.String("all")

	var subs []*stripe.Subscription

	iter := c.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	return subs, nil
}

// ExchangeOAuthCode trades a Connect OAuth authorization code for the
// merchant's account id.
func (c *stripeClientImpl) ExchangeOAuthCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_secret", c.secretKey)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, connectTokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("stripe oauth token error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		StripeUserID string `json:"stripe_user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode oauth token response: %w", err)
	}

	if res.StripeUserID == "" {
		return "", fmt.Errorf("stripe oauth token response missing stripe_user_id")
	}

	return res.StripeUserID, nil
}
