package dto

import "stripe-monitor-backend/internal/model"

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=128"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type UserResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name,omitempty"`
	StripeAccountID string `json:"stripe_account_id,omitempty"`
	StripeConnected bool   `json:"stripe_connected"`
}

type CreatePaymentRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
	Status   string `json:"status" validate:"required,oneof=PENDING SUCCEEDED FAILED"`
	Note     string `json:"note" validate:"max=512"`
}

type CreateSetupRequest struct {
	Name    string `json:"name" validate:"required,max=128"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"max=2048"`
}

type UpdateSetupRequestStatus struct {
	Status string `json:"status" validate:"required,oneof=NEW CONTACTED CLOSED"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

type ConnectResponse struct {
	URL string `json:"url"`
}

type InvalidateCacheRequest struct {
	Charges       bool `json:"charges"`
	Subscriptions bool `json:"subscriptions"`
	Summary       bool `json:"summary"`
	RangeDays     *int `json:"range_days,omitempty"`
}

type InvalidateCacheResponse struct {
	ChargesDeleted       int64 `json:"charges_deleted"`
	SubscriptionsDeleted int64 `json:"subscriptions_deleted"`
	SummariesDeleted     int64 `json:"summaries_deleted"`
}

type RecentPaymentsResult struct {
	Payments []model.NormalizedPayment `json:"payments"`
	Source   model.PaymentSource       `json:"used_source"`
}

type SubscriptionInfo struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	Customer          string `json:"customer,omitempty"`
	Created           int64  `json:"created"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}
