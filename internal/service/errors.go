package service

import "errors"

var (
	// ErrSignatureInvalid rejects a webhook delivery before anything
	// is persisted; the sender must not retry an unfixed signature.
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	// ErrMalformedPayload rejects an unverifiable body in the
	// unsigned development mode; nothing is persisted.
	ErrMalformedPayload = errors.New("webhook payload malformed")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoStripeAccount    = errors.New("no stripe account connected")
	ErrInvalidOAuthState  = errors.New("invalid or expired oauth state")
)
