package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey;size:32;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	Name         string `gorm:"size:128"`
	// Connected Stripe account. Indexed because webhook invalidation
	// resolves every user bound to an account (Connect allows many).
	StripeAccountID string `gorm:"size:64;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Payment struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   string `gorm:"size:32;index;not null"`
	Amount   int64  `gorm:"not null"` // minor units
	Currency string `gorm:"size:8;not null"`
	Status   string `gorm:"size:32;index;not null"` // PENDING, SUCCEEDED, FAILED
	Note     string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SetupRequest struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:128;not null"`
	Email     string `gorm:"size:255;not null"`
	Message   string `gorm:"size:2048"`
	Status    string `gorm:"size:32;index;not null"` // NEW, CONTACTED, CLOSED
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Plan struct {
	ID           string `gorm:"primaryKey;size:64;not null"`
	Name         string `gorm:"size:128;not null"`
	Description  string `gorm:"size:512"`
	MonthlyPrice int64  `gorm:"not null"` // minor units
	Currency     string `gorm:"size:8;not null"`
}

// WebhookEvent is one delivered Stripe event. The primary key on the
// Stripe event id is the idempotency guarantee for at-least-once
// delivery; everything except Status is immutable after insert.
type WebhookEvent struct {
	EventID         string `gorm:"primaryKey;size:128;not null"` // stripe event id
	EventType       string `gorm:"size:64;index"`
	StripeAccountID string `gorm:"size:64;index"` // empty = platform-level event
	APIVersion      string `gorm:"size:32"`
	EventCreatedAt  time.Time
	Livemode        bool
	RequestID       string `gorm:"size:128"`
	RelatedObjectID string `gorm:"size:128;index"` // heuristic, not a FK
	Status          string `gorm:"size:16;index;not null"` // received, processed, failed
	Payload         []byte // verbatim body for replay/audit
	CreatedAt       time.Time
}

type ChargeCache struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          string `gorm:"size:32;uniqueIndex:idx_charge_cache_key;not null"`
	StripeAccountID string `gorm:"size:64;uniqueIndex:idx_charge_cache_key;not null"`
	RangeDays       int    `gorm:"uniqueIndex:idx_charge_cache_key;not null"`
	Payload         []byte
	CachedAt        time.Time `gorm:"index"`
}

type SubscriptionCache struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          string `gorm:"size:32;uniqueIndex:idx_subscription_cache_key;not null"`
	StripeAccountID string `gorm:"size:64;uniqueIndex:idx_subscription_cache_key;not null"`
	Payload         []byte
	CachedAt        time.Time `gorm:"index"`
}

type SummaryCache struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          string `gorm:"size:32;uniqueIndex:idx_summary_cache_key;not null"`
	StripeAccountID string `gorm:"size:64;uniqueIndex:idx_summary_cache_key;not null"`
	RangeDays       int    `gorm:"uniqueIndex:idx_summary_cache_key;not null"`
	DayOffset       int    `gorm:"uniqueIndex:idx_summary_cache_key;not null"`
	Payload         []byte
	CachedAt        time.Time `gorm:"index"`
}

// OAuthState is a one-time token correlating a pending Connect OAuth
// flow with the user who started it. Rows expire on the same TTL
// discipline as the caches and are deleted when consumed.
type OAuthState struct {
	Token     string `gorm:"primaryKey;size:64;not null"`
	UserID    string `gorm:"size:32;not null"`
	CreatedAt time.Time
}
