package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stripe-monitor-backend/internal/model"
	"stripe-monitor-backend/internal/repository"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)

	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookService(t *testing.T, db *gorm.DB, secret string) WebhookService {
	t.Helper()

	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)
	invalidator := NewInvalidationService(userRepo, cacheRepo, zap.NewNop())

	return NewWebhookService(secret, eventRepo, invalidator, zap.NewNop())
}

func eventPayload(eventID, eventType, account string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"object":"event","type":%q,"account":%q,"created":%d,"livemode":false,"api_version":"2022-11-15","request":{"id":"req_1"},"data":{"object":{"id":"ch_1","payment_intent":"pi_1"}}}`,
		eventID, eventType, account, time.Now().Unix(),
	))
}

func TestIngestIsIdempotentAcrossRedelivery(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(t, db, testWebhookSecret)
	ctx := context.Background()

	body := eventPayload("evt_100", "charge.succeeded", "acct_123")
	sig := signPayload(testWebhookSecret, body)

	ack, err := svc.Ingest(ctx, body, sig)
	require.NoError(t, err)
	require.True(t, ack.Received)

	ack, err = svc.Ingest(ctx, body, sig)
	require.NoError(t, err)
	require.True(t, ack.Received)

	var count int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestIngestRejectsBadSignatureWithoutPersisting(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(t, db, testWebhookSecret)

	body := eventPayload("evt_101", "charge.succeeded", "acct_123")
	sig := signPayload("whsec_wrong_secret", body)

	_, err := svc.Ingest(context.Background(), body, sig)
	require.ErrorIs(t, err, ErrSignatureInvalid)

	var count int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestIngestUnsignedModeRejectsMalformedPayload(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(t, db, "")

	_, err := svc.Ingest(context.Background(), []byte("{not json"), "")
	require.ErrorIs(t, err, ErrMalformedPayload)

	_, err = svc.Ingest(context.Background(), []byte(`{"object":"event"}`), "")
	require.ErrorIs(t, err, ErrMalformedPayload)

	var count int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestIngestPurgesCachesForEveryUserOnAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(t, db, testWebhookSecret)
	ctx := context.Background()

	seedUser(t, db, "user-a", "acct_123")
	seedUser(t, db, "user-b", "acct_123")
	seedUser(t, db, "user-c", "acct_other")
	seedAllCaches(t, db, "user-a", "acct_123")
	seedAllCaches(t, db, "user-b", "acct_123")
	seedAllCaches(t, db, "user-c", "acct_other")

	body := eventPayload("evt_102", "charge.succeeded", "acct_123")
	_, err := svc.Ingest(ctx, body, signPayload(testWebhookSecret, body))
	require.NoError(t, err)

	require.EqualValues(t, 0, countCacheRows(t, db, "user-a"))
	require.EqualValues(t, 0, countCacheRows(t, db, "user-b"))
	require.EqualValues(t, 3, countCacheRows(t, db, "user-c"))

	var event model.WebhookEvent
	require.NoError(t, db.First(&event, "event_id = ?", "evt_102").Error)
	require.Equal(t, EventStatusProcessed, event.Status)
	require.Equal(t, "ch_1", event.RelatedObjectID)
}

func TestIngestStoresUnclassifiedEventsWithoutInvalidation(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(t, db, testWebhookSecret)
	ctx := context.Background()

	seedUser(t, db, "user-a", "acct_123")
	seedAllCaches(t, db, "user-a", "acct_123")

	body := eventPayload("evt_103", "customer.created", "acct_123")
	_, err := svc.Ingest(ctx, body, signPayload(testWebhookSecret, body))
	require.NoError(t, err)

	require.EqualValues(t, 3, countCacheRows(t, db, "user-a"))

	var event model.WebhookEvent
	require.NoError(t, db.First(&event, "event_id = ?", "evt_103").Error)
	require.Equal(t, EventStatusProcessed, event.Status)
}

func TestIngestPlatformEventSkipsRouting(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(t, db, testWebhookSecret)
	ctx := context.Background()

	seedUser(t, db, "user-a", "acct_123")
	seedAllCaches(t, db, "user-a", "acct_123")

	body := []byte(fmt.Sprintf(
		`{"id":"evt_104","object":"event","type":"charge.succeeded","created":%d,"livemode":false,"data":{"object":{"id":"ch_9"}}}`,
		time.Now().Unix(),
	))
	_, err := svc.Ingest(ctx, body, signPayload(testWebhookSecret, body))
	require.NoError(t, err)

	require.EqualValues(t, 3, countCacheRows(t, db, "user-a"))
}
