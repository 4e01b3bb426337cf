package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stripe-monitor-backend/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and
	// serializes access under sqlite.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Payment{},
		&model.SetupRequest{},
		&model.Plan{},
		&model.WebhookEvent{},
		&model.ChargeCache{},
		&model.SubscriptionCache{},
		&model.SummaryCache{},
		&model.OAuthState{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, userID, accountID string) {
	t.Helper()

	require.NoError(t, db.Create(&model.User{
		ID:              userID,
		Email:           userID + "@example.com",
		PasswordHash:    "x",
		StripeAccountID: accountID,
	}).Error)
}

func seedAllCaches(t *testing.T, db *gorm.DB, userID, accountID string) {
	t.Helper()

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, db.WithContext(ctx).Create(&model.ChargeCache{
		UserID: userID, StripeAccountID: accountID, RangeDays: 7,
		Payload: []byte(`[]`), CachedAt: now,
	}).Error)
	require.NoError(t, db.WithContext(ctx).Create(&model.SubscriptionCache{
		UserID: userID, StripeAccountID: accountID,
		Payload: []byte(`[]`), CachedAt: now,
	}).Error)
	require.NoError(t, db.WithContext(ctx).Create(&model.SummaryCache{
		UserID: userID, StripeAccountID: accountID, RangeDays: 7, DayOffset: 0,
		Payload: []byte(`{}`), CachedAt: now,
	}).Error)
}

func countCacheRows(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()

	var total, count int64
	require.NoError(t, db.Model(&model.ChargeCache{}).Where("user_id = ?", userID).Count(&count).Error)
	total += count
	require.NoError(t, db.Model(&model.SubscriptionCache{}).Where("user_id = ?", userID).Count(&count).Error)
	total += count
	require.NoError(t, db.Model(&model.SummaryCache{}).Where("user_id = ?", userID).Count(&count).Error)
	total += count

	return total
}
