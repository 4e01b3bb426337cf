package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stripe-monitor-backend/internal/model"
)

func TestChargeCacheUpsertKeepsOneRowPerKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewCacheRepository(db)
	ctx := context.Background()

	first := &model.ChargeCache{
		UserID:          "user-1",
		StripeAccountID: "acct_123",
		RangeDays:       7,
		Payload:         []byte(`[{"id":"pi_old"}]`),
		CachedAt:        time.Now().Add(-30 * time.Minute),
	}
	require.NoError(t, repo.UpsertCharges(ctx, first))

	second := &model.ChargeCache{
		UserID:          "user-1",
		StripeAccountID: "acct_123",
		RangeDays:       7,
		Payload:         []byte(`[{"id":"pi_new"}]`),
		CachedAt:        time.Now(),
	}
	require.NoError(t, repo.UpsertCharges(ctx, second))

	var count int64
	require.NoError(t, db.Model(&model.ChargeCache{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	entry, err := repo.GetCharges(ctx, "user-1", "acct_123", 7, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.JSONEq(t, `[{"id":"pi_new"}]`, string(entry.Payload))
}

func TestGetChargesIgnoresStaleEntries(t *testing.T) {
	db := newTestDB(t)
	repo := NewCacheRepository(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.UpsertCharges(ctx, &model.ChargeCache{
		UserID:          "user-1",
		StripeAccountID: "acct_123",
		RangeDays:       7,
		Payload:         []byte(`[]`),
		CachedAt:        now.Add(-2 * time.Hour),
	}))

	entry, err := repo.GetCharges(ctx, "user-1", "acct_123", 7, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestDeleteChargesForUserHonorsRangeFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewCacheRepository(db)
	ctx := context.Background()

	for _, rangeDays := range []int{7, 30} {
		require.NoError(t, repo.UpsertCharges(ctx, &model.ChargeCache{
			UserID:          "user-1",
			StripeAccountID: "acct_123",
			RangeDays:       rangeDays,
			Payload:         []byte(`[]`),
			CachedAt:        time.Now(),
		}))
	}

	rangeDays := 7
	deleted, err := repo.DeleteChargesForUser(ctx, "user-1", &rangeDays)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	remaining, err := repo.GetCharges(ctx, "user-1", "acct_123", 30, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.NotNil(t, remaining)
}

func TestSummaryCacheKeyIncludesDayOffset(t *testing.T) {
	db := newTestDB(t)
	repo := NewCacheRepository(db)
	ctx := context.Background()

	now := time.Now()
	for _, offset := range []int{0, 7} {
		require.NoError(t, repo.UpsertSummary(ctx, &model.SummaryCache{
			UserID:          "user-1",
			StripeAccountID: "acct_123",
			RangeDays:       7,
			DayOffset:       offset,
			Payload:         []byte(`{}`),
			CachedAt:        now,
		}))
	}

	var count int64
	require.NoError(t, db.Model(&model.SummaryCache{}).Count(&count).Error)
	require.EqualValues(t, 2, count)

	entry, err := repo.GetSummary(ctx, "user-1", "acct_123", 7, 7, now.Add(-time.Hour))
	require.NoError(t, err)
	require.NotNil(t, entry)
}
