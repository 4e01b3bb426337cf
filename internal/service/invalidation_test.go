package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stripe-monitor-backend/internal/repository"
)

func newInvalidationService(db *gorm.DB) InvalidationService {
	return NewInvalidationService(
		repository.NewUserRepository(db),
		repository.NewCacheRepository(db),
		zap.NewNop(),
	)
}

func TestInvalidateForAccountFansOutToAllBoundUsers(t *testing.T) {
	db := newTestDB(t)
	svc := newInvalidationService(db)
	ctx := context.Background()

	seedUser(t, db, "user-a", "acct_123")
	seedUser(t, db, "user-b", "acct_123")
	seedUser(t, db, "user-c", "acct_unrelated")
	seedAllCaches(t, db, "user-a", "acct_123")
	seedAllCaches(t, db, "user-b", "acct_123")
	seedAllCaches(t, db, "user-c", "acct_unrelated")

	result, err := svc.InvalidateForAccount(ctx, "acct_123", "test")
	require.NoError(t, err)
	require.Equal(t, 2, result.UsersAffected)
	require.EqualValues(t, 6, result.TotalDeleted)

	require.EqualValues(t, 0, countCacheRows(t, db, "user-a"))
	require.EqualValues(t, 0, countCacheRows(t, db, "user-b"))
	require.EqualValues(t, 3, countCacheRows(t, db, "user-c"))
}

func TestInvalidateForAccountWithZeroBoundUsers(t *testing.T) {
	db := newTestDB(t)
	svc := newInvalidationService(db)

	result, err := svc.InvalidateForAccount(context.Background(), "acct_unknown", "test")
	require.NoError(t, err)
	require.Equal(t, 0, result.UsersAffected)
	require.EqualValues(t, 0, result.TotalDeleted)
}

func TestInvalidateForUserReportsPerVariantCounts(t *testing.T) {
	db := newTestDB(t)
	svc := newInvalidationService(db)
	ctx := context.Background()

	seedUser(t, db, "user-a", "acct_123")
	seedAllCaches(t, db, "user-a", "acct_123")

	result, err := svc.InvalidateForUser(ctx, "user-a", "test")
	require.NoError(t, err)
	require.EqualValues(t, 1, result.ChargesDeleted)
	require.EqualValues(t, 1, result.SubscriptionsDeleted)
	require.EqualValues(t, 1, result.SummariesDeleted)
}

func TestInvalidateSpecificLeavesOtherVariantsAlone(t *testing.T) {
	db := newTestDB(t)
	svc := newInvalidationService(db)
	ctx := context.Background()

	seedUser(t, db, "user-a", "acct_123")
	seedAllCaches(t, db, "user-a", "acct_123")

	result, err := svc.InvalidateSpecific(ctx, "user-a", InvalidateOptions{Charges: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, result.ChargesDeleted)
	require.EqualValues(t, 0, result.SubscriptionsDeleted)
	require.EqualValues(t, 0, result.SummariesDeleted)

	// Subscriptions and summary remain.
	require.EqualValues(t, 2, countCacheRows(t, db, "user-a"))
}
