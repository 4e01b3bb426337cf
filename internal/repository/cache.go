package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stripe-monitor-backend/internal/model"
)

// CacheRepository stores memoized Stripe reads. Each variant has a
// uniqueness constraint on its composite key; upserts update in place
// so a concurrent double-fetch resolves to last-write-wins instead of
// a duplicate-key error. Get methods only return rows cached at or
// after the freshAfter cutoff; a stale or missing row is (nil, nil).
type CacheRepository interface {
	GetCharges(ctx context.Context, userID, accountID string, rangeDays int, freshAfter time.Time) (*model.ChargeCache, error)
	UpsertCharges(ctx context.Context, entry *model.ChargeCache) error

	GetSubscriptions(ctx context.Context, userID, accountID string, freshAfter time.Time) (*model.SubscriptionCache, error)
	UpsertSubscriptions(ctx context.Context, entry *model.SubscriptionCache) error

	GetSummary(ctx context.Context, userID, accountID string, rangeDays, dayOffset int, freshAfter time.Time) (*model.SummaryCache, error)
	UpsertSummary(ctx context.Context, entry *model.SummaryCache) error

	DeleteChargesForUser(ctx context.Context, userID string, rangeDays *int) (int64, error)
	DeleteSubscriptionsForUser(ctx context.Context, userID string) (int64, error)
	DeleteSummariesForUser(ctx context.Context, userID string, rangeDays *int) (int64, error)
}

type cacheRepoImpl struct {
	db *gorm.DB
}

func NewCacheRepository(db *gorm.DB) CacheRepository {
	return &cacheRepoImpl{
		db: db,
	}
}

func (r *cacheRepoImpl) GetCharges(ctx context.Context, userID, accountID string, rangeDays int, freshAfter time.Time) (*model.ChargeCache, error) {
	var entry model.ChargeCache
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stripe_account_id = ? AND range_days = ?", userID, accountID, rangeDays).
		Where("cached_at >= ?", freshAfter).
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *cacheRepoImpl) UpsertCharges(ctx context.Context, entry *model.ChargeCache) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "stripe_account_id"}, {Name: "range_days"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "cached_at"}),
	}).Create(entry).Error
}

func (r *cacheRepoImpl) GetSubscriptions(ctx context.Context, userID, accountID string, freshAfter time.Time) (*model.SubscriptionCache, error) {
	var entry model.SubscriptionCache
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stripe_account_id = ?", userID, accountID).
		Where("cached_at >= ?", freshAfter).
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *cacheRepoImpl) UpsertSubscriptions(ctx context.Context, entry *model.SubscriptionCache) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "stripe_account_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "cached_at"}),
	}).Create(entry).Error
}

func (r *cacheRepoImpl) GetSummary(ctx context.Context, userID, accountID string, rangeDays, dayOffset int, freshAfter time.Time) (*model.SummaryCache, error) {
	var entry model.SummaryCache
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stripe_account_id = ? AND range_days = ? AND day_offset = ?",
			userID, accountID, rangeDays, dayOffset).
		Where("cached_at >= ?", freshAfter).
		First(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *cacheRepoImpl) UpsertSummary(ctx context.Context, entry *model.SummaryCache) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "stripe_account_id"}, {Name: "range_days"}, {Name: "day_offset"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "cached_at"}),
	}).Create(entry).Error
}

func (r *cacheRepoImpl) DeleteChargesForUser(ctx context.Context, userID string, rangeDays *int) (int64, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if rangeDays != nil {
		query = query.Where("range_days = ?", *rangeDays)
	}

	result := query.Delete(&model.ChargeCache{})

	return result.RowsAffected, result.Error
}

func (r *cacheRepoImpl) DeleteSubscriptionsForUser(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.SubscriptionCache{})

	return result.RowsAffected, result.Error
}

func (r *cacheRepoImpl) DeleteSummariesForUser(ctx context.Context, userID string, rangeDays *int) (int64, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if rangeDays != nil {
		query = query.Where("range_days = ?", *rangeDays)
	}

	result := query.Delete(&model.SummaryCache{})

	return result.RowsAffected, result.Error
}
