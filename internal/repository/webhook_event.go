package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stripe-monitor-backend/internal/model"
)

type WebhookEventRepository interface {
	// Record inserts the event once. A redelivery with an already
	// recorded event id is a no-op reported as duplicate, never an
	// error, so at-least-once delivery cannot double-process.
	Record(ctx context.Context, event *model.WebhookEvent) (duplicate bool, err error)
	UpdateStatus(ctx context.Context, eventID, status string) error
	List(ctx context.Context, eventType string, limit int) ([]*model.WebhookEvent, error)
	Count(ctx context.Context) (int64, error)
}

type webhookEventRepoImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepoImpl{db: db}
}

func (r *webhookEventRepoImpl) Record(ctx context.Context, event *model.WebhookEvent) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 0, nil
}

func (r *webhookEventRepoImpl) UpdateStatus(ctx context.Context, eventID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Update("status", status).Error
}

func (r *webhookEventRepoImpl) List(ctx context.Context, eventType string, limit int) ([]*model.WebhookEvent, error) {
	query := r.db.WithContext(ctx).
		Order("event_created_at DESC").
		Limit(limit)

	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	var events []*model.WebhookEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (r *webhookEventRepoImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Count(&count).Error

	return count, err
}
