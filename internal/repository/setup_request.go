package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stripe-monitor-backend/internal/model"
)

type SetupRequestRepository interface {
	Create(ctx context.Context, request *model.SetupRequest) error
	List(ctx context.Context, status string, limit int) ([]*model.SetupRequest, error)
	UpdateStatus(ctx context.Context, requestID uint, status string) error
}

type setupRequestRepoImpl struct {
	db *gorm.DB
}

func NewSetupRequestRepository(db *gorm.DB) SetupRequestRepository {
	return &setupRequestRepoImpl{
		db: db,
	}
}

func (r *setupRequestRepoImpl) Create(ctx context.Context, request *model.SetupRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *setupRequestRepoImpl) List(ctx context.Context, status string, limit int) ([]*model.SetupRequest, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []*model.SetupRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *setupRequestRepoImpl) UpdateStatus(ctx context.Context, requestID uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.SetupRequest{}).
		Where("id = ?", requestID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
