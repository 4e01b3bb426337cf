package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stripe-monitor-backend/internal/model"
)

type PlanRepository interface {
	Seed(ctx context.Context) error
	List(ctx context.Context) ([]*model.Plan, error)
	FindByID(ctx context.Context, planID string) (*model.Plan, error)
}

type planRepoImpl struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepoImpl{
		db: db,
	}
}

func (r *planRepoImpl) Seed(ctx context.Context) error {
	plans := []model.Plan{
		{ID: "starter", Name: "Starter", Description: "Monitor one Stripe account, hourly refresh", MonthlyPrice: 0, Currency: "USD"},
		{ID: "growth", Name: "Growth", Description: "Failed payment alerts and daily summaries", MonthlyPrice: 1900, Currency: "USD"},
		{ID: "scale", Name: "Scale", Description: "Connect platform support and priority help", MonthlyPrice: 4900, Currency: "USD"},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&plans).Error
}

func (r *planRepoImpl) List(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).
		Order("monthly_price ASC").
		Find(&plans).Error

	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *planRepoImpl) FindByID(ctx context.Context, planID string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).
		Where("id = ?", planID).
		First(&plan).Error

	if err != nil {
		return nil, err
	}

	return &plan, nil
}
