package service

import (
	"context"

	"stripe-monitor-backend/internal/model"
	"stripe-monitor-backend/internal/repository"
)

type PlanService interface {
	List(ctx context.Context) ([]*model.Plan, error)
}

type planServiceImpl struct {
	planRepo repository.PlanRepository
}

func NewPlanService(planRepo repository.PlanRepository) PlanService {
	return &planServiceImpl{
		planRepo: planRepo,
	}
}

func (s *planServiceImpl) List(ctx context.Context) ([]*model.Plan, error) {
	return s.planRepo.List(ctx)
}
