package service

import (
	"context"

	"stripe-monitor-backend/internal/dto"
	"stripe-monitor-backend/internal/model"
	"stripe-monitor-backend/internal/repository"
)

const setupRequestListLimit = 200

type SetupRequestService interface {
	Create(ctx context.Context, req *dto.CreateSetupRequest) (*model.SetupRequest, error)
	List(ctx context.Context, status string) ([]*model.SetupRequest, error)
	UpdateStatus(ctx context.Context, requestID uint, status string) error
}

type setupRequestServiceImpl struct {
	setupRequestRepo repository.SetupRequestRepository
}

func NewSetupRequestService(setupRequestRepo repository.SetupRequestRepository) SetupRequestService {
	return &setupRequestServiceImpl{
		setupRequestRepo: setupRequestRepo,
	}
}

func (s *setupRequestServiceImpl) Create(ctx context.Context, req *dto.CreateSetupRequest) (*model.SetupRequest, error) {
	request := &model.SetupRequest{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Status:  "NEW",
	}

	if err := s.setupRequestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

func (s *setupRequestServiceImpl) List(ctx context.Context, status string) ([]*model.SetupRequest, error) {
	return s.setupRequestRepo.List(ctx, status, setupRequestListLimit)
}

func (s *setupRequestServiceImpl) UpdateStatus(ctx context.Context, requestID uint, status string) error {
	return s.setupRequestRepo.UpdateStatus(ctx, requestID, status)
}
