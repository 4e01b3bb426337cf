package service

import (
	"context"

	"stripe-monitor-backend/internal/dto"
	"stripe-monitor-backend/internal/model"
	"stripe-monitor-backend/internal/repository"
)

const paymentListLimit = 100

type PaymentService interface {
	Create(ctx context.Context, userID string, req *dto.CreatePaymentRequest) (*model.Payment, error)
	List(ctx context.Context, userID string) ([]*model.Payment, error)
	Get(ctx context.Context, userID string, paymentID uint) (*model.Payment, error)
	Delete(ctx context.Context, userID string, paymentID uint) error
}

type paymentServiceImpl struct {
	paymentRepo repository.PaymentRepository
}

func NewPaymentService(paymentRepo repository.PaymentRepository) PaymentService {
	return &paymentServiceImpl{
		paymentRepo: paymentRepo,
	}
}

func (s *paymentServiceImpl) Create(ctx context.Context, userID string, req *dto.CreatePaymentRequest) (*model.Payment, error) {
	payment := &model.Payment{
		UserID:   userID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Status:   req.Status,
		Note:     req.Note,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

func (s *paymentServiceImpl) List(ctx context.Context, userID string) ([]*model.Payment, error) {
	return s.paymentRepo.ListByUser(ctx, userID, paymentListLimit)
}

func (s *paymentServiceImpl) Get(ctx context.Context, userID string, paymentID uint) (*model.Payment, error) {
	return s.paymentRepo.FindByID(ctx, userID, paymentID)
}

func (s *paymentServiceImpl) Delete(ctx context.Context, userID string, paymentID uint) error {
	return s.paymentRepo.Delete(ctx, userID, paymentID)
}
