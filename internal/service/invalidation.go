package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stripe-monitor-backend/internal/repository"
)

type InvalidationResult struct {
	ChargesDeleted       int64
	SubscriptionsDeleted int64
	SummariesDeleted     int64
}

func (r InvalidationResult) Total() int64 {
	return r.ChargesDeleted + r.SubscriptionsDeleted + r.SummariesDeleted
}

type AccountInvalidationResult struct {
	UsersAffected int
	TotalDeleted  int64
}

type InvalidateOptions struct {
	Charges       bool
	Subscriptions bool
	Summary       bool
	// RangeDays narrows the charges/summary deletes to one range
	// bucket when set.
	RangeDays *int
}

type InvalidationService interface {
	InvalidateForUser(ctx context.Context, userID, reason string) (*InvalidationResult, error)
	// InvalidateForAccount purges every local user bound to the
	// connected account. Zero bound users is not an error: webhooks
	// for unmapped accounts are expected under Connect.
	InvalidateForAccount(ctx context.Context, accountID, reason string) (*AccountInvalidationResult, error)
	InvalidateSpecific(ctx context.Context, userID string, opts InvalidateOptions) (*InvalidationResult, error)
}

type invalidationServiceImpl struct {
	userRepo  repository.UserRepository
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
}

func NewInvalidationService(
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
) InvalidationService {
	return &invalidationServiceImpl{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
	}
}

func (s *invalidationServiceImpl) InvalidateForUser(ctx context.Context, userID, reason string) (*InvalidationResult, error) {
	result, err := s.InvalidateSpecific(ctx, userID, InvalidateOptions{
		Charges:       true,
		Subscriptions: true,
		Summary:       true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cache invalidated for user",
		zap.String("user_id", userID),
		zap.String("reason", reason),
		zap.Int64("deleted", result.Total()),
	)

	return result, nil
}

func (s *invalidationServiceImpl) InvalidateForAccount(ctx context.Context, accountID, reason string) (*AccountInvalidationResult, error) {
	users, err := s.userRepo.FindByStripeAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve users for account %s: %w", accountID, err)
	}

	if len(users) == 0 {
		return &AccountInvalidationResult{}, nil
	}

	var totalDeleted atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for _, user := range users {
		userID := user.ID
		g.Go(func() error {
			result, err := s.InvalidateForUser(gctx, userID, reason)
			if err != nil {
				return fmt.Errorf("invalidate cache for user %s: %w", userID, err)
			}

			totalDeleted.Add(result.Total())
			return nil
		})
	}

	// Partial failure surfaces as overall failure rather than a
	// silently incomplete purge.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &AccountInvalidationResult{
		UsersAffected: len(users),
		TotalDeleted:  totalDeleted.Load(),
	}, nil
}

func (s *invalidationServiceImpl) InvalidateSpecific(ctx context.Context, userID string, opts InvalidateOptions) (*InvalidationResult, error) {
	var result InvalidationResult

	if opts.Charges {
		deleted, err := s.cacheRepo.DeleteChargesForUser(ctx, userID, opts.RangeDays)
		if err != nil {
			return nil, fmt.Errorf("delete charge cache: %w", err)
		}
		result.ChargesDeleted = deleted
	}

	if opts.Subscriptions {
		deleted, err := s.cacheRepo.DeleteSubscriptionsForUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("delete subscription cache: %w", err)
		}
		result.SubscriptionsDeleted = deleted
	}

	if opts.Summary {
		deleted, err := s.cacheRepo.DeleteSummariesForUser(ctx, userID, opts.RangeDays)
		if err != nil {
			return nil, fmt.Errorf("delete summary cache: %w", err)
		}
		result.SummariesDeleted = deleted
	}

	return &result, nil
}
