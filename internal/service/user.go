package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stripe-monitor-backend/internal/client"
	"stripe-monitor-backend/internal/config"
	"stripe-monitor-backend/internal/dto"
	"stripe-monitor-backend/internal/model"
	"stripe-monitor-backend/internal/repository"
)

const connectAuthorizeURL = "https://connect.stripe.com/oauth/authorize"

type UserService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Signin(ctx context.Context, req *dto.SigninRequest) (*dto.AuthResponse, error)
	Get(ctx context.Context, userID string) (*model.User, error)

	// BeginStripeConnect returns the Connect authorize URL carrying a
	// one-time state token bound to the user.
	BeginStripeConnect(ctx context.Context, userID string) (string, error)
	CompleteStripeConnect(ctx context.Context, code, state string) (*model.User, error)
	DisconnectStripe(ctx context.Context, userID string) error
}

type userServiceImpl struct {
	userRepo       repository.UserRepository
	oauthStateRepo repository.OAuthStateRepository
	stripeClient   client.StripeClient
	invalidator    InvalidationService
	stripeCfg      config.Stripe
	jwtCfg         config.JWT
	now            func() time.Time
}

func NewUserService(
	userRepo repository.UserRepository,
	oauthStateRepo repository.OAuthStateRepository,
	stripeClient client.StripeClient,
	invalidator InvalidationService,
	stripeCfg config.Stripe,
	jwtCfg config.JWT,
) UserService {
	return &userServiceImpl{
		userRepo:       userRepo,
		oauthStateRepo: oauthStateRepo,
		stripeClient:   stripeClient,
		invalidator:    invalidator,
		stripeCfg:      stripeCfg,
		jwtCfg:         jwtCfg,
		now:            time.Now,
	}
}

func (s *userServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueToken(user)
}

func (s *userServiceImpl) Signin(ctx context.Context, req *dto.SigninRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *userServiceImpl) issueToken(user *model.User) (*dto.AuthResponse, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.TTL)),
	})

	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &dto.AuthResponse{
		Token:  signed,
		UserID: user.ID,
	}, nil
}

func (s *userServiceImpl) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *userServiceImpl) BeginStripeConnect(ctx context.Context, userID string) (string, error) {
	state := &model.OAuthState{
		Token:  uuid.NewString(),
		UserID: userID,
	}

	if err := s.oauthStateRepo.Create(ctx, state); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}

	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", s.stripeCfg.ClientID)
	query.Set("scope", "read_write")
	query.Set("state", state.Token)
	query.Set("redirect_uri", s.stripeCfg.RedirectURL)

	return connectAuthorizeURL + "?" + query.Encode(), nil
}

func (s *userServiceImpl) CompleteStripeConnect(ctx context.Context, code, state string) (*model.User, error) {
	stateRow, err := s.oauthStateRepo.Consume(ctx, state, s.now().Add(-CacheTTL))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidOAuthState
	}
	if err != nil {
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}

	accountID, err := s.stripeClient.ExchangeOAuthCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange oauth code: %w", err)
	}

	if err := s.userRepo.SetStripeAccount(ctx, stateRow.UserID, accountID); err != nil {
		return nil, fmt.Errorf("bind stripe account: %w", err)
	}

	// Anything cached under a previous binding is no longer valid.
	if _, err := s.invalidator.InvalidateForUser(ctx, stateRow.UserID, "stripe connect"); err != nil {
		return nil, err
	}

	return s.userRepo.FindByID(ctx, stateRow.UserID)
}

func (s *userServiceImpl) DisconnectStripe(ctx context.Context, userID string) error {
	// Admin-path invalidation: failures surface to the caller, unlike
	// the webhook path.
	if _, err := s.invalidator.InvalidateForUser(ctx, userID, "stripe disconnect"); err != nil {
		return err
	}

	return s.userRepo.ClearStripeAccount(ctx, userID)
}
