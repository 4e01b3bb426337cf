package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stripe-monitor-backend/internal/model"
)

// OAuthStateRepository holds one-time Connect OAuth state tokens. The
// table replaces an in-process state map so tokens survive restarts
// and expire on the same wall-clock discipline as the caches.
type OAuthStateRepository interface {
	Create(ctx context.Context, state *model.OAuthState) error
	// Consume returns the state row and deletes it in the same
	// transaction. Rows created before notBefore count as missing;
	// expired rows are swept opportunistically on each call.
	Consume(ctx context.Context, token string, notBefore time.Time) (*model.OAuthState, error)
}

type oauthStateRepoImpl struct {
	db *gorm.DB
}

func NewOAuthStateRepository(db *gorm.DB) OAuthStateRepository {
	return &oauthStateRepoImpl{db: db}
}

func (r *oauthStateRepoImpl) Create(ctx context.Context, state *model.OAuthState) error {
	return r.db.WithContext(ctx).Create(state).Error
}

func (r *oauthStateRepoImpl) Consume(ctx context.Context, token string, notBefore time.Time) (*model.OAuthState, error) {
	var state model.OAuthState

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("created_at < ?", notBefore).
			Delete(&model.OAuthState{}).Error; err != nil {
			return err
		}

		if err := tx.
			Where("token = ?", token).
			First(&state).Error; err != nil {
			return err
		}

		return tx.
			Where("token = ?", token).
			Delete(&model.OAuthState{}).Error
	})

	if err != nil {
		return nil, err
	}

	return &state, nil
}
