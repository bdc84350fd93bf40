package postgres

import (
	"context"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *tokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Token, error) {
	var token domain.Token
	err := r.db.WithContext(ctx).First(&token, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) GetByHash(ctx context.Context, kind domain.TokenKind, tokenHash string) (*domain.Token, error) {
	var token domain.Token
	err := r.db.WithContext(ctx).
		Where("kind = ? AND token_hash = ?", kind, tokenHash).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) GetByHashForUpdate(ctx context.Context, kind domain.TokenKind, tokenHash string) (*domain.Token, error) {
	var token domain.Token
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND token_hash = ?", kind, tokenHash).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Token{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID, kind domain.TokenKind) error {
	return r.db.WithContext(ctx).Delete(&domain.Token{}, "user_id = ? AND kind = ?", userID, kind).Error
}
