package repository

import (
	"context"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Token, error)
	GetByHash(ctx context.Context, kind domain.TokenKind, tokenHash string) (*domain.Token, error)
	// GetByHashForUpdate locks the row until the surrounding transaction ends
	GetByHashForUpdate(ctx context.Context, kind domain.TokenKind, tokenHash string) (*domain.Token, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID, kind domain.TokenKind) error
}

type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	List(ctx context.Context, playerID *uuid.UUID) ([]*domain.Group, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IsPlayer(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	// AddPlayer is a no-op when the user is already a player
	AddPlayer(ctx context.Context, groupID, userID uuid.UUID) error
	RemovePlayer(ctx context.Context, groupID, userID uuid.UUID) error
}

type GroupRequestRepository interface {
	Create(ctx context.Context, request *domain.GroupRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupRequest, error)
	GetByGroupAndUser(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupRequest, error)
	// GetForUpdate loads a request of the given group and locks it
	GetForUpdate(ctx context.Context, groupID, requestID uuid.UUID) (*domain.GroupRequest, error)
	ListPendingByMaster(ctx context.Context, masterID uuid.UUID) ([]*domain.GroupRequest, error)
	Update(ctx context.Context, request *domain.GroupRequest) error
}

// Transactor runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	User         UserRepository
	Token        TokenRepository
	Group        GroupRepository
	GroupRequest GroupRequestRepository
	Tx           Transactor
}
