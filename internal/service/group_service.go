package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound      = domain.NotFound("group not found")
	ErrPlayerNotFound     = domain.NotFound("player not found in group")
	ErrNotGroupMaster     = domain.Forbidden("only the group master can perform this action")
	ErrCannotRemoveMaster = domain.Unprocessable("the master cannot be removed from the group")
)

type GroupService struct {
	repos *repository.Repositories
}

func NewGroupService(repos *repository.Repositories) *GroupService {
	return &GroupService{repos: repos}
}

type CreateGroupInput struct {
	Name        string
	Description string
	Schedule    string
	Location    string
	Chronic     string
	Master      uuid.UUID
}

// Create stores a group mastered by the acting user, who becomes its first
// player.
func (s *GroupService) Create(ctx context.Context, actorID uuid.UUID, input CreateGroupInput) (*domain.Group, error) {
	if input.Master != actorID {
		return nil, ErrNotGroupMaster
	}

	group := &domain.Group{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Schedule:    input.Schedule,
		Location:    input.Location,
		Chronic:     input.Chronic,
		Master:      input.Master,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	err := s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		if err := repos.Group.Create(ctx, group); err != nil {
			return err
		}
		return repos.Group.AddPlayer(ctx, group.ID, group.Master)
	})
	if err != nil {
		return nil, err
	}

	return s.repos.Group.GetByID(ctx, group.ID)
}

func (s *GroupService) Get(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	group, err := s.repos.Group.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// List returns all groups, or only those the given user plays in. A
// malformed user id matches nothing.
func (s *GroupService) List(ctx context.Context, user string) ([]*domain.Group, error) {
	if user == "" {
		return s.repos.Group.List(ctx, nil)
	}
	userID, err := uuid.Parse(user)
	if err != nil {
		return []*domain.Group{}, nil
	}
	return s.repos.Group.List(ctx, &userID)
}

func (s *GroupService) RemovePlayer(ctx context.Context, actorID, groupID, playerID uuid.UUID) error {
	group, err := s.getMastered(ctx, actorID, groupID)
	if err != nil {
		return err
	}
	if playerID == group.Master {
		return ErrCannotRemoveMaster
	}

	isPlayer, err := s.repos.Group.IsPlayer(ctx, groupID, playerID)
	if err != nil {
		return err
	}
	if !isPlayer {
		return ErrPlayerNotFound
	}

	return s.repos.Group.RemovePlayer(ctx, groupID, playerID)
}

func (s *GroupService) Delete(ctx context.Context, actorID, groupID uuid.UUID) error {
	if _, err := s.getMastered(ctx, actorID, groupID); err != nil {
		return err
	}

	err := s.repos.Group.Delete(ctx, groupID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGroupNotFound
	}
	return err
}

func (s *GroupService) getMastered(ctx context.Context, actorID, groupID uuid.UUID) (*domain.Group, error) {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Master != actorID {
		return nil, ErrNotGroupMaster
	}
	return group, nil
}
