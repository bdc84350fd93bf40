package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrGroupRequestExists   = domain.Conflict("group request already exists")
	ErrAlreadyInGroup       = domain.Unprocessable("user already exists")
	ErrGroupRequestNotFound = domain.NotFound("group request not found")
)

// GroupRequestNotifier is told about request state changes once they are
// committed.
type GroupRequestNotifier interface {
	GroupRequestCreated(masterID uuid.UUID, request *domain.GroupRequest)
	GroupRequestAccepted(request *domain.GroupRequest)
}

type GroupRequestService struct {
	repos    *repository.Repositories
	notifier GroupRequestNotifier
	log      *zap.Logger
}

func NewGroupRequestService(repos *repository.Repositories, notifier GroupRequestNotifier, logger *zap.Logger) *GroupRequestService {
	return &GroupRequestService{
		repos:    repos,
		notifier: notifier,
		log:      logger,
	}
}

// ListForMaster returns pending requests on every group mastered by master.
// A missing or malformed id matches nothing.
func (s *GroupRequestService) ListForMaster(ctx context.Context, master string) ([]*domain.GroupRequest, error) {
	masterID, err := uuid.Parse(master)
	if err != nil {
		return []*domain.GroupRequest{}, nil
	}
	requests, err := s.repos.GroupRequest.ListPendingByMaster(ctx, masterID)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []*domain.GroupRequest{}
	}
	return requests, nil
}

// Create files a join request for userID. An existing request for the pair
// (any status) is reported before existing membership.
func (s *GroupRequestService) Create(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupRequest, error) {
	group, err := s.repos.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	existing, err := s.repos.GroupRequest.GetByGroupAndUser(ctx, groupID, userID)
	if err == nil && existing != nil {
		return nil, ErrGroupRequestExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if group.HasPlayer(userID) {
		return nil, ErrAlreadyInGroup
	}

	request := &domain.GroupRequest{
		ID:        uuid.New(),
		GroupID:   groupID,
		UserID:    userID,
		Status:    domain.GroupRequestPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repos.GroupRequest.Create(ctx, request); err != nil {
		// the unique index caught a concurrent duplicate
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGroupRequestExists
		}
		return nil, err
	}

	created, err := s.repos.GroupRequest.GetByID(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("group request created",
		zap.String("group_id", groupID.String()),
		zap.String("user_id", userID.String()),
		zap.String("request_id", created.ID.String()))

	if s.notifier != nil {
		s.notifier.GroupRequestCreated(group.Master, created)
	}
	return created, nil
}

// Accept marks a request of groupID as accepted and makes its user a player.
// Accepting twice is harmless: the status only moves forward and the player
// is added at most once.
func (s *GroupRequestService) Accept(ctx context.Context, groupID, requestID, actorID uuid.UUID) (*domain.GroupRequest, error) {
	var accepted *domain.GroupRequest
	var transitioned bool

	err := s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		request, err := repos.GroupRequest.GetForUpdate(ctx, groupID, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupRequestNotFound
			}
			return err
		}

		group, err := repos.Group.GetByID(ctx, groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupRequestNotFound
			}
			return err
		}
		if group.Master != actorID {
			return ErrNotGroupMaster
		}

		if request.IsPending() {
			request.Status = domain.GroupRequestAccepted
			request.UpdatedAt = time.Now()
			if err := repos.GroupRequest.Update(ctx, request); err != nil {
				return err
			}
			transitioned = true
		}

		if err := repos.Group.AddPlayer(ctx, groupID, request.UserID); err != nil {
			return err
		}

		accepted = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.log.Info("group request accepted",
			zap.String("group_id", groupID.String()),
			zap.String("request_id", requestID.String()),
			zap.String("user_id", accepted.UserID.String()))

		if s.notifier != nil {
			s.notifier.GroupRequestAccepted(accepted)
		}
	}
	return accepted, nil
}
