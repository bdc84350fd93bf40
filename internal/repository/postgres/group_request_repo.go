package postgres

import (
	"context"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type groupRequestRepository struct {
	db *gorm.DB
}

func NewGroupRequestRepository(db *gorm.DB) *groupRequestRepository {
	return &groupRequestRepository{db: db}
}

func (r *groupRequestRepository) Create(ctx context.Context, request *domain.GroupRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(request).Error
}

func (r *groupRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupRequest, error) {
	var request domain.GroupRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *groupRequestRepository) GetByGroupAndUser(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupRequest, error) {
	var request domain.GroupRequest
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *groupRequestRepository) GetForUpdate(ctx context.Context, groupID, requestID uuid.UUID) (*domain.GroupRequest, error) {
	var request domain.GroupRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND group_id = ?", requestID, groupID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *groupRequestRepository) ListPendingByMaster(ctx context.Context, masterID uuid.UUID) ([]*domain.GroupRequest, error) {
	var requests []*domain.GroupRequest
	err := r.db.WithContext(ctx).
		Preload("Group", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Where("status = ?", domain.GroupRequestPending).
		Where("group_id IN (?)",
			r.db.Model(&domain.Group{}).Select("id").Where("master = ?", masterID)).
		Order("created_at").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *groupRequestRepository) Update(ctx context.Context, request *domain.GroupRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(request).Error
}
