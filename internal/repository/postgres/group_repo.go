package postgres

import (
	"context"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// groupPlayer is a row of the many2many join table behind Group.Players.
type groupPlayer struct {
	GroupID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (groupPlayer) TableName() string {
	return "group_players"
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Omit("Players.*", "MasterUser").Create(group).Error
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	var group domain.Group
	err := r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.created_at")
		}).
		Preload("MasterUser").
		First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context, playerID *uuid.UUID) ([]*domain.Group, error) {
	var groups []*domain.Group
	query := r.db.WithContext(ctx).
		Preload("Players").
		Preload("MasterUser")
	if playerID != nil {
		query = query.Where("id IN (?)",
			r.db.Model(&groupPlayer{}).Select("group_id").Where("user_id = ?", *playerID))
	}
	err := query.Order("created_at DESC").Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Select("Players").Delete(&domain.Group{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupRepository) IsPlayer(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&groupPlayer{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *groupRepository) AddPlayer(ctx context.Context, groupID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&groupPlayer{GroupID: groupID, UserID: userID}).Error
}

func (r *groupRepository) RemovePlayer(ctx context.Context, groupID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&groupPlayer{}, "group_id = ? AND user_id = ?", groupID, userID).Error
}
