package domain

import (
	"time"

	"github.com/google/uuid"
)

// Group is a role-play table run by its master.
type Group struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Schedule    string    `json:"schedule" gorm:"not null"`
	Location    string    `json:"location" gorm:"not null"`
	Chronic     string    `json:"chronic" gorm:"not null"`
	Master      uuid.UUID `json:"master" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	MasterUser *User  `json:"masterUser,omitempty" gorm:"foreignKey:Master"`
	Players    []User `json:"players,omitempty" gorm:"many2many:group_players;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Group) TableName() string {
	return "groups"
}

// HasPlayer returns true if the user is among the loaded players
func (g *Group) HasPlayer(userID uuid.UUID) bool {
	for _, p := range g.Players {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// GroupRequestStatus represents the state of a join request
type GroupRequestStatus string

const (
	GroupRequestPending  GroupRequestStatus = "PENDING"
	GroupRequestAccepted GroupRequestStatus = "ACCEPTED"
)

// GroupRequest is a user's request to join a group, awaiting the master.
// A (group, user) pair has at most one request, whatever its status.
type GroupRequest struct {
	ID        uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GroupID   uuid.UUID          `json:"groupId" gorm:"type:uuid;not null;uniqueIndex:idx_group_requests_group_user"`
	UserID    uuid.UUID          `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_group_requests_group_user"`
	Status    GroupRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`

	// Relations
	Group *Group `json:"group,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (GroupRequest) TableName() string {
	return "group_requests"
}

// IsPending returns true while the master has not acted on the request
func (r *GroupRequest) IsPending() bool {
	return r.Status == GroupRequestPending
}
