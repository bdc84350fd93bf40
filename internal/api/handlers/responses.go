package handlers

import (
	"time"

	"github.com/dom/roleplay-api/internal/domain"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

type GroupResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schedule    string         `json:"schedule"`
	Location    string         `json:"location"`
	Chronic     string         `json:"chronic"`
	Master      string         `json:"master"`
	MasterUser  *UserResponse  `json:"masterUser,omitempty"`
	Players     []UserResponse `json:"players"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func toGroupResponse(g *domain.Group) GroupResponse {
	resp := GroupResponse{
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
		Schedule:    g.Schedule,
		Location:    g.Location,
		Chronic:     g.Chronic,
		Master:      g.Master.String(),
		Players:     make([]UserResponse, 0, len(g.Players)),
		CreatedAt:   g.CreatedAt,
	}
	if g.MasterUser != nil {
		master := toUserResponse(g.MasterUser)
		resp.MasterUser = &master
	}
	for i := range g.Players {
		resp.Players = append(resp.Players, toUserResponse(&g.Players[i]))
	}
	return resp
}

type GroupSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type GroupRequestResponse struct {
	ID        string        `json:"id"`
	GroupID   string        `json:"groupId"`
	UserID    string        `json:"userId"`
	Status    string        `json:"status"`
	Group     *GroupSummary `json:"group,omitempty"`
	User      *UserResponse `json:"user,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func toGroupRequestResponse(gr *domain.GroupRequest) GroupRequestResponse {
	resp := GroupRequestResponse{
		ID:        gr.ID.String(),
		GroupID:   gr.GroupID.String(),
		UserID:    gr.UserID.String(),
		Status:    string(gr.Status),
		CreatedAt: gr.CreatedAt,
		UpdatedAt: gr.UpdatedAt,
	}
	if gr.Group != nil {
		resp.Group = &GroupSummary{ID: gr.Group.ID.String(), Name: gr.Group.Name}
	}
	if gr.User != nil {
		user := toUserResponse(gr.User)
		resp.User = &user
	}
	return resp
}
