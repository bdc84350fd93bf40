package handlers

import (
	"net/http"

	"github.com/dom/roleplay-api/internal/api/middleware"
	"github.com/dom/roleplay-api/internal/api/respond"
	"github.com/dom/roleplay-api/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GroupHandler struct {
	groupService *service.GroupService
	log          *zap.Logger
}

func NewGroupHandler(groupService *service.GroupService, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{groupService: groupService, log: logger}
}

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Schedule    string `json:"schedule" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Chronic     string `json:"chronic" validate:"required"`
	Master      string `json:"master" validate:"required,uuid"`
}

type GroupEnvelope struct {
	Group GroupResponse `json:"group"`
}

type GroupListResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// Create handles POST /groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, h.log, service.ErrInvalidToken)
		return
	}

	var req CreateGroupRequest
	if err := decode(r, &req, http.StatusUnprocessableEntity); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	group, err := h.groupService.Create(r.Context(), actorID, service.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		Location:    req.Location,
		Chronic:     req.Chronic,
		Master:      uuid.MustParse(req.Master),
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, GroupEnvelope{Group: toGroupResponse(group)})
}

// List handles GET /groups, optionally filtered by ?user=.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.List(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := GroupListResponse{Groups: make([]GroupResponse, 0, len(groups))}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, toGroupResponse(g))
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId", service.ErrGroupNotFound)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	group, err := h.groupService.Get(r.Context(), groupID)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, GroupEnvelope{Group: toGroupResponse(group)})
}

// RemovePlayer handles DELETE /groups/{groupId}/players/{playerId}.
func (h *GroupHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, h.log, service.ErrInvalidToken)
		return
	}

	groupID, err := pathID(r, "groupId", service.ErrGroupNotFound)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	playerID, err := pathID(r, "playerId", service.ErrPlayerNotFound)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	if err := h.groupService.RemovePlayer(r.Context(), actorID, groupID, playerID); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, struct{}{})
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, h.log, service.ErrInvalidToken)
		return
	}

	groupID, err := pathID(r, "groupId", service.ErrGroupNotFound)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	if err := h.groupService.Delete(r.Context(), actorID, groupID); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, struct{}{})
}
