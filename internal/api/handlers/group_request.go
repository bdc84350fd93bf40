package handlers

import (
	"net/http"

	"github.com/dom/roleplay-api/internal/api/middleware"
	"github.com/dom/roleplay-api/internal/api/respond"
	"github.com/dom/roleplay-api/internal/service"
	"go.uber.org/zap"
)

type GroupRequestHandler struct {
	requestService *service.GroupRequestService
	log            *zap.Logger
}

func NewGroupRequestHandler(requestService *service.GroupRequestService, logger *zap.Logger) *GroupRequestHandler {
	return &GroupRequestHandler{requestService: requestService, log: logger}
}

type GroupRequestEnvelope struct {
	GroupRequest GroupRequestResponse `json:"groupRequest"`
}

type GroupRequestListResponse struct {
	GroupRequests []GroupRequestResponse `json:"groupRequests"`
}

// List handles GET /groups/{groupId}/requests?master=. The listing spans
// every group the master runs.
func (h *GroupRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requestService.ListForMaster(r.Context(), r.URL.Query().Get("master"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := GroupRequestListResponse{GroupRequests: make([]GroupRequestResponse, 0, len(requests))}
	for _, gr := range requests {
		resp.GroupRequests = append(resp.GroupRequests, toGroupRequestResponse(gr))
	}
	respond.JSON(w, http.StatusOK, resp)
}

// Create handles POST /groups/{groupId}/requests on behalf of the caller.
func (h *GroupRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, h.log, service.ErrInvalidToken)
		return
	}

	groupID, err := pathID(r, "groupId", service.ErrGroupNotFound)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	request, err := h.requestService.Create(r.Context(), groupID, userID)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, GroupRequestEnvelope{GroupRequest: toGroupRequestResponse(request)})
}

// Accept handles POST and PATCH /groups/{groupId}/requests/{requestId}/accept.
func (h *GroupRequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, h.log, service.ErrInvalidToken)
		return
	}

	groupID, err := pathID(r, "groupId", service.ErrGroupRequestNotFound)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}
	requestID, err := pathID(r, "requestId", service.ErrGroupRequestNotFound)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	request, err := h.requestService.Accept(r.Context(), groupID, requestID, actorID)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, GroupRequestEnvelope{GroupRequest: toGroupRequestResponse(request)})
}
