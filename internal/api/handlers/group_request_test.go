package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/realtime"
	"github.com/dom/roleplay-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupRequestBody struct {
	ID      string `json:"id"`
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
	Status  string `json:"status"`
	Group   *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"group"`
}

func TestGroupRequestHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	t.Run("creates a pending request", func(t *testing.T) {
		group := testutil.NewGroupBuilder().Build(t, ts.DB.DB)

		resp := testutil.Do(t, http.MethodPost, ts.URL("/groups/"+group.ID.String()+"/requests"), nil, token)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		var body struct {
			GroupRequest groupRequestBody `json:"groupRequest"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, group.ID.String(), body.GroupRequest.GroupID)
		assert.Equal(t, user.ID.String(), body.GroupRequest.UserID)
		assert.Equal(t, "PENDING", body.GroupRequest.Status)

		resp = testutil.Do(t, http.MethodPost, ts.URL("/groups/"+group.ID.String()+"/requests"), nil, token)
		testutil.AssertErrorResponse(t, resp, http.StatusConflict, "BAD_REQUEST", "group request already exists")
	})

	t.Run("already a player", func(t *testing.T) {
		group := testutil.NewGroupBuilder().WithPlayers(user).Build(t, ts.DB.DB)

		resp := testutil.Do(t, http.MethodPost, ts.URL("/groups/"+group.ID.String()+"/requests"), nil, token)
		testutil.AssertErrorResponse(t, resp, http.StatusUnprocessableEntity, "BAD_REQUEST", "user already exists")
	})

	t.Run("unknown group", func(t *testing.T) {
		resp := testutil.Do(t, http.MethodPost, ts.URL("/groups/"+uuid.NewString()+"/requests"), nil, token)
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "BAD_REQUEST", "")
	})

	t.Run("requires a session", func(t *testing.T) {
		group := testutil.NewGroupBuilder().Build(t, ts.DB.DB)

		resp := testutil.Do(t, http.MethodPost, ts.URL("/groups/"+group.ID.String()+"/requests"), nil, "")
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "UNAUTHORIZED", "")
	})
}

func TestGroupRequestHandler_List(t *testing.T) {
	ts := testutil.NewTestServer(t)

	master, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	group := testutil.NewGroupBuilder().WithName("Waterdeep").WithMaster(master).Build(t, ts.DB.DB)
	pending := testutil.NewGroupRequestBuilder().WithGroup(group).Build(t, ts.DB.DB)
	testutil.NewGroupRequestBuilder().WithGroup(group).WithStatus(domain.GroupRequestAccepted).Build(t, ts.DB.DB)

	list := func(query string) []groupRequestBody {
		resp := testutil.Do(t, http.MethodGet, ts.URL("/groups/"+group.ID.String()+"/requests"+query), nil, "")
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body struct {
			GroupRequests []groupRequestBody `json:"groupRequests"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		require.NotNil(t, body.GroupRequests)
		return body.GroupRequests
	}

	requests := list("?master=" + master.ID.String())
	require.Len(t, requests, 1)
	assert.Equal(t, pending.ID.String(), requests[0].ID)
	require.NotNil(t, requests[0].Group)
	assert.Equal(t, "Waterdeep", requests[0].Group.Name)

	assert.Empty(t, list(""))
	assert.Empty(t, list("?master=garbage"))
}

func TestGroupRequestHandler_Accept(t *testing.T) {
	ts := testutil.NewTestServer(t)

	master, masterToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	requester, requesterToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	group := testutil.NewGroupBuilder().WithMaster(master).Build(t, ts.DB.DB)
	request := testutil.NewGroupRequestBuilder().WithGroup(group).WithUser(requester).Build(t, ts.DB.DB)

	requestURL := ts.URL("/groups/" + group.ID.String() + "/requests/" + request.ID.String())

	resp := testutil.Do(t, http.MethodPatch, requestURL, nil, requesterToken)
	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "FORBIDDEN", "")

	other := testutil.NewGroupBuilder().WithMaster(master).Build(t, ts.DB.DB)
	resp = testutil.Do(t, http.MethodPost,
		ts.URL("/groups/"+other.ID.String()+"/requests/"+request.ID.String()), nil, masterToken)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "BAD_REQUEST", "group request not found")

	for _, tc := range []struct{ method, url string }{
		{http.MethodPatch, requestURL},
		{http.MethodPost, requestURL},
		{http.MethodPost, requestURL + "/accept"},
		{http.MethodPatch, requestURL + "/accept"},
	} {
		resp = testutil.Do(t, tc.method, tc.url, nil, masterToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body struct {
			GroupRequest groupRequestBody `json:"groupRequest"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "ACCEPTED", body.GroupRequest.Status)
	}

	loaded, err := ts.Repos.Group.GetByID(t.Context(), group.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Players, 2)
	assert.True(t, loaded.HasPlayer(requester.ID))
}

// Register, log in, create a group, ask to join, list, accept, and end up
// with two players, with both sides told in realtime.
func TestGroupRequestFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	register := func(username, email string) {
		resp := testutil.Do(t, http.MethodPost, ts.URL("/users"), map[string]string{
			"username": username,
			"email":    email,
			"password": "secret",
		}, "")
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
	}
	register("elrond", "elrond@rivendell.com")
	register("legolas", "legolas@mirkwood.com")

	masterToken := testutil.Login(t, ts, "elrond@rivendell.com", "secret")
	playerToken := testutil.Login(t, ts, "legolas@mirkwood.com", "secret")

	masterSession, err := ts.Services.Auth.ValidateToken(t.Context(), masterToken)
	require.NoError(t, err)
	playerSession, err := ts.Services.Auth.ValidateToken(t.Context(), playerToken)
	require.NoError(t, err)

	masterWS := testutil.NewWSClient(t, ts.WebSocketURL(masterToken))
	playerWS := testutil.NewWSClient(t, ts.WebSocketURL(playerToken))
	require.Eventually(t, func() bool {
		return ts.Hub.ConnectedCount(masterSession.UserID) == 1 && ts.Hub.ConnectedCount(playerSession.UserID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp := testutil.Do(t, http.MethodPost, ts.URL("/groups"), groupPayload(masterSession.UserID.String()), masterToken)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var created struct {
		Group groupBody `json:"group"`
	}
	testutil.AssertJSONResponse(t, resp, &created)
	groupID := created.Group.ID

	resp = testutil.Do(t, http.MethodPost, ts.URL("/groups/"+groupID+"/requests"), nil, playerToken)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var requested struct {
		GroupRequest groupRequestBody `json:"groupRequest"`
	}
	testutil.AssertJSONResponse(t, resp, &requested)

	msg := masterWS.WaitForMessage(realtime.MessageTypeGroupRequestCreated, 2*time.Second)
	var payload realtime.GroupRequestPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, requested.GroupRequest.ID, payload.ID)

	resp = testutil.Do(t, http.MethodGet,
		ts.URL("/groups/"+groupID+"/requests?master="+masterSession.UserID.String()), nil, "")
	var listed struct {
		GroupRequests []groupRequestBody `json:"groupRequests"`
	}
	testutil.AssertJSONResponse(t, resp, &listed)
	require.Len(t, listed.GroupRequests, 1)
	assert.Equal(t, requested.GroupRequest.ID, listed.GroupRequests[0].ID)

	resp = testutil.Do(t, http.MethodPost,
		ts.URL("/groups/"+groupID+"/requests/"+requested.GroupRequest.ID), nil, masterToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	msg = playerWS.WaitForMessage(realtime.MessageTypeGroupRequestAccepted, 2*time.Second)
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "ACCEPTED", payload.Status)

	resp = testutil.Do(t, http.MethodGet, ts.URL("/groups/"+groupID), nil, "")
	var fetched struct {
		Group groupBody `json:"group"`
	}
	testutil.AssertJSONResponse(t, resp, &fetched)
	assert.Len(t, fetched.Group.Players, 2)

	resp = testutil.Do(t, http.MethodGet,
		ts.URL("/groups/"+groupID+"/requests?master="+masterSession.UserID.String()), nil, "")
	testutil.AssertJSONResponse(t, resp, &listed)
	assert.Empty(t, listed.GroupRequests)
}
