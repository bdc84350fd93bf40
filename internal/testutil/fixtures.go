package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/service"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	password string
	avatar   string
}

// NewUserBuilder creates a new UserBuilder with unique default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: "player_" + suffix,
		email:    fmt.Sprintf("player_%s@example.com", suffix),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithAvatar(avatar string) *UserBuilder {
	b.avatar = avatar
	return b
}

// Build creates the user in the database and returns the user with the raw password.
// bcrypt.MinCost keeps suites fast.
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		Avatar:       b.avatar,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// SessionResponse matches the POST /sessions response
type SessionResponse struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	Token struct {
		Type      string    `json:"type"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	} `json:"token"`
}

// BuildAndLogin stores the user and opens a session for it through the API,
// returning the user and its bearer token.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)
	return user, Login(t, ts, user.Email, password)
}

// Login opens a session through POST /sessions and returns the bearer token
func Login(t *testing.T, ts *TestServer, email, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := http.Post(ts.URL("/sessions"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var session SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return session.Token.Token
}

// GroupBuilder creates test groups; the master is always attached as a player
type GroupBuilder struct {
	name    string
	master  *domain.User
	players []*domain.User
}

func NewGroupBuilder() *GroupBuilder {
	return &GroupBuilder{
		name: fmt.Sprintf("Mesa %s", uuid.New().String()[:8]),
	}
}

func (b *GroupBuilder) WithName(name string) *GroupBuilder {
	b.name = name
	return b
}

func (b *GroupBuilder) WithMaster(user *domain.User) *GroupBuilder {
	b.master = user
	return b
}

// WithPlayers attaches additional players besides the master
func (b *GroupBuilder) WithPlayers(users ...*domain.User) *GroupBuilder {
	b.players = append(b.players, users...)
	return b
}

// Build creates the group in the database
func (b *GroupBuilder) Build(t *testing.T, db *gorm.DB) *domain.Group {
	t.Helper()

	if b.master == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.master = user
	}

	group := &domain.Group{
		ID:          uuid.New(),
		Name:        b.name,
		Description: "a weekly campaign",
		Schedule:    "saturdays 20h",
		Location:    "discord",
		Chronic:     "the party meets at the tavern",
		Master:      b.master.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Omit("Players", "MasterUser").Create(group).Error; err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	members := append([]*domain.User{b.master}, b.players...)
	for _, member := range members {
		err := db.Exec("INSERT INTO group_players (group_id, user_id) VALUES (?, ?)", group.ID, member.ID).Error
		if err != nil {
			t.Fatalf("failed to add player: %v", err)
		}
		group.Players = append(group.Players, *member)
	}

	return group
}

// GroupRequestBuilder creates test join requests
type GroupRequestBuilder struct {
	group  *domain.Group
	user   *domain.User
	status domain.GroupRequestStatus
}

func NewGroupRequestBuilder() *GroupRequestBuilder {
	return &GroupRequestBuilder{status: domain.GroupRequestPending}
}

func (b *GroupRequestBuilder) WithGroup(group *domain.Group) *GroupRequestBuilder {
	b.group = group
	return b
}

func (b *GroupRequestBuilder) WithUser(user *domain.User) *GroupRequestBuilder {
	b.user = user
	return b
}

func (b *GroupRequestBuilder) WithStatus(status domain.GroupRequestStatus) *GroupRequestBuilder {
	b.status = status
	return b
}

// Build creates the request in the database
func (b *GroupRequestBuilder) Build(t *testing.T, db *gorm.DB) *domain.GroupRequest {
	t.Helper()

	if b.group == nil {
		b.group = NewGroupBuilder().Build(t, db)
	}
	if b.user == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.user = user
	}

	request := &domain.GroupRequest{
		ID:        uuid.New(),
		GroupID:   b.group.ID,
		UserID:    b.user.ID,
		Status:    b.status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := db.Omit("Group", "User").Create(request).Error; err != nil {
		t.Fatalf("failed to create group request: %v", err)
	}

	return request
}

// ResetTokenBuilder stores password reset tokens
type ResetTokenBuilder struct {
	user      *domain.User
	createdAt time.Time
}

func NewResetTokenBuilder() *ResetTokenBuilder {
	return &ResetTokenBuilder{createdAt: time.Now()}
}

func (b *ResetTokenBuilder) WithUser(user *domain.User) *ResetTokenBuilder {
	b.user = user
	return b
}

// WithCreatedAt backdates the token, e.g. to make it expired
func (b *ResetTokenBuilder) WithCreatedAt(createdAt time.Time) *ResetTokenBuilder {
	b.createdAt = createdAt
	return b
}

// Build stores the token's fingerprint and returns the row with the raw token
func (b *ResetTokenBuilder) Build(t *testing.T, db *gorm.DB) (*domain.Token, string) {
	t.Helper()

	if b.user == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.user = user
	}

	raw := uuid.New().String() + uuid.New().String()
	token := &domain.Token{
		ID:        uuid.New(),
		UserID:    b.user.ID,
		Kind:      domain.TokenKindReset,
		TokenHash: service.FingerprintToken(raw),
		CreatedAt: b.createdAt,
	}

	if err := db.Omit("User").Create(token).Error; err != nil {
		t.Fatalf("failed to create reset token: %v", err)
	}

	return token, raw
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends a JSON request, authenticated when token is non-empty
func Do(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(CreateAuthenticatedRequest(t, method, url, body, token))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() {
		resp.Body.Close()
	})
	return resp
}
