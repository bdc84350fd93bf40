package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/roleplay-api/internal/config"
	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = domain.BadRequest("invalid credentials")
	ErrEmailInUse         = domain.Conflict("email is already in use")
	ErrUsernameInUse      = domain.Conflict("username is already in use")
	ErrUserNotFound       = domain.NotFound("user not found")
	ErrInvalidToken       = domain.Unauthorized("invalid token")
	ErrNotSameUser        = domain.Forbidden("users can only update their own account")
)

type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	cfg       *config.Config
}

func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Avatar   string
}

type LoginInput struct {
	Email    string
	Password string
}

type UpdateUserInput struct {
	Email    string
	Password string
	Avatar   string
}

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Session identifies the session token a request was authenticated with.
type Session struct {
	UserID  uuid.UUID
	TokenID uuid.UUID
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := s.ensureEmailFree(ctx, input.Email, uuid.Nil); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err == nil && existing != nil {
		return nil, ErrUsernameInUse
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Avatar:       input.Avatar,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Conflict("email or username is already in use")
		}
		return nil, err
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

// issueSession signs a JWT whose jti names a session row. The row is what
// makes the token revocable: logout deletes it.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiration())
	tokenID := uuid.New()

	claims := jwt.RegisteredClaims{
		ID:        tokenID.String(),
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	session := &domain.Token{
		ID:        tokenID,
		UserID:    user.ID,
		Kind:      domain.TokenKindSession,
		TokenHash: FingerprintToken(signed),
		CreatedAt: now,
		ExpiresAt: &expiresAt,
	}
	if err := s.tokenRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:      user,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken verifies the signature and expiry of a session token and
// that it has not been revoked.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*Session, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	stored, err := s.tokenRepo.GetByHash(ctx, domain.TokenKindSession, FingerprintToken(tokenString))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if stored.ID != tokenID || stored.UserID != userID {
		return nil, ErrInvalidToken
	}

	return &Session{UserID: userID, TokenID: tokenID}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUser replaces the email, password and avatar of the acting user.
func (s *AuthService) UpdateUser(ctx context.Context, actorID, userID uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	if actorID != userID {
		return nil, ErrNotSameUser
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != user.Email {
		if err := s.ensureEmailFree(ctx, input.Email, user.ID); err != nil {
			return nil, err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user.Email = input.Email
	user.Avatar = input.Avatar
	user.PasswordHash = string(hashedPassword)
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the session token the request was made with.
func (s *AuthService) Logout(ctx context.Context, session *Session) error {
	err := s.tokenRepo.Delete(ctx, session.TokenID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string, owner uuid.UUID) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil && existing.ID != owner {
		return ErrEmailInUse
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}
