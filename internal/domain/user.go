package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TokenKind discriminates the opaque tokens kept in the tokens table.
type TokenKind string

const (
	TokenKindSession TokenKind = "session"
	TokenKindReset   TokenKind = "reset"
)

// ResetTokenTTL is how long a password reset token stays usable.
const ResetTokenTTL = 2 * time.Hour

// Token is either an API session token or a password reset token. Only a
// fingerprint of the opaque value is stored.
type Token struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Kind      TokenKind  `json:"kind" gorm:"type:varchar(20);not null;index"`
	TokenHash string     `json:"-" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Token) TableName() string {
	return "tokens"
}

// IsExpiredAt reports whether a reset token created at CreatedAt has outlived
// ttl at the given instant.
func (t *Token) IsExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(t.CreatedAt) > ttl
}
