package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/roleplay-api/internal/config"
	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/mail"
	"github.com/dom/roleplay-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrResetTokenNotFound = domain.NotFound("token not found")
	ErrResetTokenExpired  = domain.Gone("token has expired")
)

type PasswordService struct {
	repos  *repository.Repositories
	mailer mail.Mailer
	cfg    *config.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewPasswordService(repos *repository.Repositories, mailer mail.Mailer, cfg *config.Config, logger *zap.Logger) *PasswordService {
	return &PasswordService{
		repos:  repos,
		mailer: mailer,
		cfg:    cfg,
		log:    logger,
		now:    time.Now,
	}
}

type ForgotPasswordInput struct {
	Email string
	// ResetPasswordURL is the page the email links to. Empty means the
	// configured default.
	ResetPasswordURL string
}

type ResetPasswordInput struct {
	Token    string
	Password string
}

// Forgot issues a reset token and mails it. An unknown email is not an
// error, so the endpoint cannot be used to probe for accounts.
func (s *PasswordService) Forgot(ctx context.Context, input ForgotPasswordInput) error {
	user, err := s.repos.User.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("forgot password for unknown email")
			return nil
		}
		return err
	}

	token, err := generateToken(resetTokenSize)
	if err != nil {
		return err
	}

	err = s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		// only the newest reset token stays valid
		if err := repos.Token.DeleteByUserID(ctx, user.ID, domain.TokenKindReset); err != nil {
			return err
		}
		return repos.Token.Create(ctx, &domain.Token{
			ID:        uuid.New(),
			UserID:    user.ID,
			Kind:      domain.TokenKindReset,
			TokenHash: FingerprintToken(token),
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := input.ResetPasswordURL
	if resetURL == "" {
		resetURL = s.cfg.ResetPasswordURL
	}

	email := mail.BuildResetPasswordEmail(mail.ResetPasswordData{
		Username:  user.Username,
		ResetLink: mail.ResetLink(resetURL, token),
		ExpiresIn: humanizeDuration(s.cfg.ResetTokenTTL),
	})
	email.From = s.cfg.MailFrom
	email.To = user.Email

	if err := s.mailer.Send(ctx, email); err != nil {
		return fmt.Errorf("send reset password email: %w", err)
	}

	s.log.Info("reset password token issued", zap.String("user_id", user.ID.String()))
	return nil
}

// Reset consumes a reset token and sets the owner's new password. The token
// row is locked for the duration, so of concurrent attempts with one token
// exactly one succeeds and the rest see it as not found.
func (s *PasswordService) Reset(ctx context.Context, input ResetPasswordInput) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var userID uuid.UUID
	err = s.repos.Tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		token, err := repos.Token.GetByHashForUpdate(ctx, domain.TokenKindReset, FingerprintToken(input.Token))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResetTokenNotFound
			}
			return err
		}

		if token.IsExpiredAt(s.now(), s.cfg.ResetTokenTTL) {
			return ErrResetTokenExpired
		}

		if err := repos.User.UpdatePasswordHash(ctx, token.UserID, string(hashedPassword)); err != nil {
			return err
		}
		userID = token.UserID
		return repos.Token.Delete(ctx, token.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("password reset", zap.String("user_id", userID.String()))
	return nil
}

func humanizeDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hora"
		}
		return fmt.Sprintf("%d horas", h)
	}
	return fmt.Sprintf("%d minutos", int(d/time.Minute))
}
