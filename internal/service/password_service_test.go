package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/mail"
	"github.com/dom/roleplay-api/internal/repository/postgres"
	"github.com/dom/roleplay-api/internal/service"
	"github.com/dom/roleplay-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type failingMailer struct{}

func (failingMailer) Send(ctx context.Context, email mail.Email) error {
	return errors.New("smtp unavailable")
}

func TestPasswordService_Forgot(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	tx := testDB.Tx(t)
	repos := postgres.NewRepositories(tx)
	cfg := testutil.TestConfig()
	mailer := mail.NewRecorder()
	passwordService := service.NewPasswordService(repos, mailer, cfg, zap.NewNop())
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("boromir").Build(t, tx)

	t.Run("sends one email with a working link", func(t *testing.T) {
		mailer.Reset()

		err := passwordService.Forgot(ctx, service.ForgotPasswordInput{
			Email:            user.Email,
			ResetPasswordURL: "https://roleplay.com/reset",
		})
		require.NoError(t, err)

		sent := mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "no-reply@roleplay.com", sent[0].From)
		assert.Equal(t, user.Email, sent[0].To)
		assert.Equal(t, "Roleplay: Recuperação de Senha", sent[0].Subject)
		assert.Contains(t, sent[0].HTMLBody, "boromir")
		assert.Contains(t, sent[0].HTMLBody, "https://roleplay.com/reset?token=")
		assert.Contains(t, sent[0].HTMLBody, "2 horas")

		raw := testutil.ResetTokenFromEmail(t, sent[0])
		stored, err := repos.Token.GetByHash(ctx, domain.TokenKindReset, service.FingerprintToken(raw))
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.UserID)
		assert.NotEqual(t, raw, stored.TokenHash)
	})

	t.Run("falls back to the configured url", func(t *testing.T) {
		mailer.Reset()

		require.NoError(t, passwordService.Forgot(ctx, service.ForgotPasswordInput{Email: user.Email}))

		sent := mailer.Sent()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].TextBody, cfg.ResetPasswordURL+"?token=")
	})

	t.Run("a new request supersedes older tokens", func(t *testing.T) {
		mailer.Reset()

		require.NoError(t, passwordService.Forgot(ctx, service.ForgotPasswordInput{Email: user.Email}))
		require.NoError(t, passwordService.Forgot(ctx, service.ForgotPasswordInput{Email: user.Email}))

		var tokens []domain.Token
		require.NoError(t, tx.Where("user_id = ? AND kind = ?", user.ID, domain.TokenKindReset).Find(&tokens).Error)
		require.Len(t, tokens, 1)

		sent := mailer.Sent()
		require.Len(t, sent, 2)
		latest := testutil.ResetTokenFromEmail(t, sent[1])
		assert.Equal(t, service.FingerprintToken(latest), tokens[0].TokenHash)
	})

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		mailer.Reset()

		err := passwordService.Forgot(ctx, service.ForgotPasswordInput{Email: "nobody@example.com"})
		require.NoError(t, err)
		assert.Empty(t, mailer.Sent())
	})
}

func TestPasswordService_Forgot_MailFailure(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	tx := testDB.Tx(t)
	repos := postgres.NewRepositories(tx)
	passwordService := service.NewPasswordService(repos, failingMailer{}, testutil.TestConfig(), zap.NewNop())

	user, _ := testutil.NewUserBuilder().Build(t, tx)

	err := passwordService.Forgot(context.Background(), service.ForgotPasswordInput{Email: user.Email})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "smtp unavailable"))

	_, isAppErr := domain.AsError(err)
	assert.False(t, isAppErr)
}

func TestPasswordService_Reset(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	tx := testDB.Tx(t)
	repos := postgres.NewRepositories(tx)
	passwordService := service.NewPasswordService(repos, mail.NewRecorder(), testutil.TestConfig(), zap.NewNop())
	ctx := context.Background()

	t.Run("sets the new password and consumes the token", func(t *testing.T) {
		user, _ := testutil.NewUserBuilder().Build(t, tx)
		token, raw := testutil.NewResetTokenBuilder().WithUser(user).Build(t, tx)

		err := passwordService.Reset(ctx, service.ResetPasswordInput{Token: raw, Password: "mellon"})
		require.NoError(t, err)

		stored, err := repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("mellon")))

		_, err = repos.Token.GetByID(ctx, token.ID)
		assert.Error(t, err)

		err = passwordService.Reset(ctx, service.ResetPasswordInput{Token: raw, Password: "another"})
		assert.ErrorIs(t, err, service.ErrResetTokenNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		err := passwordService.Reset(ctx, service.ResetPasswordInput{Token: "nope", Password: "mellon"})
		assert.ErrorIs(t, err, service.ErrResetTokenNotFound)
	})

	t.Run("expired token keeps reporting expiry", func(t *testing.T) {
		user, _ := testutil.NewUserBuilder().Build(t, tx)
		token, raw := testutil.NewResetTokenBuilder().
			WithUser(user).
			WithCreatedAt(time.Now().Add(-3 * time.Hour)).
			Build(t, tx)

		for i := 0; i < 2; i++ {
			err := passwordService.Reset(ctx, service.ResetPasswordInput{Token: raw, Password: "mellon"})
			assert.ErrorIs(t, err, service.ErrResetTokenExpired)
		}

		_, err := repos.Token.GetByID(ctx, token.ID)
		assert.NoError(t, err)

		stored, err := repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.PasswordHash, stored.PasswordHash)
	})

	t.Run("token just inside the window", func(t *testing.T) {
		_, raw := testutil.NewResetTokenBuilder().
			WithCreatedAt(time.Now().Add(-time.Hour - 59*time.Minute)).
			Build(t, tx)

		err := passwordService.Reset(ctx, service.ResetPasswordInput{Token: raw, Password: "mellon"})
		assert.NoError(t, err)
	})

	t.Run("a session token cannot reset a password", func(t *testing.T) {
		user, password := testutil.NewUserBuilder().Build(t, tx)
		authService := service.NewAuthService(repos.User, repos.Token, testutil.TestConfig())
		result, err := authService.Login(ctx, service.LoginInput{Email: user.Email, Password: password})
		require.NoError(t, err)

		err = passwordService.Reset(ctx, service.ResetPasswordInput{Token: result.Token, Password: "mellon"})
		assert.ErrorIs(t, err, service.ErrResetTokenNotFound)
	})
}

func TestPasswordService_Reset_ConcurrentUseSucceedsOnce(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	passwordService := service.NewPasswordService(repos, mail.NewRecorder(), testutil.TestConfig(), zap.NewNop())
	ctx := context.Background()

	_, raw := testutil.NewResetTokenBuilder().Build(t, testDB.DB)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- passwordService.Reset(ctx, service.ResetPasswordInput{Token: raw, Password: "mellon"})
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, notFound int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrResetTokenNotFound):
			notFound++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, notFound)
}
