package service

import (
	"github.com/dom/roleplay-api/internal/config"
	"github.com/dom/roleplay-api/internal/mail"
	"github.com/dom/roleplay-api/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Auth         *AuthService
	Password     *PasswordService
	Group        *GroupService
	GroupRequest *GroupRequestService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, mailer mail.Mailer, notifier GroupRequestNotifier, logger *zap.Logger) *Services {
	return &Services{
		Auth:         NewAuthService(repos.User, repos.Token, cfg),
		Password:     NewPasswordService(repos, mailer, cfg, logger.Named("password")),
		Group:        NewGroupService(repos),
		GroupRequest: NewGroupRequestService(repos, notifier, logger.Named("group_request")),
	}
}
