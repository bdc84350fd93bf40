package postgres

import (
	"context"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the application, in migration order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Token{},
		&domain.Group{},
		&domain.GroupRequest{},
	}
}

func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db),
		Token:        NewTokenRepository(db),
		Group:        NewGroupRepository(db),
		GroupRequest: NewGroupRequestRepository(db),
		Tx:           &transactor{db: db},
	}
}

type transactor struct {
	db *gorm.DB
}

// WithinTx nests as a savepoint when db is already a transaction.
func (t *transactor) WithinTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
