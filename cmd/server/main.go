package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/roleplay-api/internal/api"
	"github.com/dom/roleplay-api/internal/config"
	"github.com/dom/roleplay-api/internal/mail"
	"github.com/dom/roleplay-api/internal/realtime"
	"github.com/dom/roleplay-api/internal/repository/postgres"
	"github.com/dom/roleplay-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	dbLogLevel := logger.Warn
	if cfg.Environment == "development" {
		dbLogLevel = logger.Info
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, dbLogLevel)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	repos := postgres.NewRepositories(db)

	hub := realtime.NewHub(zlog.Named("realtime"))
	go hub.Run()

	services := service.NewServices(repos, cfg, newMailer(cfg, zlog), hub, zlog)

	router := api.NewRouter(services, hub, cfg, zlog)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	hub.Stop()

	zlog.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Environment == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level

	return zcfg.Build()
}

// newMailer sends through SMTP when a host is configured and otherwise only
// logs outgoing mail.
func newMailer(cfg *config.Config, zlog *zap.Logger) mail.Mailer {
	if cfg.SMTPHost == "" {
		zlog.Warn("SMTP_HOST not set, outgoing mail will only be logged")
		return mail.NewLogMailer(zlog.Named("mail"))
	}
	return &mail.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}
}
