package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"groundtruth/internal/cloudant"
	"groundtruth/internal/config"
	"groundtruth/internal/nlc"
	"groundtruth/internal/repository"
	"groundtruth/internal/server"
	"groundtruth/internal/service"
	"groundtruth/pkg/client"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Resolve bound service credentials once; they are immutable afterwards.
	// Empty bindings are tolerated here so the process can come up and report
	// failures per request instead of crash-looping on a platform hiccup.
	storeCreds := config.ResolveService(config.LabelCloudant)
	if storeCreds.IsZero() {
		logger.Warn("No document store binding resolved; store calls will fail", zap.String("label", config.LabelCloudant))
	}
	classifierCreds := config.ResolveService(config.LabelClassifier)
	if classifierCreds.IsZero() {
		logger.Warn("No classifier binding resolved; logins will fail", zap.String("label", config.LabelClassifier))
	}

	// Service clients
	store := cloudant.NewClient(storeCreds, cfg.Cloudant.Database, logger)
	classifier := nlc.NewClient(classifierCreds, logger)

	// Repositories
	classRepo := repository.NewClassRepository(store, logger)
	textRepo := repository.NewTextRepository(store, logger)
	contentRepo := repository.NewContentRepository(classRepo, textRepo, logger)

	// Auth service: the classifier binding id doubles as the tenant name.
	tokenTTL := time.Duration(cfg.Session.TokenTTL) * time.Hour
	authService := service.NewAuthService(classifier, classifierCreds.ID, cfg.Session.Secret, tokenTTL, logger)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// One background version check at startup; a stale build is worth a log
	// line, never a startup failure.
	if cfg.Versions.FeedURL != "" {
		go func() {
			checker := client.NewVersionChecker(cfg.Versions.FeedURL, cfg.Versions.Local, logger)
			status, err := checker.Status(ctx)
			if err != nil {
				logger.Warn("Version check failed", zap.Error(err))
				return
			}
			if status == client.VersionOld {
				logger.Warn("A newer release is available", zap.String("local", cfg.Versions.Local))
			}
		}()
	}

	// Initialize and run the server
	srv := server.NewServer(server.Deps{
		Auth:       authService,
		Classes:    classRepo,
		Texts:      textRepo,
		Content:    contentRepo,
		Classifier: classifier,
		Logger:     logger,
	}, logrus.New())
	go srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}
