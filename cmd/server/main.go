package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"poll-server/internal/auth"
	"poll-server/internal/config"
	apphttp "poll-server/internal/http"
	"poll-server/internal/repository"
	"poll-server/internal/repository/sqlite"
	"poll-server/internal/service"
	"poll-server/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Fatalf("parse log level: %v", err)
	}
	logger.SetLevel(level)

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	medium, closer, err := buildMedium(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}
	defer closer.Close()

	gate := service.NewSnapshotGate(repository.NewSnapshotStore(medium, logger))
	pollService := service.NewPollService(gate)
	userService := service.NewUserService(gate, cfg.Auth.RegisterSecret, cfg.Auth.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(pollService, userService, tokens, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func buildMedium(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Medium, io.Closer, error) {
	switch cfg.Storage.Backend {
	case "", "file":
		logger.Infof("using snapshot file %s", cfg.Storage.Path)
		return storage.NewFileMedium(cfg.Storage.Path), nopCloser{}, nil
	case "memory":
		logger.Warn("using in-memory snapshot, data is lost on exit")
		return storage.NewMemoryMedium(), nopCloser{}, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		medium := sqlite.NewSnapshotMedium(db)
		if err := medium.Init(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("init snapshot table: %w", err)
		}
		logger.Infof("using sqlite snapshot %s", cfg.Database.Path)
		return medium, db, nil
	case "s3":
		medium, err := buildS3Medium(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("using s3 snapshot %s (region %s)", medium.Location(), cfg.S3.Region)
		return medium, nopCloser{}, nil
	case "redis":
		medium, err := storage.NewRedisMedium(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("using redis snapshot %s key %s", cfg.Redis.Addr, cfg.Redis.Key)
		return medium, medium, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func buildS3Medium(ctx context.Context, cfg config.Config) (*storage.S3Medium, error) {
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.S3.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})
	return storage.NewS3Medium(client, cfg.S3.Bucket, cfg.S3.Key)
}
