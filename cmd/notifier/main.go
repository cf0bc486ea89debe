package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-attendance-push/internal/application/notification"
	"github.com/go-attendance-push/internal/application/watcher"
	"github.com/go-attendance-push/internal/config"
	"github.com/go-attendance-push/internal/infrastructure/dynamo"
	"github.com/go-attendance-push/internal/infrastructure/fcm"
	"github.com/go-attendance-push/internal/infrastructure/google"
	"github.com/go-attendance-push/internal/infrastructure/metrics"
	"github.com/go-attendance-push/internal/pkg/logger"
	transporthttp "github.com/go-attendance-push/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	zapLog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		zapLog.Fatal("aws config load failed", zap.Error(err))
	}
	dynamoClient := dynamo.NewClient(awsCfg, cfg)
	streamsClient := dynamo.NewStreamsClient(awsCfg, cfg)

	if cfg.DynamoBootstrap {
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, zapLog)
	}

	account, err := google.LoadServiceAccount(cfg.ServiceAccountFile, cfg.FCMProjectID)
	if err != nil {
		zapLog.Fatal("service account load failed", zap.Error(err))
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	tokenProvider, err := google.NewTokenProvider(account, httpClient)
	if err != nil {
		zapLog.Fatal("token provider init failed", zap.Error(err))
	}
	var tokens notification.TokenSource = tokenProvider
	if cfg.TokenCache {
		tokens = google.Cached(tokenProvider)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := notification.NewService(notification.ServiceDeps{
		Recipients: dynamo.NewRecipientRepo(dynamoClient, cfg.DynamoTables.Users),
		Subjects:   dynamo.NewSubjectRepo(dynamoClient, cfg.DynamoTables.Subjects),
		Tokens:     tokens,
		Sender:     fcm.NewDispatcher(cfg.FCMBaseURL, account.ProjectID, httpClient),
		Location:   cfg.Location(),
		Now:        time.Now,
		Metrics:    m,
		Log:        zapLog,
	})

	feed := dynamo.NewStreamFeed(
		streamsClient,
		dynamoClient,
		dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		dynamo.StreamFeedOptions{
			StreamARN:    cfg.NotificationsStreamARN,
			TableName:    cfg.DynamoTables.Notifications,
			PollInterval: cfg.StreamPollInterval,
			ShardRefresh: cfg.StreamShardRefresh,
		},
		zapLog,
	)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.AppPort),
		Handler: transporthttp.NewRouter(cfg, &transporthttp.Deps{
			Gatherer: reg,
			Log:      zapLog,
			Now:      time.Now,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLog.Info("liveness server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("liveness server error", zap.Error(err))
		}
	}()

	zapLog.Info("notifier started",
		zap.String("project_id", account.ProjectID),
		zap.String("table", cfg.DynamoTables.Notifications),
		zap.Bool("token_cache", cfg.TokenCache))

	runErr := watcher.New(feed, svc, m, zapLog).Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("forced shutdown", zap.Error(err))
	}

	if runErr != nil {
		zapLog.Error("notification subscription failed", zap.Error(runErr))
		_ = zapLog.Sync()
		os.Exit(1)
	}
	zapLog.Info("notifier stopped")
}
