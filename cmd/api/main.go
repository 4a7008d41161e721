package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/puntaluxe/growth-engine/cmd/mainconfig"
	"github.com/puntaluxe/growth-engine/internal/admin"
	"github.com/puntaluxe/growth-engine/internal/agencies"
	"github.com/puntaluxe/growth-engine/internal/api/router"
	appconfig "github.com/puntaluxe/growth-engine/internal/config"
	"github.com/puntaluxe/growth-engine/internal/listings"
	"github.com/puntaluxe/growth-engine/internal/notify"
	"github.com/puntaluxe/growth-engine/internal/observability/metrics"
	"github.com/puntaluxe/growth-engine/internal/outreach"
	"github.com/puntaluxe/growth-engine/internal/sniper"
	"github.com/puntaluxe/growth-engine/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting growth-engine API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	// Metrics
	triageMetrics := metrics.NewTriageMetrics(nil)
	feedMetrics := metrics.NewFeedMetrics(nil)

	// Outreach queue and SES, sharing one AWS config
	var publisher outreach.Publisher
	var sender notify.Sender
	if cfg.UseMemoryQueue {
		logger.Warn("using in-memory outreach queue; tasks are lost on restart")
		publisher = outreach.NewMemoryQueue()
	} else {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		publisher = outreach.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.OutreachQueueURL)
		if cfg.NotifyFromEmail != "" && cfg.NotifyToEmail != "" {
			sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
				FromEmail: cfg.NotifyFromEmail,
				FromName:  cfg.NotifyFromName,
			}, logger)
		}
	}

	outreachStore := outreach.NewStore(pool)
	store := sniper.NewPostgresStore(pool)

	// Triage service
	service := sniper.NewService(store, outreachStore, logger).
		WithMetrics(triageMetrics)

	if sender != nil {
		notifier := notify.NewQualificationNotifier(sender, cfg.NotifyToEmail, cfg.PublicBaseURL, logger)
		service = service.WithNotifier(notifier)
	}

	// Redis rollups (optional)
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		service = service.WithRollup(sniper.NewRollup(rdb, cfg.RollupTTL))
	}

	// Live prospect feed
	feed := sniper.NewFeed(store, logger).
		WithMetrics(feedMetrics).
		WithPageSize(int32(cfg.ProspectPageSize))
	defer feed.Close()

	// A failed initial load leaves the feed empty; the listener re-runs
	// Bootstrap on every (re)connect, so this recovers on its own.
	if err := feed.Bootstrap(ctx); err != nil {
		logger.Error("initial prospect load failed", "error", err)
	}

	listener := sniper.NewListener(pool, feed, cfg.ProspectFeedChannel, logger).
		WithMetrics(feedMetrics).
		WithBackoff(cfg.FeedReconnectBaseWait, cfg.FeedReconnectMaxWait)
	go listener.Run(ctx)

	// Outreach dispatcher
	dispatcher := outreach.NewDispatcher(outreachStore, publisher, logger).
		WithBatchSize(int32(cfg.OutreachBatchSize)).
		WithInterval(cfg.OutreachDispatchInterval)
	go dispatcher.Run(ctx)

	// Handlers
	sniperHandler := sniper.NewHandler(feed, service, logger)
	feedSocket := sniper.NewFeedSocket(feed, logger)
	listingsHandler := listings.NewHandler(listings.NewRepository(sqlDB))
	agenciesHandler := agencies.NewHandler(agencies.NewRepository(pool), cfg.PartnerJWTSecret, logger)
	dashboard := admin.NewDashboardHandler(admin.NewDashboardRepository(pool), nil, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		SniperHandler:      sniperHandler,
		FeedSocket:         feedSocket,
		ListingsHandler:    listingsHandler,
		AgenciesHandler:    agenciesHandler,
		AdminDashboard:     dashboard,
		MetricsHandler:     promhttp.Handler(),
		PartnerJWTSecret:   cfg.PartnerJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
