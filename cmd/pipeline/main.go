package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/aurelle-shop/fulfillment/internal/adapter/email"
	"github.com/aurelle-shop/fulfillment/internal/adapter/events"
	"github.com/aurelle-shop/fulfillment/internal/adapter/handler"
	"github.com/aurelle-shop/fulfillment/internal/adapter/shipping"
	"github.com/aurelle-shop/fulfillment/internal/adapter/storage"
	"github.com/aurelle-shop/fulfillment/internal/config"
	"github.com/aurelle-shop/fulfillment/internal/core/domain"
	"github.com/aurelle-shop/fulfillment/internal/core/service"
	"github.com/aurelle-shop/fulfillment/internal/metrics"
	"github.com/aurelle-shop/fulfillment/internal/port"
)

const serviceName = "fulfillment-pipeline"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	runOnce := flag.Bool("run-once", false, "process all pending orders once and exit")
	orderID := flag.String("order", "", "process a single order by id and exit")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zlog.With().Str("service", serviceName).Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mysql")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mysql")
	}
	defer db.Close()
	logger.Info().Msg("connected to mysql")

	// Redis (shared provider throttle)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	var throttle port.Throttle
	if err := rdb.Ping(ctx).Err(); err != nil {
		// The pipeline still works without the cross-instance
		// throttle; only the rate-limit budget is unprotected.
		logger.Warn().Err(err).Msg("redis unavailable, provider throttle disabled")
	} else {
		throttle = storage.NewRedisThrottle(rdb, cfg.Shipping.ThrottleInterval.Std(), logger)
		logger.Info().Msg("connected to redis")
	}
	defer rdb.Close()

	// Shipping provider: real client when a credential is configured,
	// deterministic stub otherwise. Decided once, here.
	var provider port.ShippingProvider
	if cfg.Shipping.APIKey != "" {
		provider = shipping.NewHTTPClient(shipping.HTTPClientConfig{
			BaseURL:     cfg.Shipping.BaseURL,
			APIKey:      cfg.Shipping.APIKey,
			CallTimeout: cfg.Shipping.CallTimeout.Std(),
		}, logger)
		logger.Info().Str("base_url", cfg.Shipping.BaseURL).Msg("using shipping aggregator")
	} else {
		provider = shipping.NewStubClient()
		logger.Warn().Msg("no shipping api key configured, using stub provider")
	}

	// Email provider, same strategy.
	var sender port.EmailSender
	if cfg.Email.APIKey != "" {
		sender = email.NewHTTPSender(email.HTTPSenderConfig{
			BaseURL: cfg.Email.BaseURL,
			APIKey:  cfg.Email.APIKey,
		}, logger)
	} else {
		sender = email.NewLogSender(logger)
		logger.Warn().Msg("no email api key configured, logging emails instead")
	}

	// Kafka shipment events, optional.
	var publisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka events enabled")
	}

	store := storage.NewMySQLAdapter(db)

	booking := service.NewBookingService(
		provider,
		throttle,
		warehouseAddress(cfg),
		parcelConfig(cfg),
		service.RatePolicy(cfg.Shipping.Policy),
		logger,
	)

	notifier, err := service.NewNotifier(sender, service.NotifierConfig{
		From:        cfg.Email.From,
		FromName:    cfg.Email.FromName,
		MaxAttempts: cfg.Email.MaxAttempts,
		BaseDelay:   cfg.Email.BaseDelay.Std(),
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build notifier")
	}

	registry := prometheus.NewRegistry()
	pipeline := service.NewPipeline(store, booking, notifier, publisher, cfg.Workers, metrics.New(registry), logger)

	// One-shot modes for cron and operators.
	if *orderID != "" {
		if err := pipeline.ProcessOrder(ctx, *orderID); err != nil {
			logger.Error().Err(err).Str("order_id", *orderID).Msg("order processing failed")
			os.Exit(1)
		}
		return
	}
	if *runOnce {
		report, err := pipeline.ProcessPending(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("batch run failed")
			os.Exit(1)
		}
		if report.Errored > 0 {
			os.Exit(2)
		}
		return
	}

	// HTTP trigger surface.
	httpHandler := handler.NewHTTPHandler(pipeline, provider, logger)
	mux := http.NewServeMux()
	httpHandler.Register(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	cancel()
	logger.Info().Msg("stopped")
}

func warehouseAddress(cfg *config.Config) domain.Address {
	return domain.Address{
		Name:       cfg.Warehouse.Name,
		Phone:      cfg.Warehouse.Phone,
		Email:      cfg.Warehouse.Email,
		Line1:      cfg.Warehouse.Line1,
		Line2:      cfg.Warehouse.Line2,
		City:       cfg.Warehouse.City,
		State:      cfg.Warehouse.State,
		PostalCode: cfg.Warehouse.PostalCode,
		Country:    cfg.Warehouse.Country,
	}
}

func parcelConfig(cfg *config.Config) service.ParcelConfig {
	return service.ParcelConfig{
		PerItemWeightKg: cfg.Parcel.PerItemWeightKg,
		MinWeightKg:     cfg.Parcel.MinWeightKg,
		LengthCm:        cfg.Parcel.LengthCm,
		WidthCm:         cfg.Parcel.WidthCm,
		BaseHeightCm:    cfg.Parcel.BaseHeightCm,
		HeightCmPerKg:   cfg.Parcel.HeightCmPerKg,
		DefaultContent:  cfg.Parcel.DefaultContent,
	}
}
