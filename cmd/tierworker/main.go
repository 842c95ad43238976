// FlowCatalyst Tier Worker
//
// Consumes package-status events from one tier's source topic, dispatches
// each as an HTTP POST to the merchant's webhook, demotes on transport
// failure, retries on a retryable status, and maintains a per-merchant
// rolling average of response latency.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"go.flowcatalyst.tech/internal/cache"
	"go.flowcatalyst.tech/internal/common/health"
	"go.flowcatalyst.tech/internal/common/lifecycle"
	"go.flowcatalyst.tech/internal/common/metrics"
	"go.flowcatalyst.tech/internal/config"
	"go.flowcatalyst.tech/internal/engine"
	"go.flowcatalyst.tech/internal/eventproducer"
	"go.flowcatalyst.tech/internal/kafka"
	"go.flowcatalyst.tech/internal/logemitter"
	"go.flowcatalyst.tech/internal/mediator"
	"go.flowcatalyst.tech/internal/retry"
	"go.flowcatalyst.tech/internal/rolling"
	"go.flowcatalyst.tech/internal/tierpolicy"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if os.Getenv("FLOWCATALYST_DEV") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	log.Info().
		Str("version", version).
		Str("build_time", buildTime).
		Str("component", "tierworker").
		Msg("Starting FlowCatalyst Tier Worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthChecker := health.NewChecker()
	lifecycleMgr := lifecycle.NewManager()

	cacheClient := cache.New(cfg.RedisAddr())
	healthChecker.AddReadinessCheck(health.NamedCheck("redis", func() error {
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		defer pingCancel()
		return cacheClient.Ping(pingCtx)
	}))
	lifecycleMgr.RegisterDatabaseShutdown("cache", func(context.Context) error {
		return cacheClient.Close()
	})

	producer, err := kafka.NewProducer(cfg.BootstrapServers, cfg.KafkaClientID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create kafka producer")
	}
	lifecycleMgr.RegisterQueueShutdown("kafka-producer", func(context.Context) error {
		producer.Close()
		return nil
	})

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:     cfg.BootstrapServers,
		Topic:       cfg.Topic,
		Group:       cfg.Group,
		PollTimeout: cfg.PollTimeout,
		MaxRecords:  cfg.BatchLimit,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create kafka consumer")
	}
	lifecycleMgr.RegisterQueueShutdown("kafka-consumer", func(context.Context) error {
		consumer.Close()
		return nil
	})

	emitter := logemitter.New(producer, cfg.LogStashTopic, log.Logger)
	eventProducer := eventproducer.New(producer, log.Logger)
	retrier := retry.New(producer, cfg.MaxRetries, log.Logger)
	policy := tierpolicy.New(cfg.RankTopic)
	maintainer := rolling.NewMaintainer(cacheClient, cfg.RollingWindow, log.Logger)

	med := mediator.New(mediator.Config{
		RetryableStatuses:         mediator.NewStatusSet(cfg.RetryableCodes...),
		CircuitBreakerName:        cfg.Tier,
		CircuitBreakerRequests:    10,
		CircuitBreakerInterval:    60 * time.Second,
		CircuitBreakerRatio:       0.5,
		CircuitBreakerTimeout:     5 * time.Second,
		CircuitBreakerMinRequests: 10,
		OnCircuitBreakerStateChange: func(name string, from, to gobreaker.State) {
			log.Info().
				Str("tier", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.MediatorCircuitBreakerState.WithLabelValues(name).Set(circuitBreakerStateValue(to))
			if to == gobreaker.StateOpen {
				metrics.MediatorCircuitBreakerTrips.WithLabelValues(name).Inc()
			}
		},
	})

	eng := engine.New(
		engine.Config{
			Topic:          cfg.Topic,
			Group:          cfg.Group,
			RequestTimeout: cfg.RequestTimeout,
			BaseURL:        cfg.WebhookBaseURL,
			BatchLimit:     cfg.BatchLimit,
		},
		consumer,
		med,
		eventProducer,
		retrier,
		maintainer,
		emitter,
		policy,
		tierMetrics{tier: cfg.Tier},
		log.Logger,
	)

	lifecycleMgr.RegisterWorkerShutdown("tier-engine", func(context.Context) error {
		cancel()
		return nil
	})

	go func() {
		if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("tier engine exited unexpectedly")
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/q/health", healthChecker.HandleHealth)
	r.Get("/q/health/live", healthChecker.HandleLive)
	r.Get("/q/health/ready", healthChecker.HandleReady)
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	lifecycleMgr.RegisterHTTPShutdown("http-server", server.Shutdown)

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	log.Info().Str("tier", cfg.Tier).Str("topic", cfg.Topic).Msg("tier worker ready")

	if err := lifecycleMgr.Run(); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
	}

	log.Info().Msg("FlowCatalyst Tier Worker stopped")
}

func circuitBreakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return float64(metrics.CircuitBreakerOpen)
	case gobreaker.StateHalfOpen:
		return float64(metrics.CircuitBreakerHalfOpen)
	default:
		return float64(metrics.CircuitBreakerClosed)
	}
}

// tierMetrics adapts the package-level Prometheus collectors to
// engine.Metrics, labelling every observation with this process's tier.
type tierMetrics struct {
	tier string
}

func (m tierMetrics) ObserveBatchDuration(_ string, d time.Duration) {
	metrics.TierBatchDuration.WithLabelValues(m.tier).Observe(d.Seconds())
}

func (m tierMetrics) IncDemotions(_ string) {
	metrics.TierDemotionsTotal.WithLabelValues(m.tier).Inc()
}

func (m tierMetrics) IncRetries(_ string) {
	metrics.TierRetriesTotal.WithLabelValues(m.tier).Inc()
}

func (m tierMetrics) IncDrops(_ string) {
	metrics.TierDropsTotal.WithLabelValues(m.tier).Inc()
}
