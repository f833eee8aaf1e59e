package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/freight-bids/internal/config"
	gateway "github.com/nimasrn/freight-bids/internal/gateways"
	"github.com/nimasrn/freight-bids/internal/processor"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/nimasrn/freight-bids/internal/services"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"github.com/nimasrn/freight-bids/pkg/prom"
	"github.com/nimasrn/freight-bids/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger.SetComponent("processor")
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting delivery processor", "version", version, "commit", commit, "date", date)

	readConf := pg.Config{
		User:     cfg.PostgresReadUser,
		Host:     cfg.PostgresReadHost,
		Port:     cfg.PostgresReadPort,
		Password: cfg.PostgresReadPassword,
		Database: cfg.PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     cfg.PostgresWriteUser,
		Host:     cfg.PostgresWriteHost,
		Port:     cfg.PostgresWritePort,
		Password: cfg.PostgresWritePassword,
		Database: cfg.PostgresWriteDatabase,
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, cfg.AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: "default",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	client, err := gateway.NewClient(gateway.Config{
		Providers: []gateway.ProviderConfig{
			{Name: "primary", URL: cfg.NotifierPrimaryUrl, Weight: 100},
			{Name: "secondary", URL: cfg.NotifierSecondaryUrl, Weight: 60},
		},
		Timeout:                 5 * time.Second,
		MaxRetries:              3,
		RetryDelay:              100 * time.Millisecond,
		MaxConns:                512,
		HealthCheckInterval:     30 * time.Second,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   60 * time.Second,
	})
	if err != nil {
		logger.Error("failed to create notification gateway", "error", err)
		return
	}
	defer client.Close()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err := prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	invitationRepo := repository.NewInvitationRepository(db)
	// delivery outcomes go through the same status machine as the api
	invitationService := services.NewInvitationService(db,
		repository.NewOrganizationRepository(db),
		repository.NewBidRepository(db),
		repository.NewCarrierRepository(db),
		invitationRepo, nil, cfg.InvitationLinkBase())

	idempotency := processor.NewIdempotencyService(redisAdap, processor.DefaultIdempotencyConfig())
	service := processor.NewProcessorService(redisAdap,
		processor.NewInvitationDeliveryProcessor(client, invitationRepo, invitationService, idempotency))

	go prom.ListenAndServer(cfg.PromListenAddr, "/metrics")

	go func() {
		if err := service.Start(); err != nil {
			logger.Error("failed to start processor", "error", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	service.Stop()
	m := service.Metrics()
	logger.Info("processor stopped", "processed", m.Processed, "failed", m.Failed, "uptime", m.Uptime.String())
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, "--env=") {
			path := strings.TrimPrefix(v, "--env=")
			if _, err := os.Stat(path); err != nil {
				logger.Error("failed to open the passed env file", "path", path, "error", err)
				return ""
			}
			return path
		}
	}
	return ""
}
