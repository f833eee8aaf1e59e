package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/freight-bids/internal/config"
	"github.com/nimasrn/freight-bids/internal/handlers"
	"github.com/nimasrn/freight-bids/internal/queue"
	"github.com/nimasrn/freight-bids/internal/repository"
	"github.com/nimasrn/freight-bids/internal/services"
	xhttp "github.com/nimasrn/freight-bids/pkg/http"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/pg"
	"github.com/nimasrn/freight-bids/pkg/prom"
	"github.com/nimasrn/freight-bids/pkg/redis"
	"github.com/nimasrn/freight-bids/pkg/s3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger.SetComponent("api")
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting api", "version", version, "commit", commit, "date", date)

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(cfg.HttpRequestTimeout))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

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

	deliveries, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:              cfg.QueueName,
		ConsumerGroup:     cfg.QueueConsumerGroup,
		ConsumerName:      cfg.QueueConsumerName,
		MaxRetries:        cfg.QueueMaxRetries,
		VisibilityTimeout: cfg.QueueVisibilityTimeout,
		PollInterval:      cfg.QueuePollInterval,
		BatchSize:         cfg.QueueBatchSize,
		MaxLen:            cfg.QueueMaxLen,
		EnableDLQ:         cfg.QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating delivery queue", "error", err)
		return
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err := prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	// repositories
	orgRepo := repository.NewOrganizationRepository(db)
	bidRepo := repository.NewBidRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	carrierRepo := repository.NewCarrierRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	responseRepo := repository.NewResponseRepository(db)

	// services
	bidService := services.NewBidService(bidRepo, routeRepo)
	routeService := services.NewRouteService(db, routeRepo)
	carrierService := services.NewCarrierService(carrierRepo)
	invitationService := services.NewInvitationService(db, orgRepo, bidRepo, carrierRepo, invitationRepo, deliveries, cfg.InvitationLinkBase())
	accessService := services.NewAccessService(invitationRepo, routeRepo, invitationService)
	responseService := services.NewResponseService(db, bidRepo, routeRepo, carrierRepo, responseRepo, invitationService, accessService)
	healthService := services.NewHealthService(map[string]services.Pinger{
		"postgres": db,
		"redis":    redisAdap,
	})

	if cfg.S3Endpoint != "" {
		store, err := s3.NewClient(context.Background(), s3.Config{
			Endpoint:       cfg.S3Endpoint,
			Region:         cfg.S3Region,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			DisableTLS:     cfg.S3DisableTLS,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			logger.Error("failed creating s3 client, export publishing disabled", "error", err)
		} else {
			responseService.WithObjectStore(store, services.ExportConfig{
				Bucket:     cfg.S3ExportBucket,
				PresignTTL: cfg.S3PresignTTL,
			})
		}
	}

	if cfg.NotifierCallbackSecret == "" {
		logger.Warn("NOTIFIER_CALLBACK_SECRET is empty, delivery callbacks are refused")
	}

	// v1 handlers
	g := s.Router.Group("/api/v1")
	handlers.RegisterBidRoutes(g, handlers.NewBidHandler(bidService))
	handlers.RegisterRouteRoutes(g, handlers.NewRouteHandler(routeService))
	handlers.RegisterCarrierRoutes(g, handlers.NewCarrierHandler(carrierService))
	handlers.RegisterInvitationRoutes(g, handlers.NewInvitationHandler(invitationService, cfg.NotifierCallbackSecret))
	handlers.RegisterResponseRoutes(g, handlers.NewResponseHandler(responseService))
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(healthService))

	// carrier link
	handlers.RegisterRespondRoutes(s.Router.Group("/bid/respond"), handlers.NewRespondHandler(accessService, responseService))

	go prom.ListenAndServer(cfg.PromListenAddr, "/metrics")

	go func() {
		if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("shutting down api")
	s.Shutdown()
	if err := deliveries.Stop(5 * time.Second); err != nil {
		logger.Warn("delivery queue did not stop cleanly", "error", err)
	}
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
