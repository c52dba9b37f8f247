package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skydispatch/api"
	"github.com/Domenick1991/skydispatch/config"
	"github.com/Domenick1991/skydispatch/internal/airports"
	"github.com/Domenick1991/skydispatch/internal/authority"
	"github.com/Domenick1991/skydispatch/internal/bootstrap"
	"github.com/Domenick1991/skydispatch/internal/cache"
	"github.com/Domenick1991/skydispatch/internal/kafka"
	"github.com/Domenick1991/skydispatch/internal/logger"
	"github.com/Domenick1991/skydispatch/internal/realtime"
	"github.com/Domenick1991/skydispatch/internal/repository"
	"github.com/Domenick1991/skydispatch/internal/service/audit"
	"github.com/Domenick1991/skydispatch/internal/service/auth"
	"github.com/Domenick1991/skydispatch/internal/service/flights"
	"github.com/Domenick1991/skydispatch/internal/service/transfer"
	"github.com/Domenick1991/skydispatch/internal/session"
	"github.com/Domenick1991/skydispatch/internal/zones"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	store, closeStore, err := repository.Open(ctx, cfg.Storage, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()
	zl.Info("storage ready", zap.String("backend", cfg.Storage.Backend))

	airportIndex, err := airports.Load(cfg.Airports.DatasetPath, cfg.Airports.SearchCacheSize)
	if err != nil {
		return err
	}
	zl.Info("airports loaded", zap.Int("count", airportIndex.Len()))

	defs := cfg.Zones.Definitions
	if len(defs) == 0 {
		defs = zones.DefaultDefinitions()
	}
	registry := zones.Build(defs, airportIndex, cfg.Zones.DefaultRadiusKm)
	assignments := zones.NewAssignments()
	sessions := session.NewStore()
	zl.Info("zones ready", zap.Int("count", len(registry.List())))

	hub := realtime.NewHub(zl)

	auditOpts := []audit.AuditServiceOption{audit.WithBroadcaster(hub)}
	transferOpts := []transfer.TransferServiceOption{
		transfer.WithTimeout(time.Duration(cfg.Transfer.TimeoutMs) * time.Millisecond),
		transfer.WithNotifier(hub),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, zl)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			zl.Warn("kafka unavailable", zap.Error(err))
		}
		auditOpts = append(auditOpts, audit.WithProducer(producer, cfg.Kafka.AuditTopic))
		transferOpts = append(transferOpts, transfer.WithNotificationsTopic(producer, cfg.Kafka.NotificationsTopic))
	}

	var flightCache flights.Cache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			zl.Warn("redis unavailable, flight cache disabled", zap.Error(err))
		} else {
			// документы могли поменяться, пока сервис был выключен
			if err := redisCache.InvalidateFlights(ctx); err != nil {
				zl.Warn("drop stale flight cache", zap.Error(err))
			}
			flightCache = redisCache
		}
	}

	userRepo := repository.NewUserRepository(store, zl)
	auditService := audit.NewAuditService(repository.NewAuditLogRepository(store, zl), zl, auditOpts...)

	engine := authority.NewEngine(registry, assignments, airportIndex)
	flightStore := flights.NewStore(repository.NewFlightRepository(store, zl), flightCache, zl)
	flightService := flights.NewFlightService(flightStore, airportIndex, engine, auditService)
	transferService := transfer.NewTransferService(flightStore, userRepo, sessions, engine, airportIndex, auditService, zl, transferOpts...)
	authService := auth.NewAuthService(userRepo, sessions, assignments, registry, flightService, auditService, zl, auth.WithDisconnector(hub))

	if cfg.Seed.Enabled {
		added, err := flightService.Seed(ctx)
		if err != nil {
			return err
		}
		if added > 0 {
			zl.Info("seeded demo flights", zap.Int("count", added))
		}
	}
	if err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.PIN); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{
		Auth:      authService,
		Flights:   flightService,
		Transfers: transferService,
		Audit:     auditService,
		Zones:     zones.Board{Registry: registry, Assignments: assignments},
		Airports:  airportIndex,
		Hub:       hub,
		Swagger:   cfg.HTTP.Swagger,
		Log:       zl,
	})

	return bootstrap.Run(ctx, cfg.HTTP, router, zl, hub)
}
