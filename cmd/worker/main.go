package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skydispatch/config"
	"github.com/Domenick1991/skydispatch/internal/airports"
	"github.com/Domenick1991/skydispatch/internal/authority"
	"github.com/Domenick1991/skydispatch/internal/cache"
	"github.com/Domenick1991/skydispatch/internal/kafka"
	"github.com/Domenick1991/skydispatch/internal/logger"
	"github.com/Domenick1991/skydispatch/internal/notify"
	"github.com/Domenick1991/skydispatch/internal/repository"
	"github.com/Domenick1991/skydispatch/internal/service/audit"
	"github.com/Domenick1991/skydispatch/internal/service/flights"
	"github.com/Domenick1991/skydispatch/internal/service/transfer"
	"github.com/Domenick1991/skydispatch/internal/session"
	"github.com/Domenick1991/skydispatch/internal/zones"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
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
	zl = zl.Named("worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := repository.Open(ctx, cfg.Storage, cfg.Database)
	if err != nil {
		zl.Fatal("open storage", zap.Error(err))
	}
	defer closeStore()

	airportIndex, err := airports.Load(cfg.Airports.DatasetPath, cfg.Airports.SearchCacheSize)
	if err != nil {
		zl.Fatal("load airports", zap.Error(err))
	}

	var auditOpts []audit.AuditServiceOption
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, zl)
		defer producer.Close()
		auditOpts = append(auditOpts, audit.WithProducer(producer, cfg.Kafka.AuditTopic))
	}

	var flightCache flights.Cache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			zl.Warn("redis unavailable, flight cache disabled", zap.Error(err))
		} else {
			flightCache = redisCache
		}
	}

	// the sweep never checks zones or presence, so both start empty
	defs := cfg.Zones.Definitions
	if len(defs) == 0 {
		defs = zones.DefaultDefinitions()
	}
	registry := zones.Build(defs, airportIndex, cfg.Zones.DefaultRadiusKm)
	engine := authority.NewEngine(registry, zones.NewAssignments(), airportIndex)

	auditService := audit.NewAuditService(repository.NewAuditLogRepository(store, zl), zl, auditOpts...)
	flightStore := flights.NewStore(repository.NewFlightRepository(store, zl), flightCache, zl)
	transferService := transfer.NewTransferService(
		flightStore,
		repository.NewUserRepository(store, zl),
		session.NewStore(),
		engine,
		airportIndex,
		auditService,
		zl,
		transfer.WithTimeout(time.Duration(cfg.Transfer.TimeoutMs)*time.Millisecond),
	)

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zl)
		defer consumer.Close()

		sender := notify.NewSender(zl)
		go func() {
			if err := consumer.Consume(ctx, sender.Send); err != nil && ctx.Err() == nil {
				zl.Error("consumer stopped", zap.Error(err))
			}
		}()
	}

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepSeconds) * time.Second)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	zl.Info("worker started", zap.Int("sweep_seconds", cfg.Worker.ExpirationSweepSeconds))
	for {
		select {
		case <-expireTicker.C:
			expired, err := transferService.ExpirePendingTransfers(ctx)
			if err != nil {
				zl.Error("expire transfers", zap.Error(err))
				continue
			}
			if len(expired) > 0 {
				zl.Info("expired transfers", zap.Int("count", len(expired)))
			}
		case s := <-sig:
			zl.Info("shutting down", zap.Stringer("signal", s))
			return
		}
	}
}
